package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmadu/bookshelf/internal/domain"
)

// ProviderAssertion is the identity a provider asserts after its own
// authentication flow. It lives only for the duration of the callback.
type ProviderAssertion struct {
	Provider   domain.AuthProvider
	ProviderID string
	Email      string // may be empty, providers are not required to share it
	Name       string // may be empty
}

// ReconcileOutcome tags which reconciliation path produced the account.
type ReconcileOutcome string

const (
	ReconcileCreated ReconcileOutcome = "created"
	ReconcileLinked  ReconcileOutcome = "linked"
	ReconcileUpdated ReconcileOutcome = "updated"
)

// Reconcile maps a provider assertion onto exactly one local account.
//
// Lookup order is strict: a (provider, provider_id) match is authoritative;
// only when none exists is the asserted email used to link a
// locally-registered account. With no match at all a new account is created.
// Concurrent creates for the same new identity are resolved by the database
// uniqueness constraints; the loser receives domain.ErrConflict.
func (s *AuthService) Reconcile(ctx context.Context, assertion ProviderAssertion) (*domain.User, ReconcileOutcome, error) {
	if assertion.ProviderID == "" {
		return nil, "", fmt.Errorf("%w: assertion missing provider id", domain.ErrInvalidInput)
	}

	existing, err := s.users.FindByProvider(ctx, assertion.Provider, assertion.ProviderID)
	switch {
	case err == nil:
		user, err := s.applyAssertion(ctx, existing, assertion)
		return user, ReconcileUpdated, err
	case !errors.Is(err, domain.ErrNotFound):
		return nil, "", err
	}

	if assertion.Email != "" {
		existing, err = s.users.FindByEmail(ctx, assertion.Email)
		switch {
		case err == nil:
			user, err := s.applyAssertion(ctx, existing, assertion)
			return user, ReconcileLinked, err
		case !errors.Is(err, domain.ErrNotFound):
			return nil, "", err
		}
	}

	name := assertion.Name
	if name == "" {
		name = fallbackDisplayName
	}

	email := assertion.Email
	if email == "" {
		// Keeps the NOT NULL + unique email invariant for providers that
		// withhold the address; stable per provider identity.
		email = fmt.Sprintf("%s.%s@users.noreply.invalid", assertion.Provider, assertion.ProviderID)
	}

	providerID := assertion.ProviderID
	user, err := s.users.Create(ctx, domain.User{
		Name:       name,
		Email:      email,
		Age:        placeholderAge,
		Provider:   assertion.Provider,
		ProviderID: &providerID,
		Role:       domain.RoleUser,
	})
	if err != nil {
		return nil, "", err
	}
	return user, ReconcileCreated, nil
}

// applyAssertion overwrites provider linkage (idempotent) and backfills
// profile fields only where absent. Present values are never overwritten.
func (s *AuthService) applyAssertion(ctx context.Context, user *domain.User, assertion ProviderAssertion) (*domain.User, error) {
	updated := *user
	updated.Provider = assertion.Provider
	providerID := assertion.ProviderID
	updated.ProviderID = &providerID

	if updated.Name == "" {
		if assertion.Name != "" {
			updated.Name = assertion.Name
		} else {
			updated.Name = fallbackDisplayName
		}
	}
	if updated.Age == 0 {
		updated.Age = placeholderAge
	}

	return s.users.Update(ctx, updated)
}
