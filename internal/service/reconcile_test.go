package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadu/bookshelf/internal/domain"
)

func TestReconcile_CreatesUnseenIdentity(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)

	user, outcome, err := svc.Reconcile(context.Background(), ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-123",
		Email:      "new@x.com",
		Name:       "New Person",
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreated, outcome)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, "New Person", user.Name)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.AuthProviderGoogle, user.Provider)
	require.NotNil(t, user.ProviderID)
	assert.Equal(t, "g-123", *user.ProviderID)
	assert.Nil(t, user.PasswordHash)
	assert.Equal(t, placeholderAge, user.Age)
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)
	ctx := context.Background()

	assertion := ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-123",
		Email:      "new@x.com",
		Name:       "New Person",
	}

	first, outcome, err := svc.Reconcile(ctx, assertion)
	require.NoError(t, err)
	require.Equal(t, ReconcileCreated, outcome)

	second, outcome, err := svc.Reconcile(ctx, assertion)
	require.NoError(t, err)
	assert.Equal(t, ReconcileUpdated, outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, users.count())
}

func TestReconcile_LinksLocalAccountByEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)
	ctx := context.Background()

	local, _, err := svc.Register(ctx, "a@x.com", "longenough1", "alice")
	require.NoError(t, err)

	linked, outcome, err := svc.Reconcile(ctx, ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-777",
		Email:      "a@x.com",
		Name:       "Google Display Name",
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileLinked, outcome)
	assert.Equal(t, local.ID, linked.ID)
	assert.Equal(t, 1, users.count())

	assert.Equal(t, domain.AuthProviderGoogle, linked.Provider)
	require.NotNil(t, linked.ProviderID)
	assert.Equal(t, "g-777", *linked.ProviderID)

	// Present profile fields survive linking; the provider's values never
	// overwrite them.
	assert.Equal(t, "alice", linked.Name)
	require.NotNil(t, linked.PasswordHash)

	// The linked account keeps working for local login.
	_, _, err = svc.Login(ctx, "a@x.com", "longenough1")
	assert.NoError(t, err)
}

func TestReconcile_ProviderMatchWinsOverEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)
	ctx := context.Background()

	created, _, err := svc.Reconcile(ctx, ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-1",
		Email:      "old@x.com",
	})
	require.NoError(t, err)

	// Same provider identity asserting a different email: the provider-id
	// match is authoritative and no second account appears.
	same, outcome, err := svc.Reconcile(ctx, ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-1",
		Email:      "changed@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileUpdated, outcome)
	assert.Equal(t, created.ID, same.ID)
	assert.Equal(t, 1, users.count())
}

func TestReconcile_BackfillsMissingProfileFields(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)
	ctx := context.Background()

	// A pre-existing record with gaps, as older imports produced.
	providerID := "g-9"
	seeded, err := users.Create(ctx, domain.User{
		Email:      "gap@x.com",
		Provider:   domain.AuthProviderGoogle,
		ProviderID: &providerID,
		Role:       domain.RoleUser,
	})
	require.NoError(t, err)
	require.Empty(t, seeded.Name)

	updated, outcome, err := svc.Reconcile(ctx, ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-9",
		Email:      "gap@x.com",
		Name:       "Filled In",
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileUpdated, outcome)
	assert.Equal(t, "Filled In", updated.Name)
	assert.Equal(t, placeholderAge, updated.Age)
}

func TestReconcile_NoEmailAsserted(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	svc, _ := newTestAuth(users)

	user, outcome, err := svc.Reconcile(context.Background(), ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: "g-noemail",
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreated, outcome)
	assert.NotEmpty(t, user.Email)
	assert.Equal(t, fallbackDisplayName, user.Name)
}

func TestReconcile_MissingProviderID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuth(newFakeUsers())

	_, _, err := svc.Reconcile(context.Background(), ProviderAssertion{
		Provider: domain.AuthProviderGoogle,
		Email:    "a@x.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
