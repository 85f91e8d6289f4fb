package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/jmadu/bookshelf/internal/domain"
	"github.com/jmadu/bookshelf/internal/token"
)

const (
	bcryptCost = 12

	// Values backfilled when the provider omits required profile fields.
	// Carried over from the previous deployment; whether age should instead
	// be optional for provider-created accounts is an open product decision.
	fallbackDisplayName = "Google User"
	placeholderAge      = 18
)

// UserStore defines the user data access interface consumed by AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
}

// AuthConfig holds OAuth configuration for AuthService.
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// AuthService handles local credentials, the Google OAuth exchange and
// account reconciliation.
type AuthService struct {
	users  UserStore
	codec  *token.Codec
	google *oauth2.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, codec *token.Codec, cfg AuthConfig) *AuthService {
	return &AuthService{
		users: users,
		codec: codec,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
			RedirectURL:  cfg.GoogleCallbackURL,
		},
	}
}

// Register creates a locally-registered account and issues a token.
// A duplicate email maps to domain.ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	name := username
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hashStr := string(hash)
	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		Age:          placeholderAge,
		PasswordHash: &hashStr,
		Provider:     domain.AuthProviderLocal,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, "", err
	}

	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// Login authenticates local credentials and issues a token. Unknown email
// and wrong password both map to domain.ErrUnauthenticated so the endpoint
// leaks nothing about account existence.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrUnauthenticated
		}
		return nil, "", err
	}

	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrUnauthenticated
	}

	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// VerifyToken verifies a bearer token and returns its claims.
func (s *AuthService) VerifyToken(raw string) (token.Claims, error) {
	return s.codec.Verify(raw)
}

// GoogleAuthURL returns the Google OAuth authorization URL.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GoogleCallback exchanges the authorization code, reconciles the asserted
// identity against the local accounts and issues a token. Provider and
// reconciliation failures collapse to domain.ErrUpstreamAuth with the cause
// logged, never surfaced.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*domain.User, string, ReconcileOutcome, error) {
	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		slog.Error("google token exchange failed", "error", err)
		return nil, "", "", domain.ErrUpstreamAuth
	}

	info, err := fetchGoogleUserInfo(ctx, tok.AccessToken)
	if err != nil {
		slog.Error("google user info fetch failed", "error", err)
		return nil, "", "", domain.ErrUpstreamAuth
	}

	user, outcome, err := s.Reconcile(ctx, ProviderAssertion{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
	})
	if err != nil {
		slog.Error("account reconciliation failed", "provider", domain.AuthProviderGoogle, "error", err)
		return nil, "", "", domain.ErrUpstreamAuth
	}

	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, signed, outcome, nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("google user info missing subject id")
	}
	return &info, nil
}
