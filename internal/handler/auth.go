package handler

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/jmadu/bookshelf/internal/domain"
	"github.com/jmadu/bookshelf/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService

	// frontendURL controls token delivery after the OAuth callback: when
	// set the token travels as a query parameter on a redirect, otherwise
	// it is returned inline.
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{auth: auth, frontendURL: frontendURL}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"omitempty,min=2"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  authUser `json:"user"`
}

// Register creates a locally-registered account and returns a token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, signed, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.Username)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, authResponse{
		Token: signed,
		User:  authUser{ID: user.ID, Email: user.Email, Username: user.Name},
	})
}

// Login authenticates local credentials and returns a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, signed, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, authResponse{
		Token: signed,
		User:  authUser{ID: user.ID, Email: user.Email},
	})
}

// GoogleRedirect sends the user to Google's OAuth consent page.
func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	state := generateState()
	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.auth.GoogleAuthURL(state))
}

// GoogleCallback handles the provider redirect: reconcile the asserted
// identity, issue a token and deliver it per deployment configuration.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if err := validateOAuthState(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamAuth, err)
	}

	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: missing code parameter", domain.ErrUpstreamAuth)
	}

	user, signed, _, err := h.auth.GoogleCallback(c.Request().Context(), code)
	if err != nil {
		return err
	}

	if h.frontendURL != "" {
		return c.Redirect(http.StatusFound,
			h.frontendURL+"/auth/success?token="+url.QueryEscape(signed))
	}

	return JSON(c, http.StatusOK, authResponse{
		Token: signed,
		User:  authUser{ID: user.ID, Email: user.Email, Username: user.Name},
	})
}

// Logout acknowledges a stateless logout. Tokens cannot be revoked before
// expiry; discarding the credential is entirely the client's job.
func (h *AuthHandler) Logout(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]any{"ok": true})
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := GetClaims(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	user, err := h.auth.GetUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validateOAuthState(c echo.Context) error {
	cookie, err := c.Cookie("oauth_state")
	if err != nil {
		return fmt.Errorf("missing oauth_state cookie")
	}

	queryState := c.QueryParam("state")
	if queryState == "" || queryState != cookie.Value {
		return fmt.Errorf("state mismatch")
	}

	return nil
}
