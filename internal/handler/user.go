package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jmadu/bookshelf/internal/domain"
)

// UserStore defines the user data access interface consumed by UserHandler.
type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler handles the users CRUD endpoints.
type UserHandler struct {
	users UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

type userRequest struct {
	Name  string      `json:"name" validate:"required,min=3"`
	Email string      `json:"email" validate:"required,email"`
	Age   int         `json:"age" validate:"required,min=1"`
	Role  domain.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// List returns all users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, users)
}

// Get returns a single user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

// Create adds a new user record.
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	user, err := h.users.Create(c.Request().Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Provider: domain.AuthProviderLocal,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, user)
}

// Update replaces the mutable fields of an existing user.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existing, err := h.users.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	updated := *existing
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Age = req.Age
	if req.Role != "" {
		updated.Role = req.Role
	}

	user, err := h.users.Update(c.Request().Context(), updated)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

// Delete removes a user. The route is admin-gated.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	return id, nil
}
