package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmadu/bookshelf/internal/domain"
)

// BookStore defines the book data access interface consumed by BookHandler.
type BookStore interface {
	List(ctx context.Context) ([]domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	Create(ctx context.Context, book domain.Book) (*domain.Book, error)
	Update(ctx context.Context, book domain.Book) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookHandler handles the books CRUD endpoints.
type BookHandler struct {
	books BookStore
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books BookStore) *BookHandler {
	return &BookHandler{books: books}
}

type bookRequest struct {
	Title  string  `json:"title" validate:"required"`
	Author string  `json:"author" validate:"required"`
	Year   int     `json:"year" validate:"omitempty,min=0"`
	Genre  *string `json:"genre" validate:"omitempty,min=1"`
}

// List returns all books.
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.books.List(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, books)
}

// Get returns a single book by id.
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	book, err := h.books.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, book)
}

// Create adds a new book.
func (h *BookHandler) Create(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.books.Create(c.Request().Context(), domain.Book{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, book)
}

// Update replaces the mutable fields of an existing book.
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.books.Update(c.Request().Context(), domain.Book{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, book)
}

// Delete removes a book. The route is admin-gated.
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.books.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
