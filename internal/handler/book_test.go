package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadu/bookshelf/internal/domain"
	"github.com/jmadu/bookshelf/internal/token"
)

type memBooks struct {
	nextID int64
	byID   map[int64]*domain.Book
}

var _ BookStore = (*memBooks)(nil)

func (m *memBooks) List(_ context.Context) ([]domain.Book, error) {
	out := make([]domain.Book, 0, len(m.byID))
	for _, b := range m.byID {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memBooks) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memBooks) Create(_ context.Context, book domain.Book) (*domain.Book, error) {
	m.nextID++
	book.ID = m.nextID
	c := book
	m.byID[book.ID] = &c
	out := book
	return &out, nil
}

func (m *memBooks) Update(_ context.Context, book domain.Book) (*domain.Book, error) {
	if _, ok := m.byID[book.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	c := book
	m.byID[book.ID] = &c
	out := book
	return &out, nil
}

func (m *memBooks) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newBookTestServer(t *testing.T) (*echo.Echo, *token.Codec) {
	t.Helper()

	codec := token.New([]byte("test-secret"), time.Hour)
	h := NewBookHandler(&memBooks{byID: map[int64]*domain.Book{}})

	e := newTestEcho()
	books := e.Group("/api/books", Authenticate(codecVerifier{codec}))
	books.GET("", h.List)
	books.GET("/:id", h.Get)
	books.POST("", h.Create)
	books.PUT("/:id", h.Update)
	books.DELETE("/:id", h.Delete, RequireRole(domain.RoleAdmin))

	return e, codec
}

func bookRequestWithToken(method, path, body, bearer string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	return req
}

func TestBookCRUD(t *testing.T) {
	t.Parallel()

	e, codec := newBookTestServer(t)
	userToken := issueFor(t, codec, domain.RoleUser)
	adminToken := issueFor(t, codec, domain.RoleAdmin)

	t.Run("unauthenticated access", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create and fetch", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodPost, "/api/books",
			`{"title":"The Go Programming Language","author":"Donovan & Kernighan","year":2015}`, userToken))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodGet, "/api/books/1", "", userToken))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "The Go Programming Language")
	})

	t.Run("missing title rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodPost, "/api/books",
			`{"author":"Nobody"}`, userToken))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodGet, "/api/books/999", "", userToken))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete requires admin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodDelete, "/api/books/1", "", userToken))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, bookRequestWithToken(http.MethodDelete, "/api/books/1", "", adminToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
