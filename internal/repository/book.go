package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jmadu/bookshelf/internal/domain"
)

const bookColumns = `id, title, author, year, genre, created_at, updated_at`

// BookRepository handles book data access operations.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// FindByID retrieves a book by its ID.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	var book domain.Book
	err := r.db.GetContext(ctx, &book,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find book by id %d: %w", id, err)
	}
	return &book, nil
}

// List returns all books ordered by id.
func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	books := []domain.Book{}
	err := r.db.SelectContext(ctx, &books,
		`SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Create inserts a new book and returns the stored row.
func (r *BookRepository) Create(ctx context.Context, book domain.Book) (*domain.Book, error) {
	var result domain.Book
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO books (title, author, year, genre)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+bookColumns,
		book.Title, book.Author, book.Year, book.Genre,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &result, nil
}

// Update persists all mutable fields of an existing book.
func (r *BookRepository) Update(ctx context.Context, book domain.Book) (*domain.Book, error) {
	var result domain.Book
	err := r.db.QueryRowxContext(ctx,
		`UPDATE books
		 SET title = $2, author = $3, year = $4, genre = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+bookColumns,
		book.ID, book.Title, book.Author, book.Year, book.Genre,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update book %d: %w", book.ID, err)
	}
	return &result, nil
}

// Delete removes a book by id.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
