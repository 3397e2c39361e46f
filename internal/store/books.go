package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

// searchLimit caps lookup results so rendering stays cheap.
const searchLimit = 10

// CreateBook adds a title to the catalog. All copies start available.
func CreateBook(ctx context.Context, db *sql.DB, title, author, category string, totalCopies int) (*model.Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Msg: "title required"}
	}
	if totalCopies < 1 {
		return nil, &ValidationError{Msg: "total copies must be a positive integer"}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO books (title, author, category, total_copies, available_copies)
		 VALUES (?, ?, ?, ?, ?)`,
		title, author, category, totalCopies, totalCopies,
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book by ID.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	b := &model.Book{}
	var author, category, coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT book_id, title, author, category, total_copies, available_copies, cover_mime, created_at
		 FROM books WHERE book_id = ?`, id,
	).Scan(&b.ID, &b.Title, &author, &category, &b.TotalCopies, &b.AvailableCopies, &coverMime, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	b.Author = author.String
	b.Category = category.String
	b.CoverMime = coverMime.String
	return b, nil
}

// FindBooks resolves a query as an exact ID match when it is a well-formed
// non-negative integer, otherwise as a substring match on title ordered by
// title. An empty result is not an error.
func FindBooks(ctx context.Context, db *sql.DB, query string) ([]model.Book, error) {
	query = strings.TrimSpace(query)

	if id, err := strconv.ParseInt(query, 10, 64); err == nil && id >= 0 {
		b, err := GetBook(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, nil
		}
		return []model.Book{*b}, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT book_id, title, author, category, total_copies, available_copies, cover_mime, created_at
		 FROM books WHERE title LIKE ? ORDER BY title LIMIT ?`,
		"%"+query+"%", searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// ListBooks returns the whole catalog ordered by title.
func ListBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT book_id, title, author, category, total_copies, available_copies, cover_mime, created_at
		 FROM books ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		var author, category, coverMime sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &author, &category, &b.TotalCopies, &b.AvailableCopies, &coverMime, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.Author = author.String
		b.Category = category.String
		b.CoverMime = coverMime.String
		books = append(books, b)
	}
	return books, rows.Err()
}

// SetBookCover stores a book's cover image.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, cover []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ? WHERE book_id = ?`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Msg: "book not found"}
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE book_id = ?`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}
