package store

import (
	"context"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
)

func TestCreateAndGetBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "Quantum Physics 101", "A. Einstein", "Science", 3)
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if book.Title != "Quantum Physics 101" {
		t.Errorf("expected title 'Quantum Physics 101', got %q", book.Title)
	}
	if book.TotalCopies != 3 || book.AvailableCopies != 3 {
		t.Errorf("expected 3/3 copies, got %d/%d", book.AvailableCopies, book.TotalCopies)
	}
}

func TestCreateBookValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "", "Author", "", 1); !IsValidation(err) {
		t.Errorf("expected ValidationError for empty title, got %v", err)
	}
	if _, err := CreateBook(ctx, database, "  ", "Author", "", 1); !IsValidation(err) {
		t.Errorf("expected ValidationError for blank title, got %v", err)
	}
	if _, err := CreateBook(ctx, database, "Title", "", "", 0); !IsValidation(err) {
		t.Errorf("expected ValidationError for zero copies, got %v", err)
	}
	if _, err := CreateBook(ctx, database, "Title", "", "", -2); !IsValidation(err) {
		t.Errorf("expected ValidationError for negative copies, got %v", err)
	}
}

func TestFindBooksByID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "Discrete Math", "R. Graham", "Math", 2)

	results, err := FindBooks(ctx, database, "1")
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(results) != 1 || results[0].ID != book.ID {
		t.Errorf("expected exact ID match, got %v", results)
	}
}

func TestFindBooksMissingIDIsEmpty(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	results, err := FindBooks(ctx, database, "123")
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result for unknown ID, got %d", len(results))
	}
}

func TestFindBooksBySubstring(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateBook(ctx, database, "World History", "J. Roberts", "History", 1)
	CreateBook(ctx, database, "Modern Web Dev", "S. Lee", "Technology", 4)
	CreateBook(ctx, database, "History of Art", "", "", 1)

	results, err := FindBooks(ctx, database, "History")
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	// Ordered by title.
	if results[0].Title != "History of Art" || results[1].Title != "World History" {
		t.Errorf("expected lexicographic order, got %q then %q", results[0].Title, results[1].Title)
	}
}

func TestFindBooksCapped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		CreateBook(ctx, database, "Mystery Tales", "N. Knox", "Fiction", 1)
	}

	results, err := FindBooks(ctx, database, "Mystery")
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(results) != searchLimit {
		t.Errorf("expected results capped at %d, got %d", searchLimit, len(results))
	}
}

func TestBookCover(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "Cover Me", "", "", 1)

	if err := SetBookCover(ctx, database, book.ID, []byte("fake image"), "image/jpeg"); err != nil {
		t.Fatalf("SetBookCover: %v", err)
	}

	data, mime, err := GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBookCover: %v", err)
	}
	if string(data) != "fake image" || mime != "image/jpeg" {
		t.Errorf("unexpected cover data %q mime %q", data, mime)
	}

	if err := SetBookCover(ctx, database, 9999, []byte("x"), "image/jpeg"); !IsNotFound(err) {
		t.Errorf("expected NotFoundError for unknown book, got %v", err)
	}
}
