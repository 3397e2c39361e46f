package store

import (
	"context"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
)

func TestActiveLoanCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	book, member := seedLending(t, database, 3)

	count, err := ActiveLoanCount(ctx, database, member.ID)
	if err != nil {
		t.Fatalf("ActiveLoanCount: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 active loans, got %d", count)
	}

	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-01", 14)
	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-02", 14)

	count, _ = ActiveLoanCount(ctx, database, member.ID)
	if count != 2 {
		t.Errorf("expected 2 active loans, got %d", count)
	}

	ReturnLoan(ctx, database, book.ID, member.ID, "2024-01-10")

	count, _ = ActiveLoanCount(ctx, database, member.ID)
	if count != 1 {
		t.Errorf("expected 1 active loan after return, got %d", count)
	}
}

func TestIsAvailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	book, member := seedLending(t, database, 1)

	available, err := IsAvailable(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if !available {
		t.Error("expected book to be available")
	}

	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-01", 14)

	available, _ = IsAvailable(ctx, database, book.ID)
	if available {
		t.Error("expected book to be unavailable after last copy issued")
	}

	// Unknown book is not available, not an error.
	available, err = IsAvailable(ctx, database, 9999)
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if available {
		t.Error("expected unknown book to be unavailable")
	}
}
