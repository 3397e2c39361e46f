package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// Lending policy.
const (
	// MaxActiveLoans is the most loans a member may have open at once.
	MaxActiveLoans = 3

	// DefaultLoanDays is the loan period used when the caller does not
	// specify one.
	DefaultLoanDays = 14
)

// ActiveLoanCount returns how many loans the member currently has open.
// Exposed for pre-flight display as well as consulted by IssueLoan.
func ActiveLoanCount(ctx context.Context, db *sql.DB, memberID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE member_id = ? AND status = ?`,
		memberID, model.LoanStatusIssued,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active loans: %w", err)
	}
	return count, nil
}

// IsAvailable reports whether at least one copy of the book can be issued.
// A missing book is simply not available.
func IsAvailable(ctx context.Context, db *sql.DB, bookID int64) (bool, error) {
	var available int
	err := db.QueryRowContext(ctx,
		`SELECT available_copies FROM books WHERE book_id = ?`, bookID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking availability: %w", err)
	}
	return available > 0, nil
}
