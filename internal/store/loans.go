package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// busyRetries bounds how often a loan transaction is retried when SQLite
// reports lock contention before the failure is surfaced.
const busyRetries = 3

// IssueLoan lends one copy of a book to a member. The loan insert and the
// availability decrement happen in a single transaction, and the decrement
// is guarded so two concurrent issues of the last copy cannot both succeed.
func IssueLoan(ctx context.Context, db *sql.DB, bookID, memberID int64, issueDate string, loanDays int) (*model.Loan, error) {
	issued, err := time.Parse(model.DateLayout, issueDate)
	if err != nil {
		return nil, &ValidationError{Msg: "issue date must be YYYY-MM-DD"}
	}
	if loanDays < 1 {
		return nil, &ValidationError{Msg: "loan days must be a positive integer"}
	}
	dueDate := issued.AddDate(0, 0, loanDays).Format(model.DateLayout)

	var loanID int64
	err = withBusyRetry(func() error {
		var txErr error
		loanID, txErr = issueLoanTx(ctx, db, bookID, memberID, issueDate, dueDate)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return GetLoan(ctx, db, loanID)
}

func issueLoanTx(ctx context.Context, db *sql.DB, bookID, memberID int64, issueDate, dueDate string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM members WHERE member_id = ?`, memberID).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Msg: "member not found"}
	}
	if err != nil {
		return 0, fmt.Errorf("checking member: %w", err)
	}

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE member_id = ? AND status = ?`,
		memberID, model.LoanStatusIssued,
	).Scan(&active)
	if err != nil {
		return 0, fmt.Errorf("counting active loans: %w", err)
	}
	if active >= MaxActiveLoans {
		return 0, &PolicyError{Msg: fmt.Sprintf("loan limit reached (%d active)", active)}
	}

	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT available_copies FROM books WHERE book_id = ?`, bookID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Msg: "book not found"}
	}
	if err != nil {
		return 0, fmt.Errorf("checking availability: %w", err)
	}
	if available <= 0 {
		return 0, &PolicyError{Msg: "no copies available"}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO loans (book_id, member_id, issue_date, due_date, status)
		 VALUES (?, ?, ?, ?, ?)`,
		bookID, memberID, issueDate, dueDate, model.LoanStatusIssued,
	)
	if err != nil {
		return 0, fmt.Errorf("recording loan: %w", err)
	}

	// Guarded decrement: the WHERE clause re-verifies availability so the
	// check above cannot be stale by commit time.
	dec, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies - 1
		 WHERE book_id = ? AND available_copies > 0`, bookID,
	)
	if err != nil {
		return 0, fmt.Errorf("decrementing availability: %w", err)
	}
	if n, _ := dec.RowsAffected(); n == 0 {
		return 0, &PolicyError{Msg: "no copies available"}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing loan: %w", err)
	}

	loanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting loan id: %w", err)
	}
	return loanID, nil
}

// ReturnLoan closes the active loan matching (book, member) and restores one
// copy to availability. If several active loans match (which the issue
// invariant should prevent), the earliest-issued one is returned first.
func ReturnLoan(ctx context.Context, db *sql.DB, bookID, memberID int64, returnDate string) (*model.Loan, error) {
	if _, err := time.Parse(model.DateLayout, returnDate); err != nil {
		return nil, &ValidationError{Msg: "return date must be YYYY-MM-DD"}
	}

	var loanID int64
	err := withBusyRetry(func() error {
		var txErr error
		loanID, txErr = returnLoanTx(ctx, db, bookID, memberID, returnDate)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return GetLoan(ctx, db, loanID)
}

func returnLoanTx(ctx context.Context, db *sql.DB, bookID, memberID int64, returnDate string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var loanID int64
	err = tx.QueryRowContext(ctx,
		`SELECT loan_id FROM loans
		 WHERE book_id = ? AND member_id = ? AND status = ?
		 ORDER BY issue_date, loan_id LIMIT 1`,
		bookID, memberID, model.LoanStatusIssued,
	).Scan(&loanID)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Msg: "no active loan for this book and member"}
	}
	if err != nil {
		return 0, fmt.Errorf("locating active loan: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE loans SET status = ?, return_date = ? WHERE loan_id = ?`,
		model.LoanStatusReturned, returnDate, loanID,
	)
	if err != nil {
		return 0, fmt.Errorf("closing loan: %w", err)
	}

	// The guard keeps available_copies from ever exceeding total_copies.
	// A failed guard means the counters were already inconsistent with the
	// loan rows, which is surfaced rather than silently clamped.
	inc, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies + 1
		 WHERE book_id = ? AND available_copies < total_copies`, bookID,
	)
	if err != nil {
		return 0, fmt.Errorf("incrementing availability: %w", err)
	}
	if n, _ := inc.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("availability for book %d already at total, loan rows inconsistent", bookID)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing return: %w", err)
	}
	return loanID, nil
}

// GetLoan returns a loan by ID with book and member names joined.
func GetLoan(ctx context.Context, db *sql.DB, id int64) (*model.Loan, error) {
	l := &model.Loan{}
	var returnDate sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT l.loan_id, l.book_id, l.member_id, l.issue_date, l.due_date, l.return_date, l.status,
		        b.title AS book_title, m.name AS member_name
		 FROM loans l
		 JOIN books b ON b.book_id = l.book_id
		 JOIN members m ON m.member_id = l.member_id
		 WHERE l.loan_id = ?`, id,
	).Scan(&l.ID, &l.BookID, &l.MemberID, &l.IssueDate, &l.DueDate, &returnDate, &l.Status,
		&l.BookTitle, &l.MemberName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}
	l.ReturnDate = returnDate.String
	return l, nil
}

// withBusyRetry re-runs fn a bounded number of times while it fails with
// SQLite lock contention. Domain errors pass through immediately.
func withBusyRetry(fn func() error) error {
	var err error
	for range busyRetries {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
	}
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
