package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// Stats are the dashboard counters: catalog size, membership and the state
// of the ledger as of now.
type Stats struct {
	Books        int `json:"books"`
	Members      int `json:"members"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}

// ListLoans returns loans, newest first, optionally filtered by member, book
// and status. Filtering by "overdue" selects issued loans past their due
// date; the stored rows are never rewritten.
func ListLoans(ctx context.Context, db *sql.DB, memberID, bookID int64, status string) ([]model.Loan, error) {
	query := `SELECT l.loan_id, l.book_id, l.member_id, l.issue_date, l.due_date, l.return_date, l.status,
	                 b.title AS book_title, m.name AS member_name
	          FROM loans l
	          JOIN books b ON b.book_id = l.book_id
	          JOIN members m ON m.member_id = l.member_id
	          WHERE 1=1`
	var args []any

	if memberID > 0 {
		query += ` AND l.member_id = ?`
		args = append(args, memberID)
	}
	if bookID > 0 {
		query += ` AND l.book_id = ?`
		args = append(args, bookID)
	}
	today := time.Now().Format(model.DateLayout)
	switch status {
	case "":
	case model.LoanStatusOverdue:
		query += ` AND l.status = ? AND l.due_date < ?`
		args = append(args, model.LoanStatusIssued, today)
	case model.LoanStatusIssued:
		query += ` AND l.status = ?`
		args = append(args, model.LoanStatusIssued)
	default:
		query += ` AND l.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY l.loan_id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	defer rows.Close()

	loans, err := scanLoans(rows)
	if err != nil {
		return nil, err
	}

	// Report derived status so callers see "overdue" without it being stored.
	now := time.Now()
	for i := range loans {
		loans[i].Status = loans[i].EffectiveStatus(now)
	}
	return loans, nil
}

// ListMembersWithActivity returns members matching the query (all members if
// empty) with their current active-loan counts for display.
func ListMembersWithActivity(ctx context.Context, db *sql.DB, query string) ([]model.Member, error) {
	var members []model.Member
	var err error

	if query != "" {
		members, err = FindMembers(ctx, db, query)
	} else {
		var rows *sql.Rows
		rows, err = db.QueryContext(ctx,
			`SELECT member_id, name, email, semester, course, created_at
			 FROM members ORDER BY name`,
		)
		if err != nil {
			return nil, fmt.Errorf("listing members: %w", err)
		}
		defer rows.Close()
		members, err = scanMembers(rows)
	}
	if err != nil {
		return nil, err
	}

	for i := range members {
		count, err := ActiveLoanCount(ctx, db, members[i].ID)
		if err != nil {
			return nil, err
		}
		members[i].ActiveLoans = count
	}
	return members, nil
}

// GetStats returns the dashboard counters.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	s := &Stats{}

	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&s.Books)
	if err != nil {
		return nil, fmt.Errorf("counting books: %w", err)
	}
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&s.Members)
	if err != nil {
		return nil, fmt.Errorf("counting members: %w", err)
	}
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE status = ?`, model.LoanStatusIssued,
	).Scan(&s.ActiveLoans)
	if err != nil {
		return nil, fmt.Errorf("counting active loans: %w", err)
	}

	today := time.Now().Format(model.DateLayout)
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE status = ? AND due_date < ?`,
		model.LoanStatusIssued, today,
	).Scan(&s.OverdueLoans)
	if err != nil {
		return nil, fmt.Errorf("counting overdue loans: %w", err)
	}

	return s, nil
}

func scanLoans(rows *sql.Rows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		var returnDate sql.NullString
		if err := rows.Scan(&l.ID, &l.BookID, &l.MemberID, &l.IssueDate, &l.DueDate, &returnDate, &l.Status,
			&l.BookTitle, &l.MemberName); err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		l.ReturnDate = returnDate.String
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
