package model

import "time"

// DateLayout is the format loan dates are exchanged and persisted in.
const DateLayout = "2006-01-02"

// Loan records one copy of a book lent to a member for a bounded period.
type Loan struct {
	ID         int64  `json:"id"`
	BookID     int64  `json:"book_id"`
	MemberID   int64  `json:"member_id"`
	IssueDate  string `json:"issue_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date,omitempty"`
	Status     string `json:"status"`

	// Joined fields (not always populated).
	BookTitle  string `json:"book_title,omitempty"`
	MemberName string `json:"member_name,omitempty"`
}

// Loan statuses. Overdue is a read-time classification: no transaction ever
// stores it, a loan past its due date simply reads back as overdue.
const (
	LoanStatusIssued   = "issued"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// EffectiveStatus returns the loan's status as of the given day, classifying
// issued loans past their due date as overdue. The stored status is never
// rewritten.
func (l *Loan) EffectiveStatus(today time.Time) string {
	if l.Status != LoanStatusIssued {
		return l.Status
	}
	due, err := time.Parse(DateLayout, l.DueDate)
	if err != nil {
		return l.Status
	}
	day, _ := time.Parse(DateLayout, today.Format(DateLayout))
	if due.Before(day) {
		return LoanStatusOverdue
	}
	return LoanStatusIssued
}
