package model

import "time"

// Member represents a registered library member. Semester and course are
// display-only affiliation fields; everything except those is immutable
// after creation.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Semester  string    `json:"semester,omitempty"`
	Course    string    `json:"course,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// ActiveLoans is populated by listing queries, not stored.
	ActiveLoans int `json:"active_loans,omitempty"`
}
