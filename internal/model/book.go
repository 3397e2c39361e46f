package model

import "time"

// Book represents a title in the catalog. Copies of the same title are
// fungible: availability is tracked as a counter, not per physical copy.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	Category        string    `json:"category,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CoverMime       string    `json:"cover_mime,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
