package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

// Member IDs are drawn from a fixed range so they fit on a library card.
const (
	memberIDMin = 1000
	memberIDMax = 9999

	// memberIDAttempts bounds the collision retry loop. Hitting it means
	// the ID space is effectively exhausted.
	memberIDAttempts = 100
)

// CreateMember registers a member with a randomly assigned, collision-checked
// ID. Semester and course are optional display fields.
func CreateMember(ctx context.Context, db *sql.DB, name, email, semester, course string) (*model.Member, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Msg: "name required"}
	}

	for range memberIDAttempts {
		id := int64(memberIDMin + rand.IntN(memberIDMax-memberIDMin+1))

		// INSERT OR IGNORE makes the collision check and the insert one
		// statement, so concurrent registrations cannot claim the same ID.
		result, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO members (member_id, name, email, semester, course)
			 VALUES (?, ?, ?, ?, ?)`,
			id, name, email, semester, course,
		)
		if err != nil {
			return nil, fmt.Errorf("creating member: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 1 {
			return GetMember(ctx, db, id)
		}
	}

	return nil, fmt.Errorf("creating member: no free ID after %d attempts", memberIDAttempts)
}

// GetMember returns a member by ID.
func GetMember(ctx context.Context, db *sql.DB, id int64) (*model.Member, error) {
	m := &model.Member{}
	var email, semester, course sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT member_id, name, email, semester, course, created_at
		 FROM members WHERE member_id = ?`, id,
	).Scan(&m.ID, &m.Name, &email, &semester, &course, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	m.Email = email.String
	m.Semester = semester.String
	m.Course = course.String
	return m, nil
}

// FindMembers resolves a query as an exact ID match when it is a well-formed
// non-negative integer, otherwise as a substring match on name ordered by
// name. An empty result is not an error.
func FindMembers(ctx context.Context, db *sql.DB, query string) ([]model.Member, error) {
	query = strings.TrimSpace(query)

	if id, err := strconv.ParseInt(query, 10, 64); err == nil && id >= 0 {
		m, err := GetMember(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, nil
		}
		return []model.Member{*m}, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT member_id, name, email, semester, course, created_at
		 FROM members WHERE name LIKE ? ORDER BY name LIMIT ?`,
		"%"+query+"%", searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding members: %w", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

// UpdateMemberAffiliation updates a member's display-only affiliation fields.
// Everything else about a member is immutable after creation.
func UpdateMemberAffiliation(ctx context.Context, db *sql.DB, id int64, semester, course string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE members SET semester = ?, course = ? WHERE member_id = ?`,
		semester, course, id,
	)
	if err != nil {
		return fmt.Errorf("updating member affiliation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Msg: "member not found"}
	}
	return nil
}

func scanMembers(rows *sql.Rows) ([]model.Member, error) {
	var members []model.Member
	for rows.Next() {
		var m model.Member
		var email, semester, course sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &email, &semester, &course, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.Email = email.String
		m.Semester = semester.String
		m.Course = course.String
		members = append(members, m)
	}
	return members, rows.Err()
}
