package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestListLoansFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book1, member1 := seedLending(t, database, 2)
	book2, _ := CreateBook(ctx, database, "Discrete Math", "R. Graham", "Math", 1)
	member2, _ := CreateMember(ctx, database, "Vikram S.", "", "", "")

	IssueLoan(ctx, database, book1.ID, member1.ID, "2024-01-01", 14)
	IssueLoan(ctx, database, book2.ID, member2.ID, "2024-01-02", 14)
	ReturnLoan(ctx, database, book2.ID, member2.ID, "2024-01-05")

	all, err := ListLoans(ctx, database, 0, 0, "")
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 loans, got %d", len(all))
	}

	byMember, _ := ListLoans(ctx, database, member1.ID, 0, "")
	if len(byMember) != 1 || byMember[0].MemberID != member1.ID {
		t.Errorf("expected 1 loan for member1, got %v", byMember)
	}

	byBook, _ := ListLoans(ctx, database, 0, book2.ID, "")
	if len(byBook) != 1 || byBook[0].BookID != book2.ID {
		t.Errorf("expected 1 loan for book2, got %v", byBook)
	}

	returned, _ := ListLoans(ctx, database, 0, 0, model.LoanStatusReturned)
	if len(returned) != 1 || returned[0].Status != model.LoanStatusReturned {
		t.Errorf("expected 1 returned loan, got %v", returned)
	}
}

func TestListLoansOverdueClassification(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	book, member := seedLending(t, database, 2)
	other, _ := CreateMember(ctx, database, "On Time", "", "", "")

	// Issued long ago: due date is in the past.
	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-01", 14)
	// Issued today: due date is in the future.
	today := time.Now().Format(model.DateLayout)
	IssueLoan(ctx, database, book.ID, other.ID, today, 14)

	overdue, err := ListLoans(ctx, database, 0, 0, model.LoanStatusOverdue)
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("expected 1 overdue loan, got %d", len(overdue))
	}
	if overdue[0].MemberID != member.ID {
		t.Errorf("expected the old loan to be overdue, got member %d", overdue[0].MemberID)
	}
	if overdue[0].Status != model.LoanStatusOverdue {
		t.Errorf("expected derived status overdue, got %q", overdue[0].Status)
	}

	// The stored status is still 'issued': overdue is never written.
	var stored string
	err = database.QueryRowContext(ctx,
		`SELECT status FROM loans WHERE loan_id = ?`, overdue[0].ID,
	).Scan(&stored)
	if err != nil {
		t.Fatalf("reading stored status: %v", err)
	}
	if stored != model.LoanStatusIssued {
		t.Errorf("expected stored status issued, got %q", stored)
	}
}

func TestListMembersWithActivity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	book, member := seedLending(t, database, 2)
	CreateMember(ctx, database, "Idle Member", "", "", "")

	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-01", 14)

	members, err := ListMembersWithActivity(ctx, database, "")
	if err != nil {
		t.Fatalf("ListMembersWithActivity: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, m := range members {
		want := 0
		if m.ID == member.ID {
			want = 1
		}
		if m.ActiveLoans != want {
			t.Errorf("member %d: expected %d active loans, got %d", m.ID, want, m.ActiveLoans)
		}
	}

	filtered, _ := ListMembersWithActivity(ctx, database, "Idle")
	if len(filtered) != 1 || filtered[0].Name != "Idle Member" {
		t.Errorf("expected filtered listing, got %v", filtered)
	}
}

func TestGetStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	book, member := seedLending(t, database, 2)
	CreateBook(ctx, database, "Second Title", "", "", 1)

	IssueLoan(ctx, database, book.ID, member.ID, "2024-01-01", 14)

	stats, err := GetStats(ctx, database)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Books != 2 {
		t.Errorf("expected 2 books, got %d", stats.Books)
	}
	if stats.Members != 1 {
		t.Errorf("expected 1 member, got %d", stats.Members)
	}
	if stats.ActiveLoans != 1 {
		t.Errorf("expected 1 active loan, got %d", stats.ActiveLoans)
	}
	if stats.OverdueLoans != 1 {
		t.Errorf("expected 1 overdue loan, got %d", stats.OverdueLoans)
	}
}
