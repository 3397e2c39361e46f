package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// LoansHandler handles the lending endpoints.
type LoansHandler struct {
	DB *sql.DB
}

type issueRequest struct {
	BookID    int64  `json:"book_id"`
	MemberID  int64  `json:"member_id"`
	IssueDate string `json:"issue_date"`
	LoanDays  int    `json:"loan_days"`
}

type returnRequest struct {
	BookID     int64  `json:"book_id"`
	MemberID   int64  `json:"member_id"`
	ReturnDate string `json:"return_date"`
}

// Issue handles POST /api/loans. Issue date defaults to today and the loan
// period to the policy default when omitted.
func (h *LoansHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.IssueDate == "" {
		req.IssueDate = time.Now().Format(model.DateLayout)
	}
	if req.LoanDays == 0 {
		req.LoanDays = store.DefaultLoanDays
	}

	loan, err := store.IssueLoan(r.Context(), h.DB, req.BookID, req.MemberID, req.IssueDate, req.LoanDays)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book issued", "loan", loan.ID, "book", loan.BookID, "member", loan.MemberID, "due", loan.DueDate)
	jsonResponse(w, http.StatusCreated, loan)
}

// Return handles POST /api/loans/return. Return date defaults to today.
func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ReturnDate == "" {
		req.ReturnDate = time.Now().Format(model.DateLayout)
	}

	loan, err := store.ReturnLoan(r.Context(), h.DB, req.BookID, req.MemberID, req.ReturnDate)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book returned", "loan", loan.ID, "book", loan.BookID, "member", loan.MemberID)
	jsonResponse(w, http.StatusOK, loan)
}

// List handles GET /api/loans with optional member_id, book_id and status
// filters. status=overdue selects issued loans past their due date.
func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	var memberID, bookID int64
	if v := r.URL.Query().Get("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid member_id")
			return
		}
		memberID = id
	}
	if v := r.URL.Query().Get("book_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid book_id")
			return
		}
		bookID = id
	}

	loans, err := store.ListLoans(r.Context(), h.DB, memberID, bookID, r.URL.Query().Get("status"))
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// Stats handles GET /api/stats, the dashboard counters.
func (h *LoansHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
