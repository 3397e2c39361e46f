package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// MembersHandler handles member registry endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type createMemberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Semester string `json:"semester"`
	Course   string `json:"course"`
}

type affiliationRequest struct {
	Semester string `json:"semester"`
	Course   string `json:"course"`
}

// List handles GET /api/members, including active-loan counts for display.
// With ?q= it performs the ID-or-name lookup.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := store.ListMembersWithActivity(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	jsonResponse(w, http.StatusOK, members)
}

// Create handles POST /api/members.
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := store.CreateMember(r.Context(), h.DB, req.Name, req.Email, req.Semester, req.Course)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, member)
}

// Get handles GET /api/members/{id}, returning the member with their loans
// and current active-loan count.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}

	count, err := store.ActiveLoanCount(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	member.ActiveLoans = count

	loans, err := store.ListLoans(r.Context(), h.DB, id, 0, "")
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"member": member,
		"loans":  loans,
	})
}

// UpdateAffiliation handles PUT /api/members/{id}/affiliation.
func (h *MembersHandler) UpdateAffiliation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req affiliationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateMemberAffiliation(r.Context(), h.DB, id, req.Semester, req.Course); err != nil {
		storeError(w, err)
		return
	}

	member, _ := store.GetMember(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, member)
}
