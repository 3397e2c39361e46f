package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	booksHandler := &BooksHandler{DB: db}
	membersHandler := &MembersHandler{DB: db}
	loansHandler := &LoansHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Staff accounts (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))

	// Catalog.
	mux.Handle("GET /api/books", authMW(http.HandlerFunc(booksHandler.List)))
	mux.Handle("POST /api/books", authMW(http.HandlerFunc(booksHandler.Create)))
	mux.Handle("GET /api/books/{id}", authMW(http.HandlerFunc(booksHandler.Get)))
	mux.Handle("PUT /api/books/{id}/cover", authMW(http.HandlerFunc(booksHandler.UploadCover)))
	mux.Handle("GET /api/books/{id}/cover", authMW(http.HandlerFunc(booksHandler.GetCover)))

	// Members.
	mux.Handle("GET /api/members", authMW(http.HandlerFunc(membersHandler.List)))
	mux.Handle("POST /api/members", authMW(http.HandlerFunc(membersHandler.Create)))
	mux.Handle("GET /api/members/{id}", authMW(http.HandlerFunc(membersHandler.Get)))
	mux.Handle("PUT /api/members/{id}/affiliation", authMW(http.HandlerFunc(membersHandler.UpdateAffiliation)))

	// Lending.
	mux.Handle("POST /api/loans", authMW(http.HandlerFunc(loansHandler.Issue)))
	mux.Handle("POST /api/loans/return", authMW(http.HandlerFunc(loansHandler.Return)))
	mux.Handle("GET /api/loans", authMW(http.HandlerFunc(loansHandler.List)))

	// Dashboard.
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(loansHandler.Stats)))

	return mux
}
