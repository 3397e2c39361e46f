package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps the store's error taxonomy onto HTTP statuses. Validation,
// not-found and policy refusals carry their message to the client; anything
// else is a storage failure, logged and reported generically.
func storeError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	var nf *store.NotFoundError
	var pe *store.PolicyError
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		jsonError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &pe):
		jsonError(w, http.StatusConflict, pe.Error())
	default:
		slog.Error("storage failure", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
