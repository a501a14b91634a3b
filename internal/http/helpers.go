package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"gastos/internal/core"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Field unmarshalers report their own validation errors; keep those
		// so the client sees which field was rejected.
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: malformed request body", core.ErrValidation)
	}
	return nil
}

// statusForError maps the error kinds to HTTP statuses. Missing entities are
// 404, a category still referenced by transactions is a 409 conflict, and
// everything the caller can fix in the payload is a 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, core.ErrReferenceNotFound),
		errors.Is(err, core.ErrBusinessRule),
		errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", core.ErrValidation, name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", core.ErrValidation, name)
	}
	return n, nil
}
