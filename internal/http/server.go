// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/services"
)

// HealthStore is the slice of the store the health endpoint probes.
type HealthStore interface {
	Ping(ctx context.Context) error
	CountPeople(ctx context.Context) (int64, error)
}

type Server struct {
	http.Server
	ledger *services.LedgerService
	health HealthStore
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, health HealthStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger: ledger,
		health: health,
	}

	mux.HandleFunc("GET /healthz", handleLiveness)
	mux.HandleFunc("GET /api/health", s.withSecurityHeaders(s.handleHealth))

	mux.HandleFunc("GET /api/people", s.withSecurityHeaders(s.handleListPeople))
	mux.HandleFunc("POST /api/people", s.withSecurityHeaders(s.handleCreatePerson))
	mux.HandleFunc("GET /api/people/search", s.withSecurityHeaders(s.handleSearchPeople))
	mux.HandleFunc("GET /api/people/age/{min}/{max}", s.withSecurityHeaders(s.handlePeopleByAge))
	mux.HandleFunc("GET /api/people/{id}", s.withSecurityHeaders(s.handleGetPerson))
	mux.HandleFunc("PUT /api/people/{id}", s.withSecurityHeaders(s.handleUpdatePerson))
	mux.HandleFunc("DELETE /api/people/{id}", s.withSecurityHeaders(s.handleDeletePerson))

	mux.HandleFunc("GET /api/categories", s.withSecurityHeaders(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withSecurityHeaders(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/search", s.withSecurityHeaders(s.handleSearchCategories))
	mux.HandleFunc("GET /api/categories/purpose/{purpose}", s.withSecurityHeaders(s.handleCategoriesByPurpose))
	mux.HandleFunc("GET /api/categories/{id}", s.withSecurityHeaders(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withSecurityHeaders(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withSecurityHeaders(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/person/{id}", s.withSecurityHeaders(s.handleTransactionsByPerson))
	mux.HandleFunc("GET /api/transactions/category/{id}", s.withSecurityHeaders(s.handleTransactionsByCategory))
	mux.HandleFunc("GET /api/transactions/type/{type}", s.withSecurityHeaders(s.handleTransactionsByType))
	mux.HandleFunc("GET /api/transactions/totals/people", s.withSecurityHeaders(s.handleTotalsByPerson))
	mux.HandleFunc("GET /api/transactions/totals/categories", s.withSecurityHeaders(s.handleTotalsByCategory))
	mux.HandleFunc("GET /api/transactions/total-general", s.withSecurityHeaders(s.handleTotalGeneral))
	mux.HandleFunc("GET /api/transactions/{id}", s.withSecurityHeaders(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withSecurityHeaders(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSecurityHeaders(s.handleDeleteTransaction))

	return s
}

// withSecurityHeaders adds security headers, a request ID, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type healthResponse struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	Connected   bool      `json:"connected"`
	PeopleCount int64     `json:"peopleCount"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Database:  "sqlite",
		Timestamp: time.Now().UTC(),
	}

	if err := s.health.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Health check failed", "error", err)
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Connected = true

	count, err := s.health.CountPeople(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Health check failed", "error", err)
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.PeopleCount = count

	writeJSON(w, http.StatusOK, resp)
}
