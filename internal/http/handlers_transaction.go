package http

import (
	"net/http"

	"gastos/internal/core"
)

type transactionRequest struct {
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	CategoryID  int64                `json:"categoryId"`
	PersonID    int64                `json:"personId"`
}

func (t transactionRequest) toTransaction(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
		PersonID:    t.PersonID,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), req.toTransaction(0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	tx, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsByPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	txs, err := s.ledger.TransactionsByPerson(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	txs, err := s.ledger.TransactionsByCategory(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsByType(w http.ResponseWriter, r *http.Request) {
	txType, err := pathInt(r, "type")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	txs, err := s.ledger.TransactionsByType(r.Context(), core.TransactionType(txType))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	tx := req.toTransaction(id)
	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Totals reports. Each listing carries the overall net total alongside the
// per-key rows so clients render the report from a single response.

type personTotalsResponse struct {
	People       []core.PersonTotals `json:"people"`
	TotalGeneral core.Money          `json:"totalGeneral"`
}

type categoryTotalsResponse struct {
	Categories   []core.CategoryTotals `json:"categories"`
	TotalGeneral core.Money            `json:"totalGeneral"`
}

func (s *Server) handleTotalsByPerson(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ledger.TotalsByPerson(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	overall, err := s.ledger.OverallTotals(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []core.PersonTotals{}
	}
	writeJSON(w, http.StatusOK, personTotalsResponse{People: rows, TotalGeneral: overall.NetBalance})
}

func (s *Server) handleTotalsByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ledger.TotalsByCategory(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	overall, err := s.ledger.OverallTotals(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []core.CategoryTotals{}
	}
	writeJSON(w, http.StatusOK, categoryTotalsResponse{Categories: rows, TotalGeneral: overall.NetBalance})
}

func (s *Server) handleTotalGeneral(w http.ResponseWriter, r *http.Request) {
	overall, err := s.ledger.OverallTotals(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overall)
}
