package http

import (
	"net/http"

	"gastos/internal/core"
)

type categoryRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Purpose     core.CategoryPurpose `json:"purpose"`
}

func (c categoryRequest) toCategory(id int64) core.Category {
	return core.Category{ID: id, Name: c.Name, Description: c.Description, Purpose: c.Purpose}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.ledger.CreateCategory(r.Context(), req.toCategory(0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	category, err := s.ledger.GetCategory(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	categories, err := s.ledger.SearchCategoriesByName(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCategoriesByPurpose(w http.ResponseWriter, r *http.Request) {
	purpose, err := pathInt(r, "purpose")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	categories, err := s.ledger.CategoriesByPurpose(r.Context(), core.CategoryPurpose(purpose))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	category := req.toCategory(id)
	if err := s.ledger.UpdateCategory(r.Context(), category); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
