package http

import (
	"fmt"
	"net/http"

	"gastos/internal/core"
)

type personRequest struct {
	Name string `json:"name"`
	Age  *int   `json:"age"`
}

func (p personRequest) toPerson(id int64) (core.Person, error) {
	if p.Age == nil {
		return core.Person{}, fmt.Errorf("%w: age is required", core.ErrValidation)
	}
	return core.Person{ID: id, Name: p.Name, Age: *p.Age}, nil
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	person, err := req.toPerson(0)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.ledger.CreatePerson(r.Context(), person)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	person, err := s.ledger.GetPerson(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.ledger.ListPeople(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if people == nil {
		people = []core.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleSearchPeople(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	people, err := s.ledger.SearchPeopleByName(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if people == nil {
		people = []core.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handlePeopleByAge(w http.ResponseWriter, r *http.Request) {
	minAge, err := pathInt(r, "min")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	maxAge, err := pathInt(r, "max")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	people, err := s.ledger.PeopleByAgeRange(r.Context(), minAge, maxAge)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if people == nil {
		people = []core.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	person, err := req.toPerson(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.ledger.UpdatePerson(r.Context(), person); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.ledger.DeletePerson(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
