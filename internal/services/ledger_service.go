// Package services composes storage, validation rules, and the event queue
// behind the operations the HTTP layer calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// Store is the persistence capability the façade needs, satisfied by
// *storage.SQLiteRepository.
type Store interface {
	CreatePerson(ctx context.Context, p core.Person) (core.Person, error)
	GetPerson(ctx context.Context, id int64) (core.Person, error)
	ListPeople(ctx context.Context) ([]core.Person, error)
	SearchPeopleByName(ctx context.Context, name string) ([]core.Person, error)
	PeopleByAgeRange(ctx context.Context, minAge, maxAge int) ([]core.Person, error)
	UpdatePerson(ctx context.Context, p core.Person) error
	DeletePerson(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	SearchCategoriesByName(ctx context.Context, name string) ([]core.Category, error)
	CategoriesByPurpose(ctx context.Context, purpose core.CategoryPurpose) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	TransactionsByPerson(ctx context.Context, personID int64) ([]core.Transaction, error)
	TransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error)
	TransactionsByType(ctx context.Context, txType core.TransactionType) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error)
	TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error)
	OverallTotals(ctx context.Context) (core.OverallTotals, error)
}

// EventPublisher pushes export events to the sync queue, satisfied by
// *amqp.Client.
type EventPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, id int64) error
}

var _ Store = (*storage.SQLiteRepository)(nil)

// LedgerService resolves entity references, runs the transaction rules, and
// persists. Publishing to the queue is best effort: the write already
// succeeded locally, so publish failures are logged and never returned.
type LedgerService struct {
	store  Store
	events EventPublisher
}

func NewLedgerService(store Store, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// People

func (s *LedgerService) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	return s.store.CreatePerson(ctx, p)
}

func (s *LedgerService) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	return s.store.GetPerson(ctx, id)
}

func (s *LedgerService) ListPeople(ctx context.Context) ([]core.Person, error) {
	return s.store.ListPeople(ctx)
}

func (s *LedgerService) SearchPeopleByName(ctx context.Context, name string) ([]core.Person, error) {
	return s.store.SearchPeopleByName(ctx, name)
}

func (s *LedgerService) PeopleByAgeRange(ctx context.Context, minAge, maxAge int) ([]core.Person, error) {
	if minAge < 0 || maxAge < 0 || minAge > maxAge {
		return nil, core.ErrInvalidAgeRange
	}
	return s.store.PeopleByAgeRange(ctx, minAge, maxAge)
}

func (s *LedgerService) UpdatePerson(ctx context.Context, p core.Person) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.UpdatePerson(ctx, p)
}

// DeletePerson removes the person and, atomically, every transaction that
// references them.
func (s *LedgerService) DeletePerson(ctx context.Context, id int64) error {
	return s.store.DeletePerson(ctx, id)
}

// Categories

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, c)
}

func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) SearchCategoriesByName(ctx context.Context, name string) ([]core.Category, error) {
	return s.store.SearchCategoriesByName(ctx, name)
}

func (s *LedgerService) CategoriesByPurpose(ctx context.Context, purpose core.CategoryPurpose) ([]core.Category, error) {
	if !purpose.IsValid() {
		return nil, core.ErrInvalidPurpose
	}
	return s.store.CategoriesByPurpose(ctx, purpose)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.store.UpdateCategory(ctx, c)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// Transactions

// CreateTransaction resolves the person, then the category, then runs the
// business rules before anything is persisted.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := s.validateWrite(ctx, &t); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publishSync(ctx, created.ID, 1)
	return created, nil
}

// UpdateTransaction replaces the record and re-runs the full rule set
// against the new values: an update can change person, category, or type.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if _, err := s.store.GetTransaction(ctx, t.ID); err != nil {
		return err
	}
	if err := s.validateWrite(ctx, &t); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	s.publishSync(ctx, t.ID, 2)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishTransactionDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction delete", "id", id, "error", err)
		}
	}
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) TransactionsByPerson(ctx context.Context, personID int64) ([]core.Transaction, error) {
	return s.store.TransactionsByPerson(ctx, personID)
}

func (s *LedgerService) TransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return s.store.TransactionsByCategory(ctx, categoryID)
}

func (s *LedgerService) TransactionsByType(ctx context.Context, txType core.TransactionType) ([]core.Transaction, error) {
	if !txType.IsValid() {
		return nil, core.ErrInvalidType
	}
	return s.store.TransactionsByType(ctx, txType)
}

// Totals

func (s *LedgerService) TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error) {
	return s.store.TotalsByPerson(ctx)
}

func (s *LedgerService) TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error) {
	return s.store.TotalsByCategory(ctx)
}

func (s *LedgerService) OverallTotals(ctx context.Context) (core.OverallTotals, error) {
	return s.store.OverallTotals(ctx)
}

// validateWrite runs field validation, resolves both references, and applies
// the business rules, in the order the API contract pins down: person
// lookup, category lookup, then rules.
func (s *LedgerService) validateWrite(ctx context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	person, err := s.store.GetPerson(ctx, t.PersonID)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrPersonNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve person %d: %w", t.PersonID, err)
	}

	category, err := s.store.GetCategory(ctx, t.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve category %d: %w", t.CategoryID, err)
	}

	return core.ValidateTransactionWrite(*t, person, category)
}

func (s *LedgerService) publishSync(ctx context.Context, id, version int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction sync", "id", id, "error", err)
	}
}
