package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type fakePublisher struct {
	syncs   []int64
	deletes []int64
	fail    bool
}

func (f *fakePublisher) PublishTransactionSync(ctx context.Context, id, version int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(ctx context.Context, id int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func newTestService(t *testing.T) (*LedgerService, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	pub := &fakePublisher{}
	return NewLedgerService(repo, pub), pub
}

func mustPerson(t *testing.T, svc *LedgerService, name string, age int) core.Person {
	t.Helper()
	p, err := svc.CreatePerson(context.Background(), core.Person{Name: name, Age: age})
	if err != nil {
		t.Fatalf("create person %s: %v", name, err)
	}
	return p
}

func mustCategory(t *testing.T, svc *LedgerService, name string, purpose core.CategoryPurpose) core.Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), core.Category{Name: name, Purpose: purpose})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func TestCreateTransactionHappyPath(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	salary := mustCategory(t, svc, "Salary", core.PurposeIncome)

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "pay",
		Amount:      core.Money{Cents: 100000},
		Type:        core.Income,
		CategoryID:  salary.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != created.ID {
		t.Fatalf("expected one sync event for %d, got %v", created.ID, pub.syncs)
	}
}

func TestCreateTransactionMinorIncomeRejected(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	ana := mustPerson(t, svc, "Ana", 17)
	salary := mustCategory(t, svc, "Salary", core.PurposeIncome)

	_, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "allowance",
		Amount:      core.Money{Cents: 5000},
		Type:        core.Income,
		CategoryID:  salary.ID,
		PersonID:    ana.ID,
	})
	if !errors.Is(err, core.ErrMinorIncomeNotAllowed) {
		t.Fatalf("expected minor income rejection, got %v", err)
	}

	txs, err := svc.ListTransactions(ctx)
	if err != nil || len(txs) != 0 {
		t.Fatalf("nothing must be persisted, got %d (err=%v)", len(txs), err)
	}
	if len(pub.syncs) != 0 {
		t.Fatalf("no event must be published, got %v", pub.syncs)
	}
}

func TestCreateTransactionPurposeMismatchRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)

	_, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "refund",
		Amount:      core.Money{Cents: 900},
		Type:        core.Income,
		CategoryID:  food.ID,
		PersonID:    bob.ID,
	})
	if !errors.Is(err, core.ErrCategoryPurposeMismatch) {
		t.Fatalf("expected purpose mismatch, got %v", err)
	}
}

func TestCreateTransactionMissingReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)

	tx := core.Transaction{
		Description: "lunch",
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
		CategoryID:  food.ID,
		PersonID:    999,
	}
	if _, err := svc.CreateTransaction(ctx, tx); !errors.Is(err, core.ErrPersonNotFound) {
		t.Fatalf("expected person not found, got %v", err)
	}

	tx.PersonID = bob.ID
	tx.CategoryID = 999
	if _, err := svc.CreateTransaction(ctx, tx); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}

	// When both references are missing, the person failure is reported.
	tx.PersonID = 999
	if _, err := svc.CreateTransaction(ctx, tx); !errors.Is(err, core.ErrPersonNotFound) {
		t.Fatalf("expected person checked first, got %v", err)
	}
}

func TestUpdateTransactionRevalidatesRules(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	ana := mustPerson(t, svc, "Ana", 17)
	salary := mustCategory(t, svc, "Salary", core.PurposeIncome)

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "pay",
		Amount:      core.Money{Cents: 100000},
		Type:        core.Income,
		CategoryID:  salary.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Moving the income to a minor must be refused.
	moved := created
	moved.PersonID = ana.ID
	if err := svc.UpdateTransaction(ctx, moved); !errors.Is(err, core.ErrMinorIncomeNotAllowed) {
		t.Fatalf("expected minor income rejection on update, got %v", err)
	}

	got, err := svc.GetTransaction(ctx, created.ID)
	if err != nil || got.PersonID != bob.ID {
		t.Fatalf("refused update must not change the row: %+v (err=%v)", got, err)
	}

	// A legal edit goes through and publishes another sync event.
	edited := created
	edited.Amount = core.Money{Cents: 110000}
	if err := svc.UpdateTransaction(ctx, edited); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(pub.syncs) != 2 {
		t.Fatalf("expected 2 sync events, got %v", pub.syncs)
	}
}

func TestUpdateTransactionSamePayloadTwice(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	salary := mustCategory(t, svc, "Salary", core.PurposeIncome)

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "pay",
		Amount:      core.Money{Cents: 100000},
		Type:        core.Income,
		CategoryID:  salary.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	edited := created
	edited.Amount = core.Money{Cents: 110000}
	for i := 1; i <= 2; i++ {
		if err := svc.UpdateTransaction(ctx, edited); err != nil {
			t.Fatalf("update (call %d): %v", i, err)
		}
		got, err := svc.GetTransaction(ctx, edited.ID)
		if err != nil || got != edited {
			t.Fatalf("after update %d expected %+v, got %+v (err=%v)", i, edited, got, err)
		}
	}
	// Each update still queues a re-export on top of the create.
	if len(pub.syncs) != 3 {
		t.Fatalf("expected 3 sync events, got %v", pub.syncs)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)

	err := svc.UpdateTransaction(ctx, core.Transaction{
		ID:          999,
		Description: "ghost",
		Amount:      core.Money{Cents: 100},
		Type:        core.Expense,
		CategoryID:  food.ID,
		PersonID:    bob.ID,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteTransactionPublishesDelete(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)
	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "lunch",
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
		CategoryID:  food.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != created.ID {
		t.Fatalf("expected one delete event for %d, got %v", created.ID, pub.deletes)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, pub := newTestService(t)
	pub.fail = true
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "lunch",
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
		CategoryID:  food.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create must succeed despite broker failure: %v", err)
	}
	if _, err := svc.GetTransaction(ctx, created.ID); err != nil {
		t.Fatalf("transaction must be persisted: %v", err)
	}
}

func TestServiceRunsWithoutPublisher(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	svc := NewLedgerService(repo, nil)
	ctx := context.Background()

	bob := mustPerson(t, svc, "Bob", 30)
	food := mustCategory(t, svc, "Food", core.PurposeExpense)
	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "lunch",
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
		CategoryID:  food.ID,
		PersonID:    bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestPeopleByAgeRangeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.PeopleByAgeRange(context.Background(), 30, 20); !errors.Is(err, core.ErrInvalidAgeRange) {
		t.Fatalf("expected invalid age range, got %v", err)
	}
}

func TestCategoriesByPurposeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CategoriesByPurpose(context.Background(), 9); !errors.Is(err, core.ErrInvalidPurpose) {
		t.Fatalf("expected invalid purpose, got %v", err)
	}
}
