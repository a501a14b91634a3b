package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
)

// PendingSyncTransaction identifies a transaction not yet mirrored to the
// export spreadsheet.
type PendingSyncTransaction struct {
	ID        int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount_cents, tx_type, category_id, person_id)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Description, t.Amount.Cents, int(t.Type), t.CategoryID, t.PersonID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"type", t.Type.String(),
		"person_id", t.PersonID,
		"category_id", t.CategoryID)
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, tx_type, category_id, person_id
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.CategoryID, &t.PersonID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, description, amount_cents, tx_type, category_id, person_id
		 FROM transactions ORDER BY id`)
}

func (r *SQLiteRepository) TransactionsByPerson(ctx context.Context, personID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, description, amount_cents, tx_type, category_id, person_id
		 FROM transactions WHERE person_id = ? ORDER BY id`, personID)
}

func (r *SQLiteRepository) TransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, description, amount_cents, tx_type, category_id, person_id
		 FROM transactions WHERE category_id = ? ORDER BY id`, categoryID)
}

func (r *SQLiteRepository) TransactionsByType(ctx context.Context, txType core.TransactionType) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, description, amount_cents, tx_type, category_id, person_id
		 FROM transactions WHERE tx_type = ? ORDER BY id`, int(txType))
}

// UpdateTransaction replaces all mutable fields of the record with t.ID and
// queues the row for re-export.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount_cents = ?, tx_type = ?, category_id = ?, person_id = ?,
		     synced = 0, sync_error = 0
		 WHERE id = ?`,
		t.Description, t.Amount.Cents, int(t.Type), t.CategoryID, t.PersonID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// PendingSyncTransactions returns transactions awaiting spreadsheet export,
// oldest first. Backup path for lost queue messages.
func (r *SQLiteRepository) PendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions
		 WHERE synced = 0 AND sync_error = 0
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync transactions: %w", err)
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.CategoryID, &t.PersonID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
