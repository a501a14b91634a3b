// Package worker moves transactions from the store to the export sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

// ExportWorker syncs transactions from SQLite to the spreadsheet, driven by
// queue messages with a periodic pending scan as backup.
type ExportWorker struct {
	store     *storage.SQLiteRepository
	sheet     sheets.LedgerWriter
	batchSize int
}

func NewExportWorker(store *storage.SQLiteRepository, sheet sheets.LedgerWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	if err := w.exportTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("export transaction %d: %w", msg.ID, err)
	}
	return nil
}

// HandleDeleteMessage clears the exported row for a deleted transaction.
func (w *ExportWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.sheet.DeleteTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete transaction %d from sheet: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Transaction removed from sheet", "id", msg.ID)
	return nil
}

// ProcessPendingTransactions exports any transactions still flagged as
// unsynced. This is a backup mechanism in case queue messages are lost.
func (w *ExportWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.store.PendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction", "id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once with a larger batch,
// recovering from missed messages or worker downtime.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

// exportTransaction resolves the transaction with its person and category,
// appends the row, and updates the sync flags. Failures past the lookup
// stage are recorded with MarkSyncError so the pending scan skips them
// until the cause is fixed.
func (w *ExportWorker) exportTransaction(ctx context.Context, id int64) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	row, err := w.buildRow(ctx, tx)
	if err != nil {
		w.recordSyncError(ctx, id)
		return err
	}

	if err := w.sheet.AppendTransaction(ctx, row); err != nil {
		w.recordSyncError(ctx, id)
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", id,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type.String())
	return nil
}

func (w *ExportWorker) buildRow(ctx context.Context, tx core.Transaction) (sheets.ExportRow, error) {
	person, err := w.store.GetPerson(ctx, tx.PersonID)
	if err != nil {
		return sheets.ExportRow{}, fmt.Errorf("get person %d: %w", tx.PersonID, err)
	}
	category, err := w.store.GetCategory(ctx, tx.CategoryID)
	if err != nil {
		return sheets.ExportRow{}, fmt.Errorf("get category %d: %w", tx.CategoryID, err)
	}

	return sheets.ExportRow{
		ID:           tx.ID,
		Description:  tx.Description,
		Amount:       tx.Amount,
		Type:         tx.Type,
		PersonName:   person.Name,
		CategoryName: category.Name,
	}, nil
}

func (w *ExportWorker) recordSyncError(ctx context.Context, id int64) {
	if err := w.store.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}
