// Package sheets exports the ledger to a spreadsheet.
package sheets

import (
	"context"

	"gastos/internal/core"
)

// ExportRow is one transaction flattened for the spreadsheet, with the
// person and category resolved to their names.
type ExportRow struct {
	ID           int64
	Description  string
	Amount       core.Money
	Type         core.TransactionType
	PersonName   string
	CategoryName string
}

// LedgerWriter appends and removes transaction rows on the export sheet.
type LedgerWriter interface {
	AppendTransaction(ctx context.Context, row ExportRow) error
	DeleteTransaction(ctx context.Context, id int64) error
}
