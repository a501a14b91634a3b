package storage

import (
	"context"
	"fmt"

	"gastos/internal/core"
)

// Aggregate queries sum integer cents in SQL, so results stay exact at two
// decimal places regardless of how many rows participate.

// TotalsByPerson groups transactions by person. People without transactions
// do not appear (inner join). Rows order by person name, id as the
// deterministic tie-break.
func (r *SQLiteRepository) TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.age,
		        COALESCE(SUM(CASE WHEN t.tx_type = 2 THEN t.amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN t.tx_type = 1 THEN t.amount_cents ELSE 0 END), 0)
		 FROM transactions t
		 JOIN people p ON p.id = t.person_id
		 GROUP BY p.id, p.name, p.age
		 ORDER BY p.name, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query totals by person: %w", err)
	}
	defer rows.Close()

	var totals []core.PersonTotals
	for rows.Next() {
		var row core.PersonTotals
		if err := rows.Scan(&row.PersonID, &row.PersonName, &row.PersonAge,
			&row.TotalIncome.Cents, &row.TotalExpense.Cents); err != nil {
			return nil, fmt.Errorf("scan person totals: %w", err)
		}
		row.Balance.Cents = row.TotalIncome.Cents - row.TotalExpense.Cents
		totals = append(totals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person totals: %w", err)
	}
	return totals, nil
}

// TotalsByCategory groups transactions by category, ordered by category
// name, id.
func (r *SQLiteRepository) TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.purpose,
		        COALESCE(SUM(CASE WHEN t.tx_type = 2 THEN t.amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN t.tx_type = 1 THEN t.amount_cents ELSE 0 END), 0)
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 GROUP BY c.id, c.name, c.purpose
		 ORDER BY c.name, c.id`)
	if err != nil {
		return nil, fmt.Errorf("query totals by category: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotals
	for rows.Next() {
		var row core.CategoryTotals
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.Purpose,
			&row.TotalIncome.Cents, &row.TotalExpense.Cents); err != nil {
			return nil, fmt.Errorf("scan category totals: %w", err)
		}
		row.Balance.Cents = row.TotalIncome.Cents - row.TotalExpense.Cents
		totals = append(totals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

// OverallTotals sums every transaction. An empty ledger yields the all-zero
// result, never an absent one.
func (r *SQLiteRepository) OverallTotals(ctx context.Context) (core.OverallTotals, error) {
	var totals core.OverallTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN tx_type = 2 THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN tx_type = 1 THEN amount_cents ELSE 0 END), 0)
		 FROM transactions`).
		Scan(&totals.TotalIncome.Cents, &totals.TotalExpense.Cents)
	if err != nil {
		return core.OverallTotals{}, fmt.Errorf("query overall totals: %w", err)
	}
	totals.NetBalance.Cents = totals.TotalIncome.Cents - totals.TotalExpense.Cents
	return totals, nil
}
