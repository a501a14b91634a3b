package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gastos/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description, purpose) VALUES (?, ?, ?)`,
		c.Name, nullableString(c.Description), int(c.Purpose))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name, "purpose", c.Purpose.String())
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var (
		c    core.Category
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, purpose FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &desc, &c.Purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Description = desc.String
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, name, description, purpose FROM categories ORDER BY id`)
}

// SearchCategoriesByName matches the name substring case-insensitively.
func (r *SQLiteRepository) SearchCategoriesByName(ctx context.Context, name string) ([]core.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, name, description, purpose FROM categories WHERE name LIKE ? ESCAPE '\' ORDER BY id`,
		containsPattern(name))
}

// CategoriesByPurpose returns categories usable for the given purpose:
// querying by Expense or Income also returns Both-purpose categories.
func (r *SQLiteRepository) CategoriesByPurpose(ctx context.Context, purpose core.CategoryPurpose) ([]core.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, name, description, purpose FROM categories WHERE purpose = ? OR purpose = ? ORDER BY id`,
		int(purpose), int(core.PurposeBoth))
}

// UpdateCategory replaces all mutable fields of the record with c.ID.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, purpose = ? WHERE id = ?`,
		c.Name, nullableString(c.Description), int(c.Purpose), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteCategory fails with ErrCategoryInUse while any transaction still
// references the category; nothing changes in that case.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	// Existence-only probe, not a full fetch
	var ref int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE category_id = ? LIMIT 1`, id).Scan(&ref)
	if err == nil {
		return core.ErrCategoryInUse
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check category references: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c    core.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.Purpose); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Description = desc.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// containsPattern builds a case-insensitive contains pattern for LIKE,
// escaping the LIKE wildcards in the needle.
func containsPattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
