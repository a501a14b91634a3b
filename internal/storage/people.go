package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/core"
)

func (r *SQLiteRepository) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO people (name, age) VALUES (?, ?)`, p.Name, p.Age)
	if err != nil {
		return core.Person{}, fmt.Errorf("insert person: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Person{}, fmt.Errorf("person id: %w", err)
	}
	p.ID = id

	slog.InfoContext(ctx, "Person created", "id", p.ID, "name", p.Name, "age", p.Age)
	return p, nil
}

func (r *SQLiteRepository) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	var p core.Person
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, age FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Person{}, core.ErrNotFound
	}
	if err != nil {
		return core.Person{}, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPeople(ctx context.Context) ([]core.Person, error) {
	return r.queryPeople(ctx, `SELECT id, name, age FROM people ORDER BY id`)
}

// SearchPeopleByName matches the name substring case-insensitively.
func (r *SQLiteRepository) SearchPeopleByName(ctx context.Context, name string) ([]core.Person, error) {
	return r.queryPeople(ctx,
		`SELECT id, name, age FROM people WHERE name LIKE ? ESCAPE '\' ORDER BY id`,
		containsPattern(name))
}

// PeopleByAgeRange returns people with minAge <= age <= maxAge.
func (r *SQLiteRepository) PeopleByAgeRange(ctx context.Context, minAge, maxAge int) ([]core.Person, error) {
	return r.queryPeople(ctx,
		`SELECT id, name, age FROM people WHERE age BETWEEN ? AND ? ORDER BY id`,
		minAge, maxAge)
}

// UpdatePerson replaces all mutable fields of the record with p.ID.
func (r *SQLiteRepository) UpdatePerson(ctx context.Context, p core.Person) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE people SET name = ?, age = ? WHERE id = ?`, p.Name, p.Age, p.ID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeletePerson removes the person and every transaction referencing it as a
// single atomic unit.
func (r *SQLiteRepository) DeletePerson(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete person: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete person transactions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete person: %w", err)
	}

	slog.InfoContext(ctx, "Person deleted with transactions", "id", id)
	return nil
}

func (r *SQLiteRepository) queryPeople(ctx context.Context, query string, args ...any) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []core.Person
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Age); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}
