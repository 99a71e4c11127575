package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talenthub/internal/database"

	"github.com/google/uuid"
)

var (
	ErrSectionNotFound  = errors.New("profile entry not found")
	ErrSectionForbidden = errors.New("forbidden")

	ErrCandidateSkillExists = errors.New("skill already on profile")
)

// SectionRepository stores one repeatable candidate profile section.
type SectionRepository[T any] interface {
	List(ctx context.Context, userID uuid.UUID) ([]T, error)
	Create(ctx context.Context, userID uuid.UUID, item T) (T, error)
	Update(ctx context.Context, userID, id uuid.UUID, item T) (T, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	// Replace deletes every entry of the user and inserts items, using q so the
	// caller can run it inside a transaction.
	Replace(ctx context.Context, q database.Querier, userID uuid.UUID, items []T) ([]T, error)
}

type sectionTable[T any] struct {
	table   string
	columns []string
	dates   map[string]bool
	orderBy string
	values  func(T) []any
	scan    func(row database.Row) (T, error)
	keys    func(*T) (id *uuid.UUID, userID *uuid.UUID)
}

func (t sectionTable[T]) selectList() string {
	parts := make([]string, 0, len(t.columns)+2)
	parts = append(parts, "id", "user_id")
	for _, c := range t.columns {
		if t.dates[c] {
			parts = append(parts, fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", c))
			continue
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

func (t sectionTable[T]) placeholder(col string, n int) string {
	if t.dates[col] {
		return fmt.Sprintf("$%d::date", n)
	}
	return fmt.Sprintf("$%d", n)
}

func (t sectionTable[T]) insertSQL() string {
	cols := append([]string{"id", "user_id"}, t.columns...)
	vals := []string{"$1", "$2"}
	for i, c := range t.columns {
		vals = append(vals, t.placeholder(c, i+3))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.table, strings.Join(cols, ", "), strings.Join(vals, ", "), t.selectList(),
	)
}

func (t sectionTable[T]) updateSQL() string {
	sets := make([]string, 0, len(t.columns)+1)
	for i, c := range t.columns {
		sets = append(sets, c+" = "+t.placeholder(c, i+3))
	}
	sets = append(sets, "updated_at = now()")
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1 AND user_id = $2 RETURNING %s",
		t.table, strings.Join(sets, ", "), t.selectList(),
	)
}

type PostgresSectionRepository[T any] struct {
	db database.DB
	t  sectionTable[T]
}

func (r *PostgresSectionRepository[T]) List(ctx context.Context, userID uuid.UUID) ([]T, error) {
	return r.list(ctx, r.db, userID)
}

func (r *PostgresSectionRepository[T]) list(ctx context.Context, q database.Querier, userID uuid.UUID) ([]T, error) {
	rows, err := q.Query(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s", r.t.selectList(), r.t.table, r.t.orderBy),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := r.t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSectionRepository[T]) Create(ctx context.Context, userID uuid.UUID, item T) (T, error) {
	return r.insert(ctx, r.db, userID, item)
}

func (r *PostgresSectionRepository[T]) insert(ctx context.Context, q database.Querier, userID uuid.UUID, item T) (T, error) {
	id, owner := r.t.keys(&item)
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	*owner = userID

	args := append([]any{*id, userID}, r.t.values(item)...)
	created, err := r.t.scan(q.QueryRow(ctx, r.t.insertSQL(), args...))
	if err != nil {
		var zero T
		if isUniqueViolation(err) {
			return zero, fmt.Errorf("%s: duplicate id: %w", r.t.table, err)
		}
		return zero, err
	}
	return created, nil
}

func (r *PostgresSectionRepository[T]) Update(ctx context.Context, userID, id uuid.UUID, item T) (T, error) {
	var zero T
	idp, owner := r.t.keys(&item)
	*idp, *owner = id, userID

	args := append([]any{id, userID}, r.t.values(item)...)
	updated, err := r.t.scan(r.db.QueryRow(ctx, r.t.updateSQL(), args...))
	if err == nil {
		return updated, nil
	}
	if !isNoRows(err) {
		return zero, err
	}
	if ownerErr := r.ownerCheck(ctx, id, userID); ownerErr != nil {
		return zero, ownerErr
	}
	return zero, ErrSectionNotFound
}

func (r *PostgresSectionRepository[T]) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := r.ownerCheck(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND user_id = $2", r.t.table), id, userID)
	return err
}

func (r *PostgresSectionRepository[T]) ownerCheck(ctx context.Context, id, userID uuid.UUID) error {
	var owner uuid.UUID
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT user_id FROM %s WHERE id = $1", r.t.table), id)
	if err := row.Scan(&owner); err != nil {
		if isNoRows(err) {
			return ErrSectionNotFound
		}
		return err
	}
	if owner != userID {
		return ErrSectionForbidden
	}
	return nil
}

func (r *PostgresSectionRepository[T]) Replace(ctx context.Context, q database.Querier, userID uuid.UUID, items []T) ([]T, error) {
	if q == nil {
		q = r.db
	}
	if _, err := q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", r.t.table), userID); err != nil {
		return nil, err
	}
	for _, item := range items {
		// Ids from the payload are not trusted across users.
		id, _ := r.t.keys(&item)
		*id = uuid.Nil
		if _, err := r.insert(ctx, q, userID, item); err != nil {
			return nil, err
		}
	}
	return r.list(ctx, q, userID)
}
