package repository

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/database"

	"github.com/google/uuid"
)

var (
	ErrSkillNotFound = errors.New("skill not found")
	ErrSkillExists   = errors.New("skill already exists")
)

type Skill struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category *string   `json:"category"`
}

type SkillRepository interface {
	SearchSkills(ctx context.Context, query string, limit int) ([]Skill, error)
	GetSkillByID(ctx context.Context, id uuid.UUID) (Skill, error)
	CreateSkill(ctx context.Context, name string, category *string) (Skill, error)
	ResolveSkill(ctx context.Context, q database.Querier, id uuid.UUID, name string) (Skill, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) SearchSkills(ctx context.Context, query string, limit int) ([]Skill, error) {
	limit, _ = clampPage(limit, 0, 50, 200)
	query = strings.TrimSpace(query)

	rows, err := r.db.Query(ctx,
		`SELECT id, name, category
		 FROM skills
		 WHERE ($1 = '' OR name ILIKE '%' || $3 || '%')
		 ORDER BY (lower(name) = lower($1)) DESC, name ASC
		 LIMIT $2`,
		query, limit, escapeLike(query),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Skill, 0)
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillRepository) GetSkillByID(ctx context.Context, id uuid.UUID) (Skill, error) {
	var s Skill
	row := r.db.QueryRow(ctx, `SELECT id, name, category FROM skills WHERE id = $1`, id)
	if err := row.Scan(&s.ID, &s.Name, &s.Category); err != nil {
		if isNoRows(err) {
			return Skill{}, ErrSkillNotFound
		}
		return Skill{}, err
	}
	return s, nil
}

func (r *PostgresSkillRepository) CreateSkill(ctx context.Context, name string, category *string) (Skill, error) {
	s := Skill{ID: uuid.New(), Name: strings.TrimSpace(name), Category: category}
	_, err := r.db.Exec(ctx, `INSERT INTO skills (id, name, category) VALUES ($1, $2, $3)`, s.ID, s.Name, s.Category)
	if err != nil {
		if isUniqueViolation(err) {
			return Skill{}, ErrSkillExists
		}
		return Skill{}, err
	}
	return s, nil
}

// ResolveSkill finds a catalog skill by id, or by case-insensitive name when
// id is nil. Unknown names are added to the catalog.
func (r *PostgresSkillRepository) ResolveSkill(ctx context.Context, q database.Querier, id uuid.UUID, name string) (Skill, error) {
	if q == nil {
		q = r.db
	}
	var s Skill
	if id != uuid.Nil {
		row := q.QueryRow(ctx, `SELECT id, name, category FROM skills WHERE id = $1`, id)
		if err := row.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			if isNoRows(err) {
				return Skill{}, ErrSkillNotFound
			}
			return Skill{}, err
		}
		return s, nil
	}

	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Skill{}, ErrSkillNotFound
	}
	row := q.QueryRow(ctx,
		`WITH ins AS (
			INSERT INTO skills (id, name) VALUES ($1, $2)
			ON CONFLICT ((lower(name))) DO NOTHING
			RETURNING id, name, category
		 )
		 SELECT id, name, category FROM ins
		 UNION ALL
		 SELECT id, name, category FROM skills WHERE lower(name) = lower($2)
		 LIMIT 1`,
		uuid.New(), name,
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Category); err != nil {
		return Skill{}, err
	}
	return s, nil
}
