package repository

import (
	"context"

	"talenthub/internal/database"
)

type RoleCount struct {
	Role       string `json:"role"`
	Total      int    `json:"total"`
	Verified   int    `json:"verified"`
	Unverified int    `json:"unverified"`
}

type DashboardRepository interface {
	CountUsersByRole(ctx context.Context) ([]RoleCount, error)
	CountPostingsByStatus(ctx context.Context) (map[string]int, error)
	CountApplicationsByStatus(ctx context.Context) (map[string]int, error)
	CountUnverifiedOrganizations(ctx context.Context) (int, error)
}

type PostgresDashboardRepository struct {
	db database.DB
}

func NewPostgresDashboardRepository(db database.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{db: db}
}

func (r *PostgresDashboardRepository) CountUsersByRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT role,
			COUNT(1),
			COUNT(1) FILTER (WHERE email_verified),
			COUNT(1) FILTER (WHERE NOT email_verified)
		 FROM users
		 GROUP BY role
		 ORDER BY role ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoleCount, 0, 4)
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Total, &rc.Verified, &rc.Unverified); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresDashboardRepository) CountPostingsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT status, COUNT(1) FROM job_postings GROUP BY status`)
}

func (r *PostgresDashboardRepository) CountApplicationsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT status, COUNT(1) FROM applications GROUP BY status`)
}

func (r *PostgresDashboardRepository) CountUnverifiedOrganizations(ctx context.Context) (int, error) {
	var c int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM organizations WHERE NOT is_verified`).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (r *PostgresDashboardRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var k string
		var c int
		if err := rows.Scan(&k, &c); err != nil {
			return nil, err
		}
		out[k] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
