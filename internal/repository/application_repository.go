package repository

import (
	"context"
	"errors"

	"talenthub/internal/database"
	"talenthub/internal/domain/application"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied")
)

const applicationColumns = `a.id, a.job_id, j.title, a.candidate_id, u.full_name, a.status, a.cover_letter, a.cv_file_key,
	a.match_score, a.created_at, a.updated_at`

const applicationFrom = `FROM applications a
	JOIN job_postings j ON j.id = a.job_id
	JOIN users u ON u.id = a.candidate_id`

type ApplicationRepository interface {
	Create(ctx context.Context, a application.Application) (application.Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (application.Application, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, status application.Status) ([]application.Application, error)
	SetStatus(ctx context.Context, id uuid.UUID, status application.Status) (application.Application, error)
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) (application.Application, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, status, cover_letter, cv_file_key, match_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.JobID, a.CandidateID, string(a.Status), a.CoverLetter, a.CVFileKey, a.MatchScore,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return application.Application{}, ErrAlreadyApplied
		case isForeignKeyViolation(err):
			return application.Application{}, ErrJobNotFound
		}
		return application.Application{}, err
	}
	return r.GetByID(ctx, a.ID)
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, `SELECT `+applicationColumns+` `+applicationFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error) {
	return r.list(ctx, `WHERE a.candidate_id = $1 ORDER BY a.created_at DESC`, candidateID)
}

func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, status application.Status) ([]application.Application, error) {
	return r.list(ctx,
		`WHERE a.job_id = $1 AND ($2 = '' OR a.status = $2) ORDER BY a.match_score DESC NULLS LAST, a.created_at ASC`,
		jobID, string(status),
	)
}

func (r *PostgresApplicationRepository) list(ctx context.Context, tail string, args ...any) ([]application.Application, error) {
	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` `+applicationFrom+` `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) SetStatus(ctx context.Context, id uuid.UUID, status application.Status) (application.Application, error) {
	n, err := r.db.Exec(ctx, `UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return application.Application{}, err
	}
	if n == 0 {
		return application.Application{}, ErrApplicationNotFound
	}
	return r.GetByID(ctx, id)
}

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var status string
	err := row.Scan(
		&a.ID, &a.JobID, &a.JobTitle, &a.CandidateID, &a.CandidateName, &status, &a.CoverLetter, &a.CVFileKey,
		&a.MatchScore, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Status = application.Status(status)
	return a, err
}
