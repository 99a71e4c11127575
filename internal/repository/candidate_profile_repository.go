package repository

import (
	"context"

	"talenthub/internal/database"
	"talenthub/internal/domain/candidate"

	"github.com/google/uuid"
)

type CandidateProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (candidate.Profile, error)
	UpsertProfile(ctx context.Context, q database.Querier, p candidate.Profile) (candidate.Profile, error)
}

type PostgresCandidateProfileRepository struct {
	db database.DB
}

func NewPostgresCandidateProfileRepository(db database.DB) *PostgresCandidateProfileRepository {
	return &PostgresCandidateProfileRepository{db: db}
}

const profileColumns = `user_id, headline, summary, phone, location, to_char(date_of_birth, 'YYYY-MM-DD'),
	cv_file_key, avatar_file_key, updated_at`

// GetProfile returns an empty profile for candidates that never saved one.
func (r *PostgresCandidateProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (candidate.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return candidate.Profile{UserID: userID}, nil
		}
		return candidate.Profile{}, err
	}
	return p, nil
}

func (r *PostgresCandidateProfileRepository) UpsertProfile(ctx context.Context, q database.Querier, p candidate.Profile) (candidate.Profile, error) {
	if q == nil {
		q = r.db
	}
	return scanProfile(q.QueryRow(ctx,
		`INSERT INTO candidate_profiles (user_id, headline, summary, phone, location, date_of_birth, cv_file_key, avatar_file_key)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			summary = EXCLUDED.summary,
			phone = EXCLUDED.phone,
			location = EXCLUDED.location,
			date_of_birth = EXCLUDED.date_of_birth,
			cv_file_key = EXCLUDED.cv_file_key,
			avatar_file_key = EXCLUDED.avatar_file_key,
			updated_at = now()
		 RETURNING `+profileColumns,
		p.UserID, p.Headline, p.Summary, p.Phone, p.Location, p.DateOfBirth, p.CVFileKey, p.AvatarFileKey,
	))
}

func scanProfile(row database.Row) (candidate.Profile, error) {
	var p candidate.Profile
	err := row.Scan(&p.UserID, &p.Headline, &p.Summary, &p.Phone, &p.Location, &p.DateOfBirth, &p.CVFileKey, &p.AvatarFileKey, &p.UpdatedAt)
	return p, err
}
