package repository

import (
	"context"

	"talenthub/internal/database"
	"talenthub/internal/domain/candidate"

	"github.com/google/uuid"
)

// PostgresCandidateSkillRepository keeps candidate skills joined to the
// skills catalog. Entries must reference an existing catalog skill.
type PostgresCandidateSkillRepository struct {
	db database.DB
}

func NewPostgresCandidateSkillRepository(db database.DB) *PostgresCandidateSkillRepository {
	return &PostgresCandidateSkillRepository{db: db}
}

const candidateSkillSelect = `SELECT cs.id, cs.user_id, cs.skill_id, s.name, cs.proficiency_level, cs.years_experience
	FROM candidate_skills cs
	JOIN skills s ON s.id = cs.skill_id`

func (r *PostgresCandidateSkillRepository) List(ctx context.Context, userID uuid.UUID) ([]candidate.Skill, error) {
	return r.list(ctx, r.db, userID)
}

func (r *PostgresCandidateSkillRepository) list(ctx context.Context, q database.Querier, userID uuid.UUID) ([]candidate.Skill, error) {
	rows, err := q.Query(ctx, candidateSkillSelect+` WHERE cs.user_id = $1 ORDER BY cs.proficiency_level DESC, s.name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Skill, 0)
	for rows.Next() {
		s, err := scanCandidateSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateSkillRepository) Create(ctx context.Context, userID uuid.UUID, s candidate.Skill) (candidate.Skill, error) {
	return r.insert(ctx, r.db, userID, s)
}

func (r *PostgresCandidateSkillRepository) insert(ctx context.Context, q database.Querier, userID uuid.UUID, s candidate.Skill) (candidate.Skill, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := q.Exec(ctx,
		`INSERT INTO candidate_skills (id, user_id, skill_id, proficiency_level, years_experience)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, userID, s.SkillID, s.ProficiencyLevel, s.YearsExperience,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return candidate.Skill{}, ErrCandidateSkillExists
		case isForeignKeyViolation(err):
			return candidate.Skill{}, ErrSkillNotFound
		}
		return candidate.Skill{}, err
	}
	return scanCandidateSkill(q.QueryRow(ctx, candidateSkillSelect+` WHERE cs.id = $1`, s.ID))
}

func (r *PostgresCandidateSkillRepository) Update(ctx context.Context, userID, id uuid.UUID, s candidate.Skill) (candidate.Skill, error) {
	s.ID = id
	n, err := r.db.Exec(ctx,
		`UPDATE candidate_skills
		 SET proficiency_level = $1, years_experience = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4`,
		s.ProficiencyLevel, s.YearsExperience, s.ID, userID,
	)
	if err != nil {
		return candidate.Skill{}, err
	}
	if n == 0 {
		if err := r.ownerCheck(ctx, s.ID, userID); err != nil {
			return candidate.Skill{}, err
		}
		return candidate.Skill{}, ErrSectionNotFound
	}
	return scanCandidateSkill(r.db.QueryRow(ctx, candidateSkillSelect+` WHERE cs.id = $1`, s.ID))
}

func (r *PostgresCandidateSkillRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := r.ownerCheck(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM candidate_skills WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// Replace expects every item to carry a resolved SkillID. Duplicate skills
// keep the last entry.
func (r *PostgresCandidateSkillRepository) Replace(ctx context.Context, q database.Querier, userID uuid.UUID, items []candidate.Skill) ([]candidate.Skill, error) {
	if q == nil {
		q = r.db
	}
	if _, err := q.Exec(ctx, `DELETE FROM candidate_skills WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	for _, s := range items {
		_, err := q.Exec(ctx,
			`INSERT INTO candidate_skills (id, user_id, skill_id, proficiency_level, years_experience)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, skill_id) DO UPDATE SET
				proficiency_level = EXCLUDED.proficiency_level,
				years_experience = EXCLUDED.years_experience,
				updated_at = now()`,
			uuid.New(), userID, s.SkillID, s.ProficiencyLevel, s.YearsExperience,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, ErrSkillNotFound
			}
			return nil, err
		}
	}
	return r.list(ctx, q, userID)
}

func (r *PostgresCandidateSkillRepository) ownerCheck(ctx context.Context, id, userID uuid.UUID) error {
	var owner uuid.UUID
	row := r.db.QueryRow(ctx, `SELECT user_id FROM candidate_skills WHERE id = $1`, id)
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

func scanCandidateSkill(row database.Row) (candidate.Skill, error) {
	var s candidate.Skill
	if err := row.Scan(&s.ID, &s.UserID, &s.SkillID, &s.SkillName, &s.ProficiencyLevel, &s.YearsExperience); err != nil {
		if isNoRows(err) {
			return candidate.Skill{}, ErrSectionNotFound
		}
		return candidate.Skill{}, err
	}
	return s, nil
}
