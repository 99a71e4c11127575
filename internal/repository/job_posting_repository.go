package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talenthub/internal/database"
	"talenthub/internal/domain/job"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound   = errors.New("job posting not found")
	ErrJobConstraint = errors.New("job posting violates constraints")
)

const postingColumns = `j.id, j.employer_id, o.name, j.created_by, j.title, j.description, j.location, j.employment_type,
	j.work_mode, j.salary_min, j.salary_max, j.currency, j.status, j.published_at, j.closes_at, j.created_at, j.updated_at`

const postingFrom = `FROM job_postings j JOIN organizations o ON o.id = j.employer_id`

type JobPostingRepository interface {
	Create(ctx context.Context, p job.Posting) (job.Posting, error)
	GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error)
	Update(ctx context.Context, p job.Posting) (job.Posting, error)
	SetStatus(ctx context.Context, id uuid.UUID, status job.Status, publishedAt *time.Time) (job.Posting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f job.ListFilter) ([]job.Posting, int, error)
}

type PostgresJobPostingRepository struct {
	db database.DB
}

func NewPostgresJobPostingRepository(db database.DB) *PostgresJobPostingRepository {
	return &PostgresJobPostingRepository{db: db}
}

func (r *PostgresJobPostingRepository) Create(ctx context.Context, p job.Posting) (job.Posting, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO job_postings (id, employer_id, created_by, title, description, location, employment_type, work_mode,
				salary_min, salary_max, currency, status, published_at, closes_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			p.ID, p.EmployerID, p.CreatedBy, p.Title, p.Description, p.Location, string(p.EmploymentType), string(p.WorkMode),
			p.SalaryMin, p.SalaryMax, p.Currency, string(p.Status), p.PublishedAt, p.ClosesAt,
		)
		if err != nil {
			switch {
			case isForeignKeyViolation(err):
				return ErrOrganizationNotFound
			case isCheckViolation(err):
				return ErrJobConstraint
			}
			return err
		}
		return replacePostingSkills(ctx, tx, p.ID, p.Skills)
	})
	if err != nil {
		return job.Posting{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PostgresJobPostingRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	p, err := scanPosting(r.db.QueryRow(ctx, `SELECT `+postingColumns+` `+postingFrom+` WHERE j.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return job.Posting{}, ErrJobNotFound
		}
		return job.Posting{}, err
	}
	skills, err := r.loadSkills(ctx, []uuid.UUID{id})
	if err != nil {
		return job.Posting{}, err
	}
	p.Skills = skills[id]
	if p.Skills == nil {
		p.Skills = []job.SkillRequirement{}
	}
	return p, nil
}

func (r *PostgresJobPostingRepository) Update(ctx context.Context, p job.Posting) (job.Posting, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE job_postings
			 SET title = $2, description = $3, location = $4, employment_type = $5, work_mode = $6,
				salary_min = $7, salary_max = $8, currency = $9, closes_at = $10, updated_at = now()
			 WHERE id = $1`,
			p.ID, p.Title, p.Description, p.Location, string(p.EmploymentType), string(p.WorkMode),
			p.SalaryMin, p.SalaryMax, p.Currency, p.ClosesAt,
		)
		if err != nil {
			if isCheckViolation(err) {
				return ErrJobConstraint
			}
			return err
		}
		if n == 0 {
			return ErrJobNotFound
		}
		return replacePostingSkills(ctx, tx, p.ID, p.Skills)
	})
	if err != nil {
		return job.Posting{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PostgresJobPostingRepository) SetStatus(ctx context.Context, id uuid.UUID, status job.Status, publishedAt *time.Time) (job.Posting, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE job_postings SET status = $2, published_at = COALESCE($3, published_at), updated_at = now() WHERE id = $1`,
		id, string(status), publishedAt,
	)
	if err != nil {
		return job.Posting{}, err
	}
	if n == 0 {
		return job.Posting{}, ErrJobNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresJobPostingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresJobPostingRepository) List(ctx context.Context, f job.ListFilter) ([]job.Posting, int, error) {
	where, args := postingFilter(f)
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)
	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT %s, COUNT(1) OVER () %s %s
		 ORDER BY COALESCE(j.published_at, j.created_at) DESC, j.id ASC
		 LIMIT $%d OFFSET $%d`,
		postingColumns, postingFrom, where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]job.Posting, 0, limit)
	ids := make([]uuid.UUID, 0, limit)
	total := 0
	for rows.Next() {
		p, err := scanPostingInto(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	skills, err := r.loadSkills(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Skills = skills[out[i].ID]
		if out[i].Skills == nil {
			out[i].Skills = []job.SkillRequirement{}
		}
	}
	return out, total, nil
}

// postingFilter renders the WHERE clause for f. Placeholders start at $1.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func postingFilter(f job.ListFilter) (string, []any) {
	conds := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		add("j.status = ANY(?)", statuses)
	}
	if len(f.QueryVariants) > 0 {
		terms := make([]string, 0, len(f.QueryVariants))
		for _, v := range f.QueryVariants {
			terms = append(terms, escapeLike(v))
		}
		add(`EXISTS (
			SELECT 1 FROM unnest(?::text[]) AS v(term)
			WHERE j.title ILIKE '%' || v.term || '%' OR j.description ILIKE '%' || v.term || '%' OR o.name ILIKE '%' || v.term || '%'
		)`, terms)
	} else if q := strings.TrimSpace(f.Query); q != "" {
		add("(j.title ILIKE '%' || ? || '%' OR j.description ILIKE '%' || ? || '%' OR o.name ILIKE '%' || ? || '%')", escapeLike(q))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		add("j.location ILIKE '%' || ? || '%'", escapeLike(loc))
	}
	if et := strings.TrimSpace(f.EmploymentType); et != "" {
		add("j.employment_type = ?", et)
	}
	if wm := strings.TrimSpace(f.WorkMode); wm != "" {
		add("j.work_mode = ?", wm)
	}
	if f.EmployerID != nil {
		add("j.employer_id = ?", *f.EmployerID)
	}
	if f.EmployerIDs != nil {
		add("j.employer_id = ANY(?)", f.EmployerIDs)
	}
	if f.CreatedBy != nil {
		add("j.created_by = ?", *f.CreatedBy)
	}
	if len(f.Skills) > 0 {
		names := make([]string, 0, len(f.Skills))
		for _, s := range f.Skills {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				names = append(names, s)
			}
		}
		if len(names) > 0 {
			add(`EXISTS (
				SELECT 1 FROM job_posting_skills jps JOIN skills s ON s.id = jps.skill_id
				WHERE jps.job_id = j.id AND lower(s.name) = ANY(?)
			)`, names)
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresJobPostingRepository) loadSkills(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]job.SkillRequirement, error) {
	out := make(map[uuid.UUID][]job.SkillRequirement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT jps.job_id, jps.skill_id, s.name, jps.is_required, jps.min_proficiency, jps.min_years
		 FROM job_posting_skills jps
		 JOIN skills s ON s.id = jps.skill_id
		 WHERE jps.job_id = ANY($1)
		 ORDER BY jps.is_required DESC, s.name ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var jobID uuid.UUID
		var s job.SkillRequirement
		if err := rows.Scan(&jobID, &s.SkillID, &s.SkillName, &s.IsRequired, &s.MinProficiency, &s.MinYears); err != nil {
			return nil, err
		}
		out[jobID] = append(out[jobID], s)
	}
	return out, rows.Err()
}

func replacePostingSkills(ctx context.Context, q database.Querier, jobID uuid.UUID, skills []job.SkillRequirement) error {
	if _, err := q.Exec(ctx, `DELETE FROM job_posting_skills WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	for _, s := range skills {
		_, err := q.Exec(ctx,
			`INSERT INTO job_posting_skills (job_id, skill_id, is_required, min_proficiency, min_years)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (job_id, skill_id) DO UPDATE SET
				is_required = EXCLUDED.is_required,
				min_proficiency = EXCLUDED.min_proficiency,
				min_years = EXCLUDED.min_years`,
			jobID, s.SkillID, s.IsRequired, s.MinProficiency, s.MinYears,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrSkillNotFound
			}
			return err
		}
	}
	return nil
}

func scanPosting(row database.Row) (job.Posting, error) {
	return scanPostingInto(row)
}

func scanPostingInto(row database.Row, extra ...any) (job.Posting, error) {
	var p job.Posting
	var employmentType, workMode, status string
	dest := []any{
		&p.ID, &p.EmployerID, &p.EmployerName, &p.CreatedBy, &p.Title, &p.Description, &p.Location, &employmentType,
		&workMode, &p.SalaryMin, &p.SalaryMax, &p.Currency, &status, &p.PublishedAt, &p.ClosesAt, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return job.Posting{}, err
	}
	p.EmploymentType = job.EmploymentType(employmentType)
	p.WorkMode = job.WorkMode(workMode)
	p.Status = job.Status(status)
	return p, nil
}
