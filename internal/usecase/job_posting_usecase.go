package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"talenthub/internal/domain/job"
	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/repository"
	"talenthub/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

type JobSkillInput struct {
	SkillID        uuid.UUID `json:"skill_id"`
	SkillName      string    `json:"skill_name" validate:"required_without=SkillID,max=100"`
	IsRequired     bool      `json:"is_required"`
	MinProficiency int       `json:"min_proficiency" validate:"min=0,max=5"`
	MinYears       int       `json:"min_years" validate:"min=0,max=60"`
}

type JobInput struct {
	EmployerID     *uuid.UUID         `json:"employer_id"`
	Title          string             `json:"title" validate:"required,max=200"`
	Description    string             `json:"description" validate:"max=20000"`
	Location       *string            `json:"location" validate:"omitempty,max=160"`
	EmploymentType job.EmploymentType `json:"employment_type" validate:"required,oneof=full_time part_time contract internship temporary"`
	WorkMode       job.WorkMode       `json:"work_mode" validate:"required,oneof=onsite remote hybrid"`
	SalaryMin      *int64             `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int64             `json:"salary_max" validate:"omitempty,min=0"`
	Currency       *string            `json:"currency" validate:"omitempty,len=3,alpha"`
	ClosesAt       *time.Time         `json:"closes_at"`
	Skills         []JobSkillInput    `json:"skills" validate:"max=50,dive"`
}

type JobListParams struct {
	Query          string
	Location       string
	EmploymentType string
	WorkMode       string
	Skills         []string
	EmployerID     *uuid.UUID
	Limit          int
	Offset         int
}

type JobListResult struct {
	Items  []job.Posting `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type JobEventPublisher interface {
	PublishJobEvent(eventType string, p job.Posting)
}

type JobPostingUsecase interface {
	Create(ctx context.Context, actor Actor, in JobInput) (job.Posting, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in JobInput) (job.Posting, error)
	ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status job.Status) (job.Posting, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (job.Posting, error)
	ListPublished(ctx context.Context, params JobListParams) (JobListResult, error)
	ListManaged(ctx context.Context, actor Actor, params JobListParams, status job.Status) (JobListResult, error)
}

const (
	jobsDefaultLimit = 20
	jobsMaxLimit     = 50
	jobsLockTTL      = 30 * time.Second
)

// jobsLockWait is how long a request that lost the cache lock waits before
// looking at the cache again.
var jobsLockWait = 300 * time.Millisecond

type JobPosting struct {
	jobs   repository.JobPostingRepository
	orgs   repository.OrganizationRepository
	skills repository.SkillRepository
	cache  SearchCache
	events JobEventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewJobPostingUsecase(
	jobs repository.JobPostingRepository,
	orgs repository.OrganizationRepository,
	skills repository.SkillRepository,
	cache SearchCache,
	events JobEventPublisher,
	log *zap.Logger,
) *JobPosting {
	return &JobPosting{
		jobs:   jobs,
		orgs:   orgs,
		skills: skills,
		cache:  cache,
		events: events,
		logger: logger.OrNop(log).Named("jobs"),
		now:    time.Now,
	}
}

func (u *JobPosting) Create(ctx context.Context, actor Actor, in JobInput) (job.Posting, error) {
	if !actor.Role.ManagesPostings() {
		return job.Posting{}, ErrForbidden
	}
	in = normalizeJobInput(in)
	if err := checkJobInput(in); err != nil {
		return job.Posting{}, err
	}

	employerID, err := u.resolveEmployer(ctx, actor, in.EmployerID)
	if err != nil {
		return job.Posting{}, err
	}
	reqs, err := u.resolveSkills(ctx, in.Skills)
	if err != nil {
		return job.Posting{}, err
	}

	p := job.Posting{
		EmployerID: employerID,
		CreatedBy:  actor.UserID,
		Status:     job.StatusDraft,
		Skills:     reqs,
	}
	applyJobInput(&p, in)

	created, err := u.jobs.Create(ctx, p)
	if err != nil {
		return job.Posting{}, u.mapJobError(err)
	}
	u.logger.Info("job posting created",
		zap.Stringer("job_id", created.ID),
		zap.Stringer("employer_id", created.EmployerID),
		zap.String("role", string(actor.Role)),
	)
	return created, nil
}

func (u *JobPosting) Update(ctx context.Context, actor Actor, id uuid.UUID, in JobInput) (job.Posting, error) {
	p, err := u.managed(ctx, actor, id)
	if err != nil {
		return job.Posting{}, err
	}
	in = normalizeJobInput(in)
	if err := checkJobInput(in); err != nil {
		return job.Posting{}, err
	}
	if in.EmployerID != nil && *in.EmployerID != p.EmployerID {
		return job.Posting{}, ErrInvalidInput
	}
	if p.Status == job.StatusPublished && strings.TrimSpace(in.Description) == "" {
		return job.Posting{}, ErrJobNotPublishable
	}

	reqs, err := u.resolveSkills(ctx, in.Skills)
	if err != nil {
		return job.Posting{}, err
	}
	applyJobInput(&p, in)
	p.Skills = reqs

	updated, err := u.jobs.Update(ctx, p)
	if err != nil {
		return job.Posting{}, u.mapJobError(err)
	}
	u.invalidate(ctx)
	return updated, nil
}

func (u *JobPosting) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status job.Status) (job.Posting, error) {
	if !status.Valid() {
		return job.Posting{}, ErrInvalidInput
	}
	p, err := u.managed(ctx, actor, id)
	if err != nil {
		return job.Posting{}, err
	}
	if !p.Status.CanTransition(status) {
		return job.Posting{}, ErrInvalidTransition
	}

	var publishedAt *time.Time
	if status == job.StatusPublished {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
			return job.Posting{}, ErrJobNotPublishable
		}
		now := u.now().UTC()
		publishedAt = &now
	}

	updated, err := u.jobs.SetStatus(ctx, id, status, publishedAt)
	if err != nil {
		return job.Posting{}, u.mapJobError(err)
	}
	u.invalidate(ctx)

	if u.events != nil {
		switch status {
		case job.StatusPublished:
			u.events.PublishJobEvent(job.EventPublished, updated)
		case job.StatusClosed:
			u.events.PublishJobEvent(job.EventClosed, updated)
		}
	}
	u.logger.Info("job posting status changed",
		zap.Stringer("job_id", id),
		zap.String("from", string(p.Status)),
		zap.String("to", string(status)),
	)
	return updated, nil
}

func (u *JobPosting) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := u.managed(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := u.jobs.Delete(ctx, id); err != nil {
		return u.mapJobError(err)
	}
	u.invalidate(ctx)
	if p.Status == job.StatusPublished && u.events != nil {
		u.events.PublishJobEvent(job.EventClosed, p)
	}
	return nil
}

// Get returns published postings to anyone. Drafts and closed postings are
// only visible to callers who manage them.
func (u *JobPosting) Get(ctx context.Context, actor *Actor, id uuid.UUID) (job.Posting, error) {
	p, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Posting{}, u.mapJobError(err)
	}
	if p.Status == job.StatusPublished {
		return p, nil
	}
	if actor == nil {
		return job.Posting{}, ErrJobNotFound
	}
	ok, err := u.canManage(ctx, *actor, p)
	if err != nil {
		return job.Posting{}, err
	}
	if !ok {
		return job.Posting{}, ErrJobNotFound
	}
	return p, nil
}

func (u *JobPosting) ListPublished(ctx context.Context, params JobListParams) (JobListResult, error) {
	params, err := normalizeListParams(params)
	if err != nil {
		return JobListResult{}, err
	}

	cacheKey := JobsSearchCacheKey(params)
	lockKey := JobsSearchLockKey(cacheKey)

	if u.cache != nil {
		var cached JobListResult
		hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && hit {
			u.logger.Debug("cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
		u.logger.Debug("cache miss", zap.String("key", cacheKey))
	}

	if u.cache != nil {
		ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", jobsLockTTL)
		if err == nil && ok {
			defer func() { _ = u.cache.Delete(context.WithoutCancel(ctx), lockKey) }()
		} else if err == nil && !ok {
			jitter := time.Duration(time.Now().UnixNano()%201) * time.Millisecond
			select {
			case <-ctx.Done():
				return JobListResult{}, ctx.Err()
			case <-time.After(jobsLockWait + jitter):
			}
			var cached JobListResult
			hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
			if err == nil && hit {
				u.logger.Debug("cache hit after lock wait", zap.String("key", cacheKey))
				return cached, nil
			}
			u.logger.Debug("lock wait fallback", zap.String("key", lockKey))
		}
	}

	items, total, err := u.jobs.List(ctx, job.ListFilter{
		Query:          search.NormalizeQuery(params.Query),
		QueryVariants:  queryVariants(params.Query),
		Location:       params.Location,
		EmploymentType: params.EmploymentType,
		WorkMode:       params.WorkMode,
		Skills:         params.Skills,
		EmployerID:     params.EmployerID,
		Statuses:       []job.Status{job.StatusPublished},
		Limit:          params.Limit,
		Offset:         params.Offset,
	})
	if err != nil {
		u.logger.Error("list published jobs failed", zap.Error(err))
		return JobListResult{}, ErrInternal
	}
	out := JobListResult{Items: items, Total: total, Limit: params.Limit, Offset: params.Offset}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, cacheKey, out, 0); err == nil {
			u.logger.Debug("cache set", zap.String("key", cacheKey))
		}
	}
	return out, nil
}

func (u *JobPosting) ListManaged(ctx context.Context, actor Actor, params JobListParams, status job.Status) (JobListResult, error) {
	params, err := normalizeListParams(params)
	if err != nil {
		return JobListResult{}, err
	}
	f := job.ListFilter{
		Query:          search.NormalizeQuery(params.Query),
		QueryVariants:  queryVariants(params.Query),
		Location:       params.Location,
		EmploymentType: params.EmploymentType,
		WorkMode:       params.WorkMode,
		Skills:         params.Skills,
		Limit:          params.Limit,
		Offset:         params.Offset,
	}
	if status != "" {
		if !status.Valid() {
			return JobListResult{}, ErrInvalidInput
		}
		f.Statuses = []job.Status{status}
	}

	switch actor.Role {
	case user.RoleMIS:
		f.EmployerID = params.EmployerID
	case user.RoleEmployer:
		org, err := u.ownOrganization(ctx, actor.UserID, organization.KindEmployer)
		if err != nil {
			return JobListResult{}, err
		}
		f.EmployerID = &org.ID
	case user.RoleAgency:
		f.CreatedBy = &actor.UserID
		f.EmployerID = params.EmployerID
	default:
		return JobListResult{}, ErrForbidden
	}

	items, total, err := u.jobs.List(ctx, f)
	if err != nil {
		u.logger.Error("list managed jobs failed", zap.Error(err))
		return JobListResult{}, ErrInternal
	}
	return JobListResult{Items: items, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

// managed loads a posting the actor is allowed to change. Postings the actor
// does not manage are reported as forbidden.
func (u *JobPosting) managed(ctx context.Context, actor Actor, id uuid.UUID) (job.Posting, error) {
	if !actor.Role.ManagesPostings() {
		return job.Posting{}, ErrForbidden
	}
	p, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Posting{}, u.mapJobError(err)
	}
	ok, err := u.canManage(ctx, actor, p)
	if err != nil {
		return job.Posting{}, err
	}
	if !ok {
		return job.Posting{}, ErrForbidden
	}
	return p, nil
}

func (u *JobPosting) canManage(ctx context.Context, actor Actor, p job.Posting) (bool, error) {
	switch actor.Role {
	case user.RoleMIS:
		return true, nil
	case user.RoleAgency:
		return p.CreatedBy == actor.UserID, nil
	case user.RoleEmployer:
		org, err := u.orgs.GetByOwner(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrOrganizationNotFound) {
				return false, nil
			}
			return false, ErrInternal
		}
		return org.ID == p.EmployerID, nil
	}
	return false, nil
}

// resolveEmployer decides which employer a new posting belongs to. Employers
// always post for themselves, MIS staff for any employer and agencies only for
// their linked clients.
func (u *JobPosting) resolveEmployer(ctx context.Context, actor Actor, requested *uuid.UUID) (uuid.UUID, error) {
	switch actor.Role {
	case user.RoleEmployer:
		org, err := u.ownOrganization(ctx, actor.UserID, organization.KindEmployer)
		if err != nil {
			return uuid.Nil, err
		}
		if requested != nil && *requested != org.ID {
			return uuid.Nil, ErrForbidden
		}
		return org.ID, nil

	case user.RoleMIS:
		if requested == nil {
			return uuid.Nil, ErrInvalidInput
		}
		org, err := u.orgs.GetByID(ctx, *requested)
		if err != nil {
			return uuid.Nil, mapOrganizationError(err)
		}
		if org.Kind != organization.KindEmployer {
			return uuid.Nil, ErrInvalidInput
		}
		return org.ID, nil

	case user.RoleAgency:
		if requested == nil {
			return uuid.Nil, ErrInvalidInput
		}
		agency, err := u.ownOrganization(ctx, actor.UserID, organization.KindAgency)
		if err != nil {
			return uuid.Nil, err
		}
		linked, err := u.orgs.IsAgencyClient(ctx, agency.ID, *requested)
		if err != nil {
			return uuid.Nil, ErrInternal
		}
		if !linked {
			return uuid.Nil, ErrForbidden
		}
		return *requested, nil
	}
	return uuid.Nil, ErrForbidden
}

func (u *JobPosting) ownOrganization(ctx context.Context, userID uuid.UUID, kind organization.Kind) (organization.Organization, error) {
	org, err := u.orgs.GetByOwner(ctx, userID)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	if org.Kind != kind {
		return organization.Organization{}, ErrForbidden
	}
	return org, nil
}

func (u *JobPosting) resolveSkills(ctx context.Context, in []JobSkillInput) ([]job.SkillRequirement, error) {
	out := make([]job.SkillRequirement, 0, len(in))
	index := make(map[uuid.UUID]int, len(in))
	for _, s := range in {
		resolved, err := u.skills.ResolveSkill(ctx, nil, s.SkillID, s.SkillName)
		if err != nil {
			if errors.Is(err, repository.ErrSkillNotFound) {
				return nil, ErrSkillNotFound
			}
			return nil, ErrInternal
		}
		req := job.SkillRequirement{
			SkillID:        resolved.ID,
			SkillName:      resolved.Name,
			IsRequired:     s.IsRequired,
			MinProficiency: s.MinProficiency,
			MinYears:       s.MinYears,
		}
		if req.MinProficiency == 0 {
			req.MinProficiency = 1
		}
		if i, ok := index[req.SkillID]; ok {
			out[i] = req
			continue
		}
		index[req.SkillID] = len(out)
		out = append(out, req)
	}
	return out, nil
}

func (u *JobPosting) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, jobsCachePattern); err != nil {
		u.logger.Warn("job cache invalidation failed", zap.Error(err))
	}
}

func (u *JobPosting) mapJobError(err error) error {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		return ErrJobNotFound
	case errors.Is(err, repository.ErrJobConstraint):
		return ErrInvalidInput
	case errors.Is(err, repository.ErrOrganizationNotFound):
		return ErrOrganizationNotFound
	case errors.Is(err, repository.ErrSkillNotFound):
		return ErrSkillNotFound
	}
	u.logger.Error("job posting store failed", zap.Error(err))
	return ErrInternal
}

func normalizeJobInput(in JobInput) JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = trimmed(in.Location)
	if c := trimmed(in.Currency); c != nil {
		up := strings.ToUpper(*c)
		in.Currency = &up
	} else {
		in.Currency = nil
	}
	return in
}

func checkJobInput(in JobInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return ErrInvalidInput
	}
	return nil
}

func applyJobInput(p *job.Posting, in JobInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.Location = in.Location
	p.EmploymentType = in.EmploymentType
	p.WorkMode = in.WorkMode
	p.SalaryMin = in.SalaryMin
	p.SalaryMax = in.SalaryMax
	p.Currency = in.Currency
	p.ClosesAt = in.ClosesAt
}

// queryVariants expands a free-text search into synonym terms. A query with
// no known synonyms returns nil and is matched on its normalized form.
func queryVariants(q string) []string {
	variants := search.ExpandQuery(search.NormalizeQuery(q))
	if len(variants) <= 1 {
		return nil
	}
	return variants
}

func normalizeListParams(params JobListParams) (JobListParams, error) {
	if params.Limit == 0 {
		params.Limit = jobsDefaultLimit
	}
	if params.Limit < 0 || params.Limit > jobsMaxLimit || params.Offset < 0 {
		return JobListParams{}, ErrInvalidInput
	}
	params.Query = strings.TrimSpace(params.Query)
	params.Location = strings.TrimSpace(params.Location)
	params.EmploymentType = strings.TrimSpace(params.EmploymentType)
	params.WorkMode = strings.TrimSpace(params.WorkMode)
	if params.EmploymentType != "" && !job.EmploymentType(params.EmploymentType).Valid() {
		return JobListParams{}, ErrInvalidInput
	}
	if params.WorkMode != "" && !job.WorkMode(params.WorkMode).Valid() {
		return JobListParams{}, ErrInvalidInput
	}

	skills := make([]string, 0, len(params.Skills))
	for _, s := range params.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	params.Skills = skills
	return params, nil
}
