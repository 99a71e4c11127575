package usecase

import (
	"context"
	"errors"
	"time"

	"talenthub/internal/domain/application"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/domain/job"
	"talenthub/internal/domain/matching"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplyInput struct {
	CoverLetter *string `json:"cover_letter" validate:"omitempty,max=5000"`
	CVFileKey   *string `json:"cv_file_key"`
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, candidateID, jobID uuid.UUID, in ApplyInput) (application.Application, error)
	ListMine(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error)
	Withdraw(ctx context.Context, candidateID, id uuid.UUID) (application.Application, error)
	ListForJob(ctx context.Context, actor Actor, jobID uuid.UUID, status application.Status) ([]application.Application, error)
	ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status application.Status) (application.Application, error)
}

type postingAccess interface {
	managed(ctx context.Context, actor Actor, id uuid.UUID) (job.Posting, error)
}

type Application struct {
	apps     repository.ApplicationRepository
	jobs     repository.JobPostingRepository
	access   postingAccess
	profiles repository.CandidateProfileRepository
	skills   repository.SectionRepository[candidate.Skill]
	files    repository.FileRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationUsecase(
	apps repository.ApplicationRepository,
	jobs repository.JobPostingRepository,
	postings *JobPosting,
	profiles repository.CandidateProfileRepository,
	skills repository.SectionRepository[candidate.Skill],
	files repository.FileRepository,
	log *zap.Logger,
) *Application {
	return &Application{
		apps:     apps,
		jobs:     jobs,
		access:   postings,
		profiles: profiles,
		skills:   skills,
		files:    files,
		logger:   logger.OrNop(log).Named("applications"),
		now:      time.Now,
	}
}

func (u *Application) Apply(ctx context.Context, candidateID, jobID uuid.UUID, in ApplyInput) (application.Application, error) {
	in.CoverLetter = trimmed(in.CoverLetter)
	in.CVFileKey = trimmed(in.CVFileKey)
	if err := validation.Struct(in); err != nil {
		return application.Application{}, err
	}

	p, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return application.Application{}, ErrJobNotFound
		}
		return application.Application{}, ErrInternal
	}
	switch {
	case p.Status == job.StatusDraft:
		return application.Application{}, ErrJobNotFound
	case p.Status != job.StatusPublished:
		return application.Application{}, ErrJobClosed
	case p.ClosesAt != nil && p.ClosesAt.Before(u.now()):
		return application.Application{}, ErrJobClosed
	}

	cvKey := in.CVFileKey
	if cvKey != nil {
		if err := checkOwnedFile(ctx, u.files, candidateID, *cvKey, file.PurposeCV); err != nil {
			return application.Application{}, err
		}
	} else {
		profile, err := u.profiles.GetProfile(ctx, candidateID)
		if err != nil {
			return application.Application{}, ErrInternal
		}
		cvKey = profile.CVFileKey
	}

	skills, err := u.skills.List(ctx, candidateID)
	if err != nil {
		return application.Application{}, ErrInternal
	}
	score := matching.Calculate(skills, p.Skills).MatchScore

	created, err := u.apps.Create(ctx, application.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      application.StatusSubmitted,
		CoverLetter: in.CoverLetter,
		CVFileKey:   cvKey,
		MatchScore:  &score,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return application.Application{}, ErrAlreadyApplied
		}
		u.logger.Error("create application failed", zap.Stringer("job_id", jobID), zap.Error(err))
		return application.Application{}, ErrInternal
	}
	return created, nil
}

func (u *Application) ListMine(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error) {
	items, err := u.apps.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Application) Withdraw(ctx context.Context, candidateID, id uuid.UUID) (application.Application, error) {
	a, err := u.get(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	if a.CandidateID != candidateID {
		return application.Application{}, ErrApplicationNotFound
	}
	return u.transition(ctx, a, application.StatusWithdrawn)
}

func (u *Application) ListForJob(ctx context.Context, actor Actor, jobID uuid.UUID, status application.Status) ([]application.Application, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.managed(ctx, actor, jobID); err != nil {
		return nil, err
	}
	items, err := u.apps.ListByJob(ctx, jobID, status)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

// ChangeStatus moves an application through review. Withdrawal belongs to
// the candidate and is not available here.
func (u *Application) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status application.Status) (application.Application, error) {
	if !status.Valid() || status == application.StatusWithdrawn {
		return application.Application{}, ErrInvalidInput
	}
	a, err := u.get(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	if _, err := u.access.managed(ctx, actor, a.JobID); err != nil {
		return application.Application{}, err
	}
	return u.transition(ctx, a, status)
}

func (u *Application) get(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := u.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, ErrInternal
	}
	return a, nil
}

func (u *Application) transition(ctx context.Context, a application.Application, next application.Status) (application.Application, error) {
	if !a.Status.CanTransition(next) {
		return application.Application{}, ErrInvalidTransition
	}
	updated, err := u.apps.SetStatus(ctx, a.ID, next)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, ErrInternal
	}
	u.logger.Info("application status changed",
		zap.Stringer("application_id", a.ID),
		zap.String("from", string(a.Status)),
		zap.String("to", string(next)),
	)
	return updated, nil
}
