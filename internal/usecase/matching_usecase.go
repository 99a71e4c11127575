package usecase

import (
	"context"
	"errors"

	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/job"
	"talenthub/internal/domain/matching"
	"talenthub/internal/repository"

	"github.com/google/uuid"
)

type MatchingUsecase interface {
	MatchJob(ctx context.Context, candidateID, jobID uuid.UUID) (matching.Result, error)
}

type Matching struct {
	jobs   repository.JobPostingRepository
	skills repository.SectionRepository[candidate.Skill]
}

func NewMatchingUsecase(jobs repository.JobPostingRepository, skills repository.SectionRepository[candidate.Skill]) *Matching {
	return &Matching{jobs: jobs, skills: skills}
}

func (u *Matching) MatchJob(ctx context.Context, candidateID, jobID uuid.UUID) (matching.Result, error) {
	p, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return matching.Result{}, ErrJobNotFound
		}
		return matching.Result{}, ErrInternal
	}
	if p.Status != job.StatusPublished {
		return matching.Result{}, ErrJobNotFound
	}

	skills, err := u.skills.List(ctx, candidateID)
	if err != nil {
		return matching.Result{}, ErrInternal
	}
	return matching.Calculate(skills, p.Skills), nil
}
