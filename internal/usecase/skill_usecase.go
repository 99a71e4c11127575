package usecase

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/repository"
)

type SkillUsecase interface {
	SearchSkills(ctx context.Context, query string, limit int) ([]repository.Skill, error)
	AddSkill(ctx context.Context, name string, category *string) (repository.Skill, error)
}

type Skill struct {
	repo repository.SkillRepository
}

func NewSkillUsecase(repo repository.SkillRepository) *Skill {
	return &Skill{repo: repo}
}

func (u *Skill) SearchSkills(ctx context.Context, query string, limit int) ([]repository.Skill, error) {
	items, err := u.repo.SearchSkills(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Skill) AddSkill(ctx context.Context, name string, category *string) (repository.Skill, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || len(name) > 100 {
		return repository.Skill{}, ErrInvalidInput
	}
	if category != nil {
		c := strings.TrimSpace(*category)
		category = &c
		if c == "" {
			category = nil
		}
	}

	created, err := u.repo.CreateSkill(ctx, name, category)
	if err != nil {
		if errors.Is(err, repository.ErrSkillExists) {
			return repository.Skill{}, ErrSkillAlreadyExists
		}
		return repository.Skill{}, ErrInternal
	}
	return created, nil
}
