package usecase

import (
	"context"
	"errors"
	"fmt"

	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/repository"

	"github.com/google/uuid"
)

type SectionUsecase[T candidate.Entry] interface {
	List(ctx context.Context, userID uuid.UUID) ([]T, error)
	Create(ctx context.Context, userID uuid.UUID, item T) (T, error)
	Update(ctx context.Context, userID, id uuid.UUID, item T) (T, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Section serves CRUD for one repeatable profile section. prepare runs after
// validation and may fill in derived fields.
type Section[T candidate.Entry] struct {
	repo    repository.SectionRepository[T]
	prepare func(ctx context.Context, userID uuid.UUID, item *T) error
}

func NewSection[T candidate.Entry](repo repository.SectionRepository[T]) *Section[T] {
	return &Section[T]{repo: repo}
}

// NewSkillSection resolves skills by id or name against the catalog before
// they are stored.
func NewSkillSection(repo repository.SectionRepository[candidate.Skill], skills repository.SkillRepository) *Section[candidate.Skill] {
	return &Section[candidate.Skill]{
		repo: repo,
		prepare: func(ctx context.Context, _ uuid.UUID, s *candidate.Skill) error {
			resolved, err := skills.ResolveSkill(ctx, nil, s.SkillID, s.SkillName)
			if err != nil {
				return err
			}
			s.SkillID = resolved.ID
			s.SkillName = resolved.Name
			return nil
		},
	}
}

// NewCertificateSection only accepts attachments the candidate uploaded as
// certificates.
func NewCertificateSection(repo repository.SectionRepository[candidate.Certificate], files repository.FileRepository) *Section[candidate.Certificate] {
	return &Section[candidate.Certificate]{
		repo: repo,
		prepare: func(ctx context.Context, userID uuid.UUID, c *candidate.Certificate) error {
			c.FileKey = trimmed(c.FileKey)
			if c.FileKey == nil {
				return nil
			}
			return checkOwnedFile(ctx, files, userID, *c.FileKey, file.PurposeCertificate)
		},
	}
}

func (u *Section[T]) List(ctx context.Context, userID uuid.UUID) ([]T, error) {
	items, err := u.repo.List(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Section[T]) Create(ctx context.Context, userID uuid.UUID, item T) (T, error) {
	var zero T
	if err := u.check(ctx, userID, &item); err != nil {
		return zero, err
	}
	created, err := u.repo.Create(ctx, userID, item)
	if err != nil {
		return zero, mapSectionError(err)
	}
	return created, nil
}

func (u *Section[T]) Update(ctx context.Context, userID, id uuid.UUID, item T) (T, error) {
	var zero T
	if id == uuid.Nil {
		return zero, ErrInvalidInput
	}
	if err := u.check(ctx, userID, &item); err != nil {
		return zero, err
	}
	updated, err := u.repo.Update(ctx, userID, id, item)
	if err != nil {
		return zero, mapSectionError(err)
	}
	return updated, nil
}

func (u *Section[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return mapSectionError(err)
	}
	return nil
}

func (u *Section[T]) check(ctx context.Context, userID uuid.UUID, item *T) error {
	if err := validation.Struct(*item); err != nil {
		return err
	}
	if err := (*item).Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.prepare == nil {
		return nil
	}
	if err := u.prepare(ctx, userID, item); err != nil {
		return mapSectionError(err)
	}
	return nil
}

func mapSectionError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, repository.ErrSectionNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrSectionForbidden):
		return ErrForbidden
	case errors.Is(err, repository.ErrCandidateSkillExists):
		return ErrSkillAlreadyExists
	case errors.Is(err, repository.ErrSkillNotFound):
		return ErrSkillNotFound
	}
	return ErrInternal
}
