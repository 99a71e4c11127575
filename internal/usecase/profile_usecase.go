package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talenthub/internal/database"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProfileSections groups the stores of every repeatable profile section.
type ProfileSections struct {
	WorkExperiences repository.SectionRepository[candidate.WorkExperience]
	Educations      repository.SectionRepository[candidate.Education]
	Skills          repository.SectionRepository[candidate.Skill]
	Certificates    repository.SectionRepository[candidate.Certificate]
	Projects        repository.SectionRepository[candidate.Project]
	Awards          repository.SectionRepository[candidate.Award]
	Volunteering    repository.SectionRepository[candidate.Volunteering]
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (candidate.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, p candidate.Profile) (candidate.Profile, error)
	GetFullProfile(ctx context.Context, userID uuid.UUID) (candidate.FullProfile, error)
	UpsertFullProfile(ctx context.Context, userID uuid.UUID, in candidate.FullProfileInput) (candidate.FullProfile, error)
}

type Profile struct {
	db       database.DB
	profiles repository.CandidateProfileRepository
	sections ProfileSections
	skills   repository.SkillRepository
	files    repository.FileRepository
	logger   *zap.Logger
}

func NewProfileUsecase(
	db database.DB,
	profiles repository.CandidateProfileRepository,
	sections ProfileSections,
	skills repository.SkillRepository,
	files repository.FileRepository,
	log *zap.Logger,
) *Profile {
	return &Profile{
		db:       db,
		profiles: profiles,
		sections: sections,
		skills:   skills,
		files:    files,
		logger:   logger.OrNop(log).Named("profile"),
	}
}

func (u *Profile) GetProfile(ctx context.Context, userID uuid.UUID) (candidate.Profile, error) {
	p, err := u.profiles.GetProfile(ctx, userID)
	if err != nil {
		return candidate.Profile{}, ErrInternal
	}
	return p, nil
}

func (u *Profile) UpdateProfile(ctx context.Context, userID uuid.UUID, p candidate.Profile) (candidate.Profile, error) {
	if err := u.checkProfile(ctx, userID, &p); err != nil {
		return candidate.Profile{}, err
	}
	saved, err := u.profiles.UpsertProfile(ctx, nil, p)
	if err != nil {
		u.logger.Error("upsert profile failed", zap.Stringer("user_id", userID), zap.Error(err))
		return candidate.Profile{}, ErrInternal
	}
	return saved, nil
}

// GetFullProfile loads the profile row and every section concurrently.
func (u *Profile) GetFullProfile(ctx context.Context, userID uuid.UUID) (candidate.FullProfile, error) {
	var out candidate.FullProfile
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Profile, err = u.profiles.GetProfile(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.WorkExperiences, err = u.sections.WorkExperiences.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Educations, err = u.sections.Educations.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Skills, err = u.sections.Skills.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Certificates, err = u.sections.Certificates.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Projects, err = u.sections.Projects.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Awards, err = u.sections.Awards.List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Volunteering, err = u.sections.Volunteering.List(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		u.logger.Error("load full profile failed", zap.Stringer("user_id", userID), zap.Error(err))
		return candidate.FullProfile{}, ErrInternal
	}
	return out, nil
}

// UpsertFullProfile writes the profile row and replaces every section present
// in the input inside one transaction.
func (u *Profile) UpsertFullProfile(ctx context.Context, userID uuid.UUID, in candidate.FullProfileInput) (candidate.FullProfile, error) {
	if err := validation.Struct(in); err != nil {
		return candidate.FullProfile{}, err
	}
	if in.Profile != nil {
		if err := u.checkProfile(ctx, userID, in.Profile); err != nil {
			return candidate.FullProfile{}, err
		}
	}
	if err := checkInput(in); err != nil {
		return candidate.FullProfile{}, err
	}
	if in.Certificates != nil {
		for _, c := range *in.Certificates {
			if err := u.checkFileKey(ctx, userID, c.FileKey, file.PurposeCertificate); err != nil {
				return candidate.FullProfile{}, err
			}
		}
	}

	err := database.WithTx(ctx, u.db, func(tx database.Tx) error {
		if in.Profile != nil {
			p := *in.Profile
			p.UserID = userID
			if _, err := u.profiles.UpsertProfile(ctx, tx, p); err != nil {
				return fmt.Errorf("profile: %w", err)
			}
		}
		if in.Skills != nil {
			skills, err := u.resolveSkills(ctx, tx, *in.Skills)
			if err != nil {
				return err
			}
			if _, err := u.sections.Skills.Replace(ctx, tx, userID, skills); err != nil {
				return fmt.Errorf("skills: %w", err)
			}
		}
		if err := replaceSection(ctx, tx, u.sections.WorkExperiences, userID, in.WorkExperiences); err != nil {
			return fmt.Errorf("work experiences: %w", err)
		}
		if err := replaceSection(ctx, tx, u.sections.Educations, userID, in.Educations); err != nil {
			return fmt.Errorf("educations: %w", err)
		}
		if err := replaceSection(ctx, tx, u.sections.Certificates, userID, in.Certificates); err != nil {
			return fmt.Errorf("certificates: %w", err)
		}
		if err := replaceSection(ctx, tx, u.sections.Projects, userID, in.Projects); err != nil {
			return fmt.Errorf("projects: %w", err)
		}
		if err := replaceSection(ctx, tx, u.sections.Awards, userID, in.Awards); err != nil {
			return fmt.Errorf("awards: %w", err)
		}
		if err := replaceSection(ctx, tx, u.sections.Volunteering, userID, in.Volunteering); err != nil {
			return fmt.Errorf("volunteering: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return candidate.FullProfile{}, ErrSkillNotFound
		}
		u.logger.Error("upsert full profile rolled back", zap.Stringer("user_id", userID), zap.Error(err))
		return candidate.FullProfile{}, ErrInternal
	}

	return u.GetFullProfile(ctx, userID)
}

func (u *Profile) checkProfile(ctx context.Context, userID uuid.UUID, p *candidate.Profile) error {
	p.UserID = userID
	p.Headline = trimmed(p.Headline)
	p.Summary = trimmed(p.Summary)
	p.Phone = trimmed(p.Phone)
	p.Location = trimmed(p.Location)
	p.DateOfBirth = trimmed(p.DateOfBirth)
	p.CVFileKey = trimmed(p.CVFileKey)
	p.AvatarFileKey = trimmed(p.AvatarFileKey)

	if err := validation.Struct(*p); err != nil {
		return err
	}
	if err := u.checkFileKey(ctx, userID, p.CVFileKey, file.PurposeCV); err != nil {
		return err
	}
	return u.checkFileKey(ctx, userID, p.AvatarFileKey, file.PurposeAvatar)
}

func (u *Profile) checkFileKey(ctx context.Context, userID uuid.UUID, key *string, purpose file.Purpose) error {
	if key == nil || *key == "" {
		return nil
	}
	return checkOwnedFile(ctx, u.files, userID, *key, purpose)
}

func (u *Profile) resolveSkills(ctx context.Context, q database.Querier, items []candidate.Skill) ([]candidate.Skill, error) {
	out := make([]candidate.Skill, 0, len(items))
	for _, s := range items {
		resolved, err := u.skills.ResolveSkill(ctx, q, s.SkillID, s.SkillName)
		if err != nil {
			return nil, fmt.Errorf("resolve skill %q: %w", s.SkillName, err)
		}
		s.SkillID = resolved.ID
		s.SkillName = resolved.Name
		out = append(out, s)
	}
	return out, nil
}

func replaceSection[T any](ctx context.Context, q database.Querier, repo repository.SectionRepository[T], userID uuid.UUID, items *[]T) error {
	if items == nil {
		return nil
	}
	_, err := repo.Replace(ctx, q, userID, *items)
	return err
}

func checkInput(in candidate.FullProfileInput) error {
	checks := []func() error{
		func() error { return checkEntries("work_experiences", in.WorkExperiences) },
		func() error { return checkEntries("educations", in.Educations) },
		func() error { return checkEntries("skills", in.Skills) },
		func() error { return checkEntries("certificates", in.Certificates) },
		func() error { return checkEntries("projects", in.Projects) },
		func() error { return checkEntries("awards", in.Awards) },
		func() error { return checkEntries("volunteering", in.Volunteering) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func checkEntries[T candidate.Entry](section string, items *[]T) error {
	if items == nil {
		return nil
	}
	for i, it := range *items {
		if err := it.Check(); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidInput, section, i, err)
		}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
