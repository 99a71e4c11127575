package usecase

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/domain/file"
	"talenthub/internal/domain/organization"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/repository"

	"github.com/google/uuid"
)

type OrganizationInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Website     *string `json:"website" validate:"omitempty,url,max=300"`
	Industry    *string `json:"industry" validate:"omitempty,max=120"`
	CompanySize *string `json:"company_size" validate:"omitempty,max=50"`
	Location    *string `json:"location" validate:"omitempty,max=160"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	LogoFileKey *string `json:"logo_file_key"`
}

type OrganizationUsecase interface {
	GetMine(ctx context.Context, userID uuid.UUID) (organization.Organization, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, in OrganizationInput) (organization.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (organization.Organization, error)
	List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, int, error)
	CreateEmployer(ctx context.Context, in OrganizationInput) (organization.Organization, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (organization.Organization, error)
	LinkClient(ctx context.Context, agencyUserID, employerID uuid.UUID) (organization.Organization, error)
	ListClients(ctx context.Context, agencyUserID uuid.UUID) ([]organization.Organization, error)
}

type Organization struct {
	orgs  repository.OrganizationRepository
	files repository.FileRepository
}

func NewOrganizationUsecase(orgs repository.OrganizationRepository, files repository.FileRepository) *Organization {
	return &Organization{orgs: orgs, files: files}
}

func (u *Organization) GetMine(ctx context.Context, userID uuid.UUID) (organization.Organization, error) {
	o, err := u.orgs.GetByOwner(ctx, userID)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return o, nil
}

func (u *Organization) UpdateMine(ctx context.Context, userID uuid.UUID, in OrganizationInput) (organization.Organization, error) {
	in = normalizeOrganizationInput(in)
	if err := validation.Struct(in); err != nil {
		return organization.Organization{}, err
	}
	if in.LogoFileKey != nil {
		if err := checkOwnedFile(ctx, u.files, userID, *in.LogoFileKey, file.PurposeLogo); err != nil {
			return organization.Organization{}, err
		}
	}

	o, err := u.orgs.GetByOwner(ctx, userID)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	applyOrganizationInput(&o, in)

	updated, err := u.orgs.Update(ctx, o)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return updated, nil
}

func (u *Organization) Get(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	o, err := u.orgs.GetByID(ctx, id)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return o, nil
}

func (u *Organization) List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, int, error) {
	if f.Kind != "" && f.Kind != organization.KindEmployer && f.Kind != organization.KindAgency {
		return nil, 0, ErrInvalidInput
	}
	items, total, err := u.orgs.List(ctx, f)
	if err != nil {
		return nil, 0, ErrInternal
	}
	return items, total, nil
}

// CreateEmployer registers an employer without an owner account. MIS staff
// use these to post jobs on the employer's behalf.
func (u *Organization) CreateEmployer(ctx context.Context, in OrganizationInput) (organization.Organization, error) {
	in = normalizeOrganizationInput(in)
	in.LogoFileKey = nil
	if err := validation.Struct(in); err != nil {
		return organization.Organization{}, err
	}

	o := organization.Organization{Kind: organization.KindEmployer, IsVerified: true}
	applyOrganizationInput(&o, in)

	created, err := u.orgs.Create(ctx, o)
	if err != nil {
		return organization.Organization{}, ErrInternal
	}
	return created, nil
}

func (u *Organization) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (organization.Organization, error) {
	o, err := u.orgs.SetVerified(ctx, id, verified)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return o, nil
}

func (u *Organization) LinkClient(ctx context.Context, agencyUserID, employerID uuid.UUID) (organization.Organization, error) {
	agency, err := u.orgs.GetByOwner(ctx, agencyUserID)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	if agency.Kind != organization.KindAgency {
		return organization.Organization{}, ErrForbidden
	}

	employer, err := u.orgs.GetByID(ctx, employerID)
	if err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	if employer.Kind != organization.KindEmployer {
		return organization.Organization{}, ErrInvalidInput
	}

	if err := u.orgs.LinkAgencyClient(ctx, agency.ID, employer.ID); err != nil {
		return organization.Organization{}, mapOrganizationError(err)
	}
	return employer, nil
}

func (u *Organization) ListClients(ctx context.Context, agencyUserID uuid.UUID) ([]organization.Organization, error) {
	agency, err := u.orgs.GetByOwner(ctx, agencyUserID)
	if err != nil {
		return nil, mapOrganizationError(err)
	}
	if agency.Kind != organization.KindAgency {
		return nil, ErrForbidden
	}
	items, err := u.orgs.ListAgencyClients(ctx, agency.ID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func normalizeOrganizationInput(in OrganizationInput) OrganizationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Website = trimmed(in.Website)
	in.Industry = trimmed(in.Industry)
	in.CompanySize = trimmed(in.CompanySize)
	in.Location = trimmed(in.Location)
	in.Description = trimmed(in.Description)
	in.LogoFileKey = trimmed(in.LogoFileKey)
	return in
}

func applyOrganizationInput(o *organization.Organization, in OrganizationInput) {
	o.Name = in.Name
	o.Website = in.Website
	o.Industry = in.Industry
	o.CompanySize = in.CompanySize
	o.Location = in.Location
	o.Description = in.Description
	o.LogoFileKey = in.LogoFileKey
}

func mapOrganizationError(err error) error {
	switch {
	case errors.Is(err, repository.ErrOrganizationNotFound):
		return ErrOrganizationNotFound
	case errors.Is(err, repository.ErrAgencyClientExists):
		return ErrAgencyClientExists
	}
	return ErrInternal
}
