package usecase

import (
	"context"
	"testing"

	"talenthub/internal/domain/file"
	"talenthub/internal/domain/organization"
	"talenthub/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganization_UpdateMine(t *testing.T) {
	owner := uuid.New()
	org := organization.Organization{ID: uuid.New(), OwnerUserID: &owner, Kind: organization.KindEmployer, Name: "Acme"}
	files := newFakeFileRepo()
	files.files[uuid.New()] = file.File{OwnerID: owner, Purpose: file.PurposeLogo, ObjectKey: "logo/acme.png"}
	files.files[uuid.New()] = file.File{OwnerID: owner, Purpose: file.PurposeCV, ObjectKey: "cv/acme.pdf"}
	uc := NewOrganizationUsecase(newFakeOrgRepo(org), files)
	ctx := context.Background()

	_, err := uc.UpdateMine(ctx, owner, OrganizationInput{Name: "  "})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)

	_, err = uc.UpdateMine(ctx, owner, OrganizationInput{Name: "Acme", LogoFileKey: strPtr("cv/acme.pdf")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.UpdateMine(ctx, uuid.New(), OrganizationInput{Name: "Acme"})
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	updated, err := uc.UpdateMine(ctx, owner, OrganizationInput{
		Name:        " Acme Corp ",
		Industry:    strPtr(" Software "),
		Location:    strPtr(""),
		LogoFileKey: strPtr("logo/acme.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, org.ID, updated.ID)
	assert.Equal(t, "Acme Corp", updated.Name)
	require.NotNil(t, updated.Industry)
	assert.Equal(t, "Software", *updated.Industry)
	assert.Nil(t, updated.Location)
	assert.Equal(t, organization.KindEmployer, updated.Kind)
}

func TestOrganization_CreateEmployerAndVerify(t *testing.T) {
	uc := NewOrganizationUsecase(newFakeOrgRepo(), newFakeFileRepo())
	ctx := context.Background()

	o, err := uc.CreateEmployer(ctx, OrganizationInput{Name: "Walk-in Ltd", LogoFileKey: strPtr("logo/x.png")})
	require.NoError(t, err)
	assert.Nil(t, o.OwnerUserID)
	assert.Nil(t, o.LogoFileKey)
	assert.True(t, o.IsVerified)
	assert.Equal(t, organization.KindEmployer, o.Kind)

	o, err = uc.SetVerified(ctx, o.ID, false)
	require.NoError(t, err)
	assert.False(t, o.IsVerified)

	_, err = uc.SetVerified(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	_, _, err = uc.List(ctx, organization.ListFilter{Kind: "school"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	items, total, err := uc.List(ctx, organization.ListFilter{Kind: organization.KindEmployer})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
}

func TestOrganization_AgencyClients(t *testing.T) {
	agencyUser, employerUser := uuid.New(), uuid.New()
	agency := organization.Organization{ID: uuid.New(), OwnerUserID: &agencyUser, Kind: organization.KindAgency, Name: "Hunters"}
	employer := organization.Organization{ID: uuid.New(), OwnerUserID: &employerUser, Kind: organization.KindEmployer, Name: "Acme"}
	uc := NewOrganizationUsecase(newFakeOrgRepo(agency, employer), newFakeFileRepo())
	ctx := context.Background()

	_, err := uc.LinkClient(ctx, employerUser, employer.ID)
	assert.ErrorIs(t, err, ErrForbidden, "employers cannot hold clients")

	_, err = uc.LinkClient(ctx, agencyUser, agency.ID)
	assert.ErrorIs(t, err, ErrInvalidInput, "only employers can be clients")

	_, err = uc.LinkClient(ctx, agencyUser, uuid.New())
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	linked, err := uc.LinkClient(ctx, agencyUser, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, employer.ID, linked.ID)

	_, err = uc.LinkClient(ctx, agencyUser, employer.ID)
	assert.ErrorIs(t, err, ErrAgencyClientExists)

	clients, err := uc.ListClients(ctx, agencyUser)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, employer.ID, clients[0].ID)

	_, err = uc.ListClients(ctx, employerUser)
	assert.ErrorIs(t, err, ErrForbidden)
}
