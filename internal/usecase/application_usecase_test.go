package usecase

import (
	"context"
	"testing"
	"time"

	"talenthub/internal/domain/application"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appsFixture struct {
	*jobsFixture
	uc       *Application
	apps     *fakeAppRepo
	profiles *fakeProfileRepo
	skills   *fakeSectionRepo[candidate.Skill]
	files    *fakeFileRepo
}

func newAppsFixture(t *testing.T) *appsFixture {
	t.Helper()
	jf := newJobsFixture(t)
	f := &appsFixture{
		jobsFixture: jf,
		apps:        newFakeAppRepo(),
		profiles:    newFakeProfileRepo(),
		skills:      newFakeSectionRepo[candidate.Skill](),
		files:       newFakeFileRepo(),
	}
	f.uc = NewApplicationUsecase(f.apps, jf.jobs, jf.uc, f.profiles, f.skills, f.files, nil)
	return f
}

func (f *appsFixture) publishedJob(t *testing.T) job.Posting {
	t.Helper()
	ctx := context.Background()
	p, err := f.jobsFixture.uc.Create(ctx, f.employer, validJobInput())
	require.NoError(t, err)
	p, err = f.jobsFixture.uc.ChangeStatus(ctx, f.employer, p.ID, job.StatusPublished)
	require.NoError(t, err)
	return p
}

func TestApplication_Apply(t *testing.T) {
	f := newAppsFixture(t)
	ctx := context.Background()
	p := f.publishedJob(t)
	candidateID := uuid.New()

	cvKey := "cv/" + candidateID.String() + "/x.pdf"
	f.profiles.profiles[candidateID] = candidate.Profile{UserID: candidateID, CVFileKey: &cvKey}
	f.skills.items[candidateID] = []candidate.Skill{{SkillID: p.Skills[0].SkillID, SkillName: "Go", ProficiencyLevel: 5, YearsExperience: 3}}

	a, err := f.uc.Apply(ctx, candidateID, p.ID, ApplyInput{})
	require.NoError(t, err)
	assert.Equal(t, application.StatusSubmitted, a.Status)
	require.NotNil(t, a.CVFileKey)
	assert.Equal(t, cvKey, *a.CVFileKey)
	require.NotNil(t, a.MatchScore)
	assert.Greater(t, *a.MatchScore, 0)

	_, err = f.uc.Apply(ctx, candidateID, p.ID, ApplyInput{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApplication_Apply_ChecksCVOwnership(t *testing.T) {
	f := newAppsFixture(t)
	p := f.publishedJob(t)
	candidateID := uuid.New()
	f.files.files[uuid.New()] = file.File{OwnerID: uuid.New(), Purpose: file.PurposeCV, ObjectKey: "cv/other.pdf"}

	key := "cv/other.pdf"
	_, err := f.uc.Apply(context.Background(), candidateID, p.ID, ApplyInput{CVFileKey: &key})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplication_Apply_PostingState(t *testing.T) {
	f := newAppsFixture(t)
	ctx := context.Background()

	draft, err := f.jobsFixture.uc.Create(ctx, f.employer, validJobInput())
	require.NoError(t, err)
	_, err = f.uc.Apply(ctx, uuid.New(), draft.ID, ApplyInput{})
	assert.ErrorIs(t, err, ErrJobNotFound)

	p := f.publishedJob(t)
	past := time.Now().Add(-time.Hour)
	stored := f.jobs.items[p.ID]
	stored.ClosesAt = &past
	f.jobs.items[p.ID] = stored
	_, err = f.uc.Apply(ctx, uuid.New(), p.ID, ApplyInput{})
	assert.ErrorIs(t, err, ErrJobClosed)

	closed := f.publishedJob(t)
	_, err = f.jobsFixture.uc.ChangeStatus(ctx, f.employer, closed.ID, job.StatusClosed)
	require.NoError(t, err)
	_, err = f.uc.Apply(ctx, uuid.New(), closed.ID, ApplyInput{})
	assert.ErrorIs(t, err, ErrJobClosed)

	_, err = f.uc.Apply(ctx, uuid.New(), uuid.New(), ApplyInput{})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestApplication_Review(t *testing.T) {
	f := newAppsFixture(t)
	ctx := context.Background()
	p := f.publishedJob(t)
	candidateID := uuid.New()

	a, err := f.uc.Apply(ctx, candidateID, p.ID, ApplyInput{})
	require.NoError(t, err)

	_, err = f.uc.ListForJob(ctx, f.agency, p.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	items, err := f.uc.ListForJob(ctx, f.employer, p.ID, application.StatusSubmitted)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.uc.ChangeStatus(ctx, f.employer, a.ID, application.StatusWithdrawn)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.uc.ChangeStatus(ctx, f.employer, a.ID, application.StatusHired)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	a, err = f.uc.ChangeStatus(ctx, f.employer, a.ID, application.StatusReviewing)
	require.NoError(t, err)
	assert.Equal(t, application.StatusReviewing, a.Status)

	_, err = f.uc.Withdraw(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	a, err = f.uc.Withdraw(ctx, candidateID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, a.Status)

	mine, err := f.uc.ListMine(ctx, candidateID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
