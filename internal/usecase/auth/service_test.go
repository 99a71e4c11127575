package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"
	"talenthub/internal/infrastructure/otp"
	"talenthub/internal/repository"
)

type fakeUsers struct {
	byID map[uuid.UUID]user.User
	orgs []organization.Organization
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]user.User{}}
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, u user.User) error {
	if ok, _ := f.ExistsByEmail(ctx, u.Email); ok {
		return repository.ErrEmailTaken
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) CreateUserWithOrganization(ctx context.Context, u user.User, org organization.Organization) error {
	if err := f.CreateUser(ctx, u); err != nil {
		return err
	}
	org.OwnerUserID = &u.ID
	f.orgs = append(f.orgs, org)
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) UpdateUser(_ context.Context, u user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u := f.byID[id]
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	u := f.byID[id]
	u.EmailVerified = true
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) ListUsers(context.Context, user.ListFilter) ([]user.User, int, error) {
	return nil, 0, nil
}

type fakeOTP struct {
	codes    map[string]string
	cooldown time.Duration
	issueErr error
}

func (f *fakeOTP) Issue(_ context.Context, email string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.codes[email] = "123456"
	return "123456", nil
}

func (f *fakeOTP) Verify(_ context.Context, email, code string) error {
	want, ok := f.codes[email]
	if !ok {
		return otp.ErrExpired
	}
	if want != code {
		return otp.ErrMismatch
	}
	delete(f.codes, email)
	return nil
}

func (f *fakeOTP) Cooldown(context.Context, string) (time.Duration, error) {
	return f.cooldown, nil
}

type sentMail struct {
	to, code string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendOTP(_ context.Context, to, _, code string, _ time.Duration) error {
	f.sent = append(f.sent, sentMail{to: to, code: code})
	return nil
}

type authFixture struct {
	svc    *Service
	users  *fakeUsers
	otps   *fakeOTP
	mailer *fakeMailer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUsers(),
		otps:   &fakeOTP{codes: map[string]string{}},
		mailer: &fakeMailer{},
	}
	f.svc = NewService(f.users, f.otps, f.mailer, 10*time.Minute, nil)
	return f
}

func TestRegister_CandidateGetsCode(t *testing.T) {
	f := newAuthFixture()

	u, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "  Jane@Example.com ",
		Password: "secret123",
		FullName: "Jane",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, user.RoleCandidate, u.Role)
	assert.False(t, u.EmailVerified)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, []sentMail{{to: "jane@example.com", code: "123456"}}, f.mailer.sent)
	assert.Empty(t, f.users.orgs)
}

func TestRegister_EmployerCreatesOrganization(t *testing.T) {
	f := newAuthFixture()

	u, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "boss@acme.io",
		Password: "secret123",
		FullName: "Boss",
		Role:     user.RoleEmployer,
	})
	require.NoError(t, err)
	require.Len(t, f.users.orgs, 1)
	assert.Equal(t, organization.KindEmployer, f.users.orgs[0].Kind)
	assert.Equal(t, "Boss", f.users.orgs[0].Name)
	assert.Equal(t, u.ID, *f.users.orgs[0].OwnerUserID)
}

func TestRegister_Rejects(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short", FullName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A", Role: user.RoleMIS})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A"})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, RegisterInput{Email: "A@b.c", Password: "secret123", FullName: "A"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestRegister_SurvivesMailFailure(t *testing.T) {
	f := newAuthFixture()
	f.otps.issueErr = otp.ErrUnavailable

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A"})
	assert.NoError(t, err)
}

func TestVerifyEmailThenLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = f.svc.VerifyEmail(ctx, "a@b.c", "000000")
	assert.ErrorIs(t, err, ErrOTPInvalid)

	u, err := f.svc.VerifyEmail(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	_, err = f.svc.VerifyEmail(ctx, "a@b.c", "123456")
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := f.svc.Login(ctx, LoginInput{Email: "A@B.C", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
}

func TestVerifyEmail_UnknownAddress(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.VerifyEmail(context.Background(), "ghost@b.c", "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestResendOTP(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	assert.NoError(t, f.svc.ResendOTP(ctx, "ghost@b.c"))
	assert.Empty(t, f.mailer.sent)

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123", FullName: "A"})
	require.NoError(t, err)

	f.otps.cooldown = 1500 * time.Millisecond
	err = f.svc.ResendOTP(ctx, "a@b.c")
	require.ErrorIs(t, err, ErrOTPCooldown)
	var cd *CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 2, cd.RetryAfterSeconds())

	f.otps.cooldown = 0
	require.NoError(t, f.svc.ResendOTP(ctx, "a@b.c"))
	assert.Len(t, f.mailer.sent, 2)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.CreateMIS(ctx, CreateMISInput{Email: "ops@b.c", Password: "secret123", FullName: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleMIS, u.Role)
	assert.True(t, u.EmailVerified)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, u.ID, "wrong-pass", "newsecret1"), ErrInvalidCredentials)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, u.ID, "secret123", "short"), ErrInvalidInput)
	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "secret123", "newsecret1"))

	_, err = f.svc.Login(ctx, LoginInput{Email: "ops@b.c", Password: "newsecret1"})
	assert.NoError(t, err)
}
