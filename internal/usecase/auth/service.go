package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"
	"talenthub/internal/infrastructure/otp"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
	ErrRoleNotAllowed         = errors.New("role cannot self-register")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrAlreadyVerified        = errors.New("email already verified")
	ErrOTPInvalid             = errors.New("invalid verification code")
	ErrOTPExpired             = errors.New("verification code expired")
	ErrOTPAttemptsExceeded    = errors.New("too many verification attempts")
	ErrOTPCooldown            = errors.New("verification code recently sent")
	ErrOTPUnavailable         = errors.New("verification temporarily unavailable")
)

// CooldownError is returned by ResendOTP while the previous code is still
// inside its resend window.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrOTPCooldown, e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool { return target == ErrOTPCooldown }

// RetryAfterSeconds rounds up so clients never retry early.
func (e *CooldownError) RetryAfterSeconds() int {
	s := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		s++
	}
	return s
}

type RegisterInput struct {
	Email            string
	Password         string
	FullName         string
	Phone            *string
	Role             user.Role
	OrganizationName string
}

type LoginInput struct {
	Email    string
	Password string
}

type CreateMISInput struct {
	Email    string
	Password string
	FullName string
}

type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
	Cooldown(ctx context.Context, email string) (time.Duration, error)
}

type OTPMailer interface {
	SendOTP(ctx context.Context, to, fullName, code string, ttl time.Duration) error
}

type Service struct {
	users  user.Repository
	otps   OTPStore
	mailer OTPMailer
	otpTTL time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewService(users user.Repository, otps OTPStore, mailer OTPMailer, otpTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		users:  users,
		otps:   otps,
		mailer: mailer,
		otpTTL: otpTTL,
		logger: logger.OrNop(log).Named("auth"),
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return user.User{}, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = user.RoleCandidate
	}
	if !role.Valid() {
		return user.User{}, ErrInvalidInput
	}
	if !role.SelfRegistrable() {
		return user.User{}, ErrRoleNotAllowed
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	u, err := newUser(email, in.Password, fullName, role, s.now())
	if err != nil {
		return user.User{}, err
	}
	u.Phone = in.Phone

	switch role {
	case user.RoleEmployer, user.RoleAgency:
		orgName := strings.TrimSpace(in.OrganizationName)
		if orgName == "" {
			orgName = fullName
		}
		org := organization.Organization{
			ID:   uuid.New(),
			Kind: organization.Kind(role),
			Name: orgName,
		}
		err = s.users.CreateUserWithOrganization(ctx, u, org)
	default:
		err = s.users.CreateUser(ctx, u)
	}
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		s.logger.Error("create user failed", zap.String("email", email), zap.Error(err))
		return user.User{}, ErrInternal
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}

	// The account exists at this point; a failed send is recoverable through
	// ResendOTP so it is only logged.
	if err := s.sendCode(ctx, created); err != nil {
		s.logger.Warn("otp not sent after registration", zap.String("email", email), zap.Error(err))
	}

	return sanitizeUser(created), nil
}

func (s *Service) VerifyEmail(ctx context.Context, email, code string) (user.User, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return user.User{}, ErrInvalidInput
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrOTPExpired
		}
		return user.User{}, ErrInternal
	}
	if u.EmailVerified {
		return user.User{}, ErrAlreadyVerified
	}

	if err := s.otps.Verify(ctx, email, code); err != nil {
		switch {
		case errors.Is(err, otp.ErrMismatch):
			return user.User{}, ErrOTPInvalid
		case errors.Is(err, otp.ErrExpired):
			return user.User{}, ErrOTPExpired
		case errors.Is(err, otp.ErrTooManyAttempts):
			return user.User{}, ErrOTPAttemptsExceeded
		}
		s.logger.Error("otp verify failed", zap.String("email", email), zap.Error(err))
		return user.User{}, ErrOTPUnavailable
	}

	if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
		return user.User{}, ErrInternal
	}
	verified, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(verified), nil
}

// ResendOTP answers nil for unknown and already verified addresses so the
// endpoint cannot be used to probe registered emails.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return ErrInternal
	}
	if u.EmailVerified {
		return nil
	}

	wait, err := s.otps.Cooldown(ctx, email)
	if err != nil {
		s.logger.Error("otp cooldown lookup failed", zap.String("email", email), zap.Error(err))
		return ErrOTPUnavailable
	}
	if wait > 0 {
		return &CooldownError{RetryAfter: wait}
	}

	if err := s.sendCode(ctx, u); err != nil {
		s.logger.Error("otp resend failed", zap.String("email", email), zap.Error(err))
		return ErrOTPUnavailable
	}
	return nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return user.User{}, ErrInvalidCredentials
	}
	if in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return user.User{}, ErrEmailNotVerified
	}

	return sanitizeUser(u), nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || !isValidPassword(next) {
		return ErrInvalidInput
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return ErrInternal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return ErrInternal
	}
	return nil
}

// CreateMIS provisions an already verified back-office account.
func (s *Service) CreateMIS(ctx context.Context, in CreateMISInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || fullName == "" || !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}

	u, err := newUser(email, in.Password, fullName, user.RoleMIS, s.now())
	if err != nil {
		return user.User{}, err
	}
	u.EmailVerified = true

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}
	if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
		return user.User{}, ErrInternal
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

func (s *Service) sendCode(ctx context.Context, u user.User) error {
	code, err := s.otps.Issue(ctx, u.Email)
	if err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, u.Email, u.FullName, code, s.otpTTL)
}

func newUser(email, password, fullName string, role user.Role, now time.Time) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		CreatedAt:    now.UTC(),
	}, nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	pw = strings.TrimSpace(pw)
	if len(pw) < 8 {
		return false
	}
	return true
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
