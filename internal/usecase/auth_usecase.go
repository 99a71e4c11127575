package usecase

import (
	"context"
	"errors"

	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/jwt"
	ucauth "talenthub/internal/usecase/auth"

	"github.com/google/uuid"
)

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error)
	VerifyEmail(ctx context.Context, email, code string) (user.User, string, string, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

type Auth struct {
	authSvc *ucauth.Service
	users   user.Repository
	jwt     jwt.Service
}

func NewAuthUsecase(authSvc *ucauth.Service, users user.Repository, jwtSvc jwt.Service) *Auth {
	return &Auth{authSvc: authSvc, users: users, jwt: jwtSvc}
}

// Register creates the account and mails a verification code. Tokens are
// only issued once the email is verified.
func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error) {
	return u.authSvc.Register(ctx, in)
}

func (u *Auth) VerifyEmail(ctx context.Context, email, code string) (user.User, string, string, error) {
	usr, err := u.authSvc.VerifyEmail(ctx, email, code)
	if err != nil {
		return user.User{}, "", "", err
	}

	access, refresh, err := u.issueTokens(usr)
	if err != nil {
		return user.User{}, "", "", err
	}
	return usr, access, refresh, nil
}

func (u *Auth) ResendOTP(ctx context.Context, email string) error {
	return u.authSvc.ResendOTP(ctx, email)
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, string, string, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, "", "", err
	}

	access, refresh, err := u.issueTokens(usr)
	if err != nil {
		return user.User{}, "", "", err
	}
	return usr, access, refresh, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}

	usr, err := u.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", "", ErrUnauthorized
		}
		return "", "", ErrInternal
	}
	if !usr.EmailVerified {
		return "", "", ErrUnauthorized
	}

	return u.issueTokens(usr)
}

func (u *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return u.authSvc.ChangePassword(ctx, userID, current, next)
}

func (u *Auth) issueTokens(usr user.User) (string, string, error) {
	pair, err := u.jwt.IssuePair(jwt.Subject{UserID: usr.ID, Email: usr.Email, Role: string(usr.Role)})
	if err != nil {
		return "", "", ErrInternal
	}
	return pair.AccessToken, pair.RefreshToken, nil
}
