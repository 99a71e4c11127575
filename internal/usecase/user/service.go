package user

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
	ErrInternal     = errors.New("internal error")
)

// UpdateMeInput holds the fields a user may change on their own account.
// Nil fields are left as they are; an empty phone or avatar clears it.
type UpdateMeInput struct {
	FullName      *string
	Phone         *string
	AvatarFileKey *string
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" || len(name) > 160 {
			return user.User{}, ErrInvalidInput
		}
		usr.FullName = name
	}
	if in.Phone != nil {
		usr.Phone = optional(*in.Phone)
		if usr.Phone != nil && len(*usr.Phone) > 32 {
			return user.User{}, ErrInvalidInput
		}
	}
	if in.AvatarFileKey != nil {
		usr.AvatarFileKey = optional(*in.AvatarFileKey)
	}

	if err := s.users.UpdateUser(ctx, usr); err != nil {
		return user.User{}, ErrInternal
	}

	updated, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(updated), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
