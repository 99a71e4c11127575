package usecase

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/domain/file"
	"talenthub/internal/domain/user"
	"talenthub/internal/repository"
	ucuser "talenthub/internal/usecase/user"

	"github.com/google/uuid"
)

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (user.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in ucuser.UpdateMeInput) (user.User, error)
	ListUsers(ctx context.Context, f user.ListFilter) ([]user.User, int, error)
}

type User struct {
	svc   *ucuser.Service
	users user.Repository
	files repository.FileRepository
}

func NewUserUsecase(users user.Repository, files repository.FileRepository) *User {
	return &User{svc: ucuser.NewService(users), users: users, files: files}
}

func (u *User) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return u.svc.GetMe(ctx, userID)
}

func (u *User) UpdateMe(ctx context.Context, userID uuid.UUID, in ucuser.UpdateMeInput) (user.User, error) {
	if in.AvatarFileKey != nil && strings.TrimSpace(*in.AvatarFileKey) != "" {
		if err := checkOwnedFile(ctx, u.files, userID, strings.TrimSpace(*in.AvatarFileKey), file.PurposeAvatar); err != nil {
			return user.User{}, err
		}
	}
	return u.svc.UpdateMe(ctx, userID, in)
}

func (u *User) ListUsers(ctx context.Context, f user.ListFilter) ([]user.User, int, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, ErrInvalidInput
	}
	items, total, err := u.users.ListUsers(ctx, f)
	if err != nil {
		return nil, 0, ErrInternal
	}
	for i := range items {
		items[i].PasswordHash = ""
	}
	return items, total, nil
}

// checkOwnedFile makes sure key names an upload of the caller with the
// expected purpose before it is attached to a record.
func checkOwnedFile(ctx context.Context, files repository.FileRepository, ownerID uuid.UUID, key string, purpose file.Purpose) error {
	f, err := files.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrInvalidInput
		}
		return ErrInternal
	}
	if f.OwnerID != ownerID || f.Purpose != purpose {
		return ErrInvalidInput
	}
	return nil
}
