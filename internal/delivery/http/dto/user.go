package dto

import (
	"time"

	"talenthub/internal/domain/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Phone         *string    `json:"phone"`
	AvatarFileKey *string    `json:"avatar_file_key"`
	Role          user.Role  `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"email_verified_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Phone:         u.Phone,
		AvatarFileKey: u.AvatarFileKey,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		VerifiedAt:    u.EmailVerifiedAt,
		CreatedAt:     u.CreatedAt,
	}
}

func NewUserResponses(items []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(items))
	for _, u := range items {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type UpdateMeRequest struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	AvatarFileKey *string `json:"avatar_file_key"`
}
