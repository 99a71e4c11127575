package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleMIS       Role = "mis"
	RoleAgency    Role = "agency"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleEmployer, RoleMIS, RoleAgency:
		return true
	}
	return false
}

// SelfRegistrable reports whether accounts of this role may sign up on their own.
// MIS accounts are provisioned by operators.
func (r Role) SelfRegistrable() bool {
	return r == RoleCandidate || r == RoleEmployer || r == RoleAgency
}

// ManagesPostings reports whether the role can create or edit job postings.
func (r Role) ManagesPostings() bool {
	return r == RoleEmployer || r == RoleAgency || r == RoleMIS
}

type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	FullName        string     `json:"full_name"`
	Phone           *string    `json:"phone"`
	AvatarFileKey   *string    `json:"avatar_file_key"`
	Role            Role       `json:"role"`
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ListFilter struct {
	Role   Role
	Limit  int
	Offset int
}
