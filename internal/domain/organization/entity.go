package organization

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindEmployer Kind = "employer"
	KindAgency   Kind = "agency"
)

// Organization is the company record behind an employer or agency account.
// OwnerUserID is nil for employers created by MIS staff on their behalf.
type Organization struct {
	ID          uuid.UUID  `json:"id"`
	OwnerUserID *uuid.UUID `json:"owner_user_id"`
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Website     *string    `json:"website"`
	Industry    *string    `json:"industry"`
	CompanySize *string    `json:"company_size"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	LogoFileKey *string    `json:"logo_file_key"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListFilter struct {
	Kind     Kind
	Verified *bool
	Query    string
	Limit    int
	Offset   int
}
