package job

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusClosed
}

var transitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusClosed},
	StatusPublished: {StatusClosed},
	StatusClosed:    {StatusPublished},
}

// CanTransition reports whether a posting may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Events broadcast to websocket listeners when a posting changes visibility.
const (
	EventPublished = "job_posted"
	EventClosed    = "job_closed"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"
)

func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentTemporary:
		return true
	}
	return false
}

type WorkMode string

const (
	WorkModeOnsite WorkMode = "onsite"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
)

func (w WorkMode) Valid() bool {
	return w == WorkModeOnsite || w == WorkModeRemote || w == WorkModeHybrid
}

type SkillRequirement struct {
	SkillID        uuid.UUID `json:"skill_id"`
	SkillName      string    `json:"skill_name"`
	IsRequired     bool      `json:"is_required"`
	MinProficiency int       `json:"min_proficiency"`
	MinYears       int       `json:"min_years"`
}

type Posting struct {
	ID             uuid.UUID          `json:"id"`
	EmployerID     uuid.UUID          `json:"employer_id"`
	EmployerName   string             `json:"employer_name"`
	CreatedBy      uuid.UUID          `json:"created_by"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Location       *string            `json:"location"`
	EmploymentType EmploymentType     `json:"employment_type"`
	WorkMode       WorkMode           `json:"work_mode"`
	SalaryMin      *int64             `json:"salary_min"`
	SalaryMax      *int64             `json:"salary_max"`
	Currency       *string            `json:"currency"`
	Status         Status             `json:"status"`
	Skills         []SkillRequirement `json:"skills"`
	PublishedAt    *time.Time         `json:"published_at"`
	ClosesAt       *time.Time         `json:"closes_at"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type ListFilter struct {
	Query string
	// QueryVariants, when set, replaces Query with an OR over each term.
	QueryVariants  []string
	Location       string
	EmploymentType string
	WorkMode       string
	Skills         []string
	EmployerID     *uuid.UUID
	Statuses       []Status
	// EmployerIDs restricts results to postings of these employers.
	EmployerIDs []uuid.UUID
	CreatedBy   *uuid.UUID
	Limit       int
	Offset      int
}
