package candidate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrEndBeforeStart   = errors.New("end date before start date")
	ErrCurrentWithEnd   = errors.New("current entry cannot have an end date")
	ErrProficiencyRange = errors.New("proficiency level must be between 1 and 5")
)

// Entry is implemented by every repeatable profile section.
type Entry interface {
	EntryID() uuid.UUID
	Check() error
}

type Profile struct {
	UserID        uuid.UUID `json:"user_id"`
	Headline      *string   `json:"headline" validate:"omitempty,max=160"`
	Summary       *string   `json:"summary" validate:"omitempty,max=4000"`
	Phone         *string   `json:"phone" validate:"omitempty,max=32"`
	Location      *string   `json:"location" validate:"omitempty,max=160"`
	DateOfBirth   *string   `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	CVFileKey     *string   `json:"cv_file_key"`
	AvatarFileKey *string   `json:"avatar_file_key"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type WorkExperience struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Company        string    `json:"company" validate:"required,max=200"`
	Title          string    `json:"title" validate:"required,max=200"`
	EmploymentType *string   `json:"employment_type" validate:"omitempty,max=50"`
	Location       *string   `json:"location" validate:"omitempty,max=160"`
	StartDate      string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent      bool      `json:"is_current"`
	Description    *string   `json:"description" validate:"omitempty,max=4000"`
}

func (w WorkExperience) EntryID() uuid.UUID { return w.ID }

func (w WorkExperience) Check() error {
	return checkSpan(&w.StartDate, w.EndDate, w.IsCurrent)
}

type Education struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Institution  string    `json:"institution" validate:"required,max=200"`
	Degree       *string   `json:"degree" validate:"omitempty,max=120"`
	FieldOfStudy *string   `json:"field_of_study" validate:"omitempty,max=120"`
	StartDate    *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Grade        *string   `json:"grade" validate:"omitempty,max=50"`
	Description  *string   `json:"description" validate:"omitempty,max=4000"`
}

func (e Education) EntryID() uuid.UUID { return e.ID }

func (e Education) Check() error {
	return checkSpan(e.StartDate, e.EndDate, false)
}

type Skill struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	SkillID          uuid.UUID `json:"skill_id"`
	SkillName        string    `json:"skill_name" validate:"required_without=SkillID,max=100"`
	ProficiencyLevel int       `json:"proficiency_level" validate:"min=1,max=5"`
	YearsExperience  int       `json:"years_experience" validate:"min=0,max=60"`
}

func (s Skill) EntryID() uuid.UUID { return s.ID }

func (s Skill) Check() error {
	if s.ProficiencyLevel < 1 || s.ProficiencyLevel > 5 {
		return ErrProficiencyRange
	}
	return nil
}

type Certificate struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name" validate:"required,max=200"`
	Issuer        *string   `json:"issuer" validate:"omitempty,max=200"`
	IssueDate     *string   `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate    *string   `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	CredentialID  *string   `json:"credential_id" validate:"omitempty,max=200"`
	CredentialURL *string   `json:"credential_url" validate:"omitempty,url"`
	FileKey       *string   `json:"file_key"`
}

func (c Certificate) EntryID() uuid.UUID { return c.ID }

func (c Certificate) Check() error {
	return checkSpan(c.IssueDate, c.ExpiryDate, false)
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Role        *string   `json:"role" validate:"omitempty,max=120"`
	URL         *string   `json:"url" validate:"omitempty,url"`
	StartDate   *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Description *string   `json:"description" validate:"omitempty,max=4000"`
}

func (p Project) EntryID() uuid.UUID { return p.ID }

func (p Project) Check() error {
	return checkSpan(p.StartDate, p.EndDate, false)
}

type Award struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Issuer      *string   `json:"issuer" validate:"omitempty,max=200"`
	AwardedAt   *string   `json:"awarded_at" validate:"omitempty,datetime=2006-01-02"`
	Description *string   `json:"description" validate:"omitempty,max=4000"`
}

func (a Award) EntryID() uuid.UUID { return a.ID }

func (a Award) Check() error {
	if a.AwardedAt != nil {
		if _, err := time.Parse(DateLayout, *a.AwardedAt); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

type Volunteering struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Organization string    `json:"organization" validate:"required,max=200"`
	Role         *string   `json:"role" validate:"omitempty,max=120"`
	Cause        *string   `json:"cause" validate:"omitempty,max=120"`
	StartDate    *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent    bool      `json:"is_current"`
	Description  *string   `json:"description" validate:"omitempty,max=4000"`
}

func (v Volunteering) EntryID() uuid.UUID { return v.ID }

func (v Volunteering) Check() error {
	return checkSpan(v.StartDate, v.EndDate, v.IsCurrent)
}

// FullProfile is the candidate profile with every section loaded.
type FullProfile struct {
	Profile         Profile          `json:"profile"`
	WorkExperiences []WorkExperience `json:"work_experiences"`
	Educations      []Education      `json:"educations"`
	Skills          []Skill          `json:"skills"`
	Certificates    []Certificate    `json:"certificates"`
	Projects        []Project        `json:"projects"`
	Awards          []Award          `json:"awards"`
	Volunteering    []Volunteering   `json:"volunteering"`
}

// FullProfileInput replaces sections wholesale. A nil section is left
// untouched; a non-nil empty slice clears it.
type FullProfileInput struct {
	Profile         *Profile          `json:"profile"`
	WorkExperiences *[]WorkExperience `json:"work_experiences" validate:"omitempty,dive"`
	Educations      *[]Education      `json:"educations" validate:"omitempty,dive"`
	Skills          *[]Skill          `json:"skills" validate:"omitempty,dive"`
	Certificates    *[]Certificate    `json:"certificates" validate:"omitempty,dive"`
	Projects        *[]Project        `json:"projects" validate:"omitempty,dive"`
	Awards          *[]Award          `json:"awards" validate:"omitempty,dive"`
	Volunteering    *[]Volunteering   `json:"volunteering" validate:"omitempty,dive"`
}

func checkSpan(start, end *string, current bool) error {
	var s, e time.Time
	var err error
	if start != nil {
		if s, err = time.Parse(DateLayout, *start); err != nil {
			return ErrInvalidDate
		}
	}
	if end != nil {
		if current {
			return ErrCurrentWithEnd
		}
		if e, err = time.Parse(DateLayout, *end); err != nil {
			return ErrInvalidDate
		}
	}
	if start != nil && end != nil && e.Before(s) {
		return ErrEndBeforeStart
	}
	return nil
}
