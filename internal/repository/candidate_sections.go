package repository

import (
	"talenthub/internal/database"
	"talenthub/internal/domain/candidate"

	"github.com/google/uuid"
)

func newSectionRepository[T any](db database.DB, t sectionTable[T]) *PostgresSectionRepository[T] {
	return &PostgresSectionRepository[T]{db: db, t: t}
}

func dateCols(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

func NewWorkExperienceRepository(db database.DB) *PostgresSectionRepository[candidate.WorkExperience] {
	return newSectionRepository(db, sectionTable[candidate.WorkExperience]{
		table:   "work_experiences",
		columns: []string{"company", "title", "employment_type", "location", "start_date", "end_date", "is_current", "description"},
		dates:   dateCols("start_date", "end_date"),
		orderBy: "is_current DESC, start_date DESC, created_at ASC",
		values: func(w candidate.WorkExperience) []any {
			return []any{w.Company, w.Title, w.EmploymentType, w.Location, w.StartDate, w.EndDate, w.IsCurrent, w.Description}
		},
		scan: func(row database.Row) (candidate.WorkExperience, error) {
			var w candidate.WorkExperience
			err := row.Scan(&w.ID, &w.UserID, &w.Company, &w.Title, &w.EmploymentType, &w.Location, &w.StartDate, &w.EndDate, &w.IsCurrent, &w.Description)
			return w, err
		},
		keys: func(w *candidate.WorkExperience) (*uuid.UUID, *uuid.UUID) { return &w.ID, &w.UserID },
	})
}

func NewEducationRepository(db database.DB) *PostgresSectionRepository[candidate.Education] {
	return newSectionRepository(db, sectionTable[candidate.Education]{
		table:   "educations",
		columns: []string{"institution", "degree", "field_of_study", "start_date", "end_date", "grade", "description"},
		dates:   dateCols("start_date", "end_date"),
		orderBy: "start_date DESC NULLS LAST, created_at ASC",
		values: func(e candidate.Education) []any {
			return []any{e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.Grade, e.Description}
		},
		scan: func(row database.Row) (candidate.Education, error) {
			var e candidate.Education
			err := row.Scan(&e.ID, &e.UserID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate, &e.Grade, &e.Description)
			return e, err
		},
		keys: func(e *candidate.Education) (*uuid.UUID, *uuid.UUID) { return &e.ID, &e.UserID },
	})
}

func NewCertificateRepository(db database.DB) *PostgresSectionRepository[candidate.Certificate] {
	return newSectionRepository(db, sectionTable[candidate.Certificate]{
		table:   "certificates",
		columns: []string{"name", "issuer", "issue_date", "expiry_date", "credential_id", "credential_url", "file_key"},
		dates:   dateCols("issue_date", "expiry_date"),
		orderBy: "issue_date DESC NULLS LAST, created_at ASC",
		values: func(c candidate.Certificate) []any {
			return []any{c.Name, c.Issuer, c.IssueDate, c.ExpiryDate, c.CredentialID, c.CredentialURL, c.FileKey}
		},
		scan: func(row database.Row) (candidate.Certificate, error) {
			var c candidate.Certificate
			err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.IssueDate, &c.ExpiryDate, &c.CredentialID, &c.CredentialURL, &c.FileKey)
			return c, err
		},
		keys: func(c *candidate.Certificate) (*uuid.UUID, *uuid.UUID) { return &c.ID, &c.UserID },
	})
}

func NewProjectRepository(db database.DB) *PostgresSectionRepository[candidate.Project] {
	return newSectionRepository(db, sectionTable[candidate.Project]{
		table:   "projects",
		columns: []string{"name", "role", "url", "start_date", "end_date", "description"},
		dates:   dateCols("start_date", "end_date"),
		orderBy: "start_date DESC NULLS LAST, created_at ASC",
		values: func(p candidate.Project) []any {
			return []any{p.Name, p.Role, p.URL, p.StartDate, p.EndDate, p.Description}
		},
		scan: func(row database.Row) (candidate.Project, error) {
			var p candidate.Project
			err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Role, &p.URL, &p.StartDate, &p.EndDate, &p.Description)
			return p, err
		},
		keys: func(p *candidate.Project) (*uuid.UUID, *uuid.UUID) { return &p.ID, &p.UserID },
	})
}

func NewAwardRepository(db database.DB) *PostgresSectionRepository[candidate.Award] {
	return newSectionRepository(db, sectionTable[candidate.Award]{
		table:   "awards",
		columns: []string{"title", "issuer", "awarded_at", "description"},
		dates:   dateCols("awarded_at"),
		orderBy: "awarded_at DESC NULLS LAST, created_at ASC",
		values: func(a candidate.Award) []any {
			return []any{a.Title, a.Issuer, a.AwardedAt, a.Description}
		},
		scan: func(row database.Row) (candidate.Award, error) {
			var a candidate.Award
			err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Issuer, &a.AwardedAt, &a.Description)
			return a, err
		},
		keys: func(a *candidate.Award) (*uuid.UUID, *uuid.UUID) { return &a.ID, &a.UserID },
	})
}

func NewVolunteeringRepository(db database.DB) *PostgresSectionRepository[candidate.Volunteering] {
	return newSectionRepository(db, sectionTable[candidate.Volunteering]{
		table:   "volunteering",
		columns: []string{"organization", "role", "cause", "start_date", "end_date", "is_current", "description"},
		dates:   dateCols("start_date", "end_date"),
		orderBy: "is_current DESC, start_date DESC NULLS LAST, created_at ASC",
		values: func(v candidate.Volunteering) []any {
			return []any{v.Organization, v.Role, v.Cause, v.StartDate, v.EndDate, v.IsCurrent, v.Description}
		},
		scan: func(row database.Row) (candidate.Volunteering, error) {
			var v candidate.Volunteering
			err := row.Scan(&v.ID, &v.UserID, &v.Organization, &v.Role, &v.Cause, &v.StartDate, &v.EndDate, &v.IsCurrent, &v.Description)
			return v, err
		},
		keys: func(v *candidate.Volunteering) (*uuid.UUID, *uuid.UUID) { return &v.ID, &v.UserID },
	})
}
