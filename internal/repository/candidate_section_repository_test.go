package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionTableSQL(t *testing.T) {
	tbl := NewAwardRepository(nil).t

	assert.Equal(t,
		"id, user_id, title, issuer, to_char(awarded_at, 'YYYY-MM-DD'), description",
		tbl.selectList(),
	)
	assert.Equal(t,
		"INSERT INTO awards (id, user_id, title, issuer, awarded_at, description) VALUES ($1, $2, $3, $4, $5::date, $6) "+
			"RETURNING id, user_id, title, issuer, to_char(awarded_at, 'YYYY-MM-DD'), description",
		tbl.insertSQL(),
	)
	assert.Equal(t,
		"UPDATE awards SET title = $3, issuer = $4, awarded_at = $5::date, description = $6, updated_at = now() "+
			"WHERE id = $1 AND user_id = $2 "+
			"RETURNING id, user_id, title, issuer, to_char(awarded_at, 'YYYY-MM-DD'), description",
		tbl.updateSQL(),
	)
}

func TestSectionTables_ValuesMatchColumns(t *testing.T) {
	cases := []struct {
		name    string
		columns int
		values  int
	}{
		{"work_experiences", len(NewWorkExperienceRepository(nil).t.columns), len(NewWorkExperienceRepository(nil).t.values(zeroOf(NewWorkExperienceRepository(nil))))},
		{"educations", len(NewEducationRepository(nil).t.columns), len(NewEducationRepository(nil).t.values(zeroOf(NewEducationRepository(nil))))},
		{"certificates", len(NewCertificateRepository(nil).t.columns), len(NewCertificateRepository(nil).t.values(zeroOf(NewCertificateRepository(nil))))},
		{"projects", len(NewProjectRepository(nil).t.columns), len(NewProjectRepository(nil).t.values(zeroOf(NewProjectRepository(nil))))},
		{"awards", len(NewAwardRepository(nil).t.columns), len(NewAwardRepository(nil).t.values(zeroOf(NewAwardRepository(nil))))},
		{"volunteering", len(NewVolunteeringRepository(nil).t.columns), len(NewVolunteeringRepository(nil).t.values(zeroOf(NewVolunteeringRepository(nil))))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.columns, tc.values)
		})
	}
}

func zeroOf[T any](_ *PostgresSectionRepository[T]) T {
	var zero T
	return zero
}
