package matching

import (
	"testing"

	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	goID, sqlID, dockerID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name          string
		skills        []candidate.Skill
		reqs          []job.SkillRequirement
		wantScore     int
		wantMandatory bool
		wantMissing   int
	}{
		{
			name:      "no requirements",
			wantScore: 100,
		},
		{
			name: "full match",
			skills: []candidate.Skill{
				{SkillID: goID, SkillName: "Go", ProficiencyLevel: 5, YearsExperience: 4},
				{SkillID: dockerID, SkillName: "Docker", ProficiencyLevel: 3, YearsExperience: 2},
			},
			reqs: []job.SkillRequirement{
				{SkillID: goID, SkillName: "Go", IsRequired: true, MinProficiency: 4, MinYears: 3},
				{SkillID: dockerID, SkillName: "Docker", MinProficiency: 2, MinYears: 1},
			},
			wantScore: 100,
		},
		{
			name: "missing required skill",
			skills: []candidate.Skill{
				{SkillID: dockerID, SkillName: "Docker", ProficiencyLevel: 3, YearsExperience: 2},
			},
			reqs: []job.SkillRequirement{
				{SkillID: goID, SkillName: "Go", IsRequired: true, MinProficiency: 3},
				{SkillID: dockerID, SkillName: "Docker", MinProficiency: 3},
			},
			// 30 optional + 10 * (1/2) experience
			wantScore:     35,
			wantMandatory: true,
			wantMissing:   1,
		},
		{
			name: "partial proficiency and experience",
			skills: []candidate.Skill{
				{SkillID: goID, SkillName: "Go", ProficiencyLevel: 2, YearsExperience: 1},
			},
			reqs: []job.SkillRequirement{
				{SkillID: goID, SkillName: "Go", IsRequired: true, MinProficiency: 4, MinYears: 2},
			},
			// 90 * 2/4 + 10 * 1/2
			wantScore: 50,
		},
		{
			name: "matches by name when ids differ",
			skills: []candidate.Skill{
				{SkillID: uuid.New(), SkillName: "postgresql", ProficiencyLevel: 4, YearsExperience: 3},
			},
			reqs: []job.SkillRequirement{
				{SkillID: sqlID, SkillName: "PostgreSQL", IsRequired: true, MinProficiency: 3},
			},
			wantScore: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.skills, tt.reqs)
			assert.Equal(t, tt.wantScore, got.MatchScore)
			assert.Equal(t, tt.wantMandatory, got.MandatoryMissing)
			assert.Len(t, got.MissingSkills, tt.wantMissing)
		})
	}
}

func TestCalculate_ScoreBounds(t *testing.T) {
	id := uuid.New()
	got := Calculate(
		[]candidate.Skill{{SkillID: id, ProficiencyLevel: 9, YearsExperience: 40}},
		[]job.SkillRequirement{{SkillID: id, SkillName: "Go", IsRequired: true, MinProficiency: 0}},
	)
	assert.Equal(t, 100, got.MatchScore)
	assert.Len(t, got.MatchedSkills, 1)
}
