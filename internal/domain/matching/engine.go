package matching

import (
	"math"
	"strings"

	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/job"

	"github.com/google/uuid"
)

const (
	requiredPoints   = 60.0
	optionalPoints   = 30.0
	experiencePoints = 10.0
)

type MatchedSkill struct {
	SkillID           uuid.UUID `json:"skill_id"`
	SkillName         string    `json:"skill_name"`
	ScoreContribution int       `json:"score_contribution"`
}

type MissingSkill struct {
	SkillID    uuid.UUID `json:"skill_id"`
	SkillName  string    `json:"skill_name"`
	IsRequired bool      `json:"is_required"`
}

type Result struct {
	MatchScore       int            `json:"match_score"`
	MandatoryMissing bool           `json:"mandatory_missing"`
	MatchedSkills    []MatchedSkill `json:"matched_skills"`
	MissingSkills    []MissingSkill `json:"missing_skills"`
}

// Calculate scores a candidate's skills against a posting's requirements.
// Required skills share 60 points, optional ones 30 and experience 10. When a
// posting has only one kind of skill, that kind takes both skill shares. A
// posting without requirements matches everyone fully.
func Calculate(skills []candidate.Skill, reqs []job.SkillRequirement) Result {
	byID := make(map[uuid.UUID]candidate.Skill, len(skills))
	byName := make(map[string]candidate.Skill, len(skills))
	for _, s := range skills {
		if s.SkillID != uuid.Nil {
			byID[s.SkillID] = s
		}
		if name := normalizeName(s.SkillName); name != "" {
			byName[name] = s
		}
	}
	lookup := func(r job.SkillRequirement) (candidate.Skill, bool) {
		if s, ok := byID[r.SkillID]; ok && r.SkillID != uuid.Nil {
			return s, true
		}
		s, ok := byName[normalizeName(r.SkillName)]
		return s, ok
	}

	required := make([]job.SkillRequirement, 0)
	optional := make([]job.SkillRequirement, 0)
	for _, r := range reqs {
		if r.SkillID == uuid.Nil && normalizeName(r.SkillName) == "" {
			continue
		}
		if r.IsRequired {
			required = append(required, r)
		} else {
			optional = append(optional, r)
		}
	}

	if len(required) == 0 && len(optional) == 0 {
		return Result{MatchScore: 100, MatchedSkills: []MatchedSkill{}, MissingSkills: []MissingSkill{}}
	}

	requiredShare, optionalShare := requiredPoints, optionalPoints
	switch {
	case len(required) == 0:
		optionalShare += requiredShare
		requiredShare = 0
	case len(optional) == 0:
		requiredShare += optionalShare
		optionalShare = 0
	}

	matched := make([]MatchedSkill, 0, len(reqs))
	missing := make([]MissingSkill, 0)
	mandatoryMissing := false

	var total, expSum float64
	expDenom := 0

	score := func(group []job.SkillRequirement, share float64) {
		if len(group) == 0 {
			return
		}
		per := share / float64(len(group))
		for _, r := range group {
			expDenom++
			s, ok := lookup(r)
			if !ok {
				if r.IsRequired {
					mandatoryMissing = true
				}
				missing = append(missing, MissingSkill{SkillID: r.SkillID, SkillName: r.SkillName, IsRequired: r.IsRequired})
				continue
			}
			contrib := levelScore(s, r, per)
			total += contrib
			expSum += expRatio(s, r)
			matched = append(matched, MatchedSkill{SkillID: r.SkillID, SkillName: r.SkillName, ScoreContribution: int(math.Round(contrib))})
		}
	}
	score(required, requiredShare)
	score(optional, optionalShare)

	if expDenom > 0 {
		total += experiencePoints * (expSum / float64(expDenom))
	}

	return Result{
		MatchScore:       clampInt(int(math.Round(total)), 0, 100),
		MandatoryMissing: mandatoryMissing,
		MatchedSkills:    matched,
		MissingSkills:    missing,
	}
}

func levelScore(s candidate.Skill, r job.SkillRequirement, weight float64) float64 {
	reqLvl := clampInt(r.MinProficiency, 1, 5)
	usrLvl := clampInt(s.ProficiencyLevel, 0, 5)
	if usrLvl <= 0 {
		return 0
	}
	if usrLvl >= reqLvl {
		return weight
	}
	return weight * (float64(usrLvl) / float64(reqLvl))
}

func expRatio(s candidate.Skill, r job.SkillRequirement) float64 {
	if r.MinYears <= 0 {
		return 1
	}
	if s.YearsExperience <= 0 {
		return 0
	}
	ratio := float64(s.YearsExperience) / float64(r.MinYears)
	if ratio > 1 {
		return 1
	}
	return ratio
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
