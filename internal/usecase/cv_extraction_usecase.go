package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"talenthub/internal/cvparse"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cvTextLimit = 20000

type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// CVSource is either an uploaded document or the id of a stored cv file.
type CVSource struct {
	FileID   uuid.UUID
	Filename string
	Data     []byte
}

type CVExtractionUsecase interface {
	Extract(ctx context.Context, userID uuid.UUID, src CVSource) (candidate.FullProfile, error)
}

type CVExtraction struct {
	files     FileUsecase
	generator JSONGenerator
	logger    *zap.Logger
}

// NewCVExtractionUsecase accepts a nil generator when no LLM is configured.
func NewCVExtractionUsecase(files FileUsecase, generator JSONGenerator, log *zap.Logger) *CVExtraction {
	return &CVExtraction{
		files:     files,
		generator: generator,
		logger:    logger.OrNop(log).Named("cv_extraction"),
	}
}

// Extract reads the document, asks the LLM for a profile draft and returns
// it normalized. Nothing is persisted.
func (u *CVExtraction) Extract(ctx context.Context, userID uuid.UUID, src CVSource) (candidate.FullProfile, error) {
	if u.generator == nil {
		return candidate.FullProfile{}, ErrExtractionUnavailable
	}

	var cvKey *string
	if src.FileID != uuid.Nil {
		f, data, err := u.files.Read(ctx, userID, src.FileID)
		if err != nil {
			return candidate.FullProfile{}, err
		}
		if f.Purpose != file.PurposeCV {
			return candidate.FullProfile{}, ErrInvalidInput
		}
		src.Filename, src.Data = f.OriginalName, data
		cvKey = &f.ObjectKey
	}
	if len(src.Data) == 0 {
		return candidate.FullProfile{}, ErrInvalidInput
	}

	format, err := cvparse.DetectFormat(src.Data)
	if err != nil {
		return candidate.FullProfile{}, ErrUnsupportedMedia
	}
	text, err := cvparse.ExtractText(format, src.Data)
	if err != nil {
		if errors.Is(err, cvparse.ErrUnsupportedFormat) {
			return candidate.FullProfile{}, ErrUnsupportedMedia
		}
		u.logger.Info("cv text extraction failed", zap.String("file", src.Filename), zap.String("format", format), zap.Error(err))
		return candidate.FullProfile{}, ErrUnprocessable
	}
	text = cvparse.Truncate(text, cvTextLimit)

	start := time.Now()
	raw, err := u.generator.GenerateJSON(ctx, buildCVPrompt(text))
	if err != nil {
		u.logger.Error("cv extraction request failed", zap.Error(err))
		return candidate.FullProfile{}, ErrExtractionUnavailable
	}

	draft, err := parseCVDraft(raw)
	if err != nil {
		u.logger.Warn("cv extraction returned invalid json", zap.Error(err), zap.Int("chars", len(raw)))
		return candidate.FullProfile{}, ErrUnprocessable
	}
	draft = normalizeDraft(draft)
	draft.Profile.UserID = userID
	draft.Profile.CVFileKey = cvKey

	u.logger.Info("cv extracted",
		zap.Stringer("user_id", userID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("skills", len(draft.Skills)),
		zap.Int("work_experiences", len(draft.WorkExperiences)),
	)
	return draft, nil
}

const cvSchema = `{
  "profile": {"headline": string|null, "summary": string|null, "phone": string|null, "location": string|null, "date_of_birth": "YYYY-MM-DD"|null},
  "work_experiences": [{"company": string, "title": string, "employment_type": string|null, "location": string|null, "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD"|null, "is_current": bool, "description": string|null}],
  "educations": [{"institution": string, "degree": string|null, "field_of_study": string|null, "start_date": "YYYY-MM-DD"|null, "end_date": "YYYY-MM-DD"|null, "grade": string|null, "description": string|null}],
  "skills": [{"skill_name": string, "proficiency_level": 1-5, "years_experience": int}],
  "certificates": [{"name": string, "issuer": string|null, "issue_date": "YYYY-MM-DD"|null, "expiry_date": "YYYY-MM-DD"|null, "credential_id": string|null, "credential_url": string|null}],
  "projects": [{"name": string, "role": string|null, "url": string|null, "start_date": "YYYY-MM-DD"|null, "end_date": "YYYY-MM-DD"|null, "description": string|null}],
  "awards": [{"title": string, "issuer": string|null, "awarded_at": "YYYY-MM-DD"|null, "description": string|null}],
  "volunteering": [{"organization": string, "role": string|null, "cause": string|null, "start_date": "YYYY-MM-DD"|null, "end_date": "YYYY-MM-DD"|null, "is_current": bool, "description": string|null}]
}`

func buildCVPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You extract structured candidate profiles from CV text.\n")
	b.WriteString("Respond with a single JSON object and nothing else, matching this schema:\n")
	b.WriteString(cvSchema)
	b.WriteString("\nRules:\n")
	b.WriteString("- Use only information present in the CV. Use null or an empty array when unknown.\n")
	b.WriteString("- Dates are YYYY-MM-DD. When only a month is known use the first day of it.\n")
	b.WriteString("- proficiency_level is 1 (beginner) to 5 (expert).\n")
	b.WriteString("\nCV text:\n")
	b.WriteString(text)
	return b.String()
}

func parseCVDraft(raw string) (candidate.FullProfile, error) {
	raw = stripCodeFence(raw)
	if start, end := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}'); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var out candidate.FullProfile
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return candidate.FullProfile{}, fmt.Errorf("decode draft: %w", err)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func normalizeDraft(d candidate.FullProfile) candidate.FullProfile {
	p := d.Profile
	d.Profile = candidate.Profile{
		Headline:    trimmed(p.Headline),
		Summary:     trimmed(p.Summary),
		Phone:       trimmed(p.Phone),
		Location:    trimmed(p.Location),
		DateOfBirth: draftDate(p.DateOfBirth),
	}

	works := make([]candidate.WorkExperience, 0, len(d.WorkExperiences))
	for _, w := range d.WorkExperiences {
		w.ID, w.UserID = uuid.Nil, uuid.Nil
		w.Company, w.Title = strings.TrimSpace(w.Company), strings.TrimSpace(w.Title)
		if w.Company == "" || w.Title == "" {
			continue
		}
		if s := draftDate(&w.StartDate); s != nil {
			w.StartDate = *s
		} else {
			w.StartDate = ""
		}
		start := optional(w.StartDate)
		w.EndDate = draftEnd(start, draftDate(w.EndDate), w.IsCurrent)
		works = append(works, w)
	}
	d.WorkExperiences = works

	edus := make([]candidate.Education, 0, len(d.Educations))
	for _, e := range d.Educations {
		e.ID, e.UserID = uuid.Nil, uuid.Nil
		e.Institution = strings.TrimSpace(e.Institution)
		if e.Institution == "" {
			continue
		}
		e.StartDate = draftDate(e.StartDate)
		e.EndDate = draftEnd(e.StartDate, draftDate(e.EndDate), false)
		edus = append(edus, e)
	}
	d.Educations = edus

	d.Skills = normalizeDraftSkills(d.Skills)

	certs := make([]candidate.Certificate, 0, len(d.Certificates))
	for _, c := range d.Certificates {
		c.ID, c.UserID, c.FileKey = uuid.Nil, uuid.Nil, nil
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		c.IssueDate = draftDate(c.IssueDate)
		c.ExpiryDate = draftEnd(c.IssueDate, draftDate(c.ExpiryDate), false)
		certs = append(certs, c)
	}
	d.Certificates = certs

	projects := make([]candidate.Project, 0, len(d.Projects))
	for _, p := range d.Projects {
		p.ID, p.UserID = uuid.Nil, uuid.Nil
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.StartDate = draftDate(p.StartDate)
		p.EndDate = draftEnd(p.StartDate, draftDate(p.EndDate), false)
		projects = append(projects, p)
	}
	d.Projects = projects

	awards := make([]candidate.Award, 0, len(d.Awards))
	for _, a := range d.Awards {
		a.ID, a.UserID = uuid.Nil, uuid.Nil
		a.Title = strings.TrimSpace(a.Title)
		if a.Title == "" {
			continue
		}
		a.AwardedAt = draftDate(a.AwardedAt)
		awards = append(awards, a)
	}
	d.Awards = awards

	vols := make([]candidate.Volunteering, 0, len(d.Volunteering))
	for _, v := range d.Volunteering {
		v.ID, v.UserID = uuid.Nil, uuid.Nil
		v.Organization = strings.TrimSpace(v.Organization)
		if v.Organization == "" {
			continue
		}
		v.StartDate = draftDate(v.StartDate)
		v.EndDate = draftEnd(v.StartDate, draftDate(v.EndDate), v.IsCurrent)
		vols = append(vols, v)
	}
	d.Volunteering = vols

	return d
}

func normalizeDraftSkills(in []candidate.Skill) []candidate.Skill {
	out := make([]candidate.Skill, 0, len(in))
	seen := make(map[string]int, len(in))
	for _, s := range in {
		s.ID, s.UserID, s.SkillID = uuid.Nil, uuid.Nil, uuid.Nil
		s.SkillName = strings.TrimSpace(s.SkillName)
		if s.SkillName == "" {
			continue
		}
		s.ProficiencyLevel = clamp(s.ProficiencyLevel, 1, 5)
		s.YearsExperience = clamp(s.YearsExperience, 0, 60)

		key := strings.ToLower(s.SkillName)
		if i, ok := seen[key]; ok {
			if s.ProficiencyLevel > out[i].ProficiencyLevel {
				out[i].ProficiencyLevel = s.ProficiencyLevel
			}
			if s.YearsExperience > out[i].YearsExperience {
				out[i].YearsExperience = s.YearsExperience
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, s)
	}
	return out
}

var draftLayouts = []struct {
	layout string
	size   int
}{
	{candidate.DateLayout, len("2006-01-02")},
	{"2006-01", len("2006-01")},
	{"2006", len("2006")},
}

// draftDate returns the date as YYYY-MM-DD, or nil when it cannot be read.
// Partial dates resolve to their first day.
func draftDate(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	for _, l := range draftLayouts {
		if len(v) != l.size {
			continue
		}
		if t, err := time.Parse(l.layout, v); err == nil {
			out := t.Format(candidate.DateLayout)
			return &out
		}
	}
	return nil
}

// draftEnd drops end dates that contradict the start or the current flag.
func draftEnd(start, end *string, current bool) *string {
	if end == nil || current {
		return nil
	}
	if start != nil && *end < *start {
		return nil
	}
	return end
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
