package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"talenthub/internal/domain/file"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxWithText(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)
	w, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const draftResponse = "```json\n" + `{
  "profile": {"headline": "  Backend Engineer ", "date_of_birth": "31/12/1990", "cv_file_key": "injected"},
  "work_experiences": [
    {"company": "Acme", "title": "Engineer", "start_date": "2019", "end_date": "2018-03-01"},
    {"company": "Globex", "title": "Lead", "start_date": "2021-05", "end_date": "2022-01-01", "is_current": true},
    {"company": "", "title": "Ghost", "start_date": "2020-01-01"}
  ],
  "skills": [
    {"skill_name": "Go", "proficiency_level": 7, "years_experience": 4},
    {"skill_name": " go ", "proficiency_level": 2, "years_experience": 6},
    {"skill_name": "SQL", "proficiency_level": 0, "years_experience": -1}
  ],
  "awards": [{"title": "Hackathon", "awarded_at": "not a date"}]
}` + "\n```"

func TestCVExtraction_Upload(t *testing.T) {
	gen := &fakeGenerator{resp: draftResponse}
	uc := NewCVExtractionUsecase(nil, gen, nil)
	userID := uuid.New()

	draft, err := uc.Extract(context.Background(), userID, CVSource{
		Filename: "cv.docx",
		Data:     docxWithText(t, "Jane Doe, Go developer"),
	})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "Jane Doe, Go developer")
	assert.Equal(t, userID, draft.Profile.UserID)
	require.NotNil(t, draft.Profile.Headline)
	assert.Equal(t, "Backend Engineer", *draft.Profile.Headline)
	assert.Nil(t, draft.Profile.DateOfBirth)
	assert.Nil(t, draft.Profile.CVFileKey)

	require.Len(t, draft.WorkExperiences, 2)
	assert.Equal(t, "2019-01-01", draft.WorkExperiences[0].StartDate)
	assert.Nil(t, draft.WorkExperiences[0].EndDate)
	assert.Equal(t, "2021-05-01", draft.WorkExperiences[1].StartDate)
	assert.Nil(t, draft.WorkExperiences[1].EndDate)

	require.Len(t, draft.Skills, 2)
	assert.Equal(t, "Go", draft.Skills[0].SkillName)
	assert.Equal(t, 5, draft.Skills[0].ProficiencyLevel)
	assert.Equal(t, 6, draft.Skills[0].YearsExperience)
	assert.Equal(t, 1, draft.Skills[1].ProficiencyLevel)
	assert.Equal(t, 0, draft.Skills[1].YearsExperience)

	require.Len(t, draft.Awards, 1)
	assert.Nil(t, draft.Awards[0].AwardedAt)
}

func TestCVExtraction_StoredFile(t *testing.T) {
	owner := uuid.New()
	files := NewFileUsecase(newFakeFileRepo(), newFakeStore(), 1<<20, nil)
	stored, err := files.Upload(context.Background(), owner, upload(file.PurposeCV, "cv.docx", docxWithText(t, "experience")))
	require.NoError(t, err)

	uc := NewCVExtractionUsecase(files, &fakeGenerator{resp: `{"skills": []}`}, nil)

	draft, err := uc.Extract(context.Background(), owner, CVSource{FileID: stored.ID})
	require.NoError(t, err)
	require.NotNil(t, draft.Profile.CVFileKey)
	assert.Equal(t, stored.ObjectKey, *draft.Profile.CVFileKey)

	_, err = uc.Extract(context.Background(), uuid.New(), CVSource{FileID: stored.ID})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCVExtraction_Errors(t *testing.T) {
	ctx := context.Background()
	doc := CVSource{Filename: "cv.docx", Data: docxWithText(t, "text")}

	_, err := NewCVExtractionUsecase(nil, nil, nil).Extract(ctx, uuid.New(), doc)
	assert.ErrorIs(t, err, ErrExtractionUnavailable)

	uc := NewCVExtractionUsecase(nil, &fakeGenerator{resp: "{}"}, nil)
	_, err = uc.Extract(ctx, uuid.New(), CVSource{Filename: "cv.txt", Data: []byte("plain")})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = uc.Extract(ctx, uuid.New(), CVSource{Filename: "cv.docx", Data: docxWithText(t, "   ")})
	assert.ErrorIs(t, err, ErrUnprocessable)

	_, err = NewCVExtractionUsecase(nil, &fakeGenerator{resp: "sorry, I cannot"}, nil).Extract(ctx, uuid.New(), doc)
	assert.ErrorIs(t, err, ErrUnprocessable)

	_, err = NewCVExtractionUsecase(nil, &fakeGenerator{err: errors.New("quota")}, nil).Extract(ctx, uuid.New(), doc)
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
