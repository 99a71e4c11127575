package handler

import (
	"context"
	"io"
	"net/http"
	"testing"

	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/domain/user"
	"talenthub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFileUsecase struct {
	uploaded []byte
	in       usecase.UploadInput
	err      error
}

func (f *fakeFileUsecase) Upload(_ context.Context, owner uuid.UUID, in usecase.UploadInput) (usecase.StoredFile, error) {
	if f.err != nil {
		return usecase.StoredFile{}, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return usecase.StoredFile{}, err
	}
	f.uploaded, f.in = data, in
	return usecase.StoredFile{
		File: file.File{ID: uuid.New(), OwnerID: owner, Purpose: in.Purpose, ObjectKey: string(in.Purpose) + "/x"},
		URL:  "https://cdn.test/x",
	}, nil
}

func (f *fakeFileUsecase) Get(context.Context, uuid.UUID, uuid.UUID) (usecase.StoredFile, error) {
	return usecase.StoredFile{}, usecase.ErrFileNotFound
}

func (f *fakeFileUsecase) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeFileUsecase) Read(context.Context, uuid.UUID, uuid.UUID) (file.File, []byte, error) {
	return file.File{}, nil, usecase.ErrFileNotFound
}

func TestFileHandler_Upload(t *testing.T) {
	env := newTestEnv(t)
	uc := &fakeFileUsecase{}
	NewFileHandler(uc).RegisterRoutes(env.app.Group("/files"), env.guards)
	tok := env.token(t, uuid.New(), user.RoleCandidate)

	req := multipartRequest(t, "/files", map[string]string{"purpose": "cv"}, "me.pdf", []byte("%PDF-1.4 hello"))
	resp, body := env.do(t, withToken(req, tok))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, file.PurposeCV, uc.in.Purpose)
	assert.Equal(t, "me.pdf", uc.in.Filename)
	assert.Equal(t, []byte("%PDF-1.4 hello"), uc.uploaded)
	assert.Contains(t, string(body.Data), "https://cdn.test/x")

	req = multipartRequest(t, "/files", map[string]string{"purpose": "resume"}, "me.pdf", []byte("x"))
	resp, _ = env.do(t, withToken(req, tok))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = multipartRequest(t, "/files", map[string]string{"purpose": "cv"}, "", nil)
	resp, _ = env.do(t, withToken(req, tok))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for err, status := range map[error]int{
		usecase.ErrPayloadTooLarge:    http.StatusRequestEntityTooLarge,
		usecase.ErrUnsupportedMedia:   http.StatusUnsupportedMediaType,
		usecase.ErrStorageUnavailable: http.StatusServiceUnavailable,
	} {
		uc.err = err
		req = multipartRequest(t, "/files", map[string]string{"purpose": "cv"}, "me.pdf", []byte("x"))
		resp, _ = env.do(t, withToken(req, tok))
		assert.Equal(t, status, resp.StatusCode, err.Error())
	}
}

func TestFileHandler_GetHidesForeignFiles(t *testing.T) {
	env := newTestEnv(t)
	NewFileHandler(&fakeFileUsecase{}).RegisterRoutes(env.app.Group("/files"), env.guards)

	req := withToken(jsonRequest(http.MethodGet, "/files/"+uuid.NewString(), nil), env.token(t, uuid.New(), user.RoleEmployer))
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type fakeCVUsecase struct {
	src usecase.CVSource
	err error
}

func (f *fakeCVUsecase) Extract(_ context.Context, _ uuid.UUID, src usecase.CVSource) (candidate.FullProfile, error) {
	f.src = src
	if f.err != nil {
		return candidate.FullProfile{}, f.err
	}
	return candidate.FullProfile{Skills: []candidate.Skill{{SkillName: "Go", ProficiencyLevel: 4}}}, nil
}

func TestCVHandler_Extract(t *testing.T) {
	env := newTestEnv(t)
	uc := &fakeCVUsecase{}
	NewCVHandler(uc, 16).RegisterRoutes(env.app, env.guards)
	tok := env.token(t, uuid.New(), user.RoleCandidate)

	req := multipartRequest(t, "/candidates/me/cv/extract", nil, "cv.pdf", []byte("%PDF-1.4"))
	resp, body := env.do(t, withToken(req, tok))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cv.pdf", uc.src.Filename)
	assert.Contains(t, string(body.Data), `"Go"`)

	req = multipartRequest(t, "/candidates/me/cv/extract", nil, "cv.pdf", make([]byte, 17))
	resp, _ = env.do(t, withToken(req, tok))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	id := uuid.New()
	resp, _ = env.do(t, withToken(jsonRequest(http.MethodPost, "/candidates/me/cv/extract", map[string]string{"file_id": id.String()}), tok))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, uc.src.FileID)

	resp, _ = env.do(t, withToken(jsonRequest(http.MethodPost, "/candidates/me/cv/extract", map[string]string{}), tok))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	uc.err = usecase.ErrExtractionUnavailable
	resp, _ = env.do(t, withToken(jsonRequest(http.MethodPost, "/candidates/me/cv/extract", map[string]string{"file_id": id.String()}), tok))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	uc.err = usecase.ErrUnprocessable
	resp, _ = env.do(t, withToken(jsonRequest(http.MethodPost, "/candidates/me/cv/extract", map[string]string{"file_id": id.String()}), tok))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	employer := env.token(t, uuid.New(), user.RoleEmployer)
	resp, _ = env.do(t, withToken(jsonRequest(http.MethodPost, "/candidates/me/cv/extract", map[string]string{"file_id": id.String()}), employer))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
