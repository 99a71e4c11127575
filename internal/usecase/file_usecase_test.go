package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"talenthub/internal/domain/file"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

func upload(purpose file.Purpose, name string, data []byte) UploadInput {
	return UploadInput{
		Purpose:  purpose,
		Filename: name,
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}
}

func TestFiles_Upload(t *testing.T) {
	repo, store := newFakeFileRepo(), newFakeStore()
	uc := NewFileUsecase(repo, store, 1<<20, nil)
	owner := uuid.New()

	got, err := uc.Upload(context.Background(), owner, upload(file.PurposeCV, "C:\\docs\\my cv.pdf", pdfBytes))
	require.NoError(t, err)

	assert.Equal(t, file.ContentTypePDF, got.ContentType)
	assert.Equal(t, "my cv.pdf", got.OriginalName)
	assert.Equal(t, "cv/"+owner.String()+"/"+got.ID.String()+".pdf", got.ObjectKey)
	assert.Equal(t, "https://cdn.test/"+got.ObjectKey, got.URL)
	assert.Equal(t, pdfBytes, store.objects[got.ObjectKey])
	assert.Contains(t, repo.files, got.ID)
}

func TestFiles_Upload_SniffsDocx(t *testing.T) {
	uc := NewFileUsecase(newFakeFileRepo(), newFakeStore(), 1<<20, nil)

	got, err := uc.Upload(context.Background(), uuid.New(), upload(file.PurposeCV, "resume.bin", docxWithText(t, "Jane")))
	require.NoError(t, err)
	assert.Equal(t, file.ContentTypeDOCX, got.ContentType)
	assert.True(t, strings.HasSuffix(got.ObjectKey, ".docx"))
}

func TestFiles_Upload_RejectsRenamedArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("payload.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("not a resume"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	uc := NewFileUsecase(newFakeFileRepo(), newFakeStore(), 1<<20, nil)
	_, err = uc.Upload(context.Background(), uuid.New(), upload(file.PurposeCV, "resume.docx", buf.Bytes()))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestFiles_Upload_Rejects(t *testing.T) {
	owner := uuid.New()
	cases := []struct {
		name  string
		store ObjectStore
		in    UploadInput
		want  error
	}{
		{"png named as pdf", newFakeStore(), upload(file.PurposeCV, "cv.pdf", pngBytes), ErrUnsupportedMedia},
		{"image as cv", newFakeStore(), upload(file.PurposeCV, "me.png", pngBytes), ErrUnsupportedMedia},
		{"unknown purpose", newFakeStore(), upload("banner", "me.png", pngBytes), ErrInvalidInput},
		{"declared size too large", newFakeStore(), UploadInput{Purpose: file.PurposeAvatar, Size: 2048, Body: bytes.NewReader(pngBytes)}, ErrPayloadTooLarge},
		{"body too large", newFakeStore(), UploadInput{Purpose: file.PurposeAvatar, Body: bytes.NewReader(make([]byte, 1025))}, ErrPayloadTooLarge},
		{"empty body", newFakeStore(), upload(file.PurposeAvatar, "a.png", nil), ErrInvalidInput},
		{"no storage", nil, upload(file.PurposeAvatar, "a.png", pngBytes), ErrStorageUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewFileUsecase(newFakeFileRepo(), tc.store, 1024, nil)
			_, err := uc.Upload(context.Background(), owner, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFiles_Upload_RemovesObjectWhenMetadataFails(t *testing.T) {
	repo, store := newFakeFileRepo(), newFakeStore()
	repo.createErr = errors.New("db down")
	uc := NewFileUsecase(repo, store, 1<<20, nil)

	_, err := uc.Upload(context.Background(), uuid.New(), upload(file.PurposeAvatar, "a.png", pngBytes))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, store.objects)
}

func TestFiles_OwnerOnly(t *testing.T) {
	repo, store := newFakeFileRepo(), newFakeStore()
	uc := NewFileUsecase(repo, store, 1<<20, nil)
	ctx := context.Background()
	owner := uuid.New()

	f, err := uc.Upload(ctx, owner, upload(file.PurposeCV, "cv.pdf", pdfBytes))
	require.NoError(t, err)

	_, err = uc.Get(ctx, uuid.New(), f.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, uuid.New(), f.ID), ErrFileNotFound)

	meta, data, err := uc.Read(ctx, owner, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ObjectKey, meta.ObjectKey)
	assert.Equal(t, pdfBytes, data)

	require.NoError(t, uc.Delete(ctx, owner, f.ID))
	assert.Empty(t, store.objects)
	assert.ErrorIs(t, uc.Delete(ctx, owner, f.ID), ErrFileNotFound)
}
