package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"talenthub/internal/domain/file"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type UploadInput struct {
	Purpose  file.Purpose
	Filename string
	Size     int64
	Body     io.Reader
}

type StoredFile struct {
	file.File
	URL string `json:"url"`
}

type FileUsecase interface {
	Upload(ctx context.Context, ownerID uuid.UUID, in UploadInput) (StoredFile, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (StoredFile, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Read(ctx context.Context, ownerID, id uuid.UUID) (file.File, []byte, error)
}

var extensions = map[string]string{
	file.ContentTypePDF:  ".pdf",
	file.ContentTypeDOCX: ".docx",
	file.ContentTypePNG:  ".png",
	file.ContentTypeJPEG: ".jpg",
	file.ContentTypeWEBP: ".webp",
}

type Files struct {
	files    repository.FileRepository
	store    ObjectStore
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewFileUsecase accepts a nil store; uploads then fail with
// ErrStorageUnavailable.
func NewFileUsecase(files repository.FileRepository, store ObjectStore, maxBytes int64, log *zap.Logger) *Files {
	return &Files{
		files:    files,
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.OrNop(log).Named("files"),
		now:      time.Now,
	}
}

func (u *Files) Upload(ctx context.Context, ownerID uuid.UUID, in UploadInput) (StoredFile, error) {
	if !in.Purpose.Valid() || in.Body == nil {
		return StoredFile{}, ErrInvalidInput
	}
	if u.store == nil {
		return StoredFile{}, ErrStorageUnavailable
	}
	if in.Size > u.maxBytes {
		return StoredFile{}, ErrPayloadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, u.maxBytes+1))
	if err != nil {
		return StoredFile{}, ErrInvalidInput
	}
	if int64(len(data)) > u.maxBytes {
		return StoredFile{}, ErrPayloadTooLarge
	}
	if len(data) == 0 {
		return StoredFile{}, ErrInvalidInput
	}

	contentType := detectContentType(data)
	if !in.Purpose.Accepts(contentType) {
		return StoredFile{}, ErrUnsupportedMedia
	}

	f := file.File{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Purpose:      in.Purpose,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		OriginalName: cleanFilename(in.Filename),
		CreatedAt:    u.now().UTC(),
	}
	f.ObjectKey = ObjectKey(f.Purpose, ownerID, f.ID, contentType)

	if err := u.store.Put(ctx, f.ObjectKey, bytes.NewReader(data), f.SizeBytes, contentType); err != nil {
		u.logger.Error("object upload failed", zap.String("key", f.ObjectKey), zap.Error(err))
		return StoredFile{}, ErrStorageUnavailable
	}

	created, err := u.files.Create(ctx, f)
	if err != nil {
		if delErr := u.store.Delete(ctx, f.ObjectKey); delErr != nil {
			u.logger.Warn("orphaned object", zap.String("key", f.ObjectKey), zap.Error(delErr))
		}
		return StoredFile{}, ErrInternal
	}

	u.logger.Info("file uploaded",
		zap.Stringer("file_id", created.ID),
		zap.String("purpose", string(created.Purpose)),
		zap.Int64("size", created.SizeBytes),
	)
	return u.withURL(ctx, created), nil
}

func (u *Files) Get(ctx context.Context, ownerID, id uuid.UUID) (StoredFile, error) {
	f, err := u.owned(ctx, ownerID, id)
	if err != nil {
		return StoredFile{}, err
	}
	return u.withURL(ctx, f), nil
}

func (u *Files) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	f, err := u.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := u.files.Delete(ctx, f.ID); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return ErrInternal
	}
	if u.store != nil {
		if err := u.store.Delete(ctx, f.ObjectKey); err != nil {
			u.logger.Warn("object delete failed", zap.String("key", f.ObjectKey), zap.Error(err))
		}
	}
	return nil
}

// Read returns the metadata and content of one of the owner's files.
func (u *Files) Read(ctx context.Context, ownerID, id uuid.UUID) (file.File, []byte, error) {
	f, err := u.owned(ctx, ownerID, id)
	if err != nil {
		return file.File{}, nil, err
	}
	if u.store == nil {
		return file.File{}, nil, ErrStorageUnavailable
	}
	rc, err := u.store.Get(ctx, f.ObjectKey)
	if err != nil {
		return file.File{}, nil, ErrStorageUnavailable
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, u.maxBytes+1))
	if err != nil {
		return file.File{}, nil, ErrStorageUnavailable
	}
	return f, data, nil
}

func (u *Files) owned(ctx context.Context, ownerID, id uuid.UUID) (file.File, error) {
	f, err := u.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return file.File{}, ErrFileNotFound
		}
		return file.File{}, ErrInternal
	}
	if f.OwnerID != ownerID {
		return file.File{}, ErrFileNotFound
	}
	return f, nil
}

func (u *Files) withURL(ctx context.Context, f file.File) StoredFile {
	out := StoredFile{File: f}
	if u.store == nil {
		return out
	}
	url, err := u.store.URL(ctx, f.ObjectKey)
	if err != nil {
		u.logger.Warn("object url failed", zap.String("key", f.ObjectKey), zap.Error(err))
		return out
	}
	out.URL = url
	return out
}

// ObjectKey lays files out as {purpose}/{owner}/{id}{ext}.
func ObjectKey(purpose file.Purpose, ownerID, id uuid.UUID, contentType string) string {
	return string(purpose) + "/" + ownerID.String() + "/" + id.String() + extensions[contentType]
}

// detectContentType sniffs the upload. Declared types and file extensions
// are ignored so a renamed archive cannot pass as a document.
func detectContentType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}
