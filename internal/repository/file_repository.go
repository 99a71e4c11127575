package repository

import (
	"context"
	"errors"

	"talenthub/internal/database"
	"talenthub/internal/domain/file"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

type FileRepository interface {
	Create(ctx context.Context, f file.File) (file.File, error)
	GetByID(ctx context.Context, id uuid.UUID) (file.File, error)
	GetByKey(ctx context.Context, key string) (file.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresFileRepository struct {
	db database.DB
}

func NewPostgresFileRepository(db database.DB) *PostgresFileRepository {
	return &PostgresFileRepository{db: db}
}

const fileColumns = `id, owner_id, purpose, object_key, content_type, size_bytes, original_name, created_at`

func (r *PostgresFileRepository) Create(ctx context.Context, f file.File) (file.File, error) {
	return scanFile(r.db.QueryRow(ctx,
		`INSERT INTO files (id, owner_id, purpose, object_key, content_type, size_bytes, original_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+fileColumns,
		f.ID, f.OwnerID, string(f.Purpose), f.ObjectKey, f.ContentType, f.SizeBytes, f.OriginalName,
	))
}

func (r *PostgresFileRepository) GetByID(ctx context.Context, id uuid.UUID) (file.File, error) {
	return scanFile(r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
}

func (r *PostgresFileRepository) GetByKey(ctx context.Context, key string) (file.File, error) {
	return scanFile(r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE object_key = $1`, key))
}

func (r *PostgresFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFileNotFound
	}
	return nil
}

func scanFile(row database.Row) (file.File, error) {
	var f file.File
	var purpose string
	if err := row.Scan(&f.ID, &f.OwnerID, &purpose, &f.ObjectKey, &f.ContentType, &f.SizeBytes, &f.OriginalName, &f.CreatedAt); err != nil {
		if isNoRows(err) {
			return file.File{}, ErrFileNotFound
		}
		return file.File{}, err
	}
	f.Purpose = file.Purpose(purpose)
	return f, nil
}
