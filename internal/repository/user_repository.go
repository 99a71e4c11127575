package repository

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/database"
	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"

	"github.com/google/uuid"
)

var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, password_hash, full_name, phone, avatar_file_key, role,
	email_verified, email_verified_at, created_at, updated_at`

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u user.User) error {
	return insertUser(ctx, r.db, u)
}

// CreateUserWithOrganization stores an employer or agency account together
// with its organization row.
func (r *PostgresUserRepository) CreateUserWithOrganization(ctx context.Context, u user.User, org organization.Organization) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO organizations (id, owner_user_id, kind, name, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			org.ID, u.ID, string(org.Kind), org.Name, u.CreatedAt,
		)
		return err
	})
}

func insertUser(ctx context.Context, q database.Querier, u user.User) error {
	_, err := q.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, phone, role, email_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, string(u.Role), u.EmailVerified, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, u user.User) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET full_name = $1, phone = $2, avatar_file_key = $3, updated_at = now() WHERE id = $4`,
		u.FullName, u.Phone, u.AvatarFileKey, u.ID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	n, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified = true, email_verified_at = COALESCE(email_verified_at, now()), updated_at = now()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, f user.ListFilter) ([]user.User, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`, COUNT(1) OVER ()
		 FROM users
		 WHERE ($1 = '' OR role = $1)
		 ORDER BY created_at DESC, id ASC
		 LIMIT $2 OFFSET $3`,
		string(f.Role), limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]user.User, 0, limit)
	total := 0
	for rows.Next() {
		var u user.User
		var role string
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.AvatarFileKey, &role,
			&u.EmailVerified, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		u.Role = user.Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	var role string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.AvatarFileKey, &role,
		&u.EmailVerified, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}
