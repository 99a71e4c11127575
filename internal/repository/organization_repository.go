package repository

import (
	"context"
	"errors"
	"strings"

	"talenthub/internal/database"
	"talenthub/internal/domain/organization"

	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAgencyClientExists   = errors.New("employer already linked to agency")
)

const organizationColumns = `o.id, o.owner_user_id, o.kind, o.name, o.website, o.industry, o.company_size, o.location,
	o.description, o.logo_file_key, o.is_verified, o.created_at, o.updated_at`

type OrganizationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (organization.Organization, error)
	Create(ctx context.Context, o organization.Organization) (organization.Organization, error)
	Update(ctx context.Context, o organization.Organization) (organization.Organization, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (organization.Organization, error)
	List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, int, error)
	LinkAgencyClient(ctx context.Context, agencyID, employerID uuid.UUID) error
	IsAgencyClient(ctx context.Context, agencyID, employerID uuid.UUID) (bool, error)
	ListAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]organization.Organization, error)
}

type PostgresOrganizationRepository struct {
	db database.DB
}

func NewPostgresOrganizationRepository(db database.DB) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

func (r *PostgresOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations o WHERE o.id = $1`, id))
}

func (r *PostgresOrganizationRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (organization.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations o WHERE o.owner_user_id = $1`, ownerID))
}

func (r *PostgresOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return scanOrganization(r.db.QueryRow(ctx,
		`INSERT INTO organizations AS o (id, owner_user_id, kind, name, website, industry, company_size, location, description, logo_file_key, is_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+organizationColumns,
		o.ID, o.OwnerUserID, string(o.Kind), o.Name, o.Website, o.Industry, o.CompanySize, o.Location, o.Description, o.LogoFileKey, o.IsVerified,
	))
}

func (r *PostgresOrganizationRepository) Update(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx,
		`UPDATE organizations AS o
		 SET name = $2, website = $3, industry = $4, company_size = $5, location = $6, description = $7, logo_file_key = $8, updated_at = now()
		 WHERE o.id = $1
		 RETURNING `+organizationColumns,
		o.ID, o.Name, o.Website, o.Industry, o.CompanySize, o.Location, o.Description, o.LogoFileKey,
	))
}

func (r *PostgresOrganizationRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (organization.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx,
		`UPDATE organizations AS o SET is_verified = $2, updated_at = now() WHERE o.id = $1 RETURNING `+organizationColumns,
		id, verified,
	))
}

func (r *PostgresOrganizationRepository) List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)
	q := escapeLike(strings.TrimSpace(f.Query))

	rows, err := r.db.Query(ctx,
		`SELECT `+organizationColumns+`, COUNT(1) OVER ()
		 FROM organizations o
		 WHERE ($1 = '' OR o.kind = $1)
		   AND ($2::boolean IS NULL OR o.is_verified = $2)
		   AND ($3 = '' OR o.name ILIKE '%' || $3 || '%')
		 ORDER BY o.created_at DESC, o.id ASC
		 LIMIT $4 OFFSET $5`,
		string(f.Kind), f.Verified, q, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]organization.Organization, 0)
	total := 0
	for rows.Next() {
		o, err := scanOrganizationInto(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresOrganizationRepository) LinkAgencyClient(ctx context.Context, agencyID, employerID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO agency_clients (agency_id, employer_id) VALUES ($1, $2)`,
		agencyID, employerID,
	)
	switch {
	case isUniqueViolation(err):
		return ErrAgencyClientExists
	case isForeignKeyViolation(err):
		return ErrOrganizationNotFound
	}
	return err
}

func (r *PostgresOrganizationRepository) IsAgencyClient(ctx context.Context, agencyID, employerID uuid.UUID) (bool, error) {
	var ok bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM agency_clients WHERE agency_id = $1 AND employer_id = $2)`,
		agencyID, employerID,
	)
	if err := row.Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresOrganizationRepository) ListAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]organization.Organization, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+organizationColumns+`
		 FROM agency_clients ac
		 JOIN organizations o ON o.id = ac.employer_id
		 WHERE ac.agency_id = $1
		 ORDER BY o.name ASC`,
		agencyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]organization.Organization, 0)
	for rows.Next() {
		o, err := scanOrganizationInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOrganization(row database.Row) (organization.Organization, error) {
	o, err := scanOrganizationInto(row)
	if err != nil {
		if isNoRows(err) {
			return organization.Organization{}, ErrOrganizationNotFound
		}
		return organization.Organization{}, err
	}
	return o, nil
}

func scanOrganizationInto(row database.Row, extra ...any) (organization.Organization, error) {
	var o organization.Organization
	var kind string
	dest := []any{
		&o.ID, &o.OwnerUserID, &kind, &o.Name, &o.Website, &o.Industry, &o.CompanySize, &o.Location,
		&o.Description, &o.LogoFileKey, &o.IsVerified, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return organization.Organization{}, err
	}
	o.Kind = organization.Kind(kind)
	return o, nil
}
