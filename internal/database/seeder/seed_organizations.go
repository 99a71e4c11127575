package seeder

import (
	"context"

	"talenthub/internal/database"
)

// OrganizationsSeeder creates verified employer organizations without an
// owner account, the kind MIS staff manage postings for.
type OrganizationsSeeder struct{}

func (OrganizationsSeeder) Name() string { return "organizations" }

func (OrganizationsSeeder) Run(ctx context.Context, db database.DB) (int64, error) {
	if err := requireColumns(ctx, db, "organizations", "id", "owner_user_id", "kind", "name", "is_verified"); err != nil {
		return 0, err
	}

	items := []struct {
		Name     string
		Industry string
		Location string
	}{
		{"Nusantara Logistics", "Logistics", "Jakarta"},
		{"Sakura Precision Manufacturing", "Manufacturing", "Osaka"},
		{"Harbor Health Group", "Healthcare", "Surabaya"},
	}

	var inserted int64
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			n, err := tx.Exec(
				ctx,
				`INSERT INTO organizations (kind, name, industry, location, is_verified)
				 SELECT 'employer', $1::text, $2::text, $3::text, true
				 WHERE NOT EXISTS (
					SELECT 1 FROM organizations WHERE owner_user_id IS NULL AND lower(name) = lower($1::text)
				 )`,
				it.Name,
				it.Industry,
				it.Location,
			)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	return inserted, err
}
