package seeder

import (
	"context"

	"talenthub/internal/database"
)

// Seeder inserts reference rows. Seeders are idempotent and report how many
// rows they actually inserted.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) (int64, error)
}
