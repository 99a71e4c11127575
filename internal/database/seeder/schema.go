package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talenthub/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// requireColumns fails when table lacks any of columns, naming every missing
// one. Seeders call it so a stale database fails before the transaction.
func requireColumns(ctx context.Context, q database.Querier, table string, columns ...string) error {
	if q == nil {
		return errors.New("nil db")
	}
	if table == "" || len(columns) == 0 {
		return fmt.Errorf("%w: nothing to check", ErrSchemaMismatch)
	}

	rows, err := q.Query(ctx,
		`SELECT column_name
		 FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1 AND column_name = ANY($2)`,
		table, columns,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(columns))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}

	var missing []string
	for _, c := range columns {
		if !found[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing %s (run migrations first)", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
