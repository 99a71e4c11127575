package main

import (
	"fmt"

	"talenthub/internal/database/migration"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to MIGRATIONS_DIR or ./migrations)")
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runner(e *env) migration.Runner {
	dir := migrationsDir
	if dir == "" {
		dir = e.cfg.Migrations.Dir
	}
	return migration.Runner{Dir: dir, Logger: e.log}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := runner(e).Run(cmd.Context(), e.db.SQLDB())
	if err != nil {
		return err
	}
	e.log.Info("migrations applied", zap.Int("count", n))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	items, err := runner(e).Status(cmd.Context(), e.db.SQLDB())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range items {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(out, "V%d\t%s\t%s\n", s.Version, s.Name, state)
	}
	return nil
}
