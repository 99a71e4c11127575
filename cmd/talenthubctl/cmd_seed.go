package main

import (
	"talenthub/internal/database/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the skills catalog and sample organizations",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	return seeder.Runner{Seeders: seeder.Defaults(), Logger: e.log}.Run(cmd.Context(), e.db)
}
