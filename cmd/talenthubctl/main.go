package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"talenthub/internal/config"
	"talenthub/internal/database"
	dbpostgres "talenthub/internal/database/postgres"
	"talenthub/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jsonLogs bool
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "talenthubctl",
	Short:         "Operator tooling for the talenthub backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "log as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createMISUserCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// env carries what every subcommand needs: config, a logger and the pool.
type env struct {
	cfg config.Config
	log *zap.Logger
	db  database.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(jsonLogs, verbose)
	if err != nil {
		return nil, err
	}
	db, err := dbpostgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}
