package seeder

import (
	"context"
	"fmt"
	"time"

	"talenthub/internal/database"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		inserted, err := s.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder finished",
			zap.String("seeder", s.Name()),
			zap.Int64("inserted", inserted),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}
