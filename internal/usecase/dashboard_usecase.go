package usecase

import (
	"context"
	"time"

	"talenthub/internal/pkg/logger"
	"talenthub/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Storage  string `json:"storage"`
}

type DashboardStats struct {
	Users                   []repository.RoleCount `json:"users"`
	PostingsByStatus        map[string]int         `json:"postings_by_status"`
	ApplicationsByStatus    map[string]int         `json:"applications_by_status"`
	UnverifiedOrganizations int                    `json:"unverified_organizations"`
	Health                  HealthStatus           `json:"health"`
	ServerTime              time.Time              `json:"server_time"`
}

type DashboardUsecase interface {
	Stats(ctx context.Context) (DashboardStats, error)
	Health(ctx context.Context) HealthStatus
}

type Dashboard struct {
	repo    repository.DashboardRepository
	db      Pinger
	redis   Pinger
	storage Pinger
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardUsecase accepts nil pingers for optional backends; they report
// as "disabled".
func NewDashboardUsecase(repo repository.DashboardRepository, db, redis, storage Pinger, log *zap.Logger) *Dashboard {
	return &Dashboard{
		repo:    repo,
		db:      db,
		redis:   redis,
		storage: storage,
		logger:  logger.OrNop(log).Named("dashboard"),
		now:     time.Now,
	}
}

func (u *Dashboard) Stats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Users, err = u.repo.CountUsersByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.PostingsByStatus, err = u.repo.CountPostingsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ApplicationsByStatus, err = u.repo.CountApplicationsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.UnverifiedOrganizations, err = u.repo.CountUnverifiedOrganizations(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		u.logger.Error("dashboard stats failed", zap.Error(err))
		return DashboardStats{}, ErrInternal
	}

	out.Health = u.Health(ctx)
	out.ServerTime = u.now().UTC()
	return out, nil
}

func (u *Dashboard) Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var h HealthStatus
	var g errgroup.Group
	g.Go(func() error { h.Database = u.probe(ctx, "database", u.db); return nil })
	g.Go(func() error { h.Redis = u.probe(ctx, "redis", u.redis); return nil })
	g.Go(func() error { h.Storage = u.probe(ctx, "storage", u.storage); return nil })
	_ = g.Wait()
	return h
}

func (u *Dashboard) probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		u.logger.Warn("health probe failed", zap.String("backend", name), zap.Error(err))
		return "down"
	}
	return "up"
}
