package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"talenthub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardRepo struct {
	err error
}

func (r fakeDashboardRepo) CountUsersByRole(context.Context) ([]repository.RoleCount, error) {
	return []repository.RoleCount{{Role: "candidate", Total: 3, Verified: 2, Unverified: 1}}, r.err
}

func (r fakeDashboardRepo) CountPostingsByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"published": 4}, nil
}

func (r fakeDashboardRepo) CountApplicationsByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"submitted": 5}, nil
}

func (r fakeDashboardRepo) CountUnverifiedOrganizations(context.Context) (int, error) {
	return 2, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestDashboard_Stats(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("refused") })
	uc := NewDashboardUsecase(fakeDashboardRepo{}, up, down, nil, nil)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	uc.now = func() time.Time { return now }

	stats, err := uc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Users[0].Total)
	assert.Equal(t, 4, stats.PostingsByStatus["published"])
	assert.Equal(t, 5, stats.ApplicationsByStatus["submitted"])
	assert.Equal(t, 2, stats.UnverifiedOrganizations)
	assert.Equal(t, HealthStatus{Database: "up", Redis: "down", Storage: "disabled"}, stats.Health)
	assert.Equal(t, now, stats.ServerTime)
}

func TestDashboard_StatsFailure(t *testing.T) {
	uc := NewDashboardUsecase(fakeDashboardRepo{err: errors.New("db")}, nil, nil, nil, nil)
	_, err := uc.Stats(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}
