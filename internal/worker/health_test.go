package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

func TestHealthMonitorReportsHealthyPool(t *testing.T) {
	handler := func(ctx context.Context, job *domain.Job) error { return nil }

	pool, err := NewPool(testPoolConfig(), handler, logger.NewNoOp())
	require.NoError(t, err)
	require.NoError(t, pool.Start())
	defer func() { _ = pool.Stop(context.Background()) }()

	m := NewHealthMonitor(pool, time.Minute, logger.NewNoOp())

	check := m.Check()
	assert.Equal(t, HealthStatusHealthy, check.Status)
	assert.Equal(t, 2, check.TotalWorkers)
	assert.Equal(t, 2, check.HealthyWorkers)
	assert.Zero(t, check.UnhealthyWorkers)

	assert.True(t, m.IsHealthy())
	require.NotNil(t, m.LastCheck())
}

func TestHealthMonitorCountsBusyWorkers(t *testing.T) {
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)

	handler := func(ctx context.Context, job *domain.Job) error {
		started.Done()
		<-release
		return nil
	}

	pool, err := NewPool(testPoolConfig(), handler, logger.NewNoOp())
	require.NoError(t, err)
	require.NoError(t, pool.Start())
	defer func() {
		close(release)
		_ = pool.Stop(context.Background())
	}()

	require.NoError(t, pool.Submit(context.Background(), testJob("job-1")))
	started.Wait()

	m := NewHealthMonitor(pool, time.Minute, logger.NewNoOp())
	check := m.Check()
	assert.Equal(t, 1, check.BusyWorkers)
	assert.Equal(t, 1, check.IdleWorkers)
}

func TestHealthMonitorBeforeFirstCheck(t *testing.T) {
	handler := func(ctx context.Context, job *domain.Job) error { return nil }

	pool, err := NewPool(testPoolConfig(), handler, logger.NewNoOp())
	require.NoError(t, err)

	m := NewHealthMonitor(pool, time.Minute, logger.NewNoOp())
	assert.Nil(t, m.LastCheck())
	assert.False(t, m.IsHealthy(), "no check yet means not known healthy")
}
