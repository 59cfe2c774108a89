package health

import (
	"context"
	"errors"
	"testing"

	"stocktochain-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping() error { return p.err }

type stateReader struct {
	st  *domain.VehicleState
	err error
}

func (s stateReader) State(context.Context) (*domain.VehicleState, error) { return s.st, s.err }

func TestCollectHealth_WithNilRedis(t *testing.T) {
	ctx := context.Background()
	result := CollectHealth(ctx, nil, nil, nil)
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disabled", result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.Nil(t, result.Vehicle)

	result = CollectHealth(ctx, nil, pinger{}, nil)
	assert.Equal(t, "ok", result.Status)
}

func TestCollectHealth_WithMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	result := CollectHealth(ctx, rdb, pinger{}, nil)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "100", result.Traffic.SuccessRate)

	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_rejected", "3", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:start_time", "1000000", 0).Err())

	result2 := CollectHealth(ctx, rdb, pinger{}, nil)
	assert.Equal(t, 10, result2.Traffic.TotalRequests)
	assert.Equal(t, 2, result2.Traffic.FailedCount)
	assert.Equal(t, 3, result2.Traffic.RejectedCount)
	assert.Equal(t, 5, result2.Traffic.SuccessCount)
	assert.Equal(t, "50.0", result2.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result2.Traffic.AvgResponseTime)
}

func TestCollectHealth_Vehicle(t *testing.T) {
	ctx := context.Background()
	st := &domain.VehicleState{Status: domain.StatusSaleActive, Paused: true, InvestorCount: 4, NotificationSeq: 9}

	result := CollectHealth(ctx, nil, pinger{}, stateReader{st: st})
	require.NotNil(t, result.Vehicle)
	assert.Equal(t, "SaleActive", result.Vehicle.Workflow)
	assert.True(t, result.Vehicle.Paused)
	assert.Equal(t, uint64(4), result.Vehicle.InvestorCount)
	assert.Equal(t, uint64(9), result.Vehicle.LastSeq)

	result = CollectHealth(ctx, nil, pinger{}, stateReader{err: errors.New("no row")})
	assert.Equal(t, "issue", result.Status)

	result = CollectHealth(ctx, nil, pinger{err: errors.New("down")}, stateReader{st: st})
	assert.Equal(t, "error", result.Dependencies["database"].Status)
	assert.Nil(t, result.Vehicle)
}
