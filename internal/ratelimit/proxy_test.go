package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/mocks"
	"github.com/feral-file/ff-storefront/internal/ratelimit"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func testConfig() ratelimit.Config {
	return ratelimit.Config{
		KeyPrefix: "test:limiter:",
		PoolSize:  4,
		QueueSize: 16,
		Providers: map[string]ratelimit.ProviderLimit{
			"opensea": {RequestsPerSecond: 100, Burst: 100, MaxQueueTime: time.Second},
		},
	}
}

func TestNewProxy_InvalidConfig(t *testing.T) {
	_, err := ratelimit.NewProxy(ratelimit.Config{}, nil, adapter.NewClock())
	assert.Error(t, err)

	_, err = ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderLimit{"opensea": {RequestsPerSecond: 0}},
	}, nil, adapter.NewClock())
	assert.Error(t, err)
}

func TestProxy_LocalOnly(t *testing.T) {
	p, err := ratelimit.NewProxy(testConfig(), nil, adapter.NewClock())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	got, err := ratelimit.Request(context.Background(), p, "opensea", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = p.Request(context.Background(), "unknown", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorContains(t, err, "not configured")

	upstream := errors.New("upstream failed")
	_, err = ratelimit.Request(context.Background(), p, "opensea", func(ctx context.Context) ([]byte, error) {
		return nil, upstream
	})
	assert.ErrorIs(t, err, upstream)
}

func TestProxy_NilProxyExecutesDirectly(t *testing.T) {
	got, err := ratelimit.Request(context.Background(), nil, "any", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestProxy_ClosedRejects(t *testing.T) {
	p, err := ratelimit.NewProxy(testConfig(), nil, adapter.NewClock())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Request(context.Background(), "opensea", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorContains(t, err, "closed")
}

func TestProxy_LocalQueueTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Providers["slow"] = ratelimit.ProviderLimit{RequestsPerSecond: 1, Burst: 1, MaxQueueTime: 50 * time.Millisecond}

	p, err := ratelimit.NewProxy(cfg, nil, adapter.NewClock())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	noop := func(ctx context.Context) (interface{}, error) { return "ok", nil }

	_, err = p.Request(context.Background(), "slow", noop)
	require.NoError(t, err)

	// Burst is spent; the next token is a second away but the queue allows 50ms
	_, err = p.Request(context.Background(), "slow", noop)
	assert.Error(t, err)
}

func TestProxy_Distributed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisClient := mocks.NewMockRedisClient(ctrl)
	limiter := mocks.NewMockRedisRateLimiter(ctrl)

	redisClient.EXPECT().Ping(gomock.Any()).Return(nil)
	redisClient.EXPECT().NewRateLimiter().Return(limiter)

	gomock.InOrder(
		limiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:opensea", redis_rate.PerSecond(100)).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 5 * time.Millisecond}, nil),
		limiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:opensea", redis_rate.PerSecond(100)).
			Return(&redis_rate.Result{Allowed: 1}, nil),
	)

	p, err := ratelimit.NewProxy(testConfig(), redisClient, adapter.NewClock())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	got, err := ratelimit.Request(context.Background(), p, "opensea", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestProxy_RedisErrorFallsBackToLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisClient := mocks.NewMockRedisClient(ctrl)
	limiter := mocks.NewMockRedisRateLimiter(ctrl)

	redisClient.EXPECT().Ping(gomock.Any()).Return(nil)
	redisClient.EXPECT().NewRateLimiter().Return(limiter)
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")).Times(1)

	p, err := ratelimit.NewProxy(testConfig(), redisClient, adapter.NewClock())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	var calls atomic.Int32
	for range 3 {
		_, err := p.Request(context.Background(), "opensea", func(ctx context.Context) (interface{}, error) {
			calls.Add(1)
			return nil, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestProxy_RedisUnavailableAtStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisClient := mocks.NewMockRedisClient(ctrl)
	limiter := mocks.NewMockRedisRateLimiter(ctrl)

	redisClient.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	redisClient.EXPECT().NewRateLimiter().Return(limiter)

	p, err := ratelimit.NewProxy(testConfig(), redisClient, adapter.NewClock())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	got, err := ratelimit.Request(context.Background(), p, "opensea", func(ctx context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, got)
}
