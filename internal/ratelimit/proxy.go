package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/logger"
)

const healthCheckInterval = 10 * time.Second

// RequestFunc is a function that performs the actual API request
type RequestFunc func(ctx context.Context) (interface{}, error)

type requestResult struct {
	value interface{}
	err   error
}

// ProviderLimit is the request budget of one upstream provider
type ProviderLimit struct {
	RequestsPerSecond int
	Burst             int
	// MaxQueueTime bounds how long a request may wait for a token
	MaxQueueTime time.Duration
}

// Config holds the proxy configuration
type Config struct {
	Providers map[string]ProviderLimit
	// KeyPrefix namespaces the redis keys of the distributed limiter
	KeyPrefix string
	PoolSize  int
	QueueSize int
}

// Proxy defines the interface for rate-limiting proxy
//
//go:generate mockgen -source=proxy.go -destination=../mocks/ratelimit_proxy.go -package=mocks -mock_names=Proxy=MockRateLimitProxy
type Proxy interface {
	// Request submits a rate-limited request for execution
	Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error)

	// Close gracefully shuts down the proxy
	Close() error
}

type proxy struct {
	config         Config
	pool           pond.ResultPool[*requestResult]
	limiters       map[string]*providerLimiter
	redis          adapter.RedisClient
	clock          adapter.Clock
	closed         atomic.Bool
	closeOnce      sync.Once
	stopChan       chan struct{}
	redisAvailable atomic.Bool
}

type providerLimiter struct {
	name               string
	limit              ProviderLimit
	distributedLimiter adapter.RedisRateLimiter
	localLimiter       *rate.Limiter
}

// NewProxy creates a new rate-limiting proxy.
// rc may be nil, in which case every provider is limited in-process only.
// When rc is set but unreachable the proxy starts on the local limiters
// and switches back once redis answers again.
func NewProxy(cfg Config, rc adapter.RedisClient, clock adapter.Clock) (Proxy, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var distributedLimiter adapter.RedisRateLimiter
	redisAvailable := false
	if rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, will use local limiter", zap.Error(err))
		} else {
			redisAvailable = true
		}
		distributedLimiter = rc.NewRateLimiter()
	}

	limiters := make(map[string]*providerLimiter, len(cfg.Providers))
	for name, limit := range cfg.Providers {
		limiters[name] = &providerLimiter{
			name:               name,
			limit:              limit,
			distributedLimiter: distributedLimiter,
			localLimiter:       rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.Burst),
		}
	}

	p := &proxy{
		config:   cfg,
		pool:     pond.NewResultPool[*requestResult](cfg.PoolSize, pond.WithQueueSize(cfg.QueueSize)),
		limiters: limiters,
		redis:    rc,
		clock:    clock,
		stopChan: make(chan struct{}),
	}
	p.redisAvailable.Store(redisAvailable)

	if rc != nil {
		go p.monitorRedisHealth()
	}

	logger.Info("Rate limit proxy initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Int("providers", len(cfg.Providers)),
		zap.Bool("distributed", redisAvailable),
	)

	return p, nil
}

// Request submits a rate-limited request for execution and returns the result with type safety
func Request[T any](ctx context.Context, p Proxy, providerName string, fn func(ctx context.Context) (T, error)) (T, error) {
	// If proxy is nil, execute the function directly
	if p == nil {
		return fn(ctx)
	}

	var zero T
	result, err := p.Request(ctx, providerName, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

// Request blocks until a token is acquired and the request completes,
// the context is canceled or the provider's queue time is exceeded
func (p *proxy) Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("proxy is closed")
	}

	limiter, ok := p.limiters[providerName]
	if !ok {
		return nil, fmt.Errorf("provider '%s' not configured", providerName)
	}

	queueCtx, cancel := context.WithTimeout(ctx, limiter.limit.MaxQueueTime)
	defer cancel()

	task := p.pool.SubmitErr(func() (*requestResult, error) {
		if err := p.acquireToken(queueCtx, limiter); err != nil {
			return nil, err
		}
		value, err := fn(ctx)
		return &requestResult{value: value, err: err}, nil
	})

	result, err := task.Wait()
	if err != nil {
		return nil, err
	}
	if result.err != nil {
		return nil, result.err
	}
	return result.value, nil
}

// acquireToken blocks until a token is available for the provider
func (p *proxy) acquireToken(ctx context.Context, limiter *providerLimiter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !p.redisAvailable.Load() || limiter.distributedLimiter == nil {
			return limiter.localLimiter.Wait(ctx)
		}

		key := p.config.KeyPrefix + limiter.name
		res, err := limiter.distributedLimiter.Allow(ctx, key, redis_rate.PerSecond(limiter.limit.RequestsPerSecond))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.redisAvailable.Store(false)
			logger.Warn("Redis rate limiter error, falling back to local",
				zap.String("provider", limiter.name),
				zap.Error(err),
			)
			continue
		}

		if res.Allowed > 0 {
			return nil
		}

		// Spread retries over 50-150% of the advertised wait
		jitter := time.Duration(float64(res.RetryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
		logger.Debug("Rate limit token unavailable, waiting",
			zap.String("provider", limiter.name),
			zap.Duration("retry_after", jitter),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(jitter):
		}
	}
}

// monitorRedisHealth periodically checks Redis health and updates availability status
func (p *proxy) monitorRedisHealth() {
	ticker := p.clock.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := p.redis.Ping(ctx)
		cancel()

		available := err == nil
		if was := p.redisAvailable.Swap(available); !was && available {
			logger.Info("Redis connection restored, using distributed limiter")
		}
	}
}

// Close stops accepting requests and waits for in-flight ones.
// The redis client is owned by the caller and stays open.
func (p *proxy) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.stopChan)

		logger.Info("Shutting down rate limit proxy")
		p.pool.StopAndWait()
		logger.Info("Rate limit proxy shutdown complete")
	})
	return nil
}

// validateConfig validates and sets defaults for the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}

	providers := make(map[string]ProviderLimit, len(cfg.Providers))
	for name, limit := range cfg.Providers {
		if limit.RequestsPerSecond <= 0 {
			return fmt.Errorf("provider %s: requests_per_second must be positive", name)
		}
		if limit.Burst <= 0 {
			limit.Burst = limit.RequestsPerSecond
		}
		if limit.MaxQueueTime <= 0 {
			limit.MaxQueueTime = 30 * time.Second
		}
		providers[name] = limit
	}
	cfg.Providers = providers

	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ff:storefront:limiter:"
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.NumCPU() * 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	return nil
}
