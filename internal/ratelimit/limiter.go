package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/config"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
)

const (
	// maxLocalKeys bounds the in-process limiter table
	maxLocalKeys = 10000

	defaultHealthCheckInterval = 10 * time.Second
)

// ErrClosed is returned by Allow after Close
var ErrClosed = errors.New("rate limiter is closed")

// Decision is the outcome of taking one token for a key
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a keyed request may proceed. It never blocks;
// a rejected request carries the wait before the next token.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Close() error
}

type limiter struct {
	cfg   config.RateLimitConfig
	redis adapter.RedisClient
	clock adapter.Clock

	// distributed is nil when no Redis is configured
	distributed    adapter.RedisRateLimiter
	redisAvailable atomic.Bool
	limit          redis_rate.Limit

	localRate rate.Limit
	mu        sync.Mutex
	local     map[string]*rate.Limiter

	closed    atomic.Bool
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewLimiter creates a limiter. rc may be nil to keep every limit in-process.
func NewLimiter(cfg config.RateLimitConfig, rc adapter.RedisClient, clock adapter.Clock) (Limiter, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests_per_second must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSecond
	}
	if cfg.LocalFallbackMultiplier <= 0 {
		cfg.LocalFallbackMultiplier = 0.5
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = defaultHealthCheckInterval
	}

	l := &limiter{
		cfg:   cfg,
		redis: rc,
		clock: clock,
		limit: redis_rate.Limit{
			Rate:   cfg.RequestsPerSecond,
			Burst:  cfg.Burst,
			Period: time.Second,
		},
		localRate: rate.Limit(cfg.RequestsPerSecond),
		local:     make(map[string]*rate.Limiter),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	if rc == nil {
		close(l.doneCh)
		logger.Info("Rate limiter initialized with local limits",
			zap.Int("requests_per_second", cfg.RequestsPerSecond),
			zap.Int("burst", cfg.Burst),
		)
		return l, nil
	}

	// Instances share the Redis budget, so each one falls back to a fraction of it
	l.localRate = rate.Limit(max(float64(cfg.RequestsPerSecond)*cfg.LocalFallbackMultiplier, 1.0))
	l.distributed = rc.NewRateLimiter()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		if !cfg.EnableLocalFallback {
			return nil, fmt.Errorf("redis unavailable and fallback disabled: %w", err)
		}
		logger.Warn("Redis unavailable, will use local fallback", zap.Error(err))
	} else {
		l.redisAvailable.Store(true)
	}

	go l.monitorRedisHealth()

	logger.Info("Rate limiter initialized with Redis",
		zap.Int("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
		zap.Bool("local_fallback", cfg.EnableLocalFallback),
	)
	return l, nil
}

// Allow takes one token for the key
func (l *limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.closed.Load() {
		return Decision{}, ErrClosed
	}

	if l.distributed != nil {
		if l.redisAvailable.Load() {
			res, err := l.distributed.Allow(ctx, l.cfg.RedisKeyPrefix+key, l.limit)
			if err == nil {
				return Decision{
					Allowed:    res.Allowed > 0,
					Remaining:  res.Remaining,
					RetryAfter: max(res.RetryAfter, 0),
				}, nil
			}
			if ctx.Err() != nil {
				return Decision{}, ctx.Err()
			}

			l.redisAvailable.Store(false)
			logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local", zap.Error(err))
		}
		if !l.cfg.EnableLocalFallback {
			return Decision{}, errors.New("redis rate limiter unavailable")
		}
	}

	return l.allowLocal(key), nil
}

func (l *limiter) allowLocal(key string) Decision {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalKeys {
			l.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.localRate, l.cfg.Burst)
		l.local[key] = lim
	}

	if lim.AllowN(now, 1) {
		return Decision{Allowed: true, Remaining: int(lim.TokensAt(now))}
	}

	// time until one token is available again
	missing := 1 - lim.TokensAt(now)
	retryAfter := time.Duration(missing / float64(l.localRate) * float64(time.Second))
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

// monitorRedisHealth periodically checks Redis health and updates availability status
func (l *limiter) monitorRedisHealth() {
	defer close(l.doneCh)

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.clock.After(l.cfg.HealthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := l.redis.Ping(ctx)
		cancel()

		available := err == nil
		wasAvailable := l.redisAvailable.Swap(available)
		if !wasAvailable && available {
			logger.Info("Redis connection restored")
		}
	}
}

// Close stops the health check and closes the Redis connection
func (l *limiter) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.stopCh)
		<-l.doneCh

		if l.redis != nil {
			if closeErr := l.redis.Close(); closeErr != nil {
				logger.Warn("Error closing Redis connection", zap.Error(closeErr))
				err = closeErr
			}
		}
	})
	return err
}
