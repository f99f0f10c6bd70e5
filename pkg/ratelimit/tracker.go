package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_quota_remaining",
		Help: "Provider API calls remaining in the current quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_quota_blocks_total",
		Help: "Total number of upstream calls blocked by the quota guard",
	})
)

// Tracker monitors the provider quota and gates upstream calls.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a quota tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns a default healthy state when no data exists yet.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	remaining, err := t.redis.Get(ctx, RedisKeyRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota remaining: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, RedisKeyResetTimestamp).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota reset timestamp: %w", err)
	}

	lastUpdateUnix, err := t.redis.Get(ctx, RedisKeyLastUpdate).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota last update: %w", err)
	}

	// No state yet: assume healthy until the first response teaches us better.
	if err == redis.Nil {
		t.logger.Debug().Msg("No quota state in Redis, returning default healthy state")
		return &QuotaState{
			Remaining:  QuotaHealthy,
			ResetAt:    time.Now().Add(time.Hour),
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}

	state := &QuotaState{
		Remaining:  remaining,
		ResetAt:    time.Unix(resetTimestamp, 0),
		LastUpdate: time.Unix(lastUpdateUnix, 0),
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders parses the provider quota headers and updates Redis.
// Responses without the headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse X-RateLimit-Remaining header: %w", err)
	}

	resetSeconds := 3600
	if resetStr := headers.Get("X-RateLimit-Reset"); resetStr != "" {
		resetSeconds, err = strconv.Atoi(resetStr)
		if err != nil {
			return fmt.Errorf("parse X-RateLimit-Reset header: %w", err)
		}
	}

	now := time.Now()
	state := &QuotaState{
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
	}
	state.UpdateHealth()

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyRemaining, remain, 0)
	pipe.Set(ctx, RedisKeyResetTimestamp, state.ResetAt.Unix(), 0)
	pipe.Set(ctx, RedisKeyLastUpdate, now.Unix(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaRemaining.Set(float64(remain))

	if state.Exhausted() {
		t.logger.Warn().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Provider quota exhausted - upstream calls will be blocked")
	} else {
		t.logger.Debug().
			Int("remaining", remain).
			Bool("is_healthy", state.IsHealthy).
			Msg("Provider quota state updated")
	}

	return nil
}

// ShouldAllowRequest reports whether an upstream call may proceed.
// Fails open: a Redis error allows the call and is left to the caller to log.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return true, fmt.Errorf("get quota state: %w", err)
	}

	if state.Exhausted() {
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Dur("wait", state.TimeUntilReset()).
			Msg("Provider quota below floor - blocking upstream call")

		quotaBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}
