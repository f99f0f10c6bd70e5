// Package ratelimit tracks the asset provider's request quota and gates
// upstream calls. It reads the X-RateLimit-Remaining and X-RateLimit-Reset
// response headers so a burst of cache rebuilds cannot exhaust the account's
// hourly allowance.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyRemaining      = "gallery:quota:remaining"
	RedisKeyResetTimestamp = "gallery:quota:reset_timestamp"
	RedisKeyLastUpdate     = "gallery:quota:last_update"
)

// Thresholds for quota decisions.
const (
	// QuotaFloor blocks upstream calls when the remaining allowance falls
	// below this value, keeping headroom for out-of-band admin usage.
	QuotaFloor = 10

	// QuotaHealthy indicates normal operation.
	QuotaHealthy = 50
)

// QuotaState is the provider quota state shared across instances via Redis.
type QuotaState struct {
	// Remaining is the number of calls left in the current window,
	// from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the quota window resets, derived from the
	// X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last refreshed from headers.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true while Remaining is comfortably above the floor.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Exhausted returns true if calls should be blocked: the remaining allowance
// is below the floor and the window has not reset yet.
func (s *QuotaState) Exhausted() bool {
	return s.Remaining < QuotaFloor && time.Now().Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the quota window resets,
// or 0 if it has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth recomputes IsHealthy from Remaining.
func (s *QuotaState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= QuotaHealthy
}
