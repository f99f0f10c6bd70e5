package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/artgrid/gallery-proxy/pkg/normalize"
)

var (
	// ErrCacheMiss indicates no state record exists for the key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidState indicates the stored record could not be decoded.
	// Callers treat this as a miss and rebuild.
	ErrInvalidState = errors.New("invalid cache state")
)

// Store persists gallery state records in Redis. Records have no TTL:
// staleness is decided by snapshot comparison, not by expiry.
type Store struct {
	redis *redis.Client
}

// NewStore creates a store backed by the given Redis client.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{redis: redisClient}
}

// GetState retrieves the state record for a key.
// Returns ErrCacheMiss when absent, ErrInvalidState when undecodable.
func (s *Store) GetState(ctx context.Context, key Key) (*State, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			stateMisses.Inc()
			return nil, ErrCacheMiss
		}
		stateErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		stateErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if state.Pages == nil {
		state.Pages = make(map[int][]normalize.NormalizedImage)
	}

	stateHits.Inc()
	stateBlobSize.Set(float64(len(data)))

	return &state, nil
}

// PutState writes the whole state record in one Redis SET. A snapshot
// replacement and its page resets therefore land atomically.
func (s *Store) PutState(ctx context.Context, key Key, state *State) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	data, err := json.Marshal(state)
	if err != nil {
		stateErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := s.redis.Set(ctx, key.String(), data, 0).Err(); err != nil {
		stateErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	stateBlobSize.Set(float64(len(data)))
	return nil
}

// Delete removes the state record.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		stateErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
