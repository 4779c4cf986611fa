// Package snapshot persists engine snapshots to Redis so accrued time
// survives a process restart. Writes are best effort: the engine never
// blocks on the store, and durability beyond a single Redis instance is out
// of scope.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stintapp/stint/internal/timer"
)

const (
	statesKey     = "stint:timers"
	capturedAtKey = "stint:timers:captured_at"
)

type Store struct {
	client *redis.Client
	ctx    context.Context
}

func NewStore(redisAddr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		ctx:    ctx,
	}, nil
}

// Save replaces the stored snapshot with states, recording capturedAt so a
// later Restore can fold spans that were open at capture time.
func (s *Store) Save(states []timer.State, capturedAt time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.Del(s.ctx, statesKey)
	for i := range states {
		stateJSON, err := states[i].ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode state %s: %w", states[i].TaskID, err)
		}
		pipe.HSet(s.ctx, statesKey, states[i].TaskID, stateJSON)
	}
	pipe.Set(s.ctx, capturedAtKey, capturedAt.Format(time.RFC3339Nano), 0)

	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load returns the stored states and their capture time. A missing snapshot
// yields an empty slice, not an error.
func (s *Store) Load() ([]timer.State, time.Time, error) {
	stateMap, err := s.client.HGetAll(s.ctx, statesKey).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	states := make([]timer.State, 0, len(stateMap))
	for _, stateJSON := range stateMap {
		st, err := timer.StateFromJSON(stateJSON)
		if err != nil {
			continue
		}
		states = append(states, *st)
	}

	var capturedAt time.Time
	raw, err := s.client.Get(s.ctx, capturedAtKey).Result()
	if err == nil {
		capturedAt, _ = time.Parse(time.RFC3339Nano, raw)
	} else if err != redis.Nil {
		return nil, time.Time{}, fmt.Errorf("failed to read capture time: %w", err)
	}

	return states, capturedAt, nil
}

// Clear drops the stored snapshot, typically after a day-end submission.
func (s *Store) Clear() error {
	if err := s.client.Del(s.ctx, statesKey, capturedAtKey).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
