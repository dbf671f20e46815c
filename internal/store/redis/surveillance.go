package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gosuda/ghostmode/internal/domain"
)

// SurveillanceStore keeps each admin's watch state as a JSON value.
type SurveillanceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSurveillanceStore stores state under surveillance:<adminID>. A zero ttl
// keeps entries until cleared.
func NewSurveillanceStore(client *redis.Client, ttl time.Duration) *SurveillanceStore {
	return &SurveillanceStore{client: client, ttl: ttl}
}

// SurveillanceKey returns the key an admin's watch state is stored under.
func SurveillanceKey(adminID uuid.UUID) string {
	return "surveillance:" + adminID.String()
}

// Get reads the watch state. With a ttl set, each read pushes the expiry
// out again, so a watch only lapses once the console stops polling it.
func (s *SurveillanceStore) Get(ctx context.Context, adminID uuid.UUID) (domain.SurveillanceState, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, SurveillanceKey(adminID), s.ttl)
	} else {
		cmd = s.client.Get(ctx, SurveillanceKey(adminID))
	}
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SurveillanceState{}, nil
	}
	if err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("redis.SurveillanceStore.Get: %w", err)
	}

	var st domain.SurveillanceState
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("redis.SurveillanceStore.Get: decode: %w", err)
	}
	return st, nil
}

func (s *SurveillanceStore) Put(ctx context.Context, adminID uuid.UUID, state domain.SurveillanceState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis.SurveillanceStore.Put: encode: %w", err)
	}

	if err := s.client.Set(ctx, SurveillanceKey(adminID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis.SurveillanceStore.Put: %w", err)
	}
	return nil
}

func (s *SurveillanceStore) Clear(ctx context.Context, adminID uuid.UUID) error {
	if err := s.client.Del(ctx, SurveillanceKey(adminID)).Err(); err != nil {
		return fmt.Errorf("redis.SurveillanceStore.Clear: %w", err)
	}
	return nil
}
