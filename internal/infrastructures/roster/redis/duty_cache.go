package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

// DutyCacheRepository caches duty states in Redis under duty:<crew_id>. A
// missing key surfaces as ErrCrewNotFound so callers can treat cache misses
// and absent members uniformly.
type DutyCacheRepository struct {
	redis *redis.Client
}

func NewDutyCacheRepository(redisClient *redis.Client) *DutyCacheRepository {
	return &DutyCacheRepository{redis: redisClient}
}

func (r *DutyCacheRepository) GetByID(ctx context.Context, id models.CrewID) (models.DutyState, error) {
	data, err := r.redis.Get(ctx, dutyKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.DutyState{}, derr.ErrCrewNotFound
		}
		return models.DutyState{}, fmt.Errorf("redis get duty state: %w", err)
	}

	var state models.DutyState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return models.DutyState{}, fmt.Errorf("unmarshal cached duty state: %w", err)
	}

	return state, nil
}

func (r *DutyCacheRepository) Set(ctx context.Context, state models.DutyState, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal duty state for cache: %w", err)
	}

	if err := r.redis.Set(ctx, dutyKey(state.CrewID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set duty state: %w", err)
	}

	return nil
}

func (r *DutyCacheRepository) Invalidate(ctx context.Context, id models.CrewID) error {
	if err := r.redis.Del(ctx, dutyKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del duty state: %w", err)
	}
	return nil
}

func dutyKey(id models.CrewID) string {
	return fmt.Sprintf("duty:%s", id)
}
