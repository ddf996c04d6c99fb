package roster

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
	"github.com/avialine/crew-recovery/internal/domain/ports"
)

// CachedStore layers a duty cache over a DutyStore. Gets are cache-aside;
// Puts write through to the cache after the store accepts the record, so a
// reader always sees its own writes. Cache faults degrade to the backing
// store, never to an error.
type CachedStore struct {
	log   *zap.Logger
	store ports.DutyStore
	cache ports.DutyCache
	ttl   time.Duration
}

func NewCachedStore(log *zap.Logger, store ports.DutyStore, cache ports.DutyCache, ttl time.Duration) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}

	return &CachedStore{
		log:   log,
		store: store,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *CachedStore) Get(ctx context.Context, id models.CrewID) (models.DutyState, error) {
	state, err := s.cache.GetByID(ctx, id)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, derr.ErrCrewNotFound) {
		s.log.Warn("duty cache read failed", zap.String("crew_id", string(id)), zap.Error(err))
	}

	state, err = s.store.Get(ctx, id)
	if err != nil {
		return models.DutyState{}, err
	}

	if err := s.cache.Set(ctx, state, s.ttl); err != nil {
		s.log.Warn("duty cache write failed", zap.String("crew_id", string(id)), zap.Error(err))
	}

	return state, nil
}

// ListByStatus bypasses the cache: list results depend on every record, not
// one key, and must reflect the store directly.
func (s *CachedStore) ListByStatus(ctx context.Context, status models.DutyStatus) ([]models.DutyState, error) {
	return s.store.ListByStatus(ctx, status)
}

func (s *CachedStore) ListByLocation(ctx context.Context, location string) ([]models.DutyState, error) {
	return s.store.ListByLocation(ctx, location)
}

func (s *CachedStore) Put(ctx context.Context, state models.DutyState) error {
	if err := s.store.Put(ctx, state); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, state, s.ttl); err != nil {
		s.log.Warn("duty cache write failed", zap.String("crew_id", string(state.CrewID)), zap.Error(err))
		if err := s.cache.Invalidate(ctx, state.CrewID); err != nil {
			s.log.Warn("duty cache invalidate failed", zap.String("crew_id", string(state.CrewID)), zap.Error(err))
		}
	}

	return nil
}
