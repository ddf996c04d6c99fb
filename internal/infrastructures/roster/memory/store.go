package memory

import (
	"context"
	"sort"
	"sync"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

// Store keeps crew identities and duty states in process memory. Reads run
// concurrently under a shared lock; Put replaces the whole record under the
// write lock, so two swaps naming the same crew id can never interleave
// partial updates. List results are sorted by crew id so output order never
// depends on map iteration.
type Store struct {
	mu         sync.RWMutex
	states     map[models.CrewID]models.DutyState
	identities map[models.CrewID]models.CrewIdentity
}

func NewStore() *Store {
	return &Store{
		states:     make(map[models.CrewID]models.DutyState),
		identities: make(map[models.CrewID]models.CrewIdentity),
	}
}

func (s *Store) Get(ctx context.Context, id models.CrewID) (models.DutyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	if !ok {
		return models.DutyState{}, derr.ErrCrewNotFound
	}
	return state.Clone(), nil
}

func (s *Store) ListByStatus(ctx context.Context, status models.DutyStatus) ([]models.DutyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DutyState, 0)
	for _, state := range s.states {
		if state.Status == status {
			out = append(out, state.Clone())
		}
	}
	sortStates(out)
	return out, nil
}

func (s *Store) ListByLocation(ctx context.Context, location string) ([]models.DutyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DutyState, 0)
	for _, state := range s.states {
		if state.Location == location {
			out = append(out, state.Clone())
		}
	}
	sortStates(out)
	return out, nil
}

func (s *Store) Put(ctx context.Context, state models.DutyState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.CrewID] = state.Clone()
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, id models.CrewID) (models.CrewIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[id]
	if !ok {
		return models.CrewIdentity{}, derr.ErrCrewNotFound
	}
	return cloneIdentity(identity), nil
}

func (s *Store) PutIdentity(ctx context.Context, identity models.CrewIdentity) error {
	if identity.ID == "" {
		return derr.ErrInvalidInput
	}
	if !identity.Position.IsValid() {
		return derr.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[identity.ID] = cloneIdentity(identity)
	return nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]models.CrewIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CrewIdentity, 0, len(s.identities))
	for _, identity := range s.identities {
		out = append(out, cloneIdentity(identity))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortStates(states []models.DutyState) {
	sort.Slice(states, func(i, j int) bool { return states[i].CrewID < states[j].CrewID })
}

func cloneIdentity(identity models.CrewIdentity) models.CrewIdentity {
	out := identity
	if identity.Qualifications != nil {
		out.Qualifications = make([]string, len(identity.Qualifications))
		copy(out.Qualifications, identity.Qualifications)
	}
	return out
}
