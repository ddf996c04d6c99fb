package ports

import (
	"context"
	"time"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// DutyStore keeps exactly one DutyState per crew member. Absent ids surface as
// derr.ErrCrewNotFound; Put replaces the whole record. Implementations must be
// safe for concurrent readers and must serialize writes at least per crew id.
type DutyStore interface {
	Get(ctx context.Context, id models.CrewID) (models.DutyState, error)
	ListByStatus(ctx context.Context, status models.DutyStatus) ([]models.DutyState, error)
	ListByLocation(ctx context.Context, location string) ([]models.DutyState, error)
	Put(ctx context.Context, state models.DutyState) error
}

// CrewDirectory serves the immutable identity records referenced by duty state.
type CrewDirectory interface {
	GetIdentity(ctx context.Context, id models.CrewID) (models.CrewIdentity, error)
	PutIdentity(ctx context.Context, identity models.CrewIdentity) error
	ListIdentities(ctx context.Context) ([]models.CrewIdentity, error)
}

// DutyCache is an optional read-through cache layered over a DutyStore.
type DutyCache interface {
	GetByID(ctx context.Context, id models.CrewID) (models.DutyState, error)
	Set(ctx context.Context, state models.DutyState, ttl time.Duration) error
	Invalidate(ctx context.Context, id models.CrewID) error
}
