package ports

import (
	"context"
	"time"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// CostEstimator prices a hypothetical assignment. Implementations must be
// deterministic for identical inputs; anything time-dependent takes the
// explicit instants carried by the period and logistics arguments.
type CostEstimator interface {
	Estimate(ctx context.Context, identity models.CrewIdentity, state models.DutyState,
		period models.ProposedDutyPeriod, logistics models.LogisticsEstimate) (models.CostEstimate, error)
}

// LogisticsEstimator works out how a candidate gets to the departure base for
// a flight leaving at the given instant.
type LogisticsEstimator interface {
	Estimate(ctx context.Context, state models.DutyState, base string,
		departureUTC time.Time) (models.LogisticsEstimate, error)
}
