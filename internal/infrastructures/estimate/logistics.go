package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// prepTime lets a called-out member get ready before travelling or reporting.
const prepTime = 90 * time.Minute

// MatrixLogisticsEstimator resolves positioning from a static travel-time
// matrix keyed "ORG-DST" in minutes. All instants derive from the explicit
// departure argument: the member is assumed to be called out calloutLead
// before departure, so the estimate never depends on the wall clock.
type MatrixLogisticsEstimator struct {
	travelMinutes        map[string]int
	defaultTravelMinutes int
	calloutLead          time.Duration
}

func NewMatrixLogisticsEstimator(travelMinutes map[string]int, defaultTravelMinutes int, calloutLead time.Duration) *MatrixLogisticsEstimator {
	if defaultTravelMinutes <= 0 {
		defaultTravelMinutes = 180
	}
	if calloutLead <= 0 {
		calloutLead = 6 * time.Hour
	}

	return &MatrixLogisticsEstimator{
		travelMinutes:        travelMinutes,
		defaultTravelMinutes: defaultTravelMinutes,
		calloutLead:          calloutLead,
	}
}

func (e *MatrixLogisticsEstimator) Estimate(_ context.Context, state models.DutyState, base string,
	departureUTC time.Time) (models.LogisticsEstimate, error) {
	callout := departureUTC.UTC().Add(-e.calloutLead)

	if state.Location == base {
		return models.LogisticsEstimate{
			CurrentLocation: state.Location,
			ReadyAtUTC:      callout.Add(prepTime),
		}, nil
	}

	minutes, ok := e.travelMinutes[routeKey(state.Location, base)]
	if !ok {
		minutes = e.defaultTravelMinutes
	}

	return models.LogisticsEstimate{
		CurrentLocation:     state.Location,
		PositioningRequired: true,
		PositioningFlight:   fmt.Sprintf("DH-%s-%s", state.Location, base),
		ReadyAtUTC:          callout.Add(prepTime + time.Duration(minutes)*time.Minute),
		TravelMinutes:       minutes,
	}, nil
}

func routeKey(origin, destination string) string {
	return origin + "-" + destination
}
