package estimate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

var logisticsDeparture = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

func newTestMatrix() *MatrixLogisticsEstimator {
	return NewMatrixLogisticsEstimator(map[string]int{
		"DEN-ORD": 150,
		"MDW-ORD": 45,
	}, 180, 6*time.Hour)
}

func TestLogistics_AtBase(t *testing.T) {
	estimator := newTestMatrix()

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, Location: "ORD"}
	got, err := estimator.Estimate(context.Background(), state, "ORD", logisticsDeparture)
	require.NoError(t, err)

	assert.False(t, got.PositioningRequired)
	assert.Empty(t, got.PositioningFlight)
	assert.Zero(t, got.TravelMinutes)
	// Callout at departure minus six hours, ready after prep.
	assert.Equal(t, logisticsDeparture.Add(-6*time.Hour).Add(prepTime), got.ReadyAtUTC)
}

func TestLogistics_KnownRoute(t *testing.T) {
	estimator := newTestMatrix()

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, Location: "DEN"}
	got, err := estimator.Estimate(context.Background(), state, "ORD", logisticsDeparture)
	require.NoError(t, err)

	assert.True(t, got.PositioningRequired)
	assert.Equal(t, "DH-DEN-ORD", got.PositioningFlight)
	assert.Equal(t, 150, got.TravelMinutes)
	assert.Equal(t, logisticsDeparture.Add(-6*time.Hour).Add(prepTime+150*time.Minute), got.ReadyAtUTC)
}

func TestLogistics_UnknownRouteFallsBackToDefault(t *testing.T) {
	estimator := newTestMatrix()

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, Location: "SFO"}
	got, err := estimator.Estimate(context.Background(), state, "ORD", logisticsDeparture)
	require.NoError(t, err)

	assert.True(t, got.PositioningRequired)
	assert.Equal(t, 180, got.TravelMinutes)
}

func TestLogistics_ConstructorDefaults(t *testing.T) {
	estimator := NewMatrixLogisticsEstimator(nil, 0, 0)

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, Location: "ORD"}
	got, err := estimator.Estimate(context.Background(), state, "ORD", logisticsDeparture)
	require.NoError(t, err)
	assert.Equal(t, logisticsDeparture.Add(-6*time.Hour).Add(prepTime), got.ReadyAtUTC)

	state.Location = "DEN"
	got, err = estimator.Estimate(context.Background(), state, "ORD", logisticsDeparture)
	require.NoError(t, err)
	assert.Equal(t, 180, got.TravelMinutes)
}
