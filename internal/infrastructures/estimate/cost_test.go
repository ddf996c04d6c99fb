package estimate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

func testCostConfig() CostConfig {
	return CostConfig{
		HourlyRates: map[string]string{
			"CPT": "210",
			"FO":  "140",
		},
		DefaultHourlyRate:  "100",
		PerDiemDaily:       "90",
		DeadheadFlat:       "250",
		DeadheadPerMinute:  "1.5",
		HotelNight:         "160",
		OvertimeCycleHours: 50,
		OvertimeMultiplier: "1.5",
	}
}

func testPeriod(destination string) models.ProposedDutyPeriod {
	departure := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	return models.ProposedDutyPeriod{
		Segments: []models.FlightSegment{{
			FlightID:     "UA1848",
			Origin:       "ORD",
			Destination:  destination,
			DepartureUTC: departure,
			ArrivalUTC:   departure.Add(4 * time.Hour),
			FlightTime:   4 * time.Hour,
		}},
		ReportUTC:  departure.Add(-time.Hour),
		ReleaseUTC: departure.Add(4*time.Hour + 30*time.Minute),
	}
}

func firstOfficer() models.CrewIdentity {
	return models.CrewIdentity{
		ID:       "CM-001",
		Position: models.PositionFirstOfficer,
		HomeBase: "ORD",
	}
}

func TestNewStandardCostEstimator_RejectsBadMoney(t *testing.T) {
	cfg := testCostConfig()
	cfg.PerDiemDaily = "ninety"
	_, err := NewStandardCostEstimator(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per_diem_daily")

	cfg = testCostConfig()
	cfg.HourlyRates["FA"] = ""
	_, err = NewStandardCostEstimator(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly_rates.FA")
}

func TestEstimate_BaseCase(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, DutyHoursCycle: 10}
	got, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("ORD"), models.LogisticsEstimate{})
	require.NoError(t, err)

	// 140/h over 4 block hours, one duty day of per diem, nothing else.
	assert.True(t, got.PayCredit.Equal(decimal.NewFromInt(560)), "pay credit %s", got.PayCredit)
	assert.True(t, got.PerDiem.Equal(decimal.NewFromInt(90)), "per diem %s", got.PerDiem)
	assert.True(t, got.DeadheadCost.IsZero())
	assert.True(t, got.HotelCost.IsZero())
	assert.True(t, got.OvertimePremium.IsZero())
	assert.True(t, got.Total.Equal(decimal.NewFromInt(650)), "total %s", got.Total)
}

func TestEstimate_DeadheadPositioning(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve}
	logistics := models.LogisticsEstimate{PositioningRequired: true, TravelMinutes: 120}
	got, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("ORD"), logistics)
	require.NoError(t, err)

	// 250 flat plus 1.5 per travel minute.
	assert.True(t, got.DeadheadCost.Equal(decimal.NewFromInt(430)), "deadhead %s", got.DeadheadCost)
}

func TestEstimate_HotelAwayFromHomeBase(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve}

	got, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("DEN"), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.HotelCost.Equal(decimal.NewFromInt(160)), "hotel %s", got.HotelCost)

	// Ending at home base, or with an unknown downline station, books no hotel.
	got, err = estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("ORD"), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.HotelCost.IsZero())

	got, err = estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod(""), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.HotelCost.IsZero())
}

func TestEstimate_OvertimeOverage(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	// 47 cycle hours plus a 5.5h period crosses the 50h threshold by 2.5h.
	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, DutyHoursCycle: 47}
	got, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("ORD"), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.OvertimePremium.Equal(decimal.RequireFromString("525")), "overtime %s", got.OvertimePremium)

	// Already past the threshold: the premium is capped at the period itself.
	state.DutyHoursCycle = 80
	got, err = estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("ORD"), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.OvertimePremium.Equal(decimal.RequireFromString("1155")), "overtime %s", got.OvertimePremium)
}

func TestEstimate_UnknownPositionUsesDefaultRate(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	identity := firstOfficer()
	identity.Position = models.PositionPurser
	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve}
	got, err := estimator.Estimate(context.Background(), identity, state, testPeriod("ORD"), models.LogisticsEstimate{})
	require.NoError(t, err)
	assert.True(t, got.PayCredit.Equal(decimal.NewFromInt(400)), "pay credit %s", got.PayCredit)
}

func TestEstimate_IsDeterministic(t *testing.T) {
	estimator, err := NewStandardCostEstimator(testCostConfig())
	require.NoError(t, err)

	state := models.DutyState{CrewID: "CM-001", Status: models.StatusReserve, DutyHoursCycle: 47}
	logistics := models.LogisticsEstimate{PositioningRequired: true, TravelMinutes: 95}

	first, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("DEN"), logistics)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := estimator.Estimate(context.Background(), firstOfficer(), state, testPeriod("DEN"), logistics)
		require.NoError(t, err)
		assert.True(t, first.Total.Equal(again.Total), "run %d: %s vs %s", i, first.Total, again.Total)
	}
}
