package service

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

func testThresholds() ScoringThresholds {
	return ScoringThresholds{
		HighCost:       decimal.NewFromInt(2500),
		HighHourlyRate: decimal.NewFromInt(180),
		FreshDutyHours: 15,
	}
}

// cleanProfile scores exactly the base 100 under the cost strategy: no
// penalties, and duty hours and streak sit just outside the bonus bands so
// the clamp never hides a difference under test.
func cleanProfile(id models.CrewID) models.CandidateProfile {
	return models.CandidateProfile{
		Identity: models.CrewIdentity{ID: id, Name: "Crew " + string(id)},
		Verdict:  models.LegalityVerdict{Legal: true},
		Cost: models.CostEstimate{
			PayCredit: decimal.NewFromInt(480),
			Total:     decimal.NewFromInt(600),
		},
		Fatigue: models.FatigueIndicators{
			DutyHoursCycle:      20,
			ConsecutiveDutyDays: 3,
			PeriodDutyHours:     5.5,
		},
	}
}

func warning() models.Violation {
	return models.Violation{
		Category: models.CategoryFatigueRisk,
		Rule:     RuleWOCLOverlap,
		Severity: models.SeverityWarning,
	}
}

func TestRankUnknownStrategy(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	_, err := svc.Rank([]models.CandidateProfile{cleanProfile("CM-1")}, "cheapest", 0)
	require.ErrorIs(t, err, derr.ErrInvalidStrategy)
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	worse := cleanProfile("CM-1")
	worse.Verdict.Warnings = []models.Violation{warning(), warning()}
	better := cleanProfile("CM-2")

	ranked, err := svc.Rank([]models.CandidateProfile{worse, better}, models.StrategyCost, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, models.CrewID("CM-2"), ranked[0].CrewID)
	assert.Equal(t, models.CrewID("CM-1"), ranked[1].CrewID)
	assert.Equal(t, 10.0, ranked[0].Score-ranked[1].Score, "two warnings should cost exactly 10 points")
}

func TestRankTieBreakAscendingCrewID(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	// Insert in descending id order; the tie-break must reorder them.
	candidates := []models.CandidateProfile{
		cleanProfile("CM-3"),
		cleanProfile("CM-1"),
		cleanProfile("CM-2"),
	}

	ranked, err := svc.Rank(candidates, models.StrategyFairness, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, models.CrewID("CM-1"), ranked[0].CrewID)
	assert.Equal(t, models.CrewID("CM-2"), ranked[1].CrewID)
	assert.Equal(t, models.CrewID("CM-3"), ranked[2].CrewID)
	assert.Equal(t, ranked[0].Score, ranked[2].Score)
}

func TestRankScoreComposition(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	c := cleanProfile("CM-1")
	c.Verdict.Warnings = []models.Violation{warning()}
	c.Cost.Total = decimal.NewFromInt(3000)
	c.Cost.OvertimePremium = decimal.NewFromInt(100)
	c.Fatigue.Utilization28Day = 0.5
	c.Fatigue.PeriodDutyHours = 0 // no hourly-rate check

	ranked, err := svc.Rank([]models.CandidateProfile{c}, models.StrategyCost, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	// 100 - 5 (warning) - 10 (high cost) - 15 (overtime) - 5 (0.5 utilization).
	assert.Equal(t, 65.0, ranked[0].Score)
}

func TestRankClampsToUpperBound(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	c := cleanProfile("CM-1")
	c.Fatigue.DutyHoursCycle = 10
	c.Fatigue.ConsecutiveDutyDays = 1
	c.Fatigue.Utilization28Day = 0 // full seniority headroom

	// 100 + 10 (fresh) + 5 (short streak) + 10 (seniority) would be 125.
	ranked, err := svc.Rank([]models.CandidateProfile{c}, models.StrategySeniority, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 100.0, ranked[0].Score)
}

func TestRankClampsToLowerBound(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	c := cleanProfile("CM-1")
	c.Fatigue.DutyHoursCycle = 50
	c.Fatigue.ConsecutiveDutyDays = 6
	c.Cost.Total = decimal.NewFromInt(9000)
	c.Cost.OvertimePremium = decimal.NewFromInt(400)
	warnings := make([]models.Violation, 25)
	for i := range warnings {
		warnings[i] = warning()
	}
	c.Verdict.Warnings = warnings

	ranked, err := svc.Rank([]models.CandidateProfile{c}, models.StrategyCost, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].Score)
}

func TestRankTruncatesToMaxResults(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	var candidates []models.CandidateProfile
	for i := 0; i < 5; i++ {
		c := cleanProfile(models.CrewID(fmt.Sprintf("CM-%d", i)))
		c.Verdict.Warnings = make([]models.Violation, i)
		for j := range c.Verdict.Warnings {
			c.Verdict.Warnings[j] = warning()
		}
		candidates = append(candidates, c)
	}

	ranked, err := svc.Rank(candidates, models.StrategyCost, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, models.CrewID("CM-0"), ranked[0].CrewID)
	assert.Equal(t, models.CrewID("CM-1"), ranked[1].CrewID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRankIsDeterministic(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	candidates := []models.CandidateProfile{
		cleanProfile("CM-2"),
		cleanProfile("CM-1"),
	}
	candidates[0].Fatigue.RecentCallouts = 3
	candidates[1].Fatigue.HoursSinceLastCallout = 72

	first, err := svc.Rank(candidates, models.StrategyFairness, 0)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := svc.Rank(candidates, models.StrategyFairness, 0)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestRankStrategyBiases(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	busy := cleanProfile("CM-1")
	busy.Fatigue.Utilization28Day = 0.9
	idle := cleanProfile("CM-2")
	idle.Fatigue.Utilization28Day = 0.1
	// Keep both below the clamp so the seniority headroom bonus stays visible.
	busy.Verdict.Warnings = []models.Violation{warning(), warning(), warning()}
	idle.Verdict.Warnings = []models.Violation{warning(), warning(), warning()}

	byCost, err := svc.Rank([]models.CandidateProfile{busy, idle}, models.StrategyCost, 0)
	require.NoError(t, err)
	assert.Equal(t, models.CrewID("CM-2"), byCost[0].CrewID, "cost strategy prefers low utilization")

	bySeniority, err := svc.Rank([]models.CandidateProfile{busy, idle}, models.StrategySeniority, 0)
	require.NoError(t, err)
	assert.Equal(t, models.CrewID("CM-2"), bySeniority[0].CrewID, "seniority strategy rewards headroom")

	calledOut := cleanProfile("CM-1")
	calledOut.Fatigue.RecentCallouts = 4
	rested := cleanProfile("CM-2")
	rested.Fatigue.HoursSinceLastCallout = 240

	byFairness, err := svc.Rank([]models.CandidateProfile{calledOut, rested}, models.StrategyFairness, 0)
	require.NoError(t, err)
	assert.Equal(t, models.CrewID("CM-2"), byFairness[0].CrewID, "fairness strategy spares recent call-outs")
}

func TestRankExpensiveHourlyRatePenalizedUnderCost(t *testing.T) {
	svc := NewRankingService(zap.NewNop(), testThresholds())

	pricey := cleanProfile("CM-1")
	pricey.Cost.PayCredit = decimal.NewFromInt(2000) // / 5.5h > 180/h
	cheap := cleanProfile("CM-2")

	ranked, err := svc.Rank([]models.CandidateProfile{pricey, cheap}, models.StrategyCost, 0)
	require.NoError(t, err)

	assert.Equal(t, models.CrewID("CM-2"), ranked[0].CrewID)
	assert.Equal(t, CostHighRatePenalty, ranked[0].Score-ranked[1].Score)
}
