package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostEstimate is the output shape every cost estimator must produce. The
// internal formula is pluggable; only these components are mandated.
type CostEstimate struct {
	PayCredit       decimal.Decimal
	PerDiem         decimal.Decimal
	DeadheadCost    decimal.Decimal
	HotelCost       decimal.Decimal
	OvertimePremium decimal.Decimal
	Total           decimal.Decimal
}

// LogisticsEstimate describes how a candidate reaches the departure base.
type LogisticsEstimate struct {
	CurrentLocation     string
	PositioningRequired bool
	PositioningFlight   string
	ReadyAtUTC          time.Time
	TravelMinutes       int
}

// FatigueIndicators are the precomputed signals the ranking engine scores on.
// They are derived upstream from the duty state and an explicit reference
// instant so the scoring function itself never reads a clock.
type FatigueIndicators struct {
	DutyHoursCycle        float64
	ConsecutiveDutyDays   int
	Utilization28Day      float64
	RecentCallouts        int
	HoursSinceLastCallout float64
	PeriodDutyHours       float64
}

// CandidateProfile is one legality-cleared candidate handed to the ranking
// engine.
type CandidateProfile struct {
	Identity  CrewIdentity
	Verdict   LegalityVerdict
	Cost      CostEstimate
	Logistics LogisticsEstimate
	Fatigue   FatigueIndicators
}

// ScoreComponent is one named, bounded contribution to a rank score, kept on
// the result for auditability.
type ScoreComponent struct {
	Name  string
	Delta float64
}

// RankedCandidate is a scored search result. Score is always within [0,100].
type RankedCandidate struct {
	CrewID    CrewID
	Name      string
	Verdict   LegalityVerdict
	Cost      CostEstimate
	Logistics LogisticsEstimate
	Score     float64
	Breakdown []ScoreComponent
}

// RankingStrategy selects the bias applied on top of the base score.
type RankingStrategy string

const (
	StrategyCost      RankingStrategy = "cost"
	StrategyFairness  RankingStrategy = "fairness"
	StrategySeniority RankingStrategy = "seniority"
)

func (s RankingStrategy) IsValid() bool {
	switch s {
	case StrategyCost, StrategyFairness, StrategySeniority:
		return true
	}
	return false
}
