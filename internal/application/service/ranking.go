package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

// ScoringThresholds are the configured cut-offs the base score reacts to.
type ScoringThresholds struct {
	// HighCost marks a total cost estimate as expensive.
	HighCost decimal.Decimal
	// HighHourlyRate marks a pay-credit-per-duty-hour as expensive under the
	// cost strategy.
	HighHourlyRate decimal.Decimal
	// FreshDutyHours is the cycle duty-hour level below which a candidate
	// still counts as fresh.
	FreshDutyHours float64
}

// RankingService orders legality-cleared candidates by a multi-factor score.
// Scoring reads only the precomputed indicators on each candidate profile, so
// identical inputs always produce identical scores and ordering.
type RankingService struct {
	log        *zap.Logger
	thresholds ScoringThresholds
}

func NewRankingService(log *zap.Logger, thresholds ScoringThresholds) *RankingService {
	if log == nil {
		log = zap.NewNop()
	}

	return &RankingService{
		log:        log,
		thresholds: thresholds,
	}
}

// Rank scores the candidates under the given strategy and returns them in
// descending score order, ties broken by ascending crew id. maxResults <= 0
// means no cap. Candidates must already be legality-filtered; legality is not
// re-checked here.
func (s *RankingService) Rank(candidates []models.CandidateProfile, strategy models.RankingStrategy, maxResults int) ([]models.RankedCandidate, error) {
	const op = "service.Rank"

	if !strategy.IsValid() {
		return nil, fmt.Errorf("%s: %w: %q", op, derr.ErrInvalidStrategy, strategy)
	}

	ranked := make([]models.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, breakdown := s.score(c, strategy)
		ranked = append(ranked, models.RankedCandidate{
			CrewID:    c.Identity.ID,
			Name:      c.Identity.Name,
			Verdict:   c.Verdict,
			Cost:      c.Cost,
			Logistics: c.Logistics,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CrewID < ranked[j].CrewID
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	s.log.Debug("candidates ranked",
		zap.String("op", op),
		zap.String("strategy", string(strategy)),
		zap.Int("in", len(candidates)),
		zap.Int("out", len(ranked)),
	)

	return ranked, nil
}

// score sums the named contributions for one candidate and clamps the result
// to [0,100].
func (s *RankingService) score(c models.CandidateProfile, strategy models.RankingStrategy) (float64, []models.ScoreComponent) {
	breakdown := []models.ScoreComponent{{Name: "base", Delta: BaseScore}}

	if n := len(c.Verdict.Warnings); n > 0 {
		breakdown = append(breakdown, models.ScoreComponent{
			Name:  "fatigue-warnings",
			Delta: -WarningPenalty * float64(n),
		})
	}

	if c.Cost.Total.GreaterThan(s.thresholds.HighCost) {
		breakdown = append(breakdown, models.ScoreComponent{Name: "high-cost", Delta: -HighCostPenalty})
		if c.Cost.OvertimePremium.IsPositive() {
			breakdown = append(breakdown, models.ScoreComponent{Name: "overtime-premium", Delta: -OvertimePenalty})
		}
	}

	if c.Fatigue.DutyHoursCycle < s.thresholds.FreshDutyHours {
		breakdown = append(breakdown, models.ScoreComponent{Name: "fresh-duty", Delta: FreshDutyBonus})
	}
	if c.Fatigue.ConsecutiveDutyDays < ShortStreakDays {
		breakdown = append(breakdown, models.ScoreComponent{Name: "short-streak", Delta: ShortStreakBonus})
	}

	breakdown = append(breakdown, s.strategyBias(c, strategy)...)

	total := 0.0
	for _, comp := range breakdown {
		total += comp.Delta
	}
	return clampScore(total), breakdown
}

func (s *RankingService) strategyBias(c models.CandidateProfile, strategy models.RankingStrategy) []models.ScoreComponent {
	switch strategy {
	case models.StrategyCost:
		out := []models.ScoreComponent{{
			Name:  "cost-utilization",
			Delta: -CostUtilizationWeight * c.Fatigue.Utilization28Day,
		}}
		if rate, ok := hourlyRate(c); ok && rate.GreaterThan(s.thresholds.HighHourlyRate) {
			out = append(out, models.ScoreComponent{Name: "cost-hourly-rate", Delta: -CostHighRatePenalty})
		}
		return out

	case models.StrategyFairness:
		calloutPenalty := FairnessCalloutWeight * float64(c.Fatigue.RecentCallouts)
		if calloutPenalty > FairnessCalloutCap {
			calloutPenalty = FairnessCalloutCap
		}
		recencyBonus := c.Fatigue.HoursSinceLastCallout / FairnessRecencyPerDays
		if recencyBonus > FairnessRecencyCap {
			recencyBonus = FairnessRecencyCap
		}
		if recencyBonus < 0 {
			recencyBonus = 0
		}
		return []models.ScoreComponent{
			{Name: "fairness-callouts", Delta: -calloutPenalty},
			{Name: "fairness-recency", Delta: recencyBonus},
		}

	case models.StrategySeniority:
		headroom := 1 - c.Fatigue.Utilization28Day
		if headroom < 0 {
			headroom = 0
		}
		return []models.ScoreComponent{{
			Name:  "seniority-utilization",
			Delta: SeniorityLowUtilizationWeight * headroom,
		}}
	}

	return nil
}

// hourlyRate divides pay credit by the proposed period's duty hours. A period
// with no duty hours has no meaningful rate.
func hourlyRate(c models.CandidateProfile) (decimal.Decimal, bool) {
	if c.Fatigue.PeriodDutyHours <= 0 {
		return decimal.Decimal{}, false
	}
	return c.Cost.PayCredit.Div(decimal.NewFromFloat(c.Fatigue.PeriodDutyHours)), true
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
