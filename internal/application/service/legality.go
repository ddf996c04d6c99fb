package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// Rule identifiers carried on Violation.Rule. Stable across releases so
// downstream consumers can key remediation workflows off them.
const (
	RuleDutyPeriodLength = "duty-period-length"
	RuleFlightTime       = "flight-time"
	RuleRestSufficiency  = "rest-sufficiency"
	RuleFlightHours28Day = "flight-hours-28day"
	RuleFlightHours365   = "flight-hours-365day"

	RuleWOCLOverlap     = "wocl-overlap"
	RuleConsecutiveDuty = "consecutive-duty-fatigue"
	RuleLongDuty        = "long-duty-fatigue"
	RuleWOCLReexposure  = "wocl-reexposure"
)

const (
	// Fatigue thresholds are fixed assessment policy, not jurisdiction limits,
	// so they live here rather than in RuleLimits.
	consecutiveDutyFatigueDays = 5
	longDutyFatigueThreshold   = 11 * time.Hour
	woclReexposureWindow       = 24 * time.Hour
)

// LegalityService evaluates a proposed duty period against a crew member's
// duty state and a rule-limit table. Evaluation is pure: identical inputs
// produce equivalent verdicts apart from the timestamp and audit id.
type LegalityService struct {
	log    *zap.Logger
	limits models.RuleLimits
	now    func() time.Time
}

func NewLegalityService(log *zap.Logger, limits models.RuleLimits) *LegalityService {
	if log == nil {
		log = zap.NewNop()
	}

	return &LegalityService{
		log:    log,
		limits: limits,
		now:    time.Now,
	}
}

// Evaluate runs every check in the requested categories and assembles a
// verdict. Unknown category names are ignored; an empty selection evaluates
// nothing and yields a legal verdict with no categories listed.
func (s *LegalityService) Evaluate(duty models.DutyState, period models.ProposedDutyPeriod, categories []string) (models.LegalityVerdict, error) {
	const op = "service.Evaluate"

	if err := period.Validate(); err != nil {
		return models.LegalityVerdict{}, fmt.Errorf("%s: %w", op, err)
	}

	selected := normalizeCategories(categories)

	var violations, warnings []models.Violation
	for _, category := range selected {
		var findings []models.Violation
		switch category {
		case models.CategoryDutyLimits:
			findings = s.evaluateDutyLimits(duty, period)
		case models.CategoryFatigueRisk:
			findings = s.evaluateFatigueRisk(duty, period)
		}
		for _, v := range findings {
			if v.Severity == models.SeverityBlocking {
				violations = append(violations, v)
			} else {
				warnings = append(warnings, v)
			}
		}
	}

	verdict := models.LegalityVerdict{
		Legal:       len(violations) == 0,
		Violations:  violations,
		Warnings:    warnings,
		Categories:  selected,
		EvaluatedAt: s.now().UTC(),
		AuditID:     uuid.NewString(),
	}

	s.log.Debug("legality evaluated",
		zap.String("op", op),
		zap.String("crew_id", string(duty.CrewID)),
		zap.Bool("legal", verdict.Legal),
		zap.Int("violations", len(violations)),
		zap.Int("warnings", len(warnings)),
	)

	return verdict, nil
}

// Limits returns the rule-limit table the service evaluates against.
func (s *LegalityService) Limits() models.RuleLimits {
	return s.limits
}

// evaluateDutyLimits runs the regulatory checks. Every check runs regardless
// of earlier failures so the verdict lists all breached limits at once.
func (s *LegalityService) evaluateDutyLimits(duty models.DutyState, period models.ProposedDutyPeriod) []models.Violation {
	var out []models.Violation

	dutyHours := period.TotalDuty().Hours()
	if limit := s.limits.MaxDutyPeriod.Hours(); dutyHours > limit {
		out = append(out, models.Violation{
			Category:    models.CategoryDutyLimits,
			Rule:        RuleDutyPeriodLength,
			Description: fmt.Sprintf("duty period of %.1fh exceeds the %.1fh maximum", dutyHours, limit),
			Severity:    models.SeverityBlocking,
			Observed:    f64(dutyHours),
			Limit:       f64(limit),
			Remediation: "shorten the duty period or split the pairing across two duty days",
		})
	}

	flightHours := period.TotalFlightHours()
	if limit := s.limits.MaxFlightTime.Hours(); flightHours > limit {
		out = append(out, models.Violation{
			Category:    models.CategoryDutyLimits,
			Rule:        RuleFlightTime,
			Description: fmt.Sprintf("flight time of %.1fh exceeds the %.1fh maximum", flightHours, limit),
			Severity:    models.SeverityBlocking,
			Observed:    f64(flightHours),
			Limit:       f64(limit),
			Remediation: "remove segments or assign a relief crew member",
		})
	}

	// A zero prior window means no duty on record, so there is no rest gap to
	// police. An overlapping assignment shows up as a negative observed value
	// and fails like any other shortfall.
	if !duty.WindowEnd.IsZero() {
		required := s.limits.RequiredRest(duty.ConsecutiveDutyDays).Hours()
		observed := period.ReportUTC.Sub(duty.WindowEnd).Hours()
		if observed < required {
			out = append(out, models.Violation{
				Category:    models.CategoryDutyLimits,
				Rule:        RuleRestSufficiency,
				Description: fmt.Sprintf("rest of %.1fh before report is below the %.1fh required", observed, required),
				Severity:    models.SeverityBlocking,
				Observed:    f64(observed),
				Limit:       f64(required),
				Remediation: "delay the report time until the required rest has accrued",
			})
		}
	}

	if projected, limit := duty.FlightHours28Day+flightHours, s.limits.MaxFlightHours28Day; projected > limit {
		out = append(out, models.Violation{
			Category:    models.CategoryDutyLimits,
			Rule:        RuleFlightHours28Day,
			Description: fmt.Sprintf("projected 28-day flight hours %.1f exceed the %.1f cap", projected, limit),
			Severity:    models.SeverityBlocking,
			Observed:    f64(projected),
			Limit:       f64(limit),
			Remediation: "assign a crew member with headroom under the 28-day cap",
		})
	}

	if projected, limit := duty.FlightHours365Day+flightHours, s.limits.MaxFlightHours365Day; projected > limit {
		out = append(out, models.Violation{
			Category:    models.CategoryDutyLimits,
			Rule:        RuleFlightHours365,
			Description: fmt.Sprintf("projected 365-day flight hours %.1f exceed the %.1f cap", projected, limit),
			Severity:    models.SeverityBlocking,
			Observed:    f64(projected),
			Limit:       f64(limit),
			Remediation: "assign a crew member with headroom under the annual cap",
		})
	}

	return out
}

func normalizeCategories(requested []string) []string {
	var wantDuty, wantFatigue bool
	for _, c := range requested {
		switch c {
		case models.CategoryDutyLimits:
			wantDuty = true
		case models.CategoryFatigueRisk:
			wantFatigue = true
		}
	}

	out := make([]string, 0, 2)
	if wantDuty {
		out = append(out, models.CategoryDutyLimits)
	}
	if wantFatigue {
		out = append(out, models.CategoryFatigueRisk)
	}
	return out
}

func f64(v float64) *float64 {
	return &v
}
