package service

import (
	"fmt"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// evaluateFatigueRisk runs the fatigue assessment. Findings here are
// warnings and advisories only and never make a verdict illegal.
func (s *LegalityService) evaluateFatigueRisk(duty models.DutyState, period models.ProposedDutyPeriod) []models.Violation {
	var out []models.Violation

	start := period.StartUTC()
	woclHit := s.limits.InWOCL(start)
	if woclHit {
		out = append(out, models.Violation{
			Category:    models.CategoryFatigueRisk,
			Rule:        RuleWOCLOverlap,
			Description: fmt.Sprintf("duty starts at %s inside the window of circadian low", start.UTC().Format("15:04")+"Z"),
			Severity:    models.SeverityWarning,
			Remediation: "consider a later report time or controlled rest provisions",
		})
	}

	if duty.ConsecutiveDutyDays >= consecutiveDutyFatigueDays {
		days := float64(duty.ConsecutiveDutyDays)
		out = append(out, models.Violation{
			Category:    models.CategoryFatigueRisk,
			Rule:        RuleConsecutiveDuty,
			Description: fmt.Sprintf("%d consecutive duty days reach the fatigue watch level", duty.ConsecutiveDutyDays),
			Severity:    models.SeverityAdvisory,
			Observed:    f64(days),
			Limit:       f64(consecutiveDutyFatigueDays),
		})
	}

	if dutyHours := period.TotalDuty().Hours(); dutyHours > longDutyFatigueThreshold.Hours() {
		out = append(out, models.Violation{
			Category:    models.CategoryFatigueRisk,
			Rule:        RuleLongDuty,
			Description: fmt.Sprintf("duty period of %.1fh is long enough to elevate fatigue risk", dutyHours),
			Severity:    models.SeverityAdvisory,
			Observed:    f64(dutyHours),
			Limit:       f64(longDutyFatigueThreshold.Hours()),
		})
	}

	// Back-to-back circadian-low duty compounds the risk, so a WOCL start
	// within a day of the previous exposure earns an extra advisory.
	if woclHit && !duty.LastWOCLExposure.IsZero() {
		since := start.Sub(duty.LastWOCLExposure)
		if since >= 0 && since <= woclReexposureWindow {
			out = append(out, models.Violation{
				Category:    models.CategoryFatigueRisk,
				Rule:        RuleWOCLReexposure,
				Description: fmt.Sprintf("previous circadian-low exposure was only %.1fh ago", since.Hours()),
				Severity:    models.SeverityAdvisory,
				Observed:    f64(since.Hours()),
				Limit:       f64(woclReexposureWindow.Hours()),
			})
		}
	}

	return out
}
