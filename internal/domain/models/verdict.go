package models

import "time"

// Severity tiers a violation. Only blocking violations make a duty illegal;
// warnings and advisories are fatigue-risk signals.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityAdvisory Severity = "advisory"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityBlocking, SeverityWarning, SeverityAdvisory:
		return true
	}
	return false
}

// Rule category names accepted by the evaluator. Unknown names are ignored.
const (
	CategoryDutyLimits  = "regulatory-duty-limits"
	CategoryFatigueRisk = "fatigue-risk"
)

type Violation struct {
	Category    string
	Rule        string
	Description string
	Severity    Severity
	Observed    *float64
	Limit       *float64
	Remediation string
}

// LegalityVerdict is the outcome of evaluating one proposed duty period.
// Legal is true iff Violations (the blocking tier) is empty; Warnings carries
// the warning and advisory tiers in evaluation order.
type LegalityVerdict struct {
	Legal       bool
	Violations  []Violation
	Warnings    []Violation
	Categories  []string
	EvaluatedAt time.Time
	AuditID     string
}
