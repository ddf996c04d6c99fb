package models

import "time"

// RuleLimits is the rule-limit table the evaluator runs against. It is loaded
// once from configuration and treated as read-only; swapping jurisdictions is a
// config change, not an evaluator change. The flat shape mirrors the simplified
// rule subset: a real FAR 117-style table keyed by report time and segment
// count can replace it behind the same evaluator contract.
type RuleLimits struct {
	MaxDutyPeriod time.Duration
	MaxFlightTime time.Duration

	MinRest               time.Duration
	ExtendedRest          time.Duration
	ExtendedRestAfterDays int

	MaxFlightHours28Day  float64
	MaxFlightHours365Day float64

	// Window of circadian low as minutes since midnight UTC; the window may
	// wrap past midnight (start > end).
	WOCLStartMinute int
	WOCLEndMinute   int
}

// DefaultRuleLimits is the built-in simplified domestic rule set.
func DefaultRuleLimits() RuleLimits {
	return RuleLimits{
		MaxDutyPeriod:         13 * time.Hour,
		MaxFlightTime:         9 * time.Hour,
		MinRest:               10 * time.Hour,
		ExtendedRest:          12 * time.Hour,
		ExtendedRestAfterDays: 3,
		MaxFlightHours28Day:   100,
		MaxFlightHours365Day:  1000,
		WOCLStartMinute:       2 * 60,      // 02:00
		WOCLEndMinute:         5*60 + 59,   // 05:59
	}
}

// RequiredRest returns the rest requirement for a member with the given
// consecutive-duty-day count.
func (r RuleLimits) RequiredRest(consecutiveDutyDays int) time.Duration {
	if consecutiveDutyDays >= r.ExtendedRestAfterDays {
		return r.ExtendedRest
	}
	return r.MinRest
}

// InWOCL reports whether the instant's UTC time of day falls inside the window
// of circadian low, handling windows that wrap past midnight.
func (r RuleLimits) InWOCL(t time.Time) bool {
	utc := t.UTC()
	minute := utc.Hour()*60 + utc.Minute()
	if r.WOCLStartMinute <= r.WOCLEndMinute {
		return minute >= r.WOCLStartMinute && minute <= r.WOCLEndMinute
	}
	return minute >= r.WOCLStartMinute || minute <= r.WOCLEndMinute
}
