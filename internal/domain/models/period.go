package models

import "time"

// FlightSegment is one scheduled leg inside a proposed duty period. FlightTime
// is the planned block time; it may differ from the arrival/departure gap.
type FlightSegment struct {
	FlightID     FlightID
	Origin       string
	Destination  string
	DepartureUTC time.Time
	ArrivalUTC   time.Time
	FlightTime   time.Duration
}

// ProposedDutyPeriod is a hypothetical assignment under evaluation. It is never
// persisted; the evaluator treats it as a value.
type ProposedDutyPeriod struct {
	Segments   []FlightSegment
	ReportUTC  time.Time
	ReleaseUTC time.Time
}

// StartUTC is the first scheduled departure, or the report time for a period
// with no segments.
func (p ProposedDutyPeriod) StartUTC() time.Time {
	if len(p.Segments) == 0 {
		return p.ReportUTC
	}
	return p.Segments[0].DepartureUTC
}

// EndUTC is the last scheduled arrival, or the release time for a period with
// no segments.
func (p ProposedDutyPeriod) EndUTC() time.Time {
	if len(p.Segments) == 0 {
		return p.ReleaseUTC
	}
	return p.Segments[len(p.Segments)-1].ArrivalUTC
}

// TotalDuty is the span from report to release.
func (p ProposedDutyPeriod) TotalDuty() time.Duration {
	return p.ReleaseUTC.Sub(p.ReportUTC)
}

// TotalFlight is the sum of segment block times. Segments with no explicit
// block time fall back to the arrival/departure gap.
func (p ProposedDutyPeriod) TotalFlight() time.Duration {
	var total time.Duration
	for _, s := range p.Segments {
		ft := s.FlightTime
		if ft == 0 {
			ft = s.ArrivalUTC.Sub(s.DepartureUTC)
		}
		total += ft
	}
	return total
}

// TotalFlightHours is TotalFlight expressed in hours, the unit the cumulative
// caps are tracked in.
func (p ProposedDutyPeriod) TotalFlightHours() float64 {
	return p.TotalFlight().Hours()
}

// Validate rejects malformed periods before any evaluation runs: missing
// report/release instants, release before report, segments out of order or
// with negative block time.
func (p ProposedDutyPeriod) Validate() error {
	if p.ReportUTC.IsZero() {
		return newInvalid("report instant is required")
	}
	if p.ReleaseUTC.IsZero() {
		return newInvalid("release instant is required")
	}
	if p.ReleaseUTC.Before(p.ReportUTC) {
		return newInvalid("release %s before report %s",
			p.ReleaseUTC.Format(time.RFC3339), p.ReportUTC.Format(time.RFC3339))
	}
	for i, s := range p.Segments {
		if s.DepartureUTC.IsZero() || s.ArrivalUTC.IsZero() {
			return newInvalid("segment %d: departure and arrival are required", i)
		}
		if s.ArrivalUTC.Before(s.DepartureUTC) {
			return newInvalid("segment %d: arrival before departure", i)
		}
		if s.FlightTime < 0 {
			return newInvalid("segment %d: negative flight time", i)
		}
		if i > 0 && s.DepartureUTC.Before(p.Segments[i-1].ArrivalUTC) {
			return newInvalid("segment %d departs before segment %d arrives", i, i-1)
		}
	}
	return nil
}
