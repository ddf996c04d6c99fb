package models

import "time"

type FlightID string

// DutyStatus is the state category of a crew member's current duty record.
type DutyStatus string

const (
	StatusOnDuty   DutyStatus = "ON_DUTY"
	StatusResting  DutyStatus = "RESTING"
	StatusReserve  DutyStatus = "RESERVE"
	StatusOff      DutyStatus = "OFF"
	StatusSick     DutyStatus = "SICK"
	StatusVacation DutyStatus = "VACATION"
)

func (s DutyStatus) IsValid() bool {
	switch s {
	case StatusOnDuty, StatusResting, StatusReserve, StatusOff, StatusSick, StatusVacation:
		return true
	}
	return false
}

// DutyState is the mutable duty record for one crew member. Exactly one state
// exists per crew id; transitions replace the whole record, never parts of it.
type DutyState struct {
	CrewID   CrewID
	Status   DutyStatus
	Location string

	// Window bounds the current status in UTC: the duty period while on duty,
	// the rest period while resting, the standby window while on reserve.
	WindowStart time.Time
	WindowEnd   time.Time

	DutyHoursCycle      float64
	RestHoursAccrued    float64
	FlightHours28Day    float64
	FlightHours365Day   float64
	ConsecutiveDutyDays int

	LastWOCLExposure time.Time

	// Callout bookkeeping feeds the fairness ranking strategy; updated only by
	// the swap operation.
	RecentCallouts int
	LastCalloutAt  time.Time

	AssignedFlights []FlightID
}

// Validate enforces the record invariants: known status, window end not before
// start, cumulative counters never negative.
func (d DutyState) Validate() error {
	if d.CrewID == "" {
		return newInvalid("crew id is required")
	}
	if !d.Status.IsValid() {
		return newInvalid("unknown duty status %q", d.Status)
	}
	if !d.WindowEnd.IsZero() && !d.WindowStart.IsZero() && d.WindowEnd.Before(d.WindowStart) {
		return newInvalid("window end %s before start %s", d.WindowEnd.Format(time.RFC3339), d.WindowStart.Format(time.RFC3339))
	}
	if d.DutyHoursCycle < 0 || d.RestHoursAccrued < 0 || d.FlightHours28Day < 0 || d.FlightHours365Day < 0 {
		return newInvalid("cumulative counters must not be negative")
	}
	if d.ConsecutiveDutyDays < 0 {
		return newInvalid("consecutive duty days must not be negative")
	}
	if d.RecentCallouts < 0 {
		return newInvalid("recent callouts must not be negative")
	}
	return nil
}

// Clone returns a deep copy so stored records are never aliased by callers.
func (d DutyState) Clone() DutyState {
	out := d
	if d.AssignedFlights != nil {
		out.AssignedFlights = make([]FlightID, len(d.AssignedFlights))
		copy(out.AssignedFlights, d.AssignedFlights)
	}
	return out
}

// HasFlight reports whether the given flight is currently assigned.
func (d DutyState) HasFlight(id FlightID) bool {
	for _, f := range d.AssignedFlights {
		if f == id {
			return true
		}
	}
	return false
}
