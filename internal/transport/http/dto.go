package http

import "time"

// Request and response shapes for the JSON API. All instants are RFC 3339
// UTC. The crewctl client reuses these types, so they stay exported.

type SegmentDTO struct {
	FlightID          string    `json:"flight_id" validate:"required"`
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	DepartureUTC      time.Time `json:"departure_utc" validate:"required"`
	ArrivalUTC        time.Time `json:"arrival_utc" validate:"required"`
	FlightTimeMinutes int64     `json:"flight_time_minutes" validate:"gte=0"`
}

type PeriodDTO struct {
	Segments   []SegmentDTO `json:"segments" validate:"dive"`
	ReportUTC  time.Time    `json:"report_utc" validate:"required"`
	ReleaseUTC time.Time    `json:"release_utc" validate:"required"`
}

type LegalityCheckRequest struct {
	CrewID string    `json:"crew_id" validate:"required"`
	Period PeriodDTO `json:"period" validate:"required"`
	// Categories defaults to every known rule category when omitted.
	Categories []string `json:"categories,omitempty"`
}

type ViolationDTO struct {
	Category    string   `json:"category"`
	Rule        string   `json:"rule"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Observed    *float64 `json:"observed,omitempty"`
	Limit       *float64 `json:"limit,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
}

type VerdictDTO struct {
	Legal       bool           `json:"legal"`
	Violations  []ViolationDTO `json:"violations"`
	Warnings    []ViolationDTO `json:"warnings"`
	Categories  []string       `json:"categories"`
	EvaluatedAt time.Time      `json:"evaluated_at"`
	AuditID     string         `json:"audit_id"`
}

type ReplacementSearchRequest struct {
	FlightNumber    string    `json:"flight_number" validate:"required"`
	Position        string    `json:"position" validate:"required"`
	DepartureUTC    time.Time `json:"departure_utc" validate:"required"`
	Base            string    `json:"base" validate:"required"`
	AircraftType    string    `json:"aircraft_type" validate:"required"`
	MaxResults      int       `json:"max_results" validate:"gte=0"`
	IncludeDeadhead bool      `json:"include_deadhead"`
	Strategy        string    `json:"strategy,omitempty" validate:"omitempty,oneof=cost fairness seniority"`
}

type CostDTO struct {
	PayCredit       string `json:"pay_credit"`
	PerDiem         string `json:"per_diem"`
	DeadheadCost    string `json:"deadhead_cost"`
	HotelCost       string `json:"hotel_cost"`
	OvertimePremium string `json:"overtime_premium"`
	Total           string `json:"total"`
}

type LogisticsDTO struct {
	CurrentLocation     string    `json:"current_location"`
	PositioningRequired bool      `json:"positioning_required"`
	PositioningFlight   string    `json:"positioning_flight,omitempty"`
	ReadyAtUTC          time.Time `json:"ready_at_utc"`
	TravelMinutes       int       `json:"travel_minutes"`
}

type ScoreComponentDTO struct {
	Name  string  `json:"name"`
	Delta float64 `json:"delta"`
}

type RankedCandidateDTO struct {
	CrewID    string              `json:"crew_id"`
	Name      string              `json:"name"`
	Score     float64             `json:"score"`
	Verdict   VerdictDTO          `json:"verdict"`
	Cost      CostDTO             `json:"cost"`
	Logistics LogisticsDTO        `json:"logistics"`
	Breakdown []ScoreComponentDTO `json:"breakdown"`
}

type SkippedCandidateDTO struct {
	CrewID string `json:"crew_id"`
	Reason string `json:"reason"`
}

type ReplacementSearchResponse struct {
	Candidates []RankedCandidateDTO  `json:"candidates"`
	Skipped    []SkippedCandidateDTO `json:"skipped,omitempty"`
	PoolSize   int                   `json:"pool_size"`
	Evaluated  int                   `json:"evaluated"`
	Partial    bool                  `json:"partial"`
}

type SwapRequest struct {
	FlightID   string    `json:"flight_id" validate:"required"`
	OutgoingID string    `json:"outgoing_id" validate:"required"`
	IncomingID string    `json:"incoming_id" validate:"required"`
	ParkStatus string    `json:"park_status,omitempty" validate:"omitempty,oneof=RESERVE OFF"`
	ReportUTC  time.Time `json:"report_utc" validate:"required"`
	ReleaseUTC time.Time `json:"release_utc" validate:"required"`
}

type SwapResponse struct {
	Outgoing DutyStateDTO `json:"outgoing"`
	Incoming DutyStateDTO `json:"incoming"`
}

type IdentityDTO struct {
	CrewID         string   `json:"crew_id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Position       string   `json:"position" validate:"required,oneof=CPT FO PUR FA"`
	HomeBase       string   `json:"home_base" validate:"required"`
	Qualifications []string `json:"qualifications"`
	SeniorityRank  int      `json:"seniority_rank" validate:"gte=0"`
}

type DutyStateDTO struct {
	CrewID              string    `json:"crew_id"`
	Status              string    `json:"status" validate:"required,oneof=ON_DUTY RESTING RESERVE OFF SICK VACATION"`
	Location            string    `json:"location" validate:"required"`
	WindowStart         time.Time `json:"window_start,omitempty"`
	WindowEnd           time.Time `json:"window_end,omitempty"`
	DutyHoursCycle      float64   `json:"duty_hours_cycle" validate:"gte=0"`
	RestHoursAccrued    float64   `json:"rest_hours_accrued" validate:"gte=0"`
	FlightHours28Day    float64   `json:"flight_hours_28d" validate:"gte=0"`
	FlightHours365Day   float64   `json:"flight_hours_365d" validate:"gte=0"`
	ConsecutiveDutyDays int       `json:"consecutive_duty_days" validate:"gte=0"`
	LastWOCLExposure    time.Time `json:"last_wocl_exposure,omitempty"`
	RecentCallouts      int       `json:"recent_callouts" validate:"gte=0"`
	LastCalloutAt       time.Time `json:"last_callout_at,omitempty"`
	AssignedFlights     []string  `json:"assigned_flights,omitempty"`
}

type PutDutyRequest struct {
	Identity IdentityDTO  `json:"identity" validate:"required"`
	State    DutyStateDTO `json:"state" validate:"required"`
}

type DutyResponse struct {
	Identity IdentityDTO  `json:"identity"`
	State    DutyStateDTO `json:"state"`
}
