package models

type CrewID string

// Position is the operating position category a crew member is certified for.
type Position string

const (
	PositionCaptain         Position = "CPT"
	PositionFirstOfficer    Position = "FO"
	PositionPurser          Position = "PUR"
	PositionFlightAttendant Position = "FA"
)

func (p Position) IsValid() bool {
	switch p {
	case PositionCaptain, PositionFirstOfficer, PositionPurser, PositionFlightAttendant:
		return true
	}
	return false
}

// CrewIdentity is immutable reference data for one crew member. Qualifications
// holds aircraft-type capability codes (e.g. "A320", "B737").
type CrewIdentity struct {
	ID             CrewID
	Name           string
	Position       Position
	HomeBase       string
	Qualifications []string
	SeniorityRank  int
}

// QualifiedFor reports whether the member holds the given aircraft-type code.
func (c CrewIdentity) QualifiedFor(aircraftType string) bool {
	for _, q := range c.Qualifications {
		if q == aircraftType {
			return true
		}
	}
	return false
}
