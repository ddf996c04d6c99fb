package http

import (
	"time"

	"github.com/avialine/crew-recovery/internal/application/service"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

func toPeriod(dto PeriodDTO) models.ProposedDutyPeriod {
	segments := make([]models.FlightSegment, 0, len(dto.Segments))
	for _, s := range dto.Segments {
		segments = append(segments, models.FlightSegment{
			FlightID:     models.FlightID(s.FlightID),
			Origin:       s.Origin,
			Destination:  s.Destination,
			DepartureUTC: s.DepartureUTC.UTC(),
			ArrivalUTC:   s.ArrivalUTC.UTC(),
			FlightTime:   time.Duration(s.FlightTimeMinutes) * time.Minute,
		})
	}

	return models.ProposedDutyPeriod{
		Segments:   segments,
		ReportUTC:  dto.ReportUTC.UTC(),
		ReleaseUTC: dto.ReleaseUTC.UTC(),
	}
}

func toVerdictDTO(v models.LegalityVerdict) VerdictDTO {
	return VerdictDTO{
		Legal:       v.Legal,
		Violations:  toViolationDTOs(v.Violations),
		Warnings:    toViolationDTOs(v.Warnings),
		Categories:  v.Categories,
		EvaluatedAt: v.EvaluatedAt,
		AuditID:     v.AuditID,
	}
}

func toViolationDTOs(violations []models.Violation) []ViolationDTO {
	out := make([]ViolationDTO, 0, len(violations))
	for _, v := range violations {
		out = append(out, ViolationDTO{
			Category:    v.Category,
			Rule:        v.Rule,
			Description: v.Description,
			Severity:    string(v.Severity),
			Observed:    v.Observed,
			Limit:       v.Limit,
			Remediation: v.Remediation,
		})
	}
	return out
}

func toSearchRequest(dto ReplacementSearchRequest) service.SearchRequest {
	return service.SearchRequest{
		FlightNumber:    dto.FlightNumber,
		Position:        models.Position(dto.Position),
		DepartureUTC:    dto.DepartureUTC.UTC(),
		Base:            dto.Base,
		AircraftType:    dto.AircraftType,
		MaxResults:      dto.MaxResults,
		IncludeDeadhead: dto.IncludeDeadhead,
		Strategy:        models.RankingStrategy(dto.Strategy),
	}
}

func toSearchResponse(outcome service.SearchOutcome) ReplacementSearchResponse {
	candidates := make([]RankedCandidateDTO, 0, len(outcome.Candidates))
	for _, c := range outcome.Candidates {
		candidates = append(candidates, toRankedCandidateDTO(c))
	}

	var skipped []SkippedCandidateDTO
	for _, s := range outcome.Skipped {
		skipped = append(skipped, SkippedCandidateDTO{
			CrewID: string(s.CrewID),
			Reason: s.Reason,
		})
	}

	return ReplacementSearchResponse{
		Candidates: candidates,
		Skipped:    skipped,
		PoolSize:   outcome.PoolSize,
		Evaluated:  outcome.Evaluated,
		Partial:    outcome.Partial,
	}
}

func toRankedCandidateDTO(c models.RankedCandidate) RankedCandidateDTO {
	breakdown := make([]ScoreComponentDTO, 0, len(c.Breakdown))
	for _, comp := range c.Breakdown {
		breakdown = append(breakdown, ScoreComponentDTO{Name: comp.Name, Delta: comp.Delta})
	}

	return RankedCandidateDTO{
		CrewID:  string(c.CrewID),
		Name:    c.Name,
		Score:   c.Score,
		Verdict: toVerdictDTO(c.Verdict),
		Cost: CostDTO{
			PayCredit:       c.Cost.PayCredit.String(),
			PerDiem:         c.Cost.PerDiem.String(),
			DeadheadCost:    c.Cost.DeadheadCost.String(),
			HotelCost:       c.Cost.HotelCost.String(),
			OvertimePremium: c.Cost.OvertimePremium.String(),
			Total:           c.Cost.Total.String(),
		},
		Logistics: LogisticsDTO{
			CurrentLocation:     c.Logistics.CurrentLocation,
			PositioningRequired: c.Logistics.PositioningRequired,
			PositioningFlight:   c.Logistics.PositioningFlight,
			ReadyAtUTC:          c.Logistics.ReadyAtUTC,
			TravelMinutes:       c.Logistics.TravelMinutes,
		},
		Breakdown: breakdown,
	}
}

func toSwapRequest(dto SwapRequest) service.SwapRequest {
	return service.SwapRequest{
		FlightID:   models.FlightID(dto.FlightID),
		OutgoingID: models.CrewID(dto.OutgoingID),
		IncomingID: models.CrewID(dto.IncomingID),
		ParkStatus: models.DutyStatus(dto.ParkStatus),
		ReportUTC:  dto.ReportUTC.UTC(),
		ReleaseUTC: dto.ReleaseUTC.UTC(),
	}
}

func toIdentity(dto IdentityDTO) models.CrewIdentity {
	return models.CrewIdentity{
		ID:             models.CrewID(dto.CrewID),
		Name:           dto.Name,
		Position:       models.Position(dto.Position),
		HomeBase:       dto.HomeBase,
		Qualifications: dto.Qualifications,
		SeniorityRank:  dto.SeniorityRank,
	}
}

func toIdentityDTO(identity models.CrewIdentity) IdentityDTO {
	return IdentityDTO{
		CrewID:         string(identity.ID),
		Name:           identity.Name,
		Position:       string(identity.Position),
		HomeBase:       identity.HomeBase,
		Qualifications: identity.Qualifications,
		SeniorityRank:  identity.SeniorityRank,
	}
}

func toDutyState(dto DutyStateDTO) models.DutyState {
	flights := make([]models.FlightID, 0, len(dto.AssignedFlights))
	for _, f := range dto.AssignedFlights {
		flights = append(flights, models.FlightID(f))
	}

	return models.DutyState{
		CrewID:              models.CrewID(dto.CrewID),
		Status:              models.DutyStatus(dto.Status),
		Location:            dto.Location,
		WindowStart:         dto.WindowStart.UTC(),
		WindowEnd:           dto.WindowEnd.UTC(),
		DutyHoursCycle:      dto.DutyHoursCycle,
		RestHoursAccrued:    dto.RestHoursAccrued,
		FlightHours28Day:    dto.FlightHours28Day,
		FlightHours365Day:   dto.FlightHours365Day,
		ConsecutiveDutyDays: dto.ConsecutiveDutyDays,
		LastWOCLExposure:    dto.LastWOCLExposure.UTC(),
		RecentCallouts:      dto.RecentCallouts,
		LastCalloutAt:       dto.LastCalloutAt.UTC(),
		AssignedFlights:     flights,
	}
}

func toDutyStateDTO(state models.DutyState) DutyStateDTO {
	flights := make([]string, 0, len(state.AssignedFlights))
	for _, f := range state.AssignedFlights {
		flights = append(flights, string(f))
	}

	return DutyStateDTO{
		CrewID:              string(state.CrewID),
		Status:              string(state.Status),
		Location:            state.Location,
		WindowStart:         state.WindowStart,
		WindowEnd:           state.WindowEnd,
		DutyHoursCycle:      state.DutyHoursCycle,
		RestHoursAccrued:    state.RestHoursAccrued,
		FlightHours28Day:    state.FlightHours28Day,
		FlightHours365Day:   state.FlightHours365Day,
		ConsecutiveDutyDays: state.ConsecutiveDutyDays,
		LastWOCLExposure:    state.LastWOCLExposure,
		RecentCallouts:      state.RecentCallouts,
		LastCalloutAt:       state.LastCalloutAt,
		AssignedFlights:     flights,
	}
}
