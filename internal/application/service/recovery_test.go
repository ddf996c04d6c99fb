package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

// fakeRoster is an in-memory stand-in for the duty store and crew directory
// ports.
type fakeRoster struct {
	states     map[models.CrewID]models.DutyState
	identities map[models.CrewID]models.CrewIdentity
	listErr    error
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{
		states:     make(map[models.CrewID]models.DutyState),
		identities: make(map[models.CrewID]models.CrewIdentity),
	}
}

func (r *fakeRoster) Get(_ context.Context, id models.CrewID) (models.DutyState, error) {
	state, ok := r.states[id]
	if !ok {
		return models.DutyState{}, derr.ErrCrewNotFound
	}
	return state, nil
}

func (r *fakeRoster) ListByStatus(_ context.Context, status models.DutyStatus) ([]models.DutyState, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.DutyState
	for _, state := range r.states {
		if state.Status == status {
			out = append(out, state)
		}
	}
	return out, nil
}

func (r *fakeRoster) ListByLocation(_ context.Context, location string) ([]models.DutyState, error) {
	var out []models.DutyState
	for _, state := range r.states {
		if state.Location == location {
			out = append(out, state)
		}
	}
	return out, nil
}

func (r *fakeRoster) Put(_ context.Context, state models.DutyState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	r.states[state.CrewID] = state
	return nil
}

func (r *fakeRoster) GetIdentity(_ context.Context, id models.CrewID) (models.CrewIdentity, error) {
	identity, ok := r.identities[id]
	if !ok {
		return models.CrewIdentity{}, derr.ErrCrewNotFound
	}
	return identity, nil
}

func (r *fakeRoster) PutIdentity(_ context.Context, identity models.CrewIdentity) error {
	r.identities[identity.ID] = identity
	return nil
}

func (r *fakeRoster) ListIdentities(_ context.Context) ([]models.CrewIdentity, error) {
	var out []models.CrewIdentity
	for _, identity := range r.identities {
		out = append(out, identity)
	}
	return out, nil
}

type fakeCostEstimator struct {
	failFor models.CrewID
}

func (f *fakeCostEstimator) Estimate(_ context.Context, identity models.CrewIdentity, _ models.DutyState,
	_ models.ProposedDutyPeriod, _ models.LogisticsEstimate) (models.CostEstimate, error) {
	if f.failFor != "" && identity.ID == f.failFor {
		return models.CostEstimate{}, errors.New("pricing table unavailable")
	}
	return models.CostEstimate{
		PayCredit: decimal.NewFromInt(480),
		Total:     decimal.NewFromInt(600),
	}, nil
}

type fakeLogisticsEstimator struct{}

func (fakeLogisticsEstimator) Estimate(_ context.Context, state models.DutyState, base string,
	departureUTC time.Time) (models.LogisticsEstimate, error) {
	est := models.LogisticsEstimate{
		CurrentLocation: state.Location,
		ReadyAtUTC:      departureUTC.Add(-2 * time.Hour),
	}
	if state.Location != base {
		est.PositioningRequired = true
		est.TravelMinutes = 120
	}
	return est, nil
}

func testSearchParams() SearchParams {
	return SearchParams{
		Budget:          2 * time.Second,
		Parallelism:     4,
		ReportLead:      time.Hour,
		AssumedBlock:    4 * time.Hour,
		ReleaseBuffer:   30 * time.Minute,
		ReserveWindow:   12 * time.Hour,
		DefaultStrategy: models.StrategyCost,
	}
}

func newTestRecovery(roster *fakeRoster, cost *fakeCostEstimator, params SearchParams) *RecoveryService {
	legality := NewLegalityService(zap.NewNop(), models.DefaultRuleLimits())
	ranking := NewRankingService(zap.NewNop(), ScoringThresholds{
		HighCost:       decimal.NewFromInt(2500),
		HighHourlyRate: decimal.NewFromInt(180),
		FreshDutyHours: 15,
	})
	return NewRecoveryService(zap.NewNop(), roster, roster, legality, ranking, cost, fakeLogisticsEstimator{}, params, nil)
}

// departure is well clear of the window of circadian low.
var searchDeparture = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

func reserveMember(id models.CrewID, location string) (models.CrewIdentity, models.DutyState) {
	identity := models.CrewIdentity{
		ID:             id,
		Name:           "Crew " + string(id),
		Position:       models.PositionFirstOfficer,
		HomeBase:       "ORD",
		Qualifications: []string{"A320"},
		SeniorityRank:  100,
	}
	state := models.DutyState{
		CrewID:              id,
		Status:              models.StatusReserve,
		Location:            location,
		WindowStart:         searchDeparture.Add(-40 * time.Hour),
		WindowEnd:           searchDeparture.Add(-24 * time.Hour),
		DutyHoursCycle:      10,
		FlightHours28Day:    40,
		FlightHours365Day:   400,
		ConsecutiveDutyDays: 2,
	}
	return identity, state
}

func seedReserve(roster *fakeRoster, id models.CrewID, location string, mutate func(*models.CrewIdentity, *models.DutyState)) {
	identity, state := reserveMember(id, location)
	if mutate != nil {
		mutate(&identity, &state)
	}
	roster.identities[id] = identity
	roster.states[id] = state
}

func searchRequest() SearchRequest {
	return SearchRequest{
		FlightNumber: "UA1848",
		Position:     models.PositionFirstOfficer,
		DepartureUTC: searchDeparture,
		Base:         "ORD",
		AircraftType: "A320",
		MaxResults:   5,
	}
}

func TestFindReplacements_FiltersPoolAndRanks(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	seedReserve(roster, "CM-002", "ORD", nil)
	seedReserve(roster, "CM-003", "ORD", func(identity *models.CrewIdentity, _ *models.DutyState) {
		identity.HomeBase = "DEN" // wrong base
	})
	seedReserve(roster, "CM-004", "ORD", func(identity *models.CrewIdentity, _ *models.DutyState) {
		identity.Position = models.PositionCaptain // wrong position
	})
	seedReserve(roster, "CM-005", "ORD", func(identity *models.CrewIdentity, _ *models.DutyState) {
		identity.Qualifications = []string{"B737"} // not type-qualified
	})
	seedReserve(roster, "CM-006", "MDW", nil) // away from base, deadhead off

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.PoolSize != 2 {
		t.Fatalf("expected pool of 2 after filtering, got %d", outcome.PoolSize)
	}
	if len(outcome.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(outcome.Candidates))
	}
	if outcome.Candidates[0].CrewID != "CM-001" || outcome.Candidates[1].CrewID != "CM-002" {
		t.Fatalf("expected deterministic CM-001, CM-002 order, got %v then %v",
			outcome.Candidates[0].CrewID, outcome.Candidates[1].CrewID)
	}
	if outcome.Partial {
		t.Fatal("search should not be partial")
	}
}

func TestFindReplacements_IncludeDeadheadWidensPool(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	seedReserve(roster, "CM-002", "MDW", nil)

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	req := searchRequest()
	req.IncludeDeadhead = true
	outcome, err := svc.FindReplacements(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Candidates) != 2 {
		t.Fatalf("expected both candidates with deadhead enabled, got %d", len(outcome.Candidates))
	}
}

func TestFindReplacements_DropsIllegalCandidates(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	seedReserve(roster, "CM-002", "ORD", func(_ *models.CrewIdentity, state *models.DutyState) {
		// Only 3h of rest before report.
		state.WindowEnd = searchDeparture.Add(-time.Hour).Add(-3 * time.Hour)
	})

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Candidates) != 1 || outcome.Candidates[0].CrewID != "CM-001" {
		t.Fatalf("expected only CM-001 to survive legality, got %+v", outcome.Candidates)
	}
	if outcome.Evaluated != 2 {
		t.Fatalf("both candidates should have been evaluated, got %d", outcome.Evaluated)
	}
	if len(outcome.Skipped) != 0 {
		t.Fatalf("an illegal candidate is dropped, not skipped: %+v", outcome.Skipped)
	}
}

func TestFindReplacements_EmptyPoolIsNotAnError(t *testing.T) {
	svc := newTestRecovery(newFakeRoster(), &fakeCostEstimator{}, testSearchParams())

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("empty pool must not fail: %v", err)
	}
	if len(outcome.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(outcome.Candidates))
	}
}

func TestFindReplacements_IsolatesPerCandidateFaults(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	seedReserve(roster, "CM-002", "ORD", nil)

	svc := newTestRecovery(roster, &fakeCostEstimator{failFor: "CM-002"}, testSearchParams())

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("per-candidate fault must not fail the batch: %v", err)
	}
	if len(outcome.Candidates) != 1 || outcome.Candidates[0].CrewID != "CM-001" {
		t.Fatalf("expected CM-001 to survive, got %+v", outcome.Candidates)
	}
	if len(outcome.Skipped) != 1 || outcome.Skipped[0].CrewID != "CM-002" {
		t.Fatalf("expected CM-002 skipped with a diagnostic, got %+v", outcome.Skipped)
	}
}

func TestFindReplacements_MissingIdentityIsSkipped(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	_, orphan := reserveMember("CM-999", "ORD")
	roster.states["CM-999"] = orphan // duty state without identity

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Skipped) != 1 || outcome.Skipped[0].CrewID != "CM-999" {
		t.Fatalf("expected CM-999 skipped, got %+v", outcome.Skipped)
	}
	if len(outcome.Candidates) != 1 {
		t.Fatalf("expected CM-001 still returned, got %d", len(outcome.Candidates))
	}
}

func TestFindReplacements_BudgetExhaustionIsSoft(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)
	seedReserve(roster, "CM-002", "ORD", nil)

	params := testSearchParams()
	params.Budget = time.Nanosecond
	svc := newTestRecovery(roster, &fakeCostEstimator{}, params)

	outcome, err := svc.FindReplacements(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("budget exhaustion must not fail the request: %v", err)
	}
	if !outcome.Partial {
		t.Fatal("expected a partial outcome")
	}
	for _, s := range outcome.Skipped {
		if s.Reason != reasonBudgetExhausted {
			t.Fatalf("unexpected skip reason: %q", s.Reason)
		}
	}
}

func TestFindReplacements_InvalidRequest(t *testing.T) {
	svc := newTestRecovery(newFakeRoster(), &fakeCostEstimator{}, testSearchParams())

	req := searchRequest()
	req.Base = ""
	if _, err := svc.FindReplacements(context.Background(), req); !errors.Is(err, derr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	req = searchRequest()
	req.Strategy = "quickest"
	if _, err := svc.FindReplacements(context.Background(), req); !errors.Is(err, derr.ErrInvalidStrategy) {
		t.Fatalf("expected ErrInvalidStrategy, got %v", err)
	}
}

func TestCheckLegality_UnknownCrew(t *testing.T) {
	svc := newTestRecovery(newFakeRoster(), &fakeCostEstimator{}, testSearchParams())

	period := models.ProposedDutyPeriod{
		ReportUTC:  searchDeparture.Add(-time.Hour),
		ReleaseUTC: searchDeparture.Add(5 * time.Hour),
	}
	_, err := svc.CheckLegality(context.Background(), "CM-404", period, []string{models.CategoryDutyLimits})
	if !errors.Is(err, derr.ErrCrewNotFound) {
		t.Fatalf("expected ErrCrewNotFound, got %v", err)
	}
}

func TestCheckLegality_Legal(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-001", "ORD", nil)

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	period := models.ProposedDutyPeriod{
		ReportUTC:  searchDeparture.Add(-time.Hour),
		ReleaseUTC: searchDeparture.Add(5 * time.Hour),
	}
	verdict, err := svc.CheckLegality(context.Background(), "CM-001", period,
		[]string{models.CategoryDutyLimits, models.CategoryFatigueRisk})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Legal || len(verdict.Violations) != 0 {
		t.Fatalf("expected a clean legal verdict, got %+v", verdict)
	}
}

func TestExecuteSwap_Transitions(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-IN", "ORD", nil)
	seedReserve(roster, "CM-OUT", "ORD", func(_ *models.CrewIdentity, state *models.DutyState) {
		state.Status = models.StatusOnDuty
		state.WindowStart = searchDeparture.Add(-2 * time.Hour)
		state.WindowEnd = searchDeparture.Add(6 * time.Hour)
		state.AssignedFlights = []models.FlightID{"UA1848", "UA204"}
	})

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	report := searchDeparture.Add(-time.Hour)
	release := searchDeparture.Add(5 * time.Hour)
	result, err := svc.ExecuteSwap(context.Background(), SwapRequest{
		FlightID:   "UA1848",
		OutgoingID: "CM-OUT",
		IncomingID: "CM-IN",
		ReportUTC:  report,
		ReleaseUTC: release,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outgoing.Status != models.StatusReserve {
		t.Fatalf("outgoing should default to RESERVE, got %s", result.Outgoing.Status)
	}
	if result.Outgoing.HasFlight("UA1848") {
		t.Fatal("outgoing member should have lost the flight")
	}
	if !result.Outgoing.HasFlight("UA204") {
		t.Fatal("other assignments must be preserved")
	}

	if result.Incoming.Status != models.StatusOnDuty {
		t.Fatalf("incoming should be ON_DUTY, got %s", result.Incoming.Status)
	}
	if !result.Incoming.HasFlight("UA1848") {
		t.Fatal("incoming member should carry the flight")
	}
	if result.Incoming.RecentCallouts != 1 {
		t.Fatalf("callout counter should increment, got %d", result.Incoming.RecentCallouts)
	}
	if !result.Incoming.LastCalloutAt.Equal(report) {
		t.Fatalf("last callout should be the report instant, got %s", result.Incoming.LastCalloutAt)
	}

	// The store must hold the replaced records.
	stored, err := roster.Get(context.Background(), "CM-IN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != models.StatusOnDuty {
		t.Fatalf("stored incoming state not replaced, got %s", stored.Status)
	}
}

func TestExecuteSwap_ParkOff(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-IN", "ORD", nil)
	seedReserve(roster, "CM-OUT", "ORD", func(_ *models.CrewIdentity, state *models.DutyState) {
		state.Status = models.StatusOnDuty
		state.AssignedFlights = []models.FlightID{"UA1848"}
	})

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	result, err := svc.ExecuteSwap(context.Background(), SwapRequest{
		FlightID:   "UA1848",
		OutgoingID: "CM-OUT",
		IncomingID: "CM-IN",
		ParkStatus: models.StatusOff,
		ReportUTC:  searchDeparture.Add(-time.Hour),
		ReleaseUTC: searchDeparture.Add(5 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outgoing.Status != models.StatusOff {
		t.Fatalf("outgoing should be OFF, got %s", result.Outgoing.Status)
	}
}

func TestExecuteSwap_Conflicts(t *testing.T) {
	roster := newFakeRoster()
	seedReserve(roster, "CM-IN", "ORD", func(_ *models.CrewIdentity, state *models.DutyState) {
		state.Status = models.StatusSick
	})
	seedReserve(roster, "CM-OUT", "ORD", func(_ *models.CrewIdentity, state *models.DutyState) {
		state.Status = models.StatusOnDuty
		state.AssignedFlights = []models.FlightID{"UA1848"}
	})

	svc := newTestRecovery(roster, &fakeCostEstimator{}, testSearchParams())

	req := SwapRequest{
		FlightID:   "UA1848",
		OutgoingID: "CM-OUT",
		IncomingID: "CM-IN",
		ReportUTC:  searchDeparture.Add(-time.Hour),
		ReleaseUTC: searchDeparture.Add(5 * time.Hour),
	}
	if _, err := svc.ExecuteSwap(context.Background(), req); !errors.Is(err, derr.ErrSwapConflict) {
		t.Fatalf("sick incoming member should conflict, got %v", err)
	}

	roster.states["CM-IN"] = func() models.DutyState {
		_, s := reserveMember("CM-IN", "ORD")
		return s
	}()
	req.FlightID = "UA9999"
	if _, err := svc.ExecuteSwap(context.Background(), req); !errors.Is(err, derr.ErrSwapConflict) {
		t.Fatalf("unassigned flight should conflict, got %v", err)
	}

	req.FlightID = "UA1848"
	req.IncomingID = "CM-OUT"
	if _, err := svc.ExecuteSwap(context.Background(), req); !errors.Is(err, derr.ErrInvalidInput) {
		t.Fatalf("self-swap should be invalid input, got %v", err)
	}
}
