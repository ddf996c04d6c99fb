package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
	"github.com/avialine/crew-recovery/internal/domain/ports"
)

// SearchParams bound the replacement search: wall-clock budget, evaluation
// parallelism, and the shape of the synthetic duty period built around the
// departure instant.
type SearchParams struct {
	Budget          time.Duration
	Parallelism     int
	ReportLead      time.Duration
	AssumedBlock    time.Duration
	ReleaseBuffer   time.Duration
	ReserveWindow   time.Duration
	DefaultStrategy models.RankingStrategy
}

// SearchMetrics receives operational counters from the orchestrator. A nil
// recorder disables metrics.
type SearchMetrics interface {
	ObserveSearch(strategy, outcome string, elapsed time.Duration)
	ObserveEvaluation(legal bool)
	SetReservePool(size int)
}

// SearchRequest describes the open position a replacement is needed for.
type SearchRequest struct {
	FlightNumber    string
	Position        models.Position
	DepartureUTC    time.Time
	Base            string
	AircraftType    string
	MaxResults      int
	IncludeDeadhead bool
	Strategy        models.RankingStrategy
}

// SkippedCandidate is the diagnostic note for one candidate excluded from a
// search by a local fault rather than an illegal verdict.
type SkippedCandidate struct {
	CrewID models.CrewID
	Reason string
}

// SearchOutcome is a bounded, ordered replacement search result. Partial is
// set when the wall-clock budget ran out before every pooled candidate was
// evaluated; the candidates that did complete are still ranked and returned.
type SearchOutcome struct {
	Candidates []models.RankedCandidate
	Skipped    []SkippedCandidate
	PoolSize   int
	Evaluated  int
	Partial    bool
}

// SwapRequest moves a flight from an on-duty member to a reserve member.
type SwapRequest struct {
	FlightID   models.FlightID
	OutgoingID models.CrewID
	IncomingID models.CrewID
	// ParkStatus is where the outgoing member lands: RESERVE (default) or OFF.
	ParkStatus models.DutyStatus
	ReportUTC  time.Time
	ReleaseUTC time.Time
}

// SwapResult carries the replaced duty records after a swap.
type SwapResult struct {
	Outgoing models.DutyState
	Incoming models.DutyState
}

// RecoveryService composes the roster store, the legality evaluator, and the
// ranking engine into the replacement search, and owns the only code path
// that transitions duty states.
type RecoveryService struct {
	log       *zap.Logger
	store     ports.DutyStore
	directory ports.CrewDirectory
	legality  *LegalityService
	ranking   *RankingService
	cost      ports.CostEstimator
	logistics ports.LogisticsEstimator
	params    SearchParams
	metrics   SearchMetrics

	// swapMu serializes swaps so two transitions naming the same crew member
	// can never interleave their whole-record replacements.
	swapMu sync.Mutex
}

func NewRecoveryService(
	log *zap.Logger,
	store ports.DutyStore,
	directory ports.CrewDirectory,
	legality *LegalityService,
	ranking *RankingService,
	cost ports.CostEstimator,
	logistics ports.LogisticsEstimator,
	params SearchParams,
	metrics SearchMetrics,
) *RecoveryService {
	if log == nil {
		log = zap.NewNop()
	}
	if params.Parallelism <= 0 {
		params.Parallelism = 8
	}
	if params.Budget <= 0 {
		params.Budget = 800 * time.Millisecond
	}
	if params.DefaultStrategy == "" {
		params.DefaultStrategy = models.StrategyCost
	}

	return &RecoveryService{
		log:       log,
		store:     store,
		directory: directory,
		legality:  legality,
		ranking:   ranking,
		cost:      cost,
		logistics: logistics,
		params:    params,
		metrics:   metrics,
	}
}

// CheckLegality answers the legality query for a known crew member: look up
// the duty state, then evaluate the proposed period under the requested rule
// categories.
func (s *RecoveryService) CheckLegality(ctx context.Context, crewID models.CrewID, period models.ProposedDutyPeriod, categories []string) (models.LegalityVerdict, error) {
	const op = "service.CheckLegality"
	tracer := otel.Tracer("crew-recovery/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("crew.id", string(crewID)))

	logger := s.log.With(zap.String("op", op), zap.String("crew_id", string(crewID)))

	if strings.TrimSpace(string(crewID)) == "" {
		span.SetStatus(otelcodes.Error, "missing crew id")
		return models.LegalityVerdict{}, fmt.Errorf("%s: %w: crew id is required", op, derr.ErrInvalidInput)
	}

	state, err := s.store.Get(ctx, crewID)
	if err != nil {
		logger.Warn("duty state lookup failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "duty state lookup failed")
		return models.LegalityVerdict{}, fmt.Errorf("%s: %w", op, err)
	}

	verdict, err := s.legality.Evaluate(state, period, categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "evaluation rejected")
		return models.LegalityVerdict{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveEvaluation(verdict.Legal)
	}
	span.SetAttributes(attribute.Bool("verdict.legal", verdict.Legal))
	span.SetStatus(otelcodes.Ok, "ok")
	return verdict, nil
}

// FindReplacements filters the reserve pool, evaluates a synthetic duty
// period per survivor, drops illegal candidates, and ranks the rest. An empty
// pool or a pool with no legal candidate yields an empty result, not an
// error. Per-candidate faults are isolated into Skipped entries.
func (s *RecoveryService) FindReplacements(ctx context.Context, req SearchRequest) (SearchOutcome, error) {
	const op = "service.FindReplacements"
	tracer := otel.Tracer("crew-recovery/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("search.flight", req.FlightNumber),
		attribute.String("search.position", string(req.Position)),
		attribute.String("search.base", req.Base),
		attribute.String("search.aircraft_type", req.AircraftType),
		attribute.Bool("search.include_deadhead", req.IncludeDeadhead),
	)

	started := time.Now()
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.params.DefaultStrategy
	}

	logger := s.log.With(
		zap.String("op", op),
		zap.String("flight", req.FlightNumber),
		zap.String("position", string(req.Position)),
		zap.String("base", req.Base),
		zap.String("strategy", string(strategy)),
	)

	if err := validateSearchRequest(req, strategy); err != nil {
		logger.Warn("invalid search request", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "invalid search request")
		s.observeSearch(strategy, "invalid", started)
		return SearchOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.params.Budget)
	defer cancel()

	pool, skipped, err := s.buildPool(ctx, req)
	if err != nil {
		logger.Error("reserve pool lookup failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "reserve pool lookup failed")
		s.observeSearch(strategy, "error", started)
		return SearchOutcome{}, fmt.Errorf("%s: %w", op, err)
	}
	if s.metrics != nil {
		s.metrics.SetReservePool(len(pool))
	}
	span.SetAttributes(attribute.Int("search.pool_size", len(pool)))

	profiles, evaluated, partial, evalSkipped := s.evaluatePool(ctx, req, pool)
	skipped = append(skipped, evalSkipped...)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].CrewID < skipped[j].CrewID })

	ranked, err := s.ranking.Rank(profiles, strategy, req.MaxResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "ranking failed")
		s.observeSearch(strategy, "error", started)
		return SearchOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	outcome := SearchOutcome{
		Candidates: ranked,
		Skipped:    skipped,
		PoolSize:   len(pool),
		Evaluated:  evaluated,
		Partial:    partial,
	}

	result := "ok"
	if partial {
		result = "partial"
	}
	s.observeSearch(strategy, result, started)

	span.SetAttributes(
		attribute.Int("search.evaluated", evaluated),
		attribute.Int("search.candidates", len(ranked)),
		attribute.Bool("search.partial", partial),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("replacement search finished",
		zap.Int("pool", len(pool)),
		zap.Int("evaluated", evaluated),
		zap.Int("candidates", len(ranked)),
		zap.Int("skipped", len(skipped)),
		zap.Bool("partial", partial),
		zap.Duration("elapsed", time.Since(started)),
	)

	return outcome, nil
}

// ExecuteSwap transitions the outgoing member off the flight and the incoming
// reserve member onto it. Both records are replaced wholesale; the service
// mutex keeps concurrent swaps from interleaving.
func (s *RecoveryService) ExecuteSwap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	const op = "service.ExecuteSwap"
	tracer := otel.Tracer("crew-recovery/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("swap.flight", string(req.FlightID)),
		attribute.String("swap.outgoing", string(req.OutgoingID)),
		attribute.String("swap.incoming", string(req.IncomingID)),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("flight", string(req.FlightID)),
		zap.String("outgoing", string(req.OutgoingID)),
		zap.String("incoming", string(req.IncomingID)),
	)

	park := req.ParkStatus
	if park == "" {
		park = models.StatusReserve
	}
	if err := validateSwapRequest(req, park); err != nil {
		logger.Warn("invalid swap request", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "invalid swap request")
		return SwapResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	outgoing, err := s.store.Get(ctx, req.OutgoingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "outgoing lookup failed")
		return SwapResult{}, fmt.Errorf("%s: outgoing: %w", op, err)
	}
	incoming, err := s.store.Get(ctx, req.IncomingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "incoming lookup failed")
		return SwapResult{}, fmt.Errorf("%s: incoming: %w", op, err)
	}

	if outgoing.Status != models.StatusOnDuty {
		return SwapResult{}, fmt.Errorf("%s: %w: outgoing member is %s, not %s",
			op, derr.ErrSwapConflict, outgoing.Status, models.StatusOnDuty)
	}
	if incoming.Status != models.StatusReserve {
		return SwapResult{}, fmt.Errorf("%s: %w: incoming member is %s, not %s",
			op, derr.ErrSwapConflict, incoming.Status, models.StatusReserve)
	}
	if !outgoing.HasFlight(req.FlightID) {
		return SwapResult{}, fmt.Errorf("%s: %w: flight %s is not assigned to the outgoing member",
			op, derr.ErrSwapConflict, req.FlightID)
	}

	newOutgoing := outgoing.Clone()
	newOutgoing.Status = park
	newOutgoing.WindowStart = req.ReportUTC
	newOutgoing.WindowEnd = req.ReportUTC.Add(s.params.ReserveWindow)
	newOutgoing.AssignedFlights = removeFlight(newOutgoing.AssignedFlights, req.FlightID)

	newIncoming := incoming.Clone()
	newIncoming.Status = models.StatusOnDuty
	newIncoming.WindowStart = req.ReportUTC
	newIncoming.WindowEnd = req.ReleaseUTC
	newIncoming.AssignedFlights = append(newIncoming.AssignedFlights, req.FlightID)
	newIncoming.RecentCallouts++
	newIncoming.LastCalloutAt = req.ReportUTC

	if err := s.store.Put(ctx, newOutgoing); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "outgoing replace failed")
		return SwapResult{}, fmt.Errorf("%s: replace outgoing: %w", op, err)
	}
	if err := s.store.Put(ctx, newIncoming); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "incoming replace failed")
		return SwapResult{}, fmt.Errorf("%s: replace incoming: %w", op, err)
	}

	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("swap executed", zap.String("park_status", string(park)))

	return SwapResult{Outgoing: newOutgoing, Incoming: newIncoming}, nil
}

// poolEntry is one reserve member that survived the static filters.
type poolEntry struct {
	identity models.CrewIdentity
	state    models.DutyState
}

// buildPool filters the reserve roster down to members who could legally be
// asked: right base, right position, qualified on the aircraft type, and
// already at the base unless deadhead positioning is allowed. Members without
// an identity record are skipped with a diagnostic, not dropped silently.
func (s *RecoveryService) buildPool(ctx context.Context, req SearchRequest) ([]poolEntry, []SkippedCandidate, error) {
	states, err := s.store.ListByStatus(ctx, models.StatusReserve)
	if err != nil {
		return nil, nil, err
	}

	var (
		pool    []poolEntry
		skipped []SkippedCandidate
	)
	for _, state := range states {
		identity, err := s.directory.GetIdentity(ctx, state.CrewID)
		if err != nil {
			if errors.Is(err, derr.ErrCrewNotFound) {
				skipped = append(skipped, SkippedCandidate{CrewID: state.CrewID, Reason: "no identity record"})
				continue
			}
			return nil, nil, err
		}

		if identity.HomeBase != req.Base {
			continue
		}
		if identity.Position != req.Position {
			continue
		}
		if !identity.QualifiedFor(req.AircraftType) {
			continue
		}
		if !req.IncludeDeadhead && state.Location != req.Base {
			continue
		}

		pool = append(pool, poolEntry{identity: identity, state: state})
	}

	return pool, skipped, nil
}

// evaluatePool runs logistics, legality, and cost per pooled candidate in
// parallel. Faults and budget exhaustion are per-candidate: the rest of the
// pool keeps going.
func (s *RecoveryService) evaluatePool(ctx context.Context, req SearchRequest, pool []poolEntry) ([]models.CandidateProfile, int, bool, []SkippedCandidate) {
	var (
		mu        sync.Mutex
		profiles  []models.CandidateProfile
		skipped   []SkippedCandidate
		evaluated int
		partial   bool
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Parallelism)

	for _, entry := range pool {
		entry := entry
		g.Go(func() error {
			profile, reason, ok := s.evaluateCandidate(ctx, req, entry)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case ok:
				evaluated++
				if profile != nil {
					profiles = append(profiles, *profile)
				}
			case reason == reasonBudgetExhausted:
				partial = true
				skipped = append(skipped, SkippedCandidate{CrewID: entry.state.CrewID, Reason: reason})
			default:
				skipped = append(skipped, SkippedCandidate{CrewID: entry.state.CrewID, Reason: reason})
			}
			return nil
		})
	}

	// Workers always return nil; faults are folded into skipped entries.
	_ = g.Wait()

	return profiles, evaluated, partial, skipped
}

const reasonBudgetExhausted = "search budget exhausted"

// evaluateCandidate runs the full per-candidate pipeline. It returns the
// profile when the candidate is legal, (nil, "", true) when legally excluded,
// and a skip reason otherwise.
func (s *RecoveryService) evaluateCandidate(ctx context.Context, req SearchRequest, entry poolEntry) (*models.CandidateProfile, string, bool) {
	if ctx.Err() != nil {
		return nil, reasonBudgetExhausted, false
	}

	logistics, err := s.logistics.Estimate(ctx, entry.state, req.Base, req.DepartureUTC)
	if err != nil {
		return nil, s.skipReason("logistics estimate failed", entry.state.CrewID, err), false
	}

	period := s.buildSearchPeriod(req)
	verdict, err := s.legality.Evaluate(entry.state, period, []string{models.CategoryDutyLimits, models.CategoryFatigueRisk})
	if err != nil {
		return nil, s.skipReason("evaluation failed", entry.state.CrewID, err), false
	}
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(verdict.Legal)
	}
	if !verdict.Legal {
		return nil, "", true
	}

	cost, err := s.cost.Estimate(ctx, entry.identity, entry.state, period, logistics)
	if err != nil {
		return nil, s.skipReason("cost estimate failed", entry.state.CrewID, err), false
	}

	profile := models.CandidateProfile{
		Identity:  entry.identity,
		Verdict:   verdict,
		Cost:      cost,
		Logistics: logistics,
		Fatigue:   s.fatigueIndicators(entry.state, period, req.DepartureUTC),
	}
	return &profile, "", true
}

func (s *RecoveryService) skipReason(stage string, crewID models.CrewID, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return reasonBudgetExhausted
	}
	s.log.Warn("candidate skipped",
		zap.String("crew_id", string(crewID)),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return fmt.Sprintf("%s: %v", stage, err)
}

// buildSearchPeriod shapes the hypothetical duty period around the departure
// instant: report one lead before departure, a single segment of the assumed
// block time, release a buffer after arrival.
func (s *RecoveryService) buildSearchPeriod(req SearchRequest) models.ProposedDutyPeriod {
	departure := req.DepartureUTC.UTC()
	arrival := departure.Add(s.params.AssumedBlock)

	return models.ProposedDutyPeriod{
		Segments: []models.FlightSegment{{
			FlightID:     models.FlightID(req.FlightNumber),
			Origin:       req.Base,
			DepartureUTC: departure,
			ArrivalUTC:   arrival,
			FlightTime:   s.params.AssumedBlock,
		}},
		ReportUTC:  departure.Add(-s.params.ReportLead),
		ReleaseUTC: arrival.Add(s.params.ReleaseBuffer),
	}
}

// fatigueIndicators precomputes the ranking signals from the duty state and
// the explicit departure instant, so the ranking engine never reads a clock.
func (s *RecoveryService) fatigueIndicators(state models.DutyState, period models.ProposedDutyPeriod, departureUTC time.Time) models.FatigueIndicators {
	limits := s.legality.Limits()

	utilization := 0.0
	if limits.MaxFlightHours28Day > 0 {
		utilization = state.FlightHours28Day / limits.MaxFlightHours28Day
		if utilization > 1 {
			utilization = 1
		}
	}

	sinceCallout := 0.0
	if !state.LastCalloutAt.IsZero() {
		sinceCallout = departureUTC.Sub(state.LastCalloutAt).Hours()
	} else {
		// Never called out: treat as maximally rested for fairness purposes.
		sinceCallout = FairnessRecencyCap * FairnessRecencyPerDays
	}
	if sinceCallout < 0 {
		sinceCallout = 0
	}

	return models.FatigueIndicators{
		DutyHoursCycle:        state.DutyHoursCycle,
		ConsecutiveDutyDays:   state.ConsecutiveDutyDays,
		Utilization28Day:      utilization,
		RecentCallouts:        state.RecentCallouts,
		HoursSinceLastCallout: sinceCallout,
		PeriodDutyHours:       period.TotalDuty().Hours(),
	}
}

func (s *RecoveryService) observeSearch(strategy models.RankingStrategy, outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSearch(string(strategy), outcome, time.Since(started))
}

func validateSearchRequest(req SearchRequest, strategy models.RankingStrategy) error {
	switch {
	case strings.TrimSpace(req.FlightNumber) == "":
		return fmt.Errorf("%w: flight number is required", derr.ErrInvalidInput)
	case !req.Position.IsValid():
		return fmt.Errorf("%w: unknown position %q", derr.ErrInvalidInput, req.Position)
	case req.DepartureUTC.IsZero():
		return fmt.Errorf("%w: departure instant is required", derr.ErrInvalidInput)
	case strings.TrimSpace(req.Base) == "":
		return fmt.Errorf("%w: base is required", derr.ErrInvalidInput)
	case strings.TrimSpace(req.AircraftType) == "":
		return fmt.Errorf("%w: aircraft type is required", derr.ErrInvalidInput)
	case req.MaxResults < 0:
		return fmt.Errorf("%w: max results must not be negative", derr.ErrInvalidInput)
	case !strategy.IsValid():
		return fmt.Errorf("%w: %q", derr.ErrInvalidStrategy, strategy)
	}
	return nil
}

func validateSwapRequest(req SwapRequest, park models.DutyStatus) error {
	switch {
	case req.FlightID == "":
		return fmt.Errorf("%w: flight id is required", derr.ErrInvalidInput)
	case req.OutgoingID == "" || req.IncomingID == "":
		return fmt.Errorf("%w: outgoing and incoming crew ids are required", derr.ErrInvalidInput)
	case req.OutgoingID == req.IncomingID:
		return fmt.Errorf("%w: outgoing and incoming must differ", derr.ErrInvalidInput)
	case park != models.StatusReserve && park != models.StatusOff:
		return fmt.Errorf("%w: park status must be %s or %s", derr.ErrInvalidInput, models.StatusReserve, models.StatusOff)
	case req.ReportUTC.IsZero() || req.ReleaseUTC.IsZero():
		return fmt.Errorf("%w: report and release instants are required", derr.ErrInvalidInput)
	case req.ReleaseUTC.Before(req.ReportUTC):
		return fmt.Errorf("%w: release before report", derr.ErrInvalidInput)
	}
	return nil
}

func removeFlight(flights []models.FlightID, id models.FlightID) []models.FlightID {
	out := flights[:0]
	for _, f := range flights {
		if f != id {
			out = append(out, f)
		}
	}
	return out
}
