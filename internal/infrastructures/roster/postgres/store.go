package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

// Store backs the roster with Postgres: one row per crew member in
// duty_states, identity reference data in crew_identities. Puts are single
// upsert statements, so a record is always replaced wholesale.
type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (s *Store) Close() {
	s.db.Close()
}

const dutyStateColumns = `
	crew_id,
	status,
	location,
	window_start,
	window_end,
	duty_hours_cycle,
	rest_hours_accrued,
	flight_hours_28d,
	flight_hours_365d,
	consecutive_duty_days,
	last_wocl_exposure,
	recent_callouts,
	last_callout_at,
	assigned_flights
`

func (s *Store) Get(ctx context.Context, id models.CrewID) (models.DutyState, error) {
	const query = `
		SELECT ` + dutyStateColumns + `
		FROM duty_states
		WHERE crew_id = $1
	`

	state, err := scanDutyState(s.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DutyState{}, derr.ErrCrewNotFound
		}
		return models.DutyState{}, fmt.Errorf("query duty state by id: %w", err)
	}

	return state, nil
}

func (s *Store) ListByStatus(ctx context.Context, status models.DutyStatus) ([]models.DutyState, error) {
	const query = `
		SELECT ` + dutyStateColumns + `
		FROM duty_states
		WHERE status = $1
		ORDER BY crew_id ASC
	`

	return s.list(ctx, query, string(status))
}

func (s *Store) ListByLocation(ctx context.Context, location string) ([]models.DutyState, error) {
	const query = `
		SELECT ` + dutyStateColumns + `
		FROM duty_states
		WHERE location = $1
		ORDER BY crew_id ASC
	`

	return s.list(ctx, query, location)
}

func (s *Store) list(ctx context.Context, query string, arg string) ([]models.DutyState, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query duty states: %w", err)
	}
	defer rows.Close()

	states := make([]models.DutyState, 0, 16)
	for rows.Next() {
		state, err := scanDutyState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan duty state: %w", err)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duty states: %w", err)
	}

	return states, nil
}

func (s *Store) Put(ctx context.Context, state models.DutyState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	const query = `
		INSERT INTO duty_states (
			crew_id,
			status,
			location,
			window_start,
			window_end,
			duty_hours_cycle,
			rest_hours_accrued,
			flight_hours_28d,
			flight_hours_365d,
			consecutive_duty_days,
			last_wocl_exposure,
			recent_callouts,
			last_callout_at,
			assigned_flights,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (crew_id) DO UPDATE SET
			status = EXCLUDED.status,
			location = EXCLUDED.location,
			window_start = EXCLUDED.window_start,
			window_end = EXCLUDED.window_end,
			duty_hours_cycle = EXCLUDED.duty_hours_cycle,
			rest_hours_accrued = EXCLUDED.rest_hours_accrued,
			flight_hours_28d = EXCLUDED.flight_hours_28d,
			flight_hours_365d = EXCLUDED.flight_hours_365d,
			consecutive_duty_days = EXCLUDED.consecutive_duty_days,
			last_wocl_exposure = EXCLUDED.last_wocl_exposure,
			recent_callouts = EXCLUDED.recent_callouts,
			last_callout_at = EXCLUDED.last_callout_at,
			assigned_flights = EXCLUDED.assigned_flights,
			updated_at = now()
	`

	_, err := s.db.Exec(ctx, query,
		string(state.CrewID),
		string(state.Status),
		state.Location,
		state.WindowStart,
		state.WindowEnd,
		state.DutyHoursCycle,
		state.RestHoursAccrued,
		state.FlightHours28Day,
		state.FlightHours365Day,
		state.ConsecutiveDutyDays,
		state.LastWOCLExposure,
		state.RecentCallouts,
		state.LastCalloutAt,
		flightIDsToStrings(state.AssignedFlights),
	)
	if err != nil {
		return fmt.Errorf("upsert duty state: %w", err)
	}

	return nil
}

func (s *Store) GetIdentity(ctx context.Context, id models.CrewID) (models.CrewIdentity, error) {
	const query = `
		SELECT
			crew_id,
			name,
			position,
			home_base,
			qualifications,
			seniority_rank
		FROM crew_identities
		WHERE crew_id = $1
	`

	var (
		identity models.CrewIdentity
		crewID   string
		position string
	)
	err := s.db.QueryRow(ctx, query, string(id)).Scan(
		&crewID,
		&identity.Name,
		&position,
		&identity.HomeBase,
		&identity.Qualifications,
		&identity.SeniorityRank,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CrewIdentity{}, derr.ErrCrewNotFound
		}
		return models.CrewIdentity{}, fmt.Errorf("query crew identity by id: %w", err)
	}

	identity.ID = models.CrewID(crewID)
	identity.Position = models.Position(position)
	return identity, nil
}

func (s *Store) PutIdentity(ctx context.Context, identity models.CrewIdentity) error {
	if identity.ID == "" || !identity.Position.IsValid() {
		return derr.ErrInvalidInput
	}

	const query = `
		INSERT INTO crew_identities (
			crew_id,
			name,
			position,
			home_base,
			qualifications,
			seniority_rank,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (crew_id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			home_base = EXCLUDED.home_base,
			qualifications = EXCLUDED.qualifications,
			seniority_rank = EXCLUDED.seniority_rank,
			updated_at = now()
	`

	_, err := s.db.Exec(ctx, query,
		string(identity.ID),
		identity.Name,
		string(identity.Position),
		identity.HomeBase,
		identity.Qualifications,
		identity.SeniorityRank,
	)
	if err != nil {
		return fmt.Errorf("upsert crew identity: %w", err)
	}

	return nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]models.CrewIdentity, error) {
	const query = `
		SELECT
			crew_id,
			name,
			position,
			home_base,
			qualifications,
			seniority_rank
		FROM crew_identities
		ORDER BY crew_id ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query crew identities: %w", err)
	}
	defer rows.Close()

	identities := make([]models.CrewIdentity, 0, 32)
	for rows.Next() {
		var (
			identity models.CrewIdentity
			crewID   string
			position string
		)
		if err := rows.Scan(
			&crewID,
			&identity.Name,
			&position,
			&identity.HomeBase,
			&identity.Qualifications,
			&identity.SeniorityRank,
		); err != nil {
			return nil, fmt.Errorf("scan crew identity: %w", err)
		}
		identity.ID = models.CrewID(crewID)
		identity.Position = models.Position(position)
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crew identities: %w", err)
	}

	return identities, nil
}

func scanDutyState(row pgx.Row) (models.DutyState, error) {
	var (
		state    models.DutyState
		crewID   string
		status   string
		assigned []string
	)
	err := row.Scan(
		&crewID,
		&status,
		&state.Location,
		&state.WindowStart,
		&state.WindowEnd,
		&state.DutyHoursCycle,
		&state.RestHoursAccrued,
		&state.FlightHours28Day,
		&state.FlightHours365Day,
		&state.ConsecutiveDutyDays,
		&state.LastWOCLExposure,
		&state.RecentCallouts,
		&state.LastCalloutAt,
		&assigned,
	)
	if err != nil {
		return models.DutyState{}, err
	}

	state.CrewID = models.CrewID(crewID)
	state.Status = models.DutyStatus(status)
	state.AssignedFlights = stringsToFlightIDs(assigned)
	return state, nil
}

func flightIDsToStrings(flights []models.FlightID) []string {
	out := make([]string, len(flights))
	for i, f := range flights {
		out[i] = string(f)
	}
	return out
}

func stringsToFlightIDs(values []string) []models.FlightID {
	if len(values) == 0 {
		return nil
	}
	out := make([]models.FlightID, len(values))
	for i, v := range values {
		out[i] = models.FlightID(v)
	}
	return out
}
