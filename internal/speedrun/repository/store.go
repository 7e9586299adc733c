// Package repository implements the speedrun persistence on postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/cycle"
	"speedrun_backend/internal/speedrun/domain"
)

// Store persists day states, lead states, activity records, and settings.
// It implements cycle.Store and activity.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates the store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DayState loads one day's cycle state, nil when absent.
func (s *Store) DayState(ctx context.Context, repID uuid.UUID, date string) (*cycle.DayState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM daily_cycle_states WHERE rep_id = $1 AND cycle_date = $2`,
		repID, date,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query day state: %w", err)
	}

	var state cycle.DayState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode day state %s: %w", date, err)
	}
	return &state, nil
}

// LatestDayState loads the most recent cycle state for the representative.
func (s *Store) LatestDayState(ctx context.Context, repID uuid.UUID) (*cycle.DayState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM daily_cycle_states WHERE rep_id = $1 ORDER BY cycle_date DESC LIMIT 1`,
		repID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest day state: %w", err)
	}

	var state cycle.DayState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode latest day state: %w", err)
	}
	return &state, nil
}

// SaveDayState upserts the day's cycle state.
func (s *Store) SaveDayState(ctx context.Context, state *cycle.DayState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode day state: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO daily_cycle_states (rep_id, cycle_date, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (rep_id, cycle_date)
		 DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		state.RepID, state.Date, raw, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save day state: %w", err)
	}
	return nil
}

// PurgeDayStatesBefore deletes cycle states older than the cutoff date.
// Lead states and activity records are never purged.
func (s *Store) PurgeDayStatesBefore(ctx context.Context, cutoffDate string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM daily_cycle_states WHERE cycle_date < $1`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("purge day states: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LeadState loads one lifecycle record, nil when absent.
func (s *Store) LeadState(ctx context.Context, repID, contactID uuid.UUID) (*domain.LeadState, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT contact_id, rep_id, status, snoozed_until, remove_reason, last_action_at, updated_at
		 FROM lead_states WHERE rep_id = $1 AND contact_id = $2`,
		repID, contactID,
	)
	state, err := scanLeadState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lead state: %w", err)
	}
	return &state, nil
}

// LeadStates loads every lifecycle record for the representative.
func (s *Store) LeadStates(ctx context.Context, repID uuid.UUID) (map[uuid.UUID]domain.LeadState, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT contact_id, rep_id, status, snoozed_until, remove_reason, last_action_at, updated_at
		 FROM lead_states WHERE rep_id = $1`,
		repID,
	)
	if err != nil {
		return nil, fmt.Errorf("query lead states: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]domain.LeadState)
	for rows.Next() {
		state, err := scanLeadState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead state: %w", err)
		}
		out[state.ContactID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead states: %w", err)
	}
	return out, nil
}

// SaveLeadState upserts one lifecycle record.
func (s *Store) SaveLeadState(ctx context.Context, state domain.LeadState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lead_states (rep_id, contact_id, status, snoozed_until, remove_reason, last_action_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (rep_id, contact_id)
		 DO UPDATE SET status = EXCLUDED.status,
		               snoozed_until = EXCLUDED.snoozed_until,
		               remove_reason = EXCLUDED.remove_reason,
		               last_action_at = EXCLUDED.last_action_at,
		               updated_at = EXCLUDED.updated_at`,
		state.RepID, state.ContactID, state.Status, state.SnoozedUntil,
		state.RemoveReason, state.LastActionAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save lead state: %w", err)
	}
	return nil
}

// AppendRecord inserts one activity ledger entry. The ledger is append-only;
// there is no update or delete path.
func (s *Store) AppendRecord(ctx context.Context, r activity.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO activity_records (id, rep_id, contact_id, company_name, activity_type, outcome, note, record_date, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.RepID, r.ContactID, r.CompanyName, r.ActivityType, r.Outcome, r.Note, r.Date, r.At,
	)
	if err != nil {
		return fmt.Errorf("append activity record: %w", err)
	}
	return nil
}

// RecordsForDay loads one day's ledger entries in insertion order.
func (s *Store) RecordsForDay(ctx context.Context, repID uuid.UUID, date string) ([]activity.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, rep_id, contact_id, company_name, activity_type, outcome, note, record_date, recorded_at
		 FROM activity_records WHERE rep_id = $1 AND record_date = $2
		 ORDER BY recorded_at ASC`,
		repID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity records: %w", err)
	}
	defer rows.Close()

	var records []activity.Record
	for rows.Next() {
		var r activity.Record
		if err := rows.Scan(&r.ID, &r.RepID, &r.ContactID, &r.CompanyName,
			&r.ActivityType, &r.Outcome, &r.Note, &r.Date, &r.At); err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity records: %w", err)
	}
	return records, nil
}

// Settings loads the representative's settings, nil when never saved.
func (s *Store) Settings(ctx context.Context, repID uuid.UUID) (*domain.Settings, error) {
	var set domain.Settings
	err := s.pool.QueryRow(ctx,
		`SELECT rep_id, daily_target, weekly_target, strategy, rep_role, yearly_quota, pipeline_cover, timezone, digest_enabled, updated_at
		 FROM user_settings WHERE rep_id = $1`,
		repID,
	).Scan(&set.RepID, &set.DailyTarget, &set.WeeklyTarget, &set.Strategy, &set.Role,
		&set.YearlyQuota, &set.PipelineCover, &set.Timezone, &set.DigestEnabled, &set.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &set, nil
}

// SaveSettings upserts the representative's settings.
func (s *Store) SaveSettings(ctx context.Context, set domain.Settings) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_settings (rep_id, daily_target, weekly_target, strategy, rep_role, yearly_quota, pipeline_cover, timezone, digest_enabled, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (rep_id)
		 DO UPDATE SET daily_target = EXCLUDED.daily_target,
		               weekly_target = EXCLUDED.weekly_target,
		               strategy = EXCLUDED.strategy,
		               rep_role = EXCLUDED.rep_role,
		               yearly_quota = EXCLUDED.yearly_quota,
		               pipeline_cover = EXCLUDED.pipeline_cover,
		               timezone = EXCLUDED.timezone,
		               digest_enabled = EXCLUDED.digest_enabled,
		               updated_at = EXCLUDED.updated_at`,
		set.RepID, set.DailyTarget, set.WeeklyTarget, set.Strategy, set.Role,
		set.YearlyQuota, set.PipelineCover, set.Timezone, set.DigestEnabled, set.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeadState(row rowScanner) (domain.LeadState, error) {
	var state domain.LeadState
	var snoozedUntil *time.Time
	err := row.Scan(&state.ContactID, &state.RepID, &state.Status, &snoozedUntil,
		&state.RemoveReason, &state.LastActionAt, &state.UpdatedAt)
	if err != nil {
		return domain.LeadState{}, err
	}
	state.SnoozedUntil = snoozedUntil
	return state, nil
}
