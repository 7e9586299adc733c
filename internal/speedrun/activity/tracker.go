package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/domain"
)

// Store persists ledger records. The production implementation lives in the
// repository package; tests use an in-memory store.
type Store interface {
	AppendRecord(ctx context.Context, r Record) error
	RecordsForDay(ctx context.Context, repID uuid.UUID, date string) ([]Record, error)
}

// Tracker appends activities and answers same-day questions over the ledger.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker on the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Record appends an activity to today's ledger. The date key is always
// derived from now in the representative's zone, so past-day ledgers can
// never be written to.
func (t *Tracker) Record(ctx context.Context, repID, contactID uuid.UUID, companyName string, activityType domain.ActivityType, outcome domain.Outcome, note string, now time.Time, loc *time.Location) (Record, error) {
	if !domain.ValidActivityType(activityType) {
		return Record{}, fmt.Errorf("unknown activity type %q", activityType)
	}

	rec := Record{
		ID:           uuid.New(),
		RepID:        repID,
		ContactID:    contactID,
		CompanyName:  companyName,
		ActivityType: activityType,
		Outcome:      outcome,
		Note:         note,
		Date:         DateKey(now, loc),
		At:           now,
	}
	if err := t.store.AppendRecord(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("append activity record: %w", err)
	}
	return rec, nil
}

// LedgerFor loads one day's ledger.
func (t *Tracker) LedgerFor(ctx context.Context, repID uuid.UUID, date string) (*Ledger, error) {
	records, err := t.store.RecordsForDay(ctx, repID, date)
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", date, err)
	}
	return &Ledger{RepID: repID, Date: date, Records: records}, nil
}

// WasContactedToday reports whether the contact has a record on the date.
func (t *Tracker) WasContactedToday(ctx context.Context, repID, contactID uuid.UUID, date string) (bool, error) {
	ledger, err := t.LedgerFor(ctx, repID, date)
	if err != nil {
		return false, err
	}
	return ledger.WasContactedToday(contactID), nil
}

// CompletedContactsToday counts the date's distinct contacts.
func (t *Tracker) CompletedContactsToday(ctx context.Context, repID uuid.UUID, date string) (int, error) {
	ledger, err := t.LedgerFor(ctx, repID, date)
	if err != nil {
		return 0, err
	}
	return ledger.CompletedContactsToday(), nil
}
