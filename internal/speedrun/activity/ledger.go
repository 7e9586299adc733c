// Package activity keeps the append-only per-day outreach ledgers.
// A ledger is keyed by the representative's local calendar date and never
// spans midnight; once the date rolls, the ledger is immutable.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/domain"
)

// DateLayout is the rep-local calendar date key format.
const DateLayout = "2006-01-02"

// DateKey returns the ledger key for the given instant in the given zone.
func DateKey(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// Record is one appended outreach activity.
type Record struct {
	ID           uuid.UUID
	RepID        uuid.UUID
	ContactID    uuid.UUID
	CompanyName  string
	ActivityType domain.ActivityType
	Outcome      domain.Outcome
	Note         string
	Date         string
	At           time.Time
}

// Ledger is one day's activity for one representative.
type Ledger struct {
	RepID   uuid.UUID
	Date    string
	Records []Record
}

// Append adds a record to the ledger. Records for another date are rejected;
// a ledger never spans midnight.
func (l *Ledger) Append(r Record) error {
	if r.Date != l.Date {
		return fmt.Errorf("record dated %s cannot join ledger %s", r.Date, l.Date)
	}
	l.Records = append(l.Records, r)
	return nil
}

// WasContactedToday reports whether the contact already has a record today.
func (l *Ledger) WasContactedToday(contactID uuid.UUID) bool {
	for _, r := range l.Records {
		if r.ContactID == contactID {
			return true
		}
	}
	return false
}

// CompanyContactedToday reports whether anyone at the company was reached
// today. Matching is case-insensitive.
func (l *Ledger) CompanyContactedToday(company string) bool {
	if company == "" {
		return false
	}
	for _, r := range l.Records {
		if strings.EqualFold(r.CompanyName, company) {
			return true
		}
	}
	return false
}

// CompletedContactsToday counts distinct contacts touched today. An email
// and a call to the same person count once.
func (l *Ledger) CompletedContactsToday() int {
	seen := make(map[uuid.UUID]struct{}, len(l.Records))
	for _, r := range l.Records {
		seen[r.ContactID] = struct{}{}
	}
	return len(seen)
}

// CountToday counts today's records of one activity type.
func (l *Ledger) CountToday(t domain.ActivityType) int {
	n := 0
	for _, r := range l.Records {
		if r.ActivityType == t {
			n++
		}
	}
	return n
}
