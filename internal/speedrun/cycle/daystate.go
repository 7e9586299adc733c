// Package cycle orchestrates the daily work cycle: batch generation,
// completion bookkeeping, backfill, and the per-day handled sets.
package cycle

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// IDSet is a set of contact ids. It marshals as a sorted string array so
// persisted day states are byte-stable.
type IDSet map[uuid.UUID]struct{}

// NewIDSet creates an empty set.
func NewIDSet() IDSet {
	return make(IDSet)
}

// Has reports membership.
func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts the id.
func (s IDSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

// Remove deletes the id if present.
func (s IDSet) Remove(id uuid.UUID) {
	delete(s, id)
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an array back into the set.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	out := make(IDSet, len(ids))
	for _, id := range ids {
		out.Add(id)
	}
	*s = out
	return nil
}

// DayState is one representative's cycle state for one rep-local date.
type DayState struct {
	RepID uuid.UUID `json:"repId"`
	Date  string    `json:"date"`

	// Queue is the current batch, in ranked order. Completing, skipping,
	// snoozing, or removing a contact pops it from the queue.
	Queue []uuid.UUID `json:"queue"`

	Viewed    IDSet `json:"viewed"`
	Completed IDSet `json:"completed"`
	Skipped   IDSet `json:"skipped"`
	Snoozed   IDSet `json:"snoozed"`
	Removed   IDSet `json:"removed"`

	// WeekCompletedBefore carries the completion count from earlier days of
	// the same work week.
	WeekCompletedBefore int `json:"weekCompletedBefore"`

	DailyTarget     int    `json:"dailyTarget"`
	TargetReason    string `json:"targetReason"`
	DailyTargetMet  bool   `json:"dailyTargetMet"`
	WeeklyTargetMet bool   `json:"weeklyTargetMet"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDayState creates an empty state for the date.
func NewDayState(repID uuid.UUID, date string, now time.Time) *DayState {
	return &DayState{
		RepID:     repID,
		Date:      date,
		Viewed:    NewIDSet(),
		Completed: NewIDSet(),
		Skipped:   NewIDSet(),
		Snoozed:   NewIDSet(),
		Removed:   NewIDSet(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Handled reports whether the contact was already surfaced or acted on today.
func (d *DayState) Handled(id uuid.UUID) bool {
	return d.Viewed.Has(id) || d.Completed.Has(id) || d.Skipped.Has(id) ||
		d.Snoozed.Has(id) || d.Removed.Has(id)
}

// WeekCompleted is the week-to-date completion count including today.
func (d *DayState) WeekCompleted() int {
	return d.WeekCompletedBefore + len(d.Completed)
}

// popQueue removes the id from the queue, preserving order.
func (d *DayState) popQueue(id uuid.UUID) {
	for i, qid := range d.Queue {
		if qid == id {
			d.Queue = append(d.Queue[:i], d.Queue[i+1:]...)
			return
		}
	}
}

// weekStart returns the Monday of the date's week.
func weekStart(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset).Format(time.DateOnly)
}

// sameWeek reports whether both dates fall in the same Monday-start week.
func sameWeek(a, b string) bool {
	return weekStart(a) == weekStart(b)
}
