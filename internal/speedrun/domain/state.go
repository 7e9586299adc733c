package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lifecycle errors. The service boundary maps these to HTTP statuses.
var (
	// ErrInvalidDuration is returned when a snooze deadline is not in the future.
	ErrInvalidDuration = errors.New("snooze deadline must be in the future")
	// ErrIllegalTransition is returned for lifecycle transitions the state
	// machine does not permit.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
)

// Status is a lead's lifecycle status.
type Status string

const (
	StatusActive           Status = "active"
	StatusSnoozed          Status = "snoozed"
	StatusRemovedTemporary Status = "removed_temporary"
	StatusRemovedPermanent Status = "removed_permanent"
)

// LeadState is the persistent lifecycle record for one contact under one
// representative. Records are never deleted; removal is a status.
type LeadState struct {
	ContactID    uuid.UUID
	RepID        uuid.UUID
	Status       Status
	SnoozedUntil *time.Time
	RemoveReason string
	LastActionAt time.Time
	UpdatedAt    time.Time
}

// NewLeadState creates an active lifecycle record.
func NewLeadState(contactID, repID uuid.UUID, now time.Time) LeadState {
	return LeadState{
		ContactID:    contactID,
		RepID:        repID,
		Status:       StatusActive,
		LastActionAt: now,
		UpdatedAt:    now,
	}
}

// Snooze puts the lead to sleep until the given time. The deadline must be
// strictly in the future. Permanently removed leads cannot be snoozed.
func (s *LeadState) Snooze(until, now time.Time) error {
	if s.Status == StatusRemovedPermanent {
		return ErrIllegalTransition
	}
	if !until.After(now) {
		return ErrInvalidDuration
	}
	s.Status = StatusSnoozed
	u := until
	s.SnoozedUntil = &u
	s.LastActionAt = now
	s.UpdatedAt = now
	return nil
}

// Remove takes the lead out of circulation. A permanent removal is terminal;
// no transition leaves it.
func (s *LeadState) Remove(reason string, permanent bool, now time.Time) error {
	if s.Status == StatusRemovedPermanent {
		return ErrIllegalTransition
	}
	if permanent {
		s.Status = StatusRemovedPermanent
	} else {
		s.Status = StatusRemovedTemporary
	}
	s.SnoozedUntil = nil
	s.RemoveReason = reason
	s.LastActionAt = now
	s.UpdatedAt = now
	return nil
}

// Reactivate returns a snoozed or temporarily removed lead to active.
// Any other starting status is an illegal transition.
func (s *LeadState) Reactivate(now time.Time) error {
	if s.Status != StatusSnoozed && s.Status != StatusRemovedTemporary {
		return ErrIllegalTransition
	}
	s.Status = StatusActive
	s.SnoozedUntil = nil
	s.RemoveReason = ""
	s.LastActionAt = now
	s.UpdatedAt = now
	return nil
}

// Observe applies lazy snooze expiry: a snoozed lead whose deadline has
// passed flips to active on read. No timers run anywhere. It reports whether
// the state changed so callers know to persist.
func (s *LeadState) Observe(now time.Time) bool {
	if s.Status == StatusSnoozed && s.SnoozedUntil != nil && !s.SnoozedUntil.After(now) {
		s.Status = StatusActive
		s.SnoozedUntil = nil
		s.UpdatedAt = now
		return true
	}
	return false
}

// Eligible reports whether the lead may be surfaced, observing snooze expiry
// first.
func (s *LeadState) Eligible(now time.Time) bool {
	s.Observe(now)
	return s.Status == StatusActive
}
