package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newState(t *testing.T, now time.Time) LeadState {
	t.Helper()
	return NewLeadState(uuid.New(), uuid.New(), now)
}

func TestSnoozeRequiresFutureDeadline(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		until   time.Time
		wantErr error
	}{
		{"past deadline", now.Add(-time.Hour), ErrInvalidDuration},
		{"exactly now", now, ErrInvalidDuration},
		{"one second ahead", now.Add(time.Second), nil},
		{"next week", now.AddDate(0, 0, 7), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, now)
			err := s.Snooze(tt.until, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Snooze() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && s.Status != StatusSnoozed {
				t.Errorf("status = %s, want %s", s.Status, StatusSnoozed)
			}
		})
	}
}

func TestLazySnoozeExpiry(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := newState(t, now)

	if err := s.Snooze(now.Add(time.Second), now); err != nil {
		t.Fatalf("Snooze() error = %v", err)
	}

	// Observed one second before expiry: still asleep.
	if s.Eligible(now.Add(500 * time.Millisecond)) {
		t.Error("lead eligible before snooze expiry")
	}

	// Observed two seconds later: flips to active on read.
	later := now.Add(2 * time.Second)
	if !s.Eligible(later) {
		t.Fatal("lead not eligible after snooze expiry")
	}
	if s.Status != StatusActive {
		t.Errorf("status = %s, want %s", s.Status, StatusActive)
	}
	if s.SnoozedUntil != nil {
		t.Error("SnoozedUntil not cleared on expiry")
	}
}

func TestPermanentRemovalIsTerminal(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := newState(t, now)

	if err := s.Remove("bad fit", true, now); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Status != StatusRemovedPermanent {
		t.Fatalf("status = %s, want %s", s.Status, StatusRemovedPermanent)
	}

	if err := s.Reactivate(now); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Reactivate() error = %v, want ErrIllegalTransition", err)
	}
	if err := s.Snooze(now.Add(time.Hour), now); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Snooze() error = %v, want ErrIllegalTransition", err)
	}
	if err := s.Remove("again", false, now); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Remove() error = %v, want ErrIllegalTransition", err)
	}
	if s.Eligible(now.AddDate(1, 0, 0)) {
		t.Error("permanently removed lead became eligible")
	}
}

func TestReactivate(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(s *LeadState)
		wantErr error
	}{
		{
			name:    "from snoozed",
			setup:   func(s *LeadState) { _ = s.Snooze(now.Add(time.Hour), now) },
			wantErr: nil,
		},
		{
			name:    "from temporary removal",
			setup:   func(s *LeadState) { _ = s.Remove("timing", false, now) },
			wantErr: nil,
		},
		{
			name:    "from active",
			setup:   func(s *LeadState) {},
			wantErr: ErrIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, now)
			tt.setup(&s)

			later := now.Add(time.Minute)
			err := s.Reactivate(later)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reactivate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if s.Status != StatusActive {
				t.Errorf("status = %s, want %s", s.Status, StatusActive)
			}
			if !s.LastActionAt.Equal(later) {
				t.Errorf("LastActionAt = %v, want %v", s.LastActionAt, later)
			}
		})
	}
}

func TestRemoveClearsSnooze(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := newState(t, now)

	if err := s.Snooze(now.Add(time.Hour), now); err != nil {
		t.Fatalf("Snooze() error = %v", err)
	}
	if err := s.Remove("paused outreach", false, now); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.SnoozedUntil != nil {
		t.Error("SnoozedUntil survived removal")
	}
	if s.Status != StatusRemovedTemporary {
		t.Errorf("status = %s, want %s", s.Status, StatusRemovedTemporary)
	}
}
