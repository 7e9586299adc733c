package scheduler

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"speedrun_backend/internal/events"
	"speedrun_backend/platform/logger"
)

type captureEnqueuer struct {
	archives []LedgerArchivePayload
	purges   []RetentionPurgePayload
}

func (c *captureEnqueuer) EnqueueLedgerArchive(_ context.Context, payload LedgerArchivePayload) error {
	c.archives = append(c.archives, payload)
	return nil
}

func (c *captureEnqueuer) EnqueueRetentionPurge(_ context.Context, payload RetentionPurgePayload) error {
	c.purges = append(c.purges, payload)
	return nil
}

func TestNewDayQueuesArchiveAndPurge(t *testing.T) {
	enqueuer := &captureEnqueuer{}
	sub := NewSubscriber(enqueuer, 90, logger.New("test"))
	repID := uuid.New()

	err := sub.handleNewDayStarted(context.Background(), events.NewDayStarted{
		BaseEvent:    events.NewBaseEvent(),
		RepID:        repID,
		Date:         "2026-03-03",
		PreviousDate: "2026-03-02",
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(enqueuer.archives) != 1 {
		t.Fatalf("archives = %d, want 1", len(enqueuer.archives))
	}
	if enqueuer.archives[0].RepID != repID.String() || enqueuer.archives[0].Date != "2026-03-02" {
		t.Fatalf("unexpected archive payload: %+v", enqueuer.archives[0])
	}

	if len(enqueuer.purges) != 1 {
		t.Fatalf("purges = %d, want 1", len(enqueuer.purges))
	}
	if enqueuer.purges[0].CutoffDate != "2025-12-03" {
		t.Fatalf("cutoff = %q, want 2025-12-03", enqueuer.purges[0].CutoffDate)
	}
}

func TestFirstDayEverSkipsArchive(t *testing.T) {
	enqueuer := &captureEnqueuer{}
	sub := NewSubscriber(enqueuer, 90, logger.New("test"))

	err := sub.handleNewDayStarted(context.Background(), events.NewDayStarted{
		BaseEvent:    events.NewBaseEvent(),
		RepID:        uuid.New(),
		Date:         "2026-03-03",
		PreviousDate: "",
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(enqueuer.archives) != 0 {
		t.Fatalf("archives = %d, want 0", len(enqueuer.archives))
	}
	if len(enqueuer.purges) != 1 {
		t.Fatalf("purges = %d, want 1", len(enqueuer.purges))
	}
}

func TestRetentionCutoff(t *testing.T) {
	tests := []struct {
		date   string
		days   int
		want   string
		wantOK bool
	}{
		{"2026-03-03", 90, "2025-12-03", true},
		{"2026-01-01", 1, "2025-12-31", true},
		{"not-a-date", 90, "", false},
		{"2026-03-03", 0, "", false},
	}
	for _, tt := range tests {
		got, ok := retentionCutoff(tt.date, tt.days)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("retentionCutoff(%q, %d) = %q, %v; want %q, %v",
				tt.date, tt.days, got, ok, tt.want, tt.wantOK)
		}
	}
}
