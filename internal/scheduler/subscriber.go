package scheduler

import (
	"context"
	"time"

	"speedrun_backend/internal/events"
	"speedrun_backend/platform/logger"
)

const dateLayout = "2006-01-02"

// Enqueuer queues background jobs. The asynq client implements it.
type Enqueuer interface {
	EnqueueLedgerArchive(ctx context.Context, payload LedgerArchivePayload) error
	EnqueueRetentionPurge(ctx context.Context, payload RetentionPurgePayload) error
}

// Subscriber reacts to day rollovers: it queues the previous day's ledger
// archive and a purge of cycle states older than the retention window.
type Subscriber struct {
	enqueuer      Enqueuer
	retentionDays int
	log           *logger.Logger
}

// NewSubscriber creates the rollover subscriber.
func NewSubscriber(enqueuer Enqueuer, retentionDays int, log *logger.Logger) *Subscriber {
	return &Subscriber{enqueuer: enqueuer, retentionDays: retentionDays, log: log}
}

// Subscribe registers the subscriber on the event bus.
func (s *Subscriber) Subscribe(bus events.Bus) {
	bus.Subscribe(events.EventNewDayStarted, events.HandlerFunc(s.handleNewDayStarted))
}

func (s *Subscriber) handleNewDayStarted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.NewDayStarted)
	if !ok {
		return nil
	}

	if e.PreviousDate != "" {
		err := s.enqueuer.EnqueueLedgerArchive(ctx, LedgerArchivePayload{
			RepID: e.RepID.String(),
			Date:  e.PreviousDate,
		})
		if err != nil {
			s.log.Error("enqueue ledger archive", "error", err, "date", e.PreviousDate)
		}
	}

	cutoff, ok := retentionCutoff(e.Date, s.retentionDays)
	if !ok {
		return nil
	}
	if err := s.enqueuer.EnqueueRetentionPurge(ctx, RetentionPurgePayload{CutoffDate: cutoff}); err != nil {
		s.log.Error("enqueue retention purge", "error", err, "cutoff", cutoff)
	}
	return nil
}

func retentionCutoff(date string, retentionDays int) (string, bool) {
	day, err := time.Parse(dateLayout, date)
	if err != nil || retentionDays <= 0 {
		return "", false
	}
	return day.AddDate(0, 0, -retentionDays).Format(dateLayout), true
}
