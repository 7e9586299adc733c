package email

import (
	"context"

	"github.com/google/uuid"

	"speedrun_backend/internal/events"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/service"
	"speedrun_backend/platform/logger"
)

// SettingsReader loads a representative's settings.
type SettingsReader interface {
	Settings(ctx context.Context, repID uuid.UUID) (domain.Settings, error)
}

// ProgressReader loads today's cycle progress.
type ProgressReader interface {
	GetProgress(ctx context.Context, repID uuid.UUID) (service.Progress, error)
}

// Notifier mails the daily digest when a rep reaches the daily target.
// Reps with the digest disabled in their settings are skipped.
type Notifier struct {
	sender   Sender
	settings SettingsReader
	progress ProgressReader
	log      *logger.Logger
}

// NewNotifier creates the digest notifier.
func NewNotifier(sender Sender, settings SettingsReader, progress ProgressReader, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, settings: settings, progress: progress, log: log}
}

// Subscribe registers the notifier on the event bus.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(events.EventDailyTargetReached, events.HandlerFunc(n.handleDailyTargetReached))
}

func (n *Notifier) handleDailyTargetReached(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DailyTargetReached)
	if !ok {
		return nil
	}
	if e.RepEmail == "" {
		return nil
	}

	settings, err := n.settings.Settings(ctx, e.RepID)
	if err != nil {
		return err
	}
	if !settings.DigestEnabled {
		return nil
	}

	data := DigestData{
		Date:          e.Date,
		Completed:     e.Completed,
		Target:        e.Target,
		WeeklyTarget:  settings.WeeklyTarget,
		WeekCompleted: e.Completed,
	}
	if progress, err := n.progress.GetProgress(ctx, e.RepID); err == nil {
		data.WeekCompleted = progress.WeekCompleted
	}

	if err := n.sender.SendDailyDigest(ctx, e.RepEmail, data); err != nil {
		return err
	}

	n.log.Info("daily digest sent", "repId", e.RepID.String(), "date", e.Date)
	return nil
}
