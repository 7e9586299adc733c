package email

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"speedrun_backend/internal/events"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/service"
	"speedrun_backend/platform/logger"
)

type captureSender struct {
	to   string
	data DigestData
	sent int
}

func (c *captureSender) SendDailyDigest(_ context.Context, toEmail string, data DigestData) error {
	c.to = toEmail
	c.data = data
	c.sent++
	return nil
}

type stubSettings struct {
	settings domain.Settings
}

func (s stubSettings) Settings(context.Context, uuid.UUID) (domain.Settings, error) {
	return s.settings, nil
}

type stubProgress struct {
	progress service.Progress
}

func (s stubProgress) GetProgress(context.Context, uuid.UUID) (service.Progress, error) {
	return s.progress, nil
}

func TestNotifierSendsDigest(t *testing.T) {
	repID := uuid.New()
	sender := &captureSender{}
	notifier := NewNotifier(sender,
		stubSettings{settings: domain.Settings{RepID: repID, WeeklyTarget: 50, DigestEnabled: true}},
		stubProgress{progress: service.Progress{WeekCompleted: 32}},
		logger.New("test"))

	err := notifier.handleDailyTargetReached(context.Background(), events.DailyTargetReached{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		RepEmail:  "rep@example.com",
		Date:      "2026-03-02",
		Completed: 10,
		Target:    10,
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if sender.sent != 1 {
		t.Fatalf("sent = %d, want 1", sender.sent)
	}
	if sender.to != "rep@example.com" {
		t.Fatalf("to = %q", sender.to)
	}
	if sender.data.WeekCompleted != 32 || sender.data.WeeklyTarget != 50 {
		t.Fatalf("week numbers = %d/%d, want 32/50", sender.data.WeekCompleted, sender.data.WeeklyTarget)
	}
}

func TestNotifierSkipsWhenDigestDisabled(t *testing.T) {
	sender := &captureSender{}
	notifier := NewNotifier(sender,
		stubSettings{settings: domain.Settings{DigestEnabled: false}},
		stubProgress{},
		logger.New("test"))

	err := notifier.handleDailyTargetReached(context.Background(), events.DailyTargetReached{
		BaseEvent: events.NewBaseEvent(),
		RepID:     uuid.New(),
		RepEmail:  "rep@example.com",
		Date:      "2026-03-02",
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if sender.sent != 0 {
		t.Fatalf("sent = %d, want 0", sender.sent)
	}
}

func TestDigestTemplateRenders(t *testing.T) {
	content, err := renderEmailTemplate("daily_digest.html", dailyDigestEmailData{
		baseEmailData: baseEmailData{Title: "Daily target reached", Heading: "Daily target reached"},
		DigestData: DigestData{
			Date:          "2026-03-02",
			Completed:     10,
			Target:        10,
			WeekCompleted: 32,
			WeeklyTarget:  50,
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"2026-03-02", "10 / 10", "32 / 50"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered digest missing %q", want)
		}
	}
}
