package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"speedrun_backend/internal/archive"
	"speedrun_backend/platform/config"
	"speedrun_backend/platform/logger"
)

// StateStore purges expired cycle states.
type StateStore interface {
	PurgeDayStatesBefore(ctx context.Context, cutoffDate string) (int64, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	archiver *archive.Archiver
	store    StateStore
	log      *logger.Logger
}

// NewWorker creates the background worker. A nil archiver disables the
// ledger archive job (object storage not configured).
func NewWorker(cfg config.SchedulerConfig, archiver *archive.Archiver, store StateStore, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetSchedulerConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		archiver: archiver,
		store:    store,
		log:      log,
	}

	mux.HandleFunc(TaskLedgerArchive, w.handleLedgerArchive)
	mux.HandleFunc(TaskRetentionPurge, w.handleRetentionPurge)

	return w, nil
}

func (w *Worker) handleLedgerArchive(ctx context.Context, task *asynq.Task) error {
	if w.archiver == nil {
		return nil
	}

	payload, err := ParseLedgerArchivePayload(task)
	if err != nil {
		return err
	}

	repID, err := uuid.Parse(payload.RepID)
	if err != nil {
		return err
	}

	_, err = w.archiver.ArchiveDay(ctx, repID, payload.Date)
	return err
}

func (w *Worker) handleRetentionPurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRetentionPurgePayload(task)
	if err != nil {
		return err
	}

	purged, err := w.store.PurgeDayStatesBefore(ctx, payload.CutoffDate)
	if err != nil {
		return err
	}

	if purged > 0 {
		w.log.Info("cycle states purged", "cutoff", payload.CutoffDate, "purged", purged)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
