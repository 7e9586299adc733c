// Package service is the speedrun application layer: it loads settings and
// pool snapshots, drives the cycle manager, keeps the batch cache current,
// maps domain errors to transport errors, and publishes domain events.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/events"
	"speedrun_backend/internal/speedrun/cycle"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/platform/apperr"
	"speedrun_backend/platform/logger"
)

// ContactPool provides the pool snapshot the cycle ranks over.
type ContactPool interface {
	PoolForRep(ctx context.Context, repID uuid.UUID) ([]domain.Contact, error)
	ByID(ctx context.Context, repID, contactID uuid.UUID) (domain.Contact, error)
	TouchContact(ctx context.Context, repID, contactID uuid.UUID, at time.Time) error
}

// Store is the persistence the service needs beyond the cycle manager.
type Store interface {
	Settings(ctx context.Context, repID uuid.UUID) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
	LeadState(ctx context.Context, repID, contactID uuid.UUID) (*domain.LeadState, error)
	SaveLeadState(ctx context.Context, state domain.LeadState) error
	DayState(ctx context.Context, repID uuid.UUID, date string) (*cycle.DayState, error)
}

// BatchCache keeps the served batch stable between calls.
type BatchCache interface {
	SetBatch(ctx context.Context, repID uuid.UUID, date string, batch []domain.ScoredContact) error
	Batch(ctx context.Context, repID uuid.UUID, date string) ([]domain.ScoredContact, bool, error)
	Drop(ctx context.Context, repID uuid.UUID, date string, contactID uuid.UUID) error
}

// Service coordinates one representative's work cycle.
type Service struct {
	store     Store
	pool      ContactPool
	manager   *cycle.Manager
	cache     BatchCache
	bus       events.Bus
	logger    *logger.Logger
	defaultTZ string
}

// New creates the service.
func New(store Store, pool ContactPool, manager *cycle.Manager, batchCache BatchCache, bus events.Bus, log *logger.Logger, defaultTZ string) *Service {
	return &Service{
		store:     store,
		pool:      pool,
		manager:   manager,
		cache:     batchCache,
		bus:       bus,
		logger:    log,
		defaultTZ: defaultTZ,
	}
}

// Settings returns the representative's settings, falling back to defaults.
func (s *Service) Settings(ctx context.Context, repID uuid.UUID) (domain.Settings, error) {
	saved, err := s.store.Settings(ctx, repID)
	if err != nil {
		return domain.Settings{}, apperr.Wrap(apperr.KindInternal, "load settings", err)
	}
	if saved == nil {
		return domain.DefaultSettings(repID, s.defaultTZ), nil
	}
	return *saved, nil
}

// UpdateSettings validates and persists new settings.
func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if settings.DailyTarget <= 0 || settings.WeeklyTarget <= 0 {
		return domain.Settings{}, apperr.Validation("daily and weekly targets must be positive")
	}
	switch settings.Strategy {
	case domain.StrategyOptimal, domain.StrategySpeed, domain.StrategyRevenue:
	default:
		return domain.Settings{}, apperr.Validation("unknown strategy")
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		return domain.Settings{}, apperr.Validation("unknown timezone")
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return domain.Settings{}, apperr.Wrap(apperr.KindInternal, "save settings", err)
	}
	return settings, nil
}

// StartCycle opens or resumes today's cycle and caches the served batch.
func (s *Service) StartCycle(ctx context.Context, repID uuid.UUID) (*cycle.BatchResult, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return nil, err
	}
	pool, err := s.pool.PoolForRep(ctx, repID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load pool", err)
	}

	result, err := s.manager.StartCycle(ctx, pool, settings)
	if err != nil {
		return nil, s.mapErr(err)
	}

	if err := s.cache.SetBatch(ctx, repID, result.Date, result.Batch); err != nil {
		s.logger.Error("batch cache write failed", "error", err.Error())
	}

	s.logger.CycleEvent("start", repID.String(), result.Date, len(result.Batch))
	s.bus.Publish(ctx, events.CycleStarted{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		Date:      result.Date,
		BatchSize: len(result.Batch),
		PoolSize:  len(pool),
	})
	if result.NewDay {
		s.bus.Publish(ctx, events.NewDayStarted{
			BaseEvent:    events.NewBaseEvent(),
			RepID:        repID,
			Date:         result.Date,
			PreviousDate: result.PreviousDate,
		})
	}
	return result, nil
}

// AddMore backfills today's queue and extends the cached batch.
func (s *Service) AddMore(ctx context.Context, repID uuid.UUID) (*cycle.BatchResult, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return nil, err
	}
	pool, err := s.pool.PoolForRep(ctx, repID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load pool", err)
	}

	result, err := s.manager.AddMore(ctx, pool, settings)
	if err != nil {
		return nil, s.mapErr(err)
	}

	if result.Added > 0 {
		cached, ok, err := s.cache.Batch(ctx, repID, result.Date)
		if err != nil {
			s.logger.Error("batch cache read failed", "error", err.Error())
		} else if ok {
			if err := s.cache.SetBatch(ctx, repID, result.Date, append(cached, result.Batch...)); err != nil {
				s.logger.Error("batch cache write failed", "error", err.Error())
			}
		}
	}

	s.logger.CycleEvent("add_more", repID.String(), result.Date, result.Added)
	s.bus.Publish(ctx, events.BatchExtended{
		BaseEvent:     events.NewBaseEvent(),
		RepID:         repID,
		Date:          result.Date,
		Added:         result.Added,
		PoolExhausted: result.PoolExhausted,
	})
	return result, nil
}

// Complete records an outreach and closes the contact out for the day.
func (s *Service) Complete(ctx context.Context, repID uuid.UUID, repEmail string, contactID uuid.UUID, date string, activityType domain.ActivityType, outcome domain.Outcome, note string) (*cycle.ActionResult, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return nil, err
	}
	contact, err := s.pool.ByID(ctx, repID, contactID)
	if err != nil {
		return nil, s.mapErr(err)
	}

	result, err := s.manager.Complete(ctx, contact, settings, date, activityType, outcome, note)
	if err != nil {
		return nil, s.mapErr(err)
	}

	if err := s.pool.TouchContact(ctx, repID, contactID, result.Record.At); err != nil {
		s.logger.Error("touch contact failed", "error", err.Error())
	}
	if err := s.cache.Drop(ctx, repID, date, contactID); err != nil {
		s.logger.Error("batch cache drop failed", "error", err.Error())
	}

	s.logger.ActivityRecorded(repID.String(), contactID.String(), string(activityType))
	s.bus.Publish(ctx, events.ContactCompleted{
		BaseEvent:    events.NewBaseEvent(),
		RepID:        repID,
		ContactID:    contactID,
		Date:         date,
		ActivityType: string(activityType),
		Outcome:      string(outcome),
	})
	s.bus.Publish(ctx, events.ActivityRecorded{
		BaseEvent:    events.NewBaseEvent(),
		RepID:        repID,
		ContactID:    contactID,
		Date:         date,
		ActivityType: string(activityType),
	})
	if result.DailyTargetJustMet {
		s.bus.Publish(ctx, events.DailyTargetReached{
			BaseEvent: events.NewBaseEvent(),
			RepID:     repID,
			RepEmail:  repEmail,
			Date:      date,
			Completed: result.CompletedToday,
			Target:    result.DailyTarget,
		})
	}
	if result.WeeklyTargetJustMet {
		s.bus.Publish(ctx, events.WeeklyTargetReached{
			BaseEvent: events.NewBaseEvent(),
			RepID:     repID,
			Date:      date,
			Generated: result.WeekCompleted,
			Target:    settings.WeeklyTarget,
		})
	}
	return result, nil
}

// Skip sets the contact aside for the day.
func (s *Service) Skip(ctx context.Context, repID, contactID uuid.UUID, date string) (*cycle.ActionResult, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return nil, err
	}

	result, err := s.manager.Skip(ctx, contactID, settings, date)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if err := s.cache.Drop(ctx, repID, date, contactID); err != nil {
		s.logger.Error("batch cache drop failed", "error", err.Error())
	}

	s.bus.Publish(ctx, events.ContactSkipped{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		ContactID: contactID,
		Date:      date,
	})
	return result, nil
}

// Snooze puts the lead to sleep until the given time.
func (s *Service) Snooze(ctx context.Context, repID, contactID uuid.UUID, date string, until time.Time) error {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return err
	}

	if err := s.manager.Snooze(ctx, contactID, settings, date, until); err != nil {
		return s.mapErr(err)
	}
	if err := s.cache.Drop(ctx, repID, date, contactID); err != nil {
		s.logger.Error("batch cache drop failed", "error", err.Error())
	}

	s.bus.Publish(ctx, events.ContactSnoozed{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		ContactID: contactID,
		Until:     until,
	})
	return nil
}

// Remove takes the lead out of circulation.
func (s *Service) Remove(ctx context.Context, repID, contactID uuid.UUID, date, reason string, permanent bool) error {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return err
	}

	if err := s.manager.Remove(ctx, contactID, settings, date, reason, permanent); err != nil {
		return s.mapErr(err)
	}
	if err := s.cache.Drop(ctx, repID, date, contactID); err != nil {
		s.logger.Error("batch cache drop failed", "error", err.Error())
	}

	s.bus.Publish(ctx, events.ContactRemoved{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		ContactID: contactID,
		Reason:    reason,
		Permanent: permanent,
	})
	return nil
}

// Reactivate returns a snoozed or temporarily removed lead to circulation.
func (s *Service) Reactivate(ctx context.Context, repID, contactID uuid.UUID) error {
	if err := s.manager.Reactivate(ctx, repID, contactID); err != nil {
		return s.mapErr(err)
	}
	return nil
}

// Queue returns today's cached batch in its served order.
func (s *Service) Queue(ctx context.Context, repID uuid.UUID) ([]domain.ScoredContact, string, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return nil, "", err
	}
	date := time.Now().In(settings.Location()).Format("2006-01-02")

	batch, ok, err := s.cache.Batch(ctx, repID, date)
	if err != nil {
		s.logger.Error("batch cache read failed", "error", err.Error())
	}
	if ok {
		return batch, date, nil
	}

	// Cache miss (restart, eviction): rebuild from the persisted queue.
	day, err := s.store.DayState(ctx, repID, date)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "load day state", err)
	}
	if day == nil || len(day.Queue) == 0 {
		return []domain.ScoredContact{}, date, nil
	}

	result, err := s.StartCycle(ctx, repID)
	if err != nil {
		return nil, "", err
	}
	return result.Batch, date, nil
}

// Progress reports today's and the week's counts.
type Progress struct {
	Date            string `json:"date"`
	Viewed          int    `json:"viewed"`
	Completed       int    `json:"completed"`
	Remaining       int    `json:"remaining"`
	DailyTarget     int    `json:"dailyTarget"`
	TargetReason    string `json:"targetReason"`
	DailyTargetMet  bool   `json:"dailyTargetMet"`
	WeekCompleted   int    `json:"weekCompleted"`
	WeeklyTarget    int    `json:"weeklyTarget"`
	WeeklyTargetMet bool   `json:"weeklyTargetMet"`
}

// GetProgress returns today's cycle progress. A day without a started cycle
// reports zeros.
func (s *Service) GetProgress(ctx context.Context, repID uuid.UUID) (Progress, error) {
	settings, err := s.Settings(ctx, repID)
	if err != nil {
		return Progress{}, err
	}
	date := time.Now().In(settings.Location()).Format("2006-01-02")

	day, err := s.store.DayState(ctx, repID, date)
	if err != nil {
		return Progress{}, apperr.Wrap(apperr.KindInternal, "load day state", err)
	}
	if day == nil {
		return Progress{Date: date, WeeklyTarget: settings.WeeklyTarget}, nil
	}

	return Progress{
		Date:            date,
		Viewed:          len(day.Viewed),
		Completed:       len(day.Completed),
		Remaining:       len(day.Queue),
		DailyTarget:     day.DailyTarget,
		TargetReason:    day.TargetReason,
		DailyTargetMet:  day.DailyTargetMet,
		WeekCompleted:   day.WeekCompleted(),
		WeeklyTarget:    settings.WeeklyTarget,
		WeeklyTargetMet: day.WeeklyTargetMet,
	}, nil
}

// InitLead opens an active lifecycle record for a new pool contact. It is
// idempotent; an existing record is left alone.
func (s *Service) InitLead(ctx context.Context, repID, contactID uuid.UUID) error {
	existing, err := s.store.LeadState(ctx, repID, contactID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.store.SaveLeadState(ctx, domain.NewLeadState(contactID, repID, time.Now().UTC()))
}

// mapErr translates domain sentinels into transport errors.
func (s *Service) mapErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		return apperr.Validation(err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		return apperr.Conflict(err.Error())
	case errors.Is(err, cycle.ErrStaleCycle):
		return apperr.Gone("cycle date has rolled over, start a new cycle")
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Wrap(apperr.KindInternal, "speedrun operation failed", err)
	}
}
