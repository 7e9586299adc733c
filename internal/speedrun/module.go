// Package speedrun wires the work-cycling bounded context: ranking, quota,
// daily cycles, activity ledgers, and their HTTP surface.
package speedrun

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"speedrun_backend/internal/adapters"
	"speedrun_backend/internal/contacts"
	"speedrun_backend/internal/events"
	apphttp "speedrun_backend/internal/http"
	"speedrun_backend/internal/speedrun/activity"
	"speedrun_backend/internal/speedrun/cache"
	"speedrun_backend/internal/speedrun/cycle"
	"speedrun_backend/internal/speedrun/handler"
	"speedrun_backend/internal/speedrun/repository"
	"speedrun_backend/internal/speedrun/scoring"
	"speedrun_backend/internal/speedrun/service"
	"speedrun_backend/platform/config"
	"speedrun_backend/platform/logger"
	"speedrun_backend/platform/validator"
)

// Module is the speedrun bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	store   *repository.Store
	tracker *activity.Tracker
}

// NewModule wires the speedrun module.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, bus events.Bus, val *validator.Validator, cfg config.SpeedrunConfig, log *logger.Logger, contactsRepo *contacts.Repository) (*Module, error) {
	tables, err := scoring.LoadTables(cfg.GetScoringTablesPath())
	if err != nil {
		return nil, fmt.Errorf("load scoring tables: %w", err)
	}

	store := repository.New(pool)
	tracker := activity.NewTracker(store)
	ranker := scoring.New(tables)
	manager := cycle.NewManager(store, tracker, ranker, cfg.GetBatchSize(), tables.DailyTargetClamps)
	batchCache := cache.New(redisClient)
	poolAdapter := adapters.NewContactPoolAdapter(contactsRepo)

	svc := service.New(store, poolAdapter, manager, batchCache, bus, log, cfg.GetDefaultTimezone())

	// New pool contacts get an active lifecycle record.
	bus.Subscribe(events.EventContactAdded, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ContactAdded)
		if !ok {
			return nil
		}
		return svc.InitLead(ctx, e.RepID, e.ContactID)
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		store:   store,
		tracker: tracker,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string { return "speedrun" }

// Service exposes the application service for other modules.
func (m *Module) Service() *service.Service { return m.service }

// Store exposes the persistence for the scheduler and exports modules.
func (m *Module) Store() *repository.Store { return m.store }

// Tracker exposes the ledger reader for exports and archiving.
func (m *Module) Tracker() *activity.Tracker { return m.tracker }

// RegisterRoutes mounts the speedrun routes under /api/v1/speedrun.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/speedrun"))
}

var _ apphttp.Module = (*Module)(nil)
