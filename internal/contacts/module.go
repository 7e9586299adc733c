package contacts

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"speedrun_backend/internal/events"
	apphttp "speedrun_backend/internal/http"
	"speedrun_backend/platform/validator"
)

// Module is the contacts bounded context.
type Module struct {
	handler *Handler
	repo    *Repository
	svc     *Service
}

// NewModule wires the contacts module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, defaultTZ string) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, bus, defaultTZ)
	return &Module{
		handler: NewHandler(svc, val),
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "contacts" }

// Repo exposes the repository for the speedrun module's pool access.
func (m *Module) Repo() *Repository { return m.repo }

// RegisterRoutes mounts the contact routes under /api/v1/contacts.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/contacts"))
}

var _ apphttp.Module = (*Module)(nil)
