// Package exports serves activity ledger downloads for reporting tools.
package exports

import (
	"context"

	"github.com/google/uuid"

	apphttp "speedrun_backend/internal/http"
	"speedrun_backend/internal/speedrun/activity"
)

// LedgerReader loads one day's ledger. The speedrun tracker implements it.
type LedgerReader interface {
	LedgerFor(ctx context.Context, repID uuid.UUID, date string) (*activity.Ledger, error)
}

// Module is the exports bounded context implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the exports module on top of the ledger reader.
func NewModule(ledgers LedgerReader) *Module {
	return &Module{handler: NewHandler(ledgers)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "exports" }

// RegisterRoutes mounts the export routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/speedrun/exports")
	group.GET("/activities.csv", m.handler.ExportActivitiesCSV)
}

var _ apphttp.Module = (*Module)(nil)
