// Package handler serves the speedrun HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/service"
	"speedrun_backend/internal/speedrun/transport"
	"speedrun_backend/platform/httpkit"
	"speedrun_backend/platform/validator"
)

// Handler serves the cycle, queue, progress, and settings endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates the handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the speedrun routes.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/cycle/start", h.StartCycle)
	g.POST("/cycle/more", h.AddMore)
	g.POST("/contacts/:id/complete", h.Complete)
	g.POST("/contacts/:id/skip", h.Skip)
	g.POST("/contacts/:id/snooze", h.Snooze)
	g.POST("/contacts/:id/remove", h.Remove)
	g.POST("/contacts/:id/reactivate", h.Reactivate)
	g.GET("/queue", h.Queue)
	g.GET("/progress", h.Progress)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
}

func (h *Handler) identity(c *gin.Context) (httpkit.Identity, bool) {
	identity, ok := httpkit.IdentityFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	return identity, ok
}

func contactID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid contact id")
		return uuid.Nil, false
	}
	return id, true
}

// StartCycle opens or resumes today's cycle.
func (h *Handler) StartCycle(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	result, err := h.svc.StartCycle(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToBatchResponse(result))
}

// AddMore backfills the day's queue.
func (h *Handler) AddMore(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	result, err := h.svc.AddMore(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToBatchResponse(result))
}

// Complete records an outreach result on a contact.
func (h *Handler) Complete(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), identity.RepID, identity.Email, id,
		req.Date, domain.ActivityType(req.ActivityType), domain.Outcome(req.Outcome), req.Note)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToActionResponse(result))
}

// Skip sets a contact aside for the day.
func (h *Handler) Skip(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.DayActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Skip(c.Request.Context(), identity.RepID, id, req.Date)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToActionResponse(result))
}

// Snooze puts a lead to sleep until a future time.
func (h *Handler) Snooze(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Snooze(c.Request.Context(), identity.RepID, id, req.Date, req.Until); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"status": "snoozed"})
}

// Remove takes a lead out of circulation.
func (h *Handler) Remove(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Remove(c.Request.Context(), identity.RepID, id, req.Date, req.Reason, req.Permanent); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"status": "removed"})
}

// Reactivate returns a lead to circulation.
func (h *Handler) Reactivate(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	if err := h.svc.Reactivate(c.Request.Context(), identity.RepID, id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"status": "active"})
}

// Queue returns today's batch in its served order.
func (h *Handler) Queue(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	batch, date, err := h.svc.Queue(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]transport.ScoredContactResponse, 0, len(batch))
	for _, sc := range batch {
		out = append(out, transport.ToScoredContact(sc))
	}
	httpkit.OK(c, gin.H{"date": date, "queue": out, "count": len(out)})
}

// Progress reports today's and the week's counts.
func (h *Handler) Progress(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	progress, err := h.svc.GetProgress(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, progress)
}

// GetSettings returns the rep's engine settings.
func (h *Handler) GetSettings(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	settings, err := h.svc.Settings(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(settings))
}

// UpdateSettings replaces the rep's engine settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req transport.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.UpdateSettings(c.Request.Context(), domain.Settings{
		RepID:         identity.RepID,
		DailyTarget:   req.DailyTarget,
		WeeklyTarget:  req.WeeklyTarget,
		Strategy:      domain.Strategy(req.Strategy),
		Role:          req.Role,
		YearlyQuota:   req.YearlyQuota,
		PipelineCover: req.PipelineCover,
		Timezone:      req.Timezone,
		DigestEnabled: req.DigestEnabled,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(updated))
}
