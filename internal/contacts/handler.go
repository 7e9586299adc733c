package contacts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speedrun_backend/platform/httpkit"
	"speedrun_backend/platform/validator"
)

// Handler serves the pool endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates the handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the contact routes.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("", h.Add)
	g.GET("", h.List)
}

// Add ingests a contact into the authenticated rep's pool.
func (h *Handler) Add(c *gin.Context) {
	identity, ok := httpkit.IdentityFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.Add(c.Request.Context(), identity.RepID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, ToResponse(created))
}

// List returns the rep's pool snapshot.
func (h *Handler) List(c *gin.Context) {
	identity, ok := httpkit.IdentityFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	pool, err := h.svc.List(c.Request.Context(), identity.RepID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]ContactResponse, 0, len(pool))
	for _, contact := range pool {
		out = append(out, ToResponse(contact))
	}
	httpkit.OK(c, gin.H{"contacts": out, "count": len(out)})
}
