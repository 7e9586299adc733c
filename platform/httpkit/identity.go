package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyRepID = "rep_id"
	ctxKeyEmail = "rep_email"
)

// Identity describes the authenticated representative on a request.
type Identity struct {
	RepID uuid.UUID
	Email string
}

// IdentityFromContext extracts the authenticated identity set by AuthRequired.
// The bool is false on unauthenticated requests.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxKeyRepID)
	if !ok {
		return Identity{}, false
	}
	repID, ok := v.(uuid.UUID)
	if !ok {
		return Identity{}, false
	}

	return Identity{RepID: repID, Email: c.GetString(ctxKeyEmail)}, true
}

func setIdentity(c *gin.Context, repID uuid.UUID, email string) {
	c.Set(ctxKeyRepID, repID)
	c.Set(ctxKeyEmail, email)
}
