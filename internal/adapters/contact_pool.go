// Package adapters bridges module boundaries so bounded contexts depend on
// narrow interfaces instead of each other's packages.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/contacts"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/platform/apperr"
)

// ContactPoolAdapter exposes the contacts repository as the speedrun
// service's pool, translating repository sentinels to transport errors.
type ContactPoolAdapter struct {
	repo *contacts.Repository
}

// NewContactPoolAdapter creates the adapter.
func NewContactPoolAdapter(repo *contacts.Repository) *ContactPoolAdapter {
	return &ContactPoolAdapter{repo: repo}
}

// PoolForRep returns the rep's pool snapshot.
func (a *ContactPoolAdapter) PoolForRep(ctx context.Context, repID uuid.UUID) ([]domain.Contact, error) {
	return a.repo.PoolForRep(ctx, repID)
}

// ByID loads one contact, mapping absence to a not-found error.
func (a *ContactPoolAdapter) ByID(ctx context.Context, repID, contactID uuid.UUID) (domain.Contact, error) {
	c, err := a.repo.ByID(ctx, repID, contactID)
	if errors.Is(err, contacts.ErrNotFound) {
		return domain.Contact{}, apperr.NotFound("contact not found")
	}
	return c, err
}

// TouchContact stamps the last outreach time.
func (a *ContactPoolAdapter) TouchContact(ctx context.Context, repID, contactID uuid.UUID, at time.Time) error {
	return a.repo.TouchContact(ctx, repID, contactID, at)
}
