package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"speedrun_backend/internal/events"
	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/platform/apperr"
	"speedrun_backend/platform/phone"
)

// Service handles pool ingest and listing.
type Service struct {
	repo      *Repository
	bus       events.Bus
	defaultTZ string
}

// NewService creates the contacts service.
func NewService(repo *Repository, bus events.Bus, defaultTZ string) *Service {
	return &Service{repo: repo, bus: bus, defaultTZ: defaultTZ}
}

// Add ingests a contact into the representative's pool. Phone numbers are
// normalized to E.164; an unparseable number is a validation error.
func (s *Service) Add(ctx context.Context, repID uuid.UUID, req CreateContactRequest) (domain.Contact, error) {
	normalized, err := phone.NormalizeOptional(req.Phone)
	if err != nil {
		return domain.Contact{}, apperr.Validation(fmt.Sprintf("invalid phone number: %v", err))
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.defaultTZ
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return domain.Contact{}, apperr.Validation(fmt.Sprintf("unknown timezone %q", req.Timezone))
	}

	now := time.Now().UTC()
	c := domain.Contact{
		ID:                 uuid.New(),
		RepID:              repID,
		Name:               req.Name,
		Email:              req.Email,
		Phone:              normalized,
		CompanyName:        req.CompanyName,
		CompanySize:        orDefault(domain.CompanySize(req.CompanySize), domain.CompanySmall),
		Role:               orDefault(domain.BuyerRole(req.Role), domain.RoleUnknown),
		Relationship:       orDefault(domain.Relationship(req.Relationship), domain.RelationshipNone),
		DealStage:          orDefault(domain.DealStage(req.DealStage), domain.StageProspecting),
		Source:             req.Source,
		Timezone:           tz,
		Notes:              req.Notes,
		Subject:            req.Subject,
		EstimatedDealValue: req.EstimatedDealValue,
		EngagementScore:    req.EngagementScore,
		ReadyToBuyScore:    req.ReadyToBuyScore,
		CompanyEngagement:  req.CompanyEngagement,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return domain.Contact{}, err
	}

	s.bus.Publish(ctx, events.ContactAdded{
		BaseEvent: events.NewBaseEvent(),
		RepID:     repID,
		ContactID: c.ID,
	})

	return c, nil
}

// List returns the representative's pool snapshot.
func (s *Service) List(ctx context.Context, repID uuid.UUID) ([]domain.Contact, error) {
	return s.repo.PoolForRep(ctx, repID)
}

func orDefault[T ~string](v, fallback T) T {
	if v == "" {
		return fallback
	}
	return v
}
