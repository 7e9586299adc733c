package contacts

import (
	"time"

	"speedrun_backend/internal/speedrun/domain"
)

// CreateContactRequest is the ingest payload.
type CreateContactRequest struct {
	Name               string  `json:"name" validate:"required,max=200"`
	Email              string  `json:"email" validate:"omitempty,email"`
	Phone              string  `json:"phone" validate:"omitempty,max=32"`
	CompanyName        string  `json:"companyName" validate:"omitempty,max=200"`
	CompanySize        string  `json:"companySize" validate:"omitempty,oneof=enterprise midmarket small"`
	Role               string  `json:"role" validate:"omitempty,oneof=decision_maker champion influencer evaluator blocker unknown"`
	Relationship       string  `json:"relationship" validate:"omitempty,oneof=strong warm established cold none"`
	DealStage          string  `json:"dealStage" validate:"omitempty,oneof=negotiation proposal demo qualified discovery prospecting"`
	Source             string  `json:"source" validate:"omitempty,max=50"`
	Timezone           string  `json:"timezone" validate:"omitempty,max=64"`
	Notes              string  `json:"notes" validate:"omitempty,max=4000"`
	Subject            string  `json:"subject" validate:"omitempty,max=500"`
	EstimatedDealValue float64 `json:"estimatedDealValue" validate:"omitempty,gte=0"`
	EngagementScore    int     `json:"engagementScore" validate:"omitempty,gte=0,lte=100"`
	ReadyToBuyScore    int     `json:"readyToBuyScore" validate:"omitempty,gte=0,lte=100"`
	CompanyEngagement  int     `json:"companyEngagement" validate:"omitempty,gte=0,lte=100"`
}

// ContactResponse is the pool listing shape.
type ContactResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	CompanyName        string     `json:"companyName,omitempty"`
	CompanySize        string     `json:"companySize,omitempty"`
	Role               string     `json:"role,omitempty"`
	Relationship       string     `json:"relationship,omitempty"`
	DealStage          string     `json:"dealStage,omitempty"`
	Source             string     `json:"source,omitempty"`
	Timezone           string     `json:"timezone,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	EstimatedDealValue float64    `json:"estimatedDealValue,omitempty"`
	EngagementScore    int        `json:"engagementScore"`
	ReadyToBuyScore    int        `json:"readyToBuyScore"`
	LastTouchAt        *time.Time `json:"lastTouchAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// ToResponse converts a domain contact.
func ToResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		CompanyName:        c.CompanyName,
		CompanySize:        string(c.CompanySize),
		Role:               string(c.Role),
		Relationship:       string(c.Relationship),
		DealStage:          string(c.DealStage),
		Source:             c.Source,
		Timezone:           c.Timezone,
		Notes:              c.Notes,
		EstimatedDealValue: c.EstimatedDealValue,
		EngagementScore:    c.EngagementScore,
		ReadyToBuyScore:    c.ReadyToBuyScore,
		LastTouchAt:        c.LastTouchAt,
		CreatedAt:          c.CreatedAt,
	}
}
