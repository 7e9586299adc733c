// Package domain holds the core speedrun types: the contact pool entry, the
// lead lifecycle state machine, and the outcome taxonomy.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompanySize classifies the contact's company.
type CompanySize string

const (
	CompanyEnterprise CompanySize = "enterprise"
	CompanyMidMarket  CompanySize = "midmarket"
	CompanySmall      CompanySize = "small"
)

// BuyerRole is the contact's role in the buying decision.
type BuyerRole string

const (
	RoleDecisionMaker BuyerRole = "decision_maker"
	RoleChampion      BuyerRole = "champion"
	RoleInfluencer    BuyerRole = "influencer"
	RoleEvaluator     BuyerRole = "evaluator"
	RoleBlocker       BuyerRole = "blocker"
	RoleUnknown       BuyerRole = "unknown"
)

// Relationship is the warmth of the existing relationship.
type Relationship string

const (
	RelationshipStrong      Relationship = "strong"
	RelationshipWarm        Relationship = "warm"
	RelationshipEstablished Relationship = "established"
	RelationshipCold        Relationship = "cold"
	RelationshipNone        Relationship = "none"
)

// DealStage is the pipeline stage of the associated deal.
type DealStage string

const (
	StageNegotiation DealStage = "negotiation"
	StageProposal    DealStage = "proposal"
	StageDemo        DealStage = "demo"
	StageQualified   DealStage = "qualified"
	StageDiscovery   DealStage = "discovery"
	StageProspecting DealStage = "prospecting"
)

// Strategy selects the ranking blend.
type Strategy string

const (
	StrategyOptimal Strategy = "optimal"
	StrategySpeed   Strategy = "speed"
	StrategyRevenue Strategy = "revenue"
)

// Priority is the display bucket derived from the composite score.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Contact is a member of a representative's outreach pool.
type Contact struct {
	ID           uuid.UUID
	RepID        uuid.UUID
	Name         string
	Email        string
	Phone        string
	CompanyName  string
	CompanySize  CompanySize
	Role         BuyerRole
	Relationship Relationship
	DealStage    DealStage
	Source       string
	Timezone     string
	Notes        string
	Subject      string

	EstimatedDealValue float64
	EngagementScore    int
	ReadyToBuyScore    int
	CompanyEngagement  int

	LastTouchAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoredContact is a contact decorated with its ranking result.
type ScoredContact struct {
	Contact
	Score           float64
	Priority        Priority
	RankingReason   string
	CallingPriority int
	CallingWindow   string
}

// Settings are the per-representative engine settings.
type Settings struct {
	RepID         uuid.UUID
	DailyTarget   int
	WeeklyTarget  int
	Strategy      Strategy
	Role          string
	YearlyQuota   float64
	PipelineCover float64
	Timezone      string
	DigestEnabled bool
	UpdatedAt     time.Time
}

// DefaultSettings returns the engine defaults for a new representative.
func DefaultSettings(repID uuid.UUID, tz string) Settings {
	return Settings{
		RepID:         repID,
		DailyTarget:   30,
		WeeklyTarget:  150,
		Strategy:      StrategyOptimal,
		Timezone:      tz,
		DigestEnabled: true,
	}
}

// Location resolves the representative's timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if loc, err := time.LoadLocation(s.Timezone); err == nil {
		return loc
	}
	return time.UTC
}
