// Package scoring ranks pool contacts. Tables holds every tunable constant as
// pure data; the ranking service in service.go is the only behavior.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"speedrun_backend/internal/speedrun/domain"
	"speedrun_backend/internal/speedrun/quota"
)

// DecayBucket maps an age ceiling in days to a freshness factor.
type DecayBucket struct {
	MaxAgeDays int     `yaml:"maxAgeDays"`
	Factor     float64 `yaml:"factor"`
}

// Tier awards a bonus once a 0-100 signal crosses its threshold.
type Tier struct {
	Threshold int     `yaml:"threshold"`
	Bonus     float64 `yaml:"bonus"`
}

// CallingTier maps the absolute timezone offset between rep and contact to a
// calling priority tier and a suggested window.
type CallingTier struct {
	MaxOffsetHours float64 `yaml:"maxOffsetHours"`
	Tier           int     `yaml:"tier"`
	Window         string  `yaml:"window"`
}

// StrategyProfile is one weighted-sum ranking profile.
type StrategyProfile struct {
	IndividualWeight float64 `yaml:"individualWeight"`
	CompanyWeight    float64 `yaml:"companyWeight"`
	FreshnessBoost   float64 `yaml:"freshnessBoost"`
	DealValueBoost   float64 `yaml:"dealValueBoost"`
	StageBoost       float64 `yaml:"stageBoost"`
}

// Tables holds every scoring constant. All fields have defaults; a YAML
// overrides file can replace any of them without touching control flow.
type Tables struct {
	BaseScore float64 `yaml:"baseScore"`

	CompanySizeMultipliers map[domain.CompanySize]float64  `yaml:"companySizeMultipliers"`
	BuyerRoleScores        map[domain.BuyerRole]float64    `yaml:"buyerRoleScores"`
	RelationshipScores     map[domain.Relationship]float64 `yaml:"relationshipScores"`
	DealStageScores        map[domain.DealStage]float64    `yaml:"dealStageScores"`
	SourceBonuses          map[string]float64              `yaml:"sourceBonuses"`

	UrgentKeywords     []string `yaml:"urgentKeywords"`
	UrgentKeywordBoost float64  `yaml:"urgentKeywordBoost"`

	FreshnessDecay []DecayBucket `yaml:"freshnessDecay"`
	FreshnessFloor float64       `yaml:"freshnessFloor"`

	EngagementTiers []Tier `yaml:"engagementTiers"`
	ReadyToBuyTiers []Tier `yaml:"readyToBuyTiers"`

	// Deal value contributes log10(1+value/Scale)*Weight, capped.
	DealValueScale  float64 `yaml:"dealValueScale"`
	DealValueWeight float64 `yaml:"dealValueWeight"`
	DealValueCap    float64 `yaml:"dealValueCap"`

	CompanyEngagementWeight float64 `yaml:"companyEngagementWeight"`

	CallingTiers []CallingTier `yaml:"callingTiers"`

	Strategies map[domain.Strategy]StrategyProfile `yaml:"strategies"`
	// OptimalSpeedShare blends the speed and revenue composites for the
	// optimal strategy: optimal = share*speed + (1-share)*revenue.
	OptimalSpeedShare float64 `yaml:"optimalSpeedShare"`

	PriorityHighThreshold   float64 `yaml:"priorityHighThreshold"`
	PriorityMediumThreshold float64 `yaml:"priorityMediumThreshold"`

	// DailyTargetClamps bounds the quota calculator's daily target per
	// strategy.
	DailyTargetClamps quota.Clamps `yaml:"dailyTargetClamps"`
}

// DefaultTables returns the built-in scoring constants.
func DefaultTables() Tables {
	return Tables{
		BaseScore: 10,

		CompanySizeMultipliers: map[domain.CompanySize]float64{
			domain.CompanyEnterprise: 1.3,
			domain.CompanyMidMarket:  1.15,
			domain.CompanySmall:      1.0,
		},
		BuyerRoleScores: map[domain.BuyerRole]float64{
			domain.RoleDecisionMaker: 25,
			domain.RoleChampion:      20,
			domain.RoleInfluencer:    12,
			domain.RoleEvaluator:     8,
			domain.RoleBlocker:       2,
			domain.RoleUnknown:       5,
		},
		RelationshipScores: map[domain.Relationship]float64{
			domain.RelationshipStrong:      20,
			domain.RelationshipWarm:        14,
			domain.RelationshipEstablished: 10,
			domain.RelationshipCold:        4,
			domain.RelationshipNone:        0,
		},
		DealStageScores: map[domain.DealStage]float64{
			domain.StageNegotiation: 25,
			domain.StageProposal:    20,
			domain.StageDemo:        15,
			domain.StageQualified:   10,
			domain.StageDiscovery:   6,
			domain.StageProspecting: 3,
		},
		SourceBonuses: map[string]float64{
			"referral":  8,
			"inbound":   6,
			"website":   4,
			"event":     3,
			"linkedin":  2,
			"cold_list": -2,
		},

		UrgentKeywords: []string{
			"urgent", "asap", "this week", "deadline", "expiring",
			"renewal", "budget approved", "decision",
		},
		UrgentKeywordBoost: 10,

		FreshnessDecay: []DecayBucket{
			{MaxAgeDays: 0, Factor: 1.0},
			{MaxAgeDays: 2, Factor: 0.9},
			{MaxAgeDays: 7, Factor: 0.75},
			{MaxAgeDays: 14, Factor: 0.6},
			{MaxAgeDays: 30, Factor: 0.45},
			{MaxAgeDays: 60, Factor: 0.3},
		},
		FreshnessFloor: 0.15,

		EngagementTiers: []Tier{
			{Threshold: 80, Bonus: 12},
			{Threshold: 60, Bonus: 8},
			{Threshold: 40, Bonus: 4},
		},
		ReadyToBuyTiers: []Tier{
			{Threshold: 75, Bonus: 15},
			{Threshold: 50, Bonus: 8},
			{Threshold: 25, Bonus: 3},
		},

		DealValueScale:  1000,
		DealValueWeight: 6,
		DealValueCap:    18,

		CompanyEngagementWeight: 0.2,

		CallingTiers: []CallingTier{
			{MaxOffsetHours: 0, Tier: 1, Window: "9:00 AM - 5:00 PM your time"},
			{MaxOffsetHours: 1, Tier: 2, Window: "10:00 AM - 4:00 PM your time"},
			{MaxOffsetHours: 3, Tier: 3, Window: "11:00 AM - 3:00 PM your time"},
			{MaxOffsetHours: 5, Tier: 4, Window: "early morning or late afternoon"},
			{MaxOffsetHours: 24, Tier: 5, Window: "check overlap before calling"},
		},

		Strategies: map[domain.Strategy]StrategyProfile{
			domain.StrategySpeed: {
				IndividualWeight: 0.8,
				CompanyWeight:    0.2,
				FreshnessBoost:   1.4,
				DealValueBoost:   1.0,
				StageBoost:       1.0,
			},
			domain.StrategyRevenue: {
				IndividualWeight: 0.6,
				CompanyWeight:    0.4,
				FreshnessBoost:   1.0,
				DealValueBoost:   1.5,
				StageBoost:       1.3,
			},
		},
		OptimalSpeedShare: 0.7,

		PriorityHighThreshold:   70,
		PriorityMediumThreshold: 45,

		DailyTargetClamps: quota.DefaultClamps(),
	}
}

// LoadTables returns the defaults merged with YAML overrides from path.
// An empty path returns the defaults unchanged.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read scoring tables %s: %w", path, err)
	}
	// Unmarshal on top of the defaults: map keys merge, scalars and lists
	// given in the file replace their defaults.
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("parse scoring tables %s: %w", path, err)
	}
	if err := tables.validate(); err != nil {
		return Tables{}, fmt.Errorf("scoring tables %s: %w", path, err)
	}
	return tables, nil
}

func (t Tables) validate() error {
	if t.FreshnessFloor <= 0 {
		return fmt.Errorf("freshnessFloor must be positive")
	}
	prev := 2.0
	for _, b := range t.FreshnessDecay {
		if b.Factor > prev {
			return fmt.Errorf("freshnessDecay must be monotonically non-increasing")
		}
		prev = b.Factor
	}
	if t.OptimalSpeedShare < 0 || t.OptimalSpeedShare > 1 {
		return fmt.Errorf("optimalSpeedShare must be within [0,1]")
	}
	if t.PriorityMediumThreshold > t.PriorityHighThreshold {
		return fmt.Errorf("priority thresholds out of order")
	}
	for _, s := range []domain.Strategy{domain.StrategySpeed, domain.StrategyRevenue} {
		if _, ok := t.Strategies[s]; !ok {
			return fmt.Errorf("missing strategy profile %q", s)
		}
	}
	for strategy, c := range t.DailyTargetClamps {
		if c.Min < 0 || c.Max < c.Min {
			return fmt.Errorf("dailyTargetClamps[%s]: min %d, max %d out of order", strategy, c.Min, c.Max)
		}
	}
	return nil
}

// freshnessFactor returns the decay factor for a touch ageDays old.
func (t Tables) freshnessFactor(ageDays int) float64 {
	for _, b := range t.FreshnessDecay {
		if ageDays <= b.MaxAgeDays {
			return b.Factor
		}
	}
	return t.FreshnessFloor
}

// tierBonus returns the bonus for the highest tier the signal crosses.
func tierBonus(tiers []Tier, signal int) float64 {
	best := 0.0
	bestThreshold := -1
	for _, tier := range tiers {
		if signal >= tier.Threshold && tier.Threshold > bestThreshold {
			best = tier.Bonus
			bestThreshold = tier.Threshold
		}
	}
	return best
}

// callingTier resolves the tier and window for an absolute offset in hours.
func (t Tables) callingTier(offsetHours float64) (int, string) {
	for _, ct := range t.CallingTiers {
		if offsetHours <= ct.MaxOffsetHours {
			return ct.Tier, ct.Window
		}
	}
	if n := len(t.CallingTiers); n > 0 {
		last := t.CallingTiers[n-1]
		return last.Tier, last.Window
	}
	return 5, ""
}
