package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"speedrun_backend/internal/speedrun/domain"
)

// scoreVersion identifies the scoring formula generation. Bump when the
// factor set changes so persisted scores can be told apart.
const scoreVersion = "v1"

// contribution is one labeled scoring factor, kept for reason generation.
type contribution struct {
	label string
	value float64
}

// Service ranks pool contacts with pure arithmetic over the Tables.
type Service struct {
	tables Tables
}

// New creates the ranking service.
func New(tables Tables) *Service {
	return &Service{tables: tables}
}

// Version returns the scoring formula version.
func (s *Service) Version() string { return scoreVersion }

// Rank scores a single contact for the representative's settings. Pure:
// same inputs, same output.
func (s *Service) Rank(c domain.Contact, settings domain.Settings, now time.Time) domain.ScoredContact {
	speedScore, speedContribs := s.composite(c, now, domain.StrategySpeed)
	revenueScore, revenueContribs := s.composite(c, now, domain.StrategyRevenue)

	var score float64
	var contribs []contribution
	switch settings.Strategy {
	case domain.StrategySpeed:
		score, contribs = speedScore, speedContribs
	case domain.StrategyRevenue:
		score, contribs = revenueScore, revenueContribs
	default:
		share := s.tables.OptimalSpeedShare
		score = share*speedScore + (1-share)*revenueScore
		contribs = speedContribs
	}
	score = clampScore(score)

	tier, window := s.callingPlacement(c.Timezone, settings.Timezone, now)

	return domain.ScoredContact{
		Contact:         c,
		Score:           round1(score),
		Priority:        s.priority(score),
		RankingReason:   reason(contribs),
		CallingPriority: tier,
		CallingWindow:   window,
	}
}

// RankAll scores and orders a pool, highest first. The sort is stable, so
// ties keep the input order and equal inputs produce identical output.
func (s *Service) RankAll(contacts []domain.Contact, settings domain.Settings, now time.Time) []domain.ScoredContact {
	scored := make([]domain.ScoredContact, 0, len(contacts))
	for _, c := range contacts {
		scored = append(scored, s.Rank(c, settings, now))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// composite computes one strategy profile's weighted blend of the individual
// and company layers, returning the labeled contributions for the reason.
func (s *Service) composite(c domain.Contact, now time.Time, strategy domain.Strategy) (float64, []contribution) {
	profile := s.tables.Strategies[strategy]

	individual, contribs := s.individualScore(c, now, profile)
	company := s.companyScore(c)

	score := profile.IndividualWeight*individual + profile.CompanyWeight*company
	return score, contribs
}

// individualScore is the per-person layer: who they are, how warm, how far
// along, how fresh.
func (s *Service) individualScore(c domain.Contact, now time.Time, profile StrategyProfile) (float64, []contribution) {
	t := s.tables
	contribs := make([]contribution, 0, 8)

	total := t.BaseScore

	if v, ok := t.BuyerRoleScores[c.Role]; ok {
		total += v
		contribs = append(contribs, contribution{roleLabel(c.Role), v})
	}
	if v, ok := t.RelationshipScores[c.Relationship]; ok {
		total += v
		contribs = append(contribs, contribution{relationshipLabel(c.Relationship), v})
	}
	if v, ok := t.DealStageScores[c.DealStage]; ok {
		boosted := v * profile.StageBoost
		total += boosted
		contribs = append(contribs, contribution{stageLabel(c.DealStage), boosted})
	}
	if v := tierBonus(t.EngagementTiers, c.EngagementScore); v > 0 {
		total += v
		contribs = append(contribs, contribution{"high engagement", v})
	}
	if v := tierBonus(t.ReadyToBuyTiers, c.ReadyToBuyScore); v > 0 {
		total += v
		contribs = append(contribs, contribution{"ready-to-buy signals", v})
	}
	if v, ok := t.SourceBonuses[strings.ToLower(c.Source)]; ok && v != 0 {
		total += v
		if v > 0 {
			contribs = append(contribs, contribution{fmt.Sprintf("%s source", c.Source), v})
		}
	}
	if s.hasUrgentKeyword(c) {
		total += t.UrgentKeywordBoost
		contribs = append(contribs, contribution{"urgent language in notes", t.UrgentKeywordBoost})
	}
	if c.EstimatedDealValue > 0 {
		v := s.dealValueScore(c.EstimatedDealValue) * profile.DealValueBoost
		total += v
		contribs = append(contribs, contribution{fmt.Sprintf("$%.0fk deal value", c.EstimatedDealValue/1000), v})
	}

	freshness := s.freshness(c, now, profile)
	total *= freshness
	if c.LastTouchAt != nil && freshness >= 0.9 {
		contribs = append(contribs, contribution{"recent touch", 5})
	}

	return total, contribs
}

// companyScore is the account layer: company size and aggregate engagement.
func (s *Service) companyScore(c domain.Contact) float64 {
	mult, ok := s.tables.CompanySizeMultipliers[c.CompanySize]
	if !ok {
		mult = 1.0
	}
	score := mult*40 + float64(c.CompanyEngagement)*s.tables.CompanyEngagementWeight
	return clampScore(score)
}

// dealValueScore log-normalizes the estimated deal value so a 10x bigger
// deal does not swamp every other factor.
func (s *Service) dealValueScore(value float64) float64 {
	t := s.tables
	if value <= 0 || t.DealValueScale <= 0 {
		return 0
	}
	v := math.Log10(1+value/t.DealValueScale) * t.DealValueWeight
	return math.Min(v, t.DealValueCap)
}

// freshness converts the age of the last touch into a decay multiplier.
// Never-touched contacts count as fresh. The profile's boost raises the
// exponent so strategies that chase fresh leads punish stale ones harder.
func (s *Service) freshness(c domain.Contact, now time.Time, profile StrategyProfile) float64 {
	if c.LastTouchAt == nil {
		return 1.0
	}
	ageDays := int(now.Sub(*c.LastTouchAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	factor := s.tables.freshnessFactor(ageDays)
	if factor < s.tables.FreshnessFloor {
		factor = s.tables.FreshnessFloor
	}
	if profile.FreshnessBoost > 0 && profile.FreshnessBoost != 1 {
		factor = math.Pow(factor, profile.FreshnessBoost)
	}
	if factor < s.tables.FreshnessFloor {
		factor = s.tables.FreshnessFloor
	}
	return factor
}

func (s *Service) hasUrgentKeyword(c domain.Contact) bool {
	haystack := strings.ToLower(c.Notes + " " + c.Subject)
	for _, kw := range s.tables.UrgentKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// callingPlacement resolves the calling tier from the timezone offset
// between the contact and the representative. Same zone ranks highest.
func (s *Service) callingPlacement(contactTZ, repTZ string, now time.Time) (int, string) {
	contactOff, okC := zoneOffsetHours(contactTZ, now)
	repOff, okR := zoneOffsetHours(repTZ, now)
	if !okC || !okR {
		return 3, "timezone unknown"
	}
	return s.tables.callingTier(math.Abs(contactOff - repOff))
}

func zoneOffsetHours(tz string, now time.Time) (float64, bool) {
	if tz == "" {
		return 0, false
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, false
	}
	_, offset := now.In(loc).Zone()
	return float64(offset) / 3600, true
}

func (s *Service) priority(score float64) domain.Priority {
	switch {
	case score >= s.tables.PriorityHighThreshold:
		return domain.PriorityHigh
	case score >= s.tables.PriorityMediumThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// reason names the one or two biggest contributors. Ties break on label so
// the output is deterministic.
func reason(contribs []contribution) string {
	if len(contribs) == 0 {
		return "baseline priority"
	}
	sorted := append([]contribution(nil), contribs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].value != sorted[j].value {
			return sorted[i].value > sorted[j].value
		}
		return sorted[i].label < sorted[j].label
	})

	if len(sorted) == 1 || sorted[1].value <= 0 {
		return sorted[0].label
	}
	return sorted[0].label + " + " + sorted[1].label
}

func roleLabel(r domain.BuyerRole) string {
	switch r {
	case domain.RoleDecisionMaker:
		return "decision maker"
	case domain.RoleChampion:
		return "internal champion"
	case domain.RoleInfluencer:
		return "influencer"
	case domain.RoleEvaluator:
		return "evaluator"
	case domain.RoleBlocker:
		return "blocker"
	default:
		return "unknown role"
	}
}

func relationshipLabel(r domain.Relationship) string {
	switch r {
	case domain.RelationshipStrong:
		return "strong relationship"
	case domain.RelationshipWarm:
		return "warm relationship"
	case domain.RelationshipEstablished:
		return "established contact"
	case domain.RelationshipCold:
		return "cold contact"
	default:
		return "no prior relationship"
	}
}

func stageLabel(st domain.DealStage) string {
	switch st {
	case domain.StageNegotiation:
		return "deal in negotiation"
	case domain.StageProposal:
		return "proposal outstanding"
	case domain.StageDemo:
		return "demo stage"
	case domain.StageQualified:
		return "qualified deal"
	case domain.StageDiscovery:
		return "in discovery"
	default:
		return "prospecting"
	}
}

func clampScore(v float64) float64 {
	return clampFloat(v, 0, 100)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
