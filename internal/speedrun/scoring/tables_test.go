package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"speedrun_backend/internal/speedrun/domain"
)

func TestFreshnessFactorBuckets(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		ageDays int
		want    float64
	}{
		{0, 1.0},
		{1, 0.9},
		{2, 0.9},
		{3, 0.75},
		{7, 0.75},
		{8, 0.6},
		{14, 0.6},
		{15, 0.45},
		{30, 0.45},
		{31, 0.3},
		{60, 0.3},
		{61, 0.15},
		{365, 0.15},
	}

	for _, tt := range tests {
		if got := tables.freshnessFactor(tt.ageDays); got != tt.want {
			t.Errorf("freshnessFactor(%d) = %v, want %v", tt.ageDays, got, tt.want)
		}
	}
}

func TestFreshnessDecayIsMonotonic(t *testing.T) {
	tables := DefaultTables()
	prev := tables.freshnessFactor(0)
	for age := 1; age <= 120; age++ {
		cur := tables.freshnessFactor(age)
		if cur > prev {
			t.Fatalf("decay increased at age %d: %v > %v", age, cur, prev)
		}
		if cur <= 0 {
			t.Fatalf("decay hit zero at age %d", age)
		}
		prev = cur
	}
}

func TestTierBonus(t *testing.T) {
	tiers := DefaultTables().EngagementTiers

	tests := []struct {
		signal int
		want   float64
	}{
		{95, 12},
		{80, 12},
		{79, 8},
		{60, 8},
		{45, 4},
		{39, 0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := tierBonus(tiers, tt.signal); got != tt.want {
			t.Errorf("tierBonus(%d) = %v, want %v", tt.signal, got, tt.want)
		}
	}
}

func TestCallingTierOffsets(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		offset   float64
		wantTier int
	}{
		{0, 1},
		{1, 2},
		{2.5, 3},
		{3, 3},
		{5, 4},
		{9, 5},
	}

	for _, tt := range tests {
		tier, window := tables.callingTier(tt.offset)
		if tier != tt.wantTier {
			t.Errorf("callingTier(%v) = %d, want %d", tt.offset, tier, tt.wantTier)
		}
		if window == "" {
			t.Errorf("callingTier(%v) returned empty window", tt.offset)
		}
	}
}

func TestLoadTablesMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	override := []byte("priorityHighThreshold: 80\nbuyerRoleScores:\n  champion: 22\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}

	if tables.PriorityHighThreshold != 80 {
		t.Errorf("PriorityHighThreshold = %v, want 80", tables.PriorityHighThreshold)
	}
	if got := tables.BuyerRoleScores[domain.RoleChampion]; got != 22 {
		t.Errorf("champion score = %v, want 22", got)
	}
	// Untouched keys keep their defaults.
	if got := tables.BuyerRoleScores[domain.RoleDecisionMaker]; got != 25 {
		t.Errorf("decision_maker score = %v, want default 25", got)
	}
}

func TestLoadTablesOverridesDailyTargetClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	override := []byte("dailyTargetClamps:\n  speed:\n    min: 40\n    max: 90\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}

	speed := tables.DailyTargetClamps[domain.StrategySpeed]
	if speed.Min != 40 || speed.Max != 90 {
		t.Errorf("speed clamp = {%d %d}, want {40 90}", speed.Min, speed.Max)
	}
	// Untouched strategies keep their defaults.
	optimal := tables.DailyTargetClamps[domain.StrategyOptimal]
	if optimal.Min != 10 || optimal.Max != 50 {
		t.Errorf("optimal clamp = {%d %d}, want default {10 50}", optimal.Min, optimal.Max)
	}
}

func TestLoadTablesRejectsInvertedClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	override := []byte("dailyTargetClamps:\n  revenue:\n    min: 30\n    max: 5\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTables(path); err == nil {
		t.Error("expected error for min above max")
	}
}

func TestLoadTablesEmptyPathReturnsDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	if tables.PriorityHighThreshold != DefaultTables().PriorityHighThreshold {
		t.Error("empty path should return defaults")
	}
}

func TestLoadTablesRejectsBrokenDecay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	override := []byte("freshnessDecay:\n  - maxAgeDays: 0\n    factor: 0.5\n  - maxAgeDays: 7\n    factor: 0.9\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTables(path); err == nil {
		t.Error("expected error for non-monotonic decay curve")
	}
}
