// Package quota computes daily outreach targets from weekly pace and the
// backfill counts that keep the day's queue topped up.
package quota

import (
	"fmt"
	"math"
	"time"

	"speedrun_backend/internal/speedrun/domain"
)

// KeepWarmFloor is the daily target once the weekly target is already met.
// The pipeline stays warm without burning the pool.
const KeepWarmFloor = 5

// workdaysPerWeek is the Monday-Friday work week.
const workdaysPerWeek = 5

// Clamp bounds a strategy's daily target.
type Clamp struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Clamps maps each strategy to its daily target bounds. The scoring tables
// carry a Clamps so deployments can retune the bounds alongside the other
// ranking constants.
type Clamps map[domain.Strategy]Clamp

// DefaultClamps returns the stock per-strategy bounds.
func DefaultClamps() Clamps {
	return Clamps{
		domain.StrategyOptimal: {Min: 10, Max: 50},
		domain.StrategySpeed:   {Min: 20, Max: 75},
		domain.StrategyRevenue: {Min: 5, Max: 30},
	}
}

// WeekProgress is the week-to-date input for the daily target.
type WeekProgress struct {
	WeeklyTarget      int
	CompletedThisWeek int
	// RemainingWorkdays counts today plus the workdays left this week.
	RemainingWorkdays int
}

// ComputeDailyTarget derives today's target from the weekly pace.
// The reason names the branch taken so the UI can explain the number.
// A nil clamps falls back to DefaultClamps.
func ComputeDailyTarget(settings domain.Settings, progress WeekProgress, clamps Clamps) (int, string) {
	if clamps == nil {
		clamps = DefaultClamps()
	}
	if progress.WeeklyTarget <= 0 {
		return KeepWarmFloor, "no weekly target set - keep-warm floor"
	}

	remaining := progress.WeeklyTarget - progress.CompletedThisWeek
	if remaining <= 0 {
		return KeepWarmFloor, "weekly target met - keep-warm floor"
	}

	days := progress.RemainingWorkdays
	if days < 1 {
		days = 1
	}

	target := int(math.Ceil(float64(remaining) / float64(days)))

	c, ok := clamps[settings.Strategy]
	if !ok {
		c = clamps[domain.StrategyOptimal]
	}
	if target < c.Min {
		target = c.Min
	}
	if target > c.Max {
		target = c.Max
	}

	return target, paceReason(target, progress.WeeklyTarget)
}

// paceReason compares today's target against the steady weekly pace.
// Within 20% of the even split counts as on pace.
func paceReason(target, weeklyTarget int) string {
	base := float64(weeklyTarget) / workdaysPerWeek
	switch {
	case float64(target) > base*1.2:
		return "behind pace - increased to catch up"
	case float64(target) < base*0.8:
		return "ahead of pace - reduced load"
	default:
		return "on pace"
	}
}

// ComputeBackfillCount returns how many contacts to append so the day's
// queue can still reach the target. Never negative; zero at saturation.
func ComputeBackfillCount(dailyTarget, completedToday, queueSize int) (int, string) {
	count := dailyTarget - completedToday - queueSize
	if count <= 0 {
		return 0, "daily target already covered by queue and completions"
	}
	return count, fmt.Sprintf("%d more to reach today's target of %d", count, dailyTarget)
}

// RemainingWorkdays counts today plus the Monday-Friday workdays left in the
// week, in the representative's local time. Weekend days return the days of
// the following week so a Saturday session still gets a sane pace.
func RemainingWorkdays(now time.Time) int {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return workdaysPerWeek
	default:
		// Monday=1 ... Friday=5.
		return workdaysPerWeek - int(now.Weekday()) + 1
	}
}
