// Package rewards holds the pure reward calculations: streak multiplier
// tiers, payout amounts and the daily streak counter. No I/O here.
package rewards

import "math"

const (
	// VibePerLevel is the base accrual for one completed level.
	VibePerLevel = 50

	// CycleStreakDays is the streak length that closes a cycle automatically.
	CycleStreakDays = 30

	// CycleVibePerLevel is the payout per completed level when a 30-day
	// cycle closes. Independent from the banked-balance multiplier path.
	CycleVibePerLevel = 50
)

// Tier is one multiplier step, unlocked at Days of streak (inclusive).
type Tier struct {
	Days       int     `json:"days"`
	Multiplier float64 `json:"multiplier"`
}

// tiers is scanned from highest to lowest; the first match wins.
var tiers = []Tier{
	{Days: 60, Multiplier: 3.0},
	{Days: 30, Multiplier: 2.5},
	{Days: 14, Multiplier: 2.0},
	{Days: 7, Multiplier: 1.5},
}

// Multiplier maps a streak length to its payout multiplier.
// Streaks below the first tier earn the base 1.0.
func Multiplier(streakDays int) float64 {
	for _, t := range tiers {
		if streakDays >= t.Days {
			return t.Multiplier
		}
	}
	return 1.0
}

// Payout is the final withdrawal amount: banked balance scaled by the
// streak multiplier, rounded down.
func Payout(bankedVibe int64, streakDays int) int64 {
	return int64(math.Floor(float64(bankedVibe) * Multiplier(streakDays)))
}

// TierProgress describes the next unreached tier for display.
type TierProgress struct {
	CurrentMultiplier float64 `json:"current_multiplier"`
	NextDays          int     `json:"next_days"`
	DaysRemaining     int     `json:"days_remaining"`
	NextMultiplier    float64 `json:"next_multiplier"`
}

// NextTierInfo reports how far the streak is from the next multiplier
// tier. At or above the top tier it reports zero days remaining and the
// top multiplier.
func NextTierInfo(streakDays int) TierProgress {
	p := TierProgress{CurrentMultiplier: Multiplier(streakDays)}

	top := tiers[0]
	if streakDays >= top.Days {
		p.NextDays = top.Days
		p.DaysRemaining = 0
		p.NextMultiplier = top.Multiplier
		return p
	}

	// lowest tier still above the current streak
	for i := len(tiers) - 1; i >= 0; i-- {
		if streakDays < tiers[i].Days {
			p.NextDays = tiers[i].Days
			p.DaysRemaining = tiers[i].Days - streakDays
			p.NextMultiplier = tiers[i].Multiplier
			return p
		}
	}
	return p
}

// Tiers returns a copy of the multiplier table for display.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}
