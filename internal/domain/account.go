package domain

import "time"

// Account is a learner profile with its reward bookkeeping fields.
type Account struct {
	ID                     int64      `db:"id" json:"id"`
	ExternalID             string     `db:"external_id" json:"external_id"`
	DisplayName            string     `db:"display_name" json:"display_name"`
	BankedVibe             int64      `db:"banked_vibe" json:"banked_vibe"`
	StreakDays             int        `db:"streak_days" json:"streak_days"`
	WalletAddress          string     `db:"wallet_address" json:"wallet_address,omitempty"`
	CurrentCycleStart      time.Time  `db:"current_cycle_start" json:"current_cycle_start"`
	LevelsCompletedInCycle int        `db:"levels_completed_in_cycle" json:"levels_completed_in_cycle"`
	LastPracticeDate       *time.Time `db:"last_practice_date" json:"last_practice_date,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
}
