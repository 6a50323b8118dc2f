package domain

import "time"

// VibeReward is one closed earning cycle for an account: either a manual
// withdrawal of the banked balance or an automatic 30-day cycle completion.
// Rows are append-only; only status/tx_hash/paid_at change afterwards.
type VibeReward struct {
	ID              int64        `db:"id" json:"id"`
	AccountID       int64        `db:"account_id" json:"account_id"`
	CycleNumber     int          `db:"cycle_number" json:"cycle_number"`
	CycleStart      time.Time    `db:"cycle_start" json:"cycle_start"`
	CycleEnd        time.Time    `db:"cycle_end" json:"cycle_end"`
	LevelsCompleted int          `db:"levels_completed" json:"levels_completed"`
	VibeAmount      int64        `db:"vibe_amount" json:"vibe_amount"`
	Status          RewardStatus `db:"status" json:"status"`
	TxHash          string       `db:"tx_hash" json:"tx_hash,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	PaidAt          *time.Time   `db:"paid_at" json:"paid_at,omitempty"`
}

// RewardStatus represents payout processing status
type RewardStatus string

const (
	RewardStatusPending       RewardStatus = "pending"
	RewardStatusPaid          RewardStatus = "paid"
	RewardStatusFailed        RewardStatus = "failed"
	RewardStatusNoDestination RewardStatus = "no_destination"
)
