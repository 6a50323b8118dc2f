package repository

import (
	"context"
	"time"

	"vibelingo_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rewardColumns = `id, account_id, cycle_number, cycle_start, cycle_end, levels_completed,
	       vibe_amount, status, COALESCE(tx_hash, ''), created_at, paid_at`

type RewardRepository struct {
	db *pgxpool.Pool
}

func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// NextCycleNumber computes max(cycle_number)+1 for the account, 1 when
// no rewards exist yet. Call inside the same tx that holds the account
// row lock so concurrent closes cannot see the same number.
func (r *RewardRepository) NextCycleNumber(ctx context.Context, tx pgx.Tx, accountID int64) (int, error) {
	var next int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(cycle_number), 0) + 1 FROM vibe_rewards WHERE account_id = $1
	`, accountID).Scan(&next)
	return next, err
}

// ExistsForCycleWindow backs the cycle-completion idempotency guard: a
// reward whose cycle_start matches the account's current window means
// this cycle was already closed by another invocation. The unique
// (account_id, cycle_number) index catches the residual race.
func (r *RewardRepository) ExistsForCycleWindow(ctx context.Context, tx pgx.Tx, accountID int64, cycleStart time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM vibe_rewards WHERE account_id = $1 AND cycle_start = $2)
	`, accountID, cycleStart).Scan(&exists)
	return exists, err
}

// CreateWithTx inserts a reward row inside an existing transaction.
func (r *RewardRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, w *domain.VibeReward) error {
	return tx.QueryRow(ctx, `
		INSERT INTO vibe_rewards (account_id, cycle_number, cycle_start, cycle_end,
		                          levels_completed, vibe_amount, status, tx_hash, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING id, created_at
	`, w.AccountID, w.CycleNumber, w.CycleStart, w.CycleEnd,
		w.LevelsCompleted, w.VibeAmount, w.Status, w.TxHash, w.PaidAt,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByAccountID returns the account's reward history, newest cycle first.
func (r *RewardRepository) GetByAccountID(ctx context.Context, accountID int64, limit int) ([]domain.VibeReward, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+rewardColumns+`
		FROM vibe_rewards
		WHERE account_id = $1
		ORDER BY cycle_number DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRewards(rows)
}

// PendingPayout is a pending reward joined with its payout destination.
type PendingPayout struct {
	Reward        domain.VibeReward
	WalletAddress string
}

// GetPendingWithWallet returns pending rewards whose account has a wallet
// linked, oldest first. Used by the reconciler to submit deferred payouts.
func (r *RewardRepository) GetPendingWithWallet(ctx context.Context, limit int) ([]PendingPayout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.account_id, r.cycle_number, r.cycle_start, r.cycle_end, r.levels_completed,
		       r.vibe_amount, r.status, COALESCE(r.tx_hash, ''), r.created_at, r.paid_at,
		       a.wallet_address
		FROM vibe_rewards r
		JOIN accounts a ON a.id = r.account_id
		WHERE r.status = 'pending' AND r.vibe_amount > 0 AND a.wallet_address IS NOT NULL
		ORDER BY r.created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingPayout
	for rows.Next() {
		var p PendingPayout
		var paidAt *time.Time
		if err := rows.Scan(
			&p.Reward.ID, &p.Reward.AccountID, &p.Reward.CycleNumber, &p.Reward.CycleStart,
			&p.Reward.CycleEnd, &p.Reward.LevelsCompleted, &p.Reward.VibeAmount, &p.Reward.Status,
			&p.Reward.TxHash, &p.Reward.CreatedAt, &paidAt, &p.WalletAddress,
		); err != nil {
			return nil, err
		}
		p.Reward.PaidAt = paidAt
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetUnconfirmedPaid returns paid rewards whose on-chain receipt has not
// been checked yet (confirmed_at is null), oldest first.
func (r *RewardRepository) GetUnconfirmedPaid(ctx context.Context, limit int) ([]domain.VibeReward, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+rewardColumns+`
		FROM vibe_rewards
		WHERE status = 'paid' AND tx_hash IS NOT NULL AND confirmed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRewards(rows)
}

// MarkPaid records a submitted transfer.
func (r *RewardRepository) MarkPaid(ctx context.Context, id int64, txHash string, paidAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vibe_rewards SET status = 'paid', tx_hash = $2, paid_at = $3 WHERE id = $1
	`, id, txHash, paidAt)
	return err
}

// MarkFailed records a failed transfer submission or a reverted receipt.
func (r *RewardRepository) MarkFailed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vibe_rewards SET status = 'failed' WHERE id = $1
	`, id)
	return err
}

// MarkConfirmed stamps a paid reward once its receipt came back ok.
func (r *RewardRepository) MarkConfirmed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vibe_rewards SET confirmed_at = now() WHERE id = $1
	`, id)
	return err
}

func scanRewards(rows pgx.Rows) ([]domain.VibeReward, error) {
	var rewards []domain.VibeReward

	for rows.Next() {
		var w domain.VibeReward
		var paidAt *time.Time

		if err := rows.Scan(
			&w.ID, &w.AccountID, &w.CycleNumber, &w.CycleStart, &w.CycleEnd,
			&w.LevelsCompleted, &w.VibeAmount, &w.Status, &w.TxHash, &w.CreatedAt, &paidAt,
		); err != nil {
			return nil, err
		}
		w.PaidAt = paidAt
		rewards = append(rewards, w)
	}

	return rewards, rows.Err()
}
