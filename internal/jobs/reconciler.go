// Package jobs runs the asynchronous payout reconciler: the reward
// engine itself never blocks on on-chain confirmation.
package jobs

import (
	"context"
	"time"

	"vibelingo_backend/internal/logger"
	"vibelingo_backend/internal/repository"
	"vibelingo_backend/internal/token"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

const batchSize = 100

// Reconciler submits deferred payouts and verifies submitted ones.
type Reconciler struct {
	rewards  *repository.RewardRepository
	transfer *token.Client
	cron     *cron.Cron
}

func NewReconciler(db *pgxpool.Pool, transfer *token.Client) *Reconciler {
	return &Reconciler{
		rewards:  repository.NewRewardRepository(db),
		transfer: transfer,
		cron:     cron.New(),
	}
}

// Start schedules the reconciler with the given cron spec (e.g. "@every 1m").
func (r *Reconciler) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()
	logger.Info("payout reconciler started", "schedule", spec)
	return nil
}

// Stop waits for a running pass to finish.
func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Reconciler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r.processPending(ctx)
	r.confirmPaid(ctx)
}

// processPending submits transfers for rewards recorded while the
// transfer config was unavailable or before a wallet was linked.
func (r *Reconciler) processPending(ctx context.Context) {
	if !r.transfer.Configured() {
		return
	}

	pending, err := r.rewards.GetPendingWithWallet(ctx, batchSize)
	if err != nil {
		logger.Error("reconciler: list pending rewards", "error", err)
		return
	}

	for _, p := range pending {
		txHash, err := r.transfer.Transfer(ctx, p.WalletAddress, p.Reward.VibeAmount)
		if err != nil {
			logger.Error("reconciler: transfer failed",
				"reward_id", p.Reward.ID, "account_id", p.Reward.AccountID,
				"amount", p.Reward.VibeAmount, "error", err)
			if err := r.rewards.MarkFailed(ctx, p.Reward.ID); err != nil {
				logger.Error("reconciler: mark failed", "reward_id", p.Reward.ID, "error", err)
			}
			continue
		}

		if err := r.rewards.MarkPaid(ctx, p.Reward.ID, txHash, time.Now()); err != nil {
			logger.Error("reconciler: mark paid", "reward_id", p.Reward.ID, "error", err)
			continue
		}
		logger.Info("reconciler: deferred payout submitted",
			"reward_id", p.Reward.ID, "account_id", p.Reward.AccountID, "tx_hash", txHash)
	}
}

// confirmPaid polls receipts for submitted transfers and flags reverts.
func (r *Reconciler) confirmPaid(ctx context.Context) {
	if !r.transfer.Configured() {
		return
	}

	unconfirmed, err := r.rewards.GetUnconfirmedPaid(ctx, batchSize)
	if err != nil {
		logger.Error("reconciler: list unconfirmed rewards", "error", err)
		return
	}

	for _, w := range unconfirmed {
		receipt, err := r.transfer.GetReceipt(ctx, w.TxHash)
		if err != nil {
			logger.Error("reconciler: fetch receipt", "reward_id", w.ID, "tx_hash", w.TxHash, "error", err)
			continue
		}
		if receipt == nil {
			// not mined yet, try again next pass
			continue
		}

		if !receipt.Success {
			logger.Error("reconciler: transfer reverted on chain, needs manual reconciliation",
				"reward_id", w.ID, "account_id", w.AccountID, "tx_hash", w.TxHash)
			if err := r.rewards.MarkFailed(ctx, w.ID); err != nil {
				logger.Error("reconciler: mark reverted", "reward_id", w.ID, "error", err)
			}
			continue
		}

		if err := r.rewards.MarkConfirmed(ctx, w.ID); err != nil {
			logger.Error("reconciler: mark confirmed", "reward_id", w.ID, "error", err)
		}
	}
}
