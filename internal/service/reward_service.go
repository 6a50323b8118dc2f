package service

import (
	"context"
	"errors"
	"time"

	"vibelingo_backend/internal/domain"
	"vibelingo_backend/internal/logger"
	"vibelingo_backend/internal/repository"
	"vibelingo_backend/internal/rewards"
	"vibelingo_backend/internal/token"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
)

// Notifier pushes reward events to connected clients. May be nil.
type Notifier interface {
	Notify(accountID int64, event string, payload any)
}

// RewardService implements the two payout policies: manual withdrawal
// (banked balance times the streak multiplier, streak preserved) and
// automatic 30-day cycle completion (levels times a fixed rate, streak
// cleared). The two are intentionally distinct.
type RewardService struct {
	db       *pgxpool.Pool
	accounts *repository.AccountRepository
	rewards  *repository.RewardRepository
	transfer *token.Client
	notifier Notifier

	vibePerLevel int64
}

func NewRewardService(db *pgxpool.Pool, transfer *token.Client, vibePerLevel int64) *RewardService {
	if vibePerLevel <= 0 {
		vibePerLevel = rewards.VibePerLevel
	}
	return &RewardService{
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		rewards:      repository.NewRewardRepository(db),
		transfer:     transfer,
		vibePerLevel: vibePerLevel,
	}
}

// SetNotifier wires the websocket hub once it exists.
func (s *RewardService) SetNotifier(n Notifier) {
	s.notifier = n
}

// WithdrawResult is returned from a successful manual withdrawal.
type WithdrawResult struct {
	Multiplier   float64            `json:"multiplier"`
	BankedAmount int64              `json:"banked_amount"`
	PayoutAmount int64              `json:"payout_amount"`
	Reward       *domain.VibeReward `json:"reward"`
}

// Withdraw closes the current earning cycle manually: computes the
// payout from the banked balance and streak multiplier, submits the
// token transfer when a wallet is linked, persists the reward row and
// resets the balance. The streak survives.
//
// The account row lock is held across the whole operation, including
// the transfer submission, so concurrent withdrawals for one account
// serialize and cannot double-spend the banked balance.
func (s *RewardService) Withdraw(ctx context.Context, accountID int64) (*WithdrawResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if acc.BankedVibe <= 0 {
		return nil, ErrNothingToWithdraw
	}

	multiplier := rewards.Multiplier(acc.StreakDays)
	payout := rewards.Payout(acc.BankedVibe, acc.StreakDays)

	cycleNumber, err := s.rewards.NextCycleNumber(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reward := &domain.VibeReward{
		AccountID:       accountID,
		CycleNumber:     cycleNumber,
		CycleStart:      acc.CurrentCycleStart,
		CycleEnd:        now,
		LevelsCompleted: acc.LevelsCompletedInCycle,
		VibeAmount:      payout,
	}

	switch {
	case acc.WalletAddress == "":
		reward.Status = domain.RewardStatusNoDestination
	case !s.transfer.Configured():
		// picked up later by the reconciler
		reward.Status = domain.RewardStatusPending
	default:
		txHash, terr := s.transfer.Transfer(ctx, acc.WalletAddress, payout)
		if terr != nil {
			// Deliberate asymmetry: the balance is still reset below and
			// the failed transfer is reconciled manually. Keep this loud.
			logger.Error("token transfer failed, reward needs manual reconciliation",
				"account_id", accountID, "cycle", cycleNumber, "payout", payout, "error", terr)
			transferFailuresTotal.Inc()
			reward.Status = domain.RewardStatusFailed
		} else {
			paidAt := now
			reward.Status = domain.RewardStatusPaid
			reward.TxHash = txHash
			reward.PaidAt = &paidAt
		}
	}

	if err := s.rewards.CreateWithTx(ctx, tx, reward); err != nil {
		return nil, err
	}
	if err := s.accounts.ResetAfterWithdrawal(ctx, tx, accountID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	withdrawalsTotal.WithLabelValues(string(reward.Status)).Inc()
	logger.Info("withdrawal completed",
		"account_id", accountID, "cycle", cycleNumber,
		"banked", acc.BankedVibe, "multiplier", multiplier,
		"payout", payout, "status", reward.Status)

	res := &WithdrawResult{
		Multiplier:   multiplier,
		BankedAmount: acc.BankedVibe,
		PayoutAmount: payout,
		Reward:       reward,
	}
	s.notify(accountID, "withdrawal", res)
	return res, nil
}

// CycleResult reports the outcome of an automatic cycle check.
type CycleResult struct {
	Completed  bool               `json:"completed"`
	StreakDays int                `json:"streak_days"`
	Reward     *domain.VibeReward `json:"reward,omitempty"`
}

// CompleteCycleIfDue closes the earning cycle automatically once the
// streak reaches 30 days. Pays levels_completed_in_cycle times the fixed
// rate (not the banked balance) and clears the streak. Safe to invoke
// more than once per threshold crossing: an existing reward row for the
// computed cycle number makes it a silent no-op.
func (s *RewardService) CompleteCycleIfDue(ctx context.Context, accountID int64) (*CycleResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if acc.StreakDays < rewards.CycleStreakDays {
		return &CycleResult{Completed: false, StreakDays: acc.StreakDays}, nil
	}

	// at-least-once trigger tolerance: the current window may already be closed
	exists, err := s.rewards.ExistsForCycleWindow(ctx, tx, accountID, acc.CurrentCycleStart)
	if err != nil {
		return nil, err
	}
	if exists {
		return &CycleResult{Completed: false, StreakDays: acc.StreakDays}, nil
	}

	cycleNumber, err := s.rewards.NextCycleNumber(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reward := &domain.VibeReward{
		AccountID:       accountID,
		CycleNumber:     cycleNumber,
		CycleStart:      acc.CurrentCycleStart,
		CycleEnd:        now,
		LevelsCompleted: acc.LevelsCompletedInCycle,
		VibeAmount:      int64(acc.LevelsCompletedInCycle) * rewards.CycleVibePerLevel,
		Status:          domain.RewardStatusNoDestination,
	}
	if acc.WalletAddress != "" {
		reward.Status = domain.RewardStatusPending
	}

	if err := s.rewards.CreateWithTx(ctx, tx, reward); err != nil {
		return nil, err
	}
	if err := s.accounts.ResetAfterCycle(ctx, tx, accountID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cycleCompletionsTotal.Inc()
	logger.Info("reward cycle completed",
		"account_id", accountID, "cycle", cycleNumber,
		"levels", acc.LevelsCompletedInCycle, "payout", reward.VibeAmount, "status", reward.Status)

	res := &CycleResult{Completed: true, StreakDays: 0, Reward: reward}
	s.notify(accountID, "cycle_completed", res)
	return res, nil
}

// PracticeResult describes the account after one completed level.
type PracticeResult struct {
	VibeEarned int64        `json:"vibe_earned"`
	BankedVibe int64        `json:"banked_vibe"`
	StreakDays int          `json:"streak_days"`
	Cycle      *CycleResult `json:"cycle,omitempty"`
}

// CompletePractice records one finished learning activity: accrues vibe,
// applies the daily streak rule and then runs the automatic cycle check.
func (s *RewardService) CompletePractice(ctx context.Context, accountID int64) (*PracticeResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	streak, counted := rewards.NextStreak(acc.LastPracticeDate, time.Now(), acc.StreakDays)
	if err := s.accounts.ApplyPractice(ctx, tx, accountID, s.vibePerLevel, streak, counted); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	res := &PracticeResult{
		VibeEarned: s.vibePerLevel,
		BankedVibe: acc.BankedVibe + s.vibePerLevel,
		StreakDays: streak,
	}

	cycle, err := s.CompleteCycleIfDue(ctx, accountID)
	if err != nil {
		return nil, err
	}
	res.Cycle = cycle
	if cycle.Completed {
		res.StreakDays = 0
	}

	s.notify(accountID, "practice", res)
	return res, nil
}

// History returns the account's reward history, newest cycle first.
func (s *RewardService) History(ctx context.Context, accountID int64, limit int) ([]domain.VibeReward, error) {
	return s.rewards.GetByAccountID(ctx, accountID, limit)
}

func (s *RewardService) notify(accountID int64, event string, payload any) {
	if s.notifier != nil {
		s.notifier.Notify(accountID, event, payload)
	}
}
