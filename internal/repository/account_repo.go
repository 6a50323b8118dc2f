package repository

import (
	"context"
	"time"

	"vibelingo_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, external_id, COALESCE(display_name, ''), banked_vibe, streak_days,
	       COALESCE(wallet_address, ''), current_cycle_start, levels_completed_in_cycle,
	       last_practice_date, created_at`

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE external_id = $1
	`, externalID)
	return scanAccount(row)
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO accounts (external_id, display_name, current_cycle_start)
		VALUES ($1, $2, now())
		RETURNING id, banked_vibe, streak_days, current_cycle_start, levels_completed_in_cycle, created_at
	`, a.ExternalID, a.DisplayName).Scan(
		&a.ID, &a.BankedVibe, &a.StreakDays, &a.CurrentCycleStart, &a.LevelsCompletedInCycle, &a.CreatedAt,
	)
}

// GetForUpdate loads an account inside tx with a row lock. All balance
// and streak read-modify-write goes through this to serialize per-account
// withdrawals and cycle checks.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanAccount(row)
}

// ApplyPractice records one completed level inside tx: accrues vibe,
// bumps the in-cycle level counter and, on the first practice of the
// day, writes the new streak and advances last_practice_date.
func (r *AccountRepository) ApplyPractice(ctx context.Context, tx pgx.Tx, id int64, vibe int64, streakDays int, newPracticeDay bool) error {
	if newPracticeDay {
		_, err := tx.Exec(ctx, `
			UPDATE accounts
			SET banked_vibe = banked_vibe + $2,
			    levels_completed_in_cycle = levels_completed_in_cycle + 1,
			    streak_days = $3,
			    last_practice_date = now()
			WHERE id = $1
		`, id, vibe, streakDays)
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET banked_vibe = banked_vibe + $2,
		    levels_completed_in_cycle = levels_completed_in_cycle + 1
		WHERE id = $1
	`, id, vibe)
	return err
}

// ResetAfterWithdrawal zeroes the banked balance and rotates the cycle.
// The streak survives a manual withdrawal.
func (r *AccountRepository) ResetAfterWithdrawal(ctx context.Context, tx pgx.Tx, id int64, cycleStart time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET banked_vibe = 0,
		    current_cycle_start = $2,
		    levels_completed_in_cycle = 0
		WHERE id = $1
	`, id, cycleStart)
	return err
}

// ResetAfterCycle rotates the cycle AND clears the streak (automatic
// 30-day completion only).
func (r *AccountRepository) ResetAfterCycle(ctx context.Context, tx pgx.Tx, id int64, cycleStart time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET current_cycle_start = $2,
		    levels_completed_in_cycle = 0,
		    streak_days = 0
		WHERE id = $1
	`, id, cycleStart)
	return err
}

func (r *AccountRepository) SetWalletAddress(ctx context.Context, id int64, address string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET wallet_address = $2 WHERE id = $1
	`, id, address)
	return err
}

func (r *AccountRepository) ClearWalletAddress(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET wallet_address = NULL WHERE id = $1
	`, id)
	return err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var lastPractice *time.Time

	if err := row.Scan(
		&a.ID, &a.ExternalID, &a.DisplayName, &a.BankedVibe, &a.StreakDays,
		&a.WalletAddress, &a.CurrentCycleStart, &a.LevelsCompletedInCycle,
		&lastPractice, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	a.LastPracticeDate = lastPractice
	return &a, nil
}
