package loyalty

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for loyalty accounts.
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64, referralCode string) (*Account, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, user_id, total_points, current_tier, referral_code, referred_by, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.UserID, &a.TotalPoints, &a.CurrentTier, &a.ReferralCode, &a.ReferredBy, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) get(ctx context.Context, userID int64) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1`, userID))
}

// GetOrCreate returns the user's account, inserting it on first touch.
// user_id is unique; the loser of a concurrent insert re-reads the
// winner's row, so the referral code is minted at most once.
func (r *PGRepository) GetOrCreate(ctx context.Context, userID int64, referralCode string) (*Account, error) {
	account, err := r.get(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	account, err = scanAccount(r.pool.QueryRow(ctx,
		`INSERT INTO loyalty_accounts (user_id, referral_code, current_tier)
		 VALUES ($1, $2, 'BRONZE')
		 RETURNING `+accountColumns, userID, referralCode))
	if err == nil {
		return account, nil
	}
	if db.IsUniqueViolation(err) {
		return r.get(ctx, userID)
	}
	return nil, err
}
