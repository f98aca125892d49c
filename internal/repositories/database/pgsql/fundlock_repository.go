package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
)

type pgxFundLockRepository struct {
	BaseRepository
}

// newPgxFundLockRepository creates a new instance of pgxFundLockRepository
func newPgxFundLockRepository(pool *pgxpool.Pool) *pgxFundLockRepository {
	return &pgxFundLockRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxFundLockRepository implements the fund lock repository facade
var _ portsrepo.FundLockRepositoryFacade = (*pgxFundLockRepository)(nil)

const fundLockColumns = `lock_id, user_id, amount_paise, status, lockable_kind, lockable_id, expires_at, released_at, released_by, release_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanFundLock(row pgx.Row) (models.FundLock, error) {
	var m models.FundLock
	err := row.Scan(
		&m.LockID,
		&m.UserID,
		&m.AmountPaise,
		&m.Status,
		&m.LockableKind,
		&m.LockableID,
		&m.ExpiresAt,
		&m.ReleasedAt,
		&m.ReleasedBy,
		&m.ReleaseReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveLock persists a new active lock and increments the owning wallet's
// locked balance in the same transaction.
func (r *pgxFundLockRepository) SaveLock(ctx context.Context, lock domain.FundLock) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelFundLock(lock)
	insertSQL := `
		INSERT INTO fund_locks (` + fundLockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, insertSQL,
		m.LockID,
		m.UserID,
		m.AmountPaise,
		m.Status,
		m.LockableKind,
		m.LockableID,
		m.ExpiresAt,
		m.ReleasedAt,
		m.ReleasedBy,
		m.ReleaseReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert fund lock", err)
	}

	if err := adjustWalletLockedInTx(ctx, tx, m.UserID, m.AmountPaise, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ReleaseLock transitions an active lock to the given terminal status and
// decrements the wallet's locked balance in the same transaction. The update
// is conditional on status = 'active', so only one releaser wins.
func (r *pgxFundLockRepository) ReleaseLock(ctx context.Context, lockID string, status domain.FundLockStatus, releasedBy string, reason string, now time.Time) (*domain.FundLock, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	releaseSQL := `
		UPDATE fund_locks
		SET status = $2, released_at = $3, released_by = $4, release_reason = $5, last_updated_at = $3, last_updated_by = $4
		WHERE lock_id = $1 AND status = $6
		RETURNING ` + fundLockColumns + `;
	`
	m, err := scanFundLock(tx.QueryRow(ctx, releaseSQL, lockID, string(status), now, releasedBy, reason, string(domain.LockActive)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the lock does not exist or it already left 'active'.
			if _, findErr := r.FindLockByID(ctx, lockID); findErr != nil {
				return nil, findErr
			}
			return nil, fmt.Errorf("fund lock %s is not active: %w", lockID, apperrors.ErrConflict)
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to release fund lock %s", lockID), err)
	}

	if err := adjustWalletLockedInTx(ctx, tx, m.UserID, -m.AmountPaise, releasedBy, now); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	lock := mapping.ToDomainFundLock(m)
	return &lock, nil
}

// SweepExpired expires every active lock past its expiry and decrements the
// owning wallets, all in one transaction. The status guard means a lock
// released or swept concurrently is simply not matched again.
func (r *pgxFundLockRepository) SweepExpired(ctx context.Context, now time.Time) ([]domain.FundLock, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	sweepSQL := `
		UPDATE fund_locks
		SET status = $2, released_at = $1, released_by = 'system', release_reason = 'lock expired', last_updated_at = $1, last_updated_by = 'system'
		WHERE status = $3 AND expires_at IS NOT NULL AND expires_at <= $1
		RETURNING ` + fundLockColumns + `;
	`
	rows, err := tx.Query(ctx, sweepSQL, now, string(domain.LockExpired), string(domain.LockActive))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sweep expired fund locks", err)
	}

	var modelLocks []models.FundLock
	for rows.Next() {
		m, err := scanFundLock(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan fund lock row", err)
		}
		modelLocks = append(modelLocks, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperrors.NewAppError(500, "error iterating fund lock rows", err)
	}
	rows.Close()

	expired := make([]domain.FundLock, 0, len(modelLocks))
	for _, m := range modelLocks {
		if err := adjustWalletLockedInTx(ctx, tx, m.UserID, -m.AmountPaise, "system", now); err != nil {
			return nil, err
		}
		expired = append(expired, mapping.ToDomainFundLock(m))
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return expired, nil
}

// FindLockByID retrieves a fund lock by its ID.
func (r *pgxFundLockRepository) FindLockByID(ctx context.Context, lockID string) (*domain.FundLock, error) {
	selectSQL := `SELECT ` + fundLockColumns + ` FROM fund_locks WHERE lock_id = $1;`
	m, err := scanFundLock(r.Pool.QueryRow(ctx, selectSQL, lockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find fund lock %s", lockID), err)
	}
	lock := mapping.ToDomainFundLock(m)
	return &lock, nil
}

// ListActiveLocksByUser retrieves a user's active locks, oldest first.
func (r *pgxFundLockRepository) ListActiveLocksByUser(ctx context.Context, userID string) ([]domain.FundLock, error) {
	selectSQL := `SELECT ` + fundLockColumns + ` FROM fund_locks WHERE user_id = $1 AND status = $2 ORDER BY created_at ASC;`
	rows, err := r.Pool.Query(ctx, selectSQL, userID, string(domain.LockActive))
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to query active locks for user %s", userID), err)
	}
	defer rows.Close()

	var locks []domain.FundLock
	for rows.Next() {
		m, err := scanFundLock(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fund lock row", err)
		}
		locks = append(locks, mapping.ToDomainFundLock(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating fund lock rows", err)
	}
	return locks, nil
}
