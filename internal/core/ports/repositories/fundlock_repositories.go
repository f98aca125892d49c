package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// FundLockReader defines read operations for fund locks.
type FundLockReader interface {
	// FindLockByID retrieves a fund lock by its unique identifier.
	FindLockByID(ctx context.Context, lockID string) (*domain.FundLock, error)

	// ListActiveLocksByUser retrieves a user's active locks.
	ListActiveLocksByUser(ctx context.Context, userID string) ([]domain.FundLock, error)
}

// FundLockWriter defines write operations for fund locks. Release and expiry
// are conditional updates on status = 'active', which makes them idempotent
// under concurrent invocation: only one writer wins per lock.
type FundLockWriter interface {
	// SaveLock persists a new active lock and increments the owning wallet's
	// locked balance in the same transaction.
	SaveLock(ctx context.Context, lock domain.FundLock) error

	// ReleaseLock transitions an active lock to the given terminal status
	// (released or expired) and decrements the wallet's locked balance by the
	// exact locked amount in the same transaction. Returns ErrConflict when the
	// lock is no longer active.
	ReleaseLock(ctx context.Context, lockID string, status domain.FundLockStatus, releasedBy string, reason string, now time.Time) (*domain.FundLock, error)

	// SweepExpired expires every active lock past its expiry, decrementing the
	// owning wallets, and returns the locks it expired. Safe to run
	// concurrently; each lock is expired by at most one sweep.
	SweepExpired(ctx context.Context, now time.Time) ([]domain.FundLock, error)
}

// FundLockRepositoryFacade combines all fund lock repository interfaces.
type FundLockRepositoryFacade interface {
	FundLockReader
	FundLockWriter
}

// WalletReader defines read operations for wallets.
type WalletReader interface {
	// FindWalletByUserID retrieves a user's wallet.
	FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
}

// WalletWriter defines write operations for wallets.
type WalletWriter interface {
	// EnsureWallet creates the user's wallet if it does not exist yet and
	// returns it.
	EnsureWallet(ctx context.Context, userID string, createdBy string, now time.Time) (*domain.Wallet, error)

	// AdjustLockedBalanceInTx moves the wallet's locked balance by delta paise
	// inside a caller-owned transaction, locking the wallet row.
	AdjustLockedBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, delta domain.Paise, updatedBy string, now time.Time) error
}

// WalletRepositoryFacade combines all wallet repository interfaces.
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
}
