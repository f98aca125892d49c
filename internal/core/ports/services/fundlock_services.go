package services

import (
	"context"
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// FundLockReaderSvc defines read operations for fund locks and wallets.
type FundLockReaderSvc interface {
	// GetLockByID retrieves a fund lock by its unique identifier.
	GetLockByID(ctx context.Context, lockID string) (*domain.FundLock, error)

	// ListActiveLocks retrieves a user's active locks.
	ListActiveLocks(ctx context.Context, userID string) ([]domain.FundLock, error)

	// GetWallet retrieves a user's wallet, creating it on first access.
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
}

// FundLockWriterSvc defines the fund reservation lifecycle.
type FundLockWriterSvc interface {
	// LockFunds reserves an amount of a user's wallet balance.
	LockFunds(ctx context.Context, req dto.CreateLockRequest, userID string) (*domain.FundLock, error)

	// ReleaseLock releases an active lock and returns the amount to the
	// wallet's available balance. Releasing a non-active lock is a conflict.
	ReleaseLock(ctx context.Context, lockID string, req dto.ReleaseLockRequest, userID string) (*domain.FundLock, error)

	// SweepExpiredLocks expires every active lock past its deadline. Safe to
	// run repeatedly.
	SweepExpiredLocks(ctx context.Context, now time.Time) (*dto.SweepResponse, error)
}

// FundLockSvcFacade combines all fund lock service interfaces.
type FundLockSvcFacade interface {
	FundLockReaderSvc
	FundLockWriterSvc
}
