package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
	"github.com/paisetrail/ledger_backend/internal/utils"
)

var ErrLockNotActive = errors.New("fund lock is not active")

// fundLockService reserves wallet funds behind pending operations. The wallet's
// locked balance moves with the lock, always by the exact locked amount, in the
// same transaction as the lock row.
type fundLockService struct {
	lockRepo   portsrepo.FundLockRepositoryFacade
	walletRepo portsrepo.WalletRepositoryFacade
	defaultTTL time.Duration
	audit      *utils.PosthogClientWrapper
}

// NewFundLockService creates a new FundLockService.
func NewFundLockService(lockRepo portsrepo.FundLockRepositoryFacade, walletRepo portsrepo.WalletRepositoryFacade, defaultTTL time.Duration, audit *utils.PosthogClientWrapper) portssvc.FundLockSvcFacade {
	return &fundLockService{
		lockRepo:   lockRepo,
		walletRepo: walletRepo,
		defaultTTL: defaultTTL,
		audit:      audit,
	}
}

var _ portssvc.FundLockSvcFacade = (*fundLockService)(nil)

// LockFunds reserves an amount of a user's wallet balance. A missing expiry
// falls back to the configured default TTL.
func (s *fundLockService) LockFunds(ctx context.Context, req dto.CreateLockRequest, userID string) (*domain.FundLock, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount := domain.Paise(req.AmountPaise)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: lock amount must be positive paise", apperrors.ErrValidation)
	}

	now := time.Now().UTC()

	// The wallet must exist before the lock transaction adjusts it.
	if _, err := s.walletRepo.EnsureWallet(ctx, req.UserID, userID, now); err != nil {
		logger.Error("Failed to ensure wallet before locking", slog.String("error", err.Error()), slog.String("user_id", req.UserID))
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil {
		deadline := now.Add(s.defaultTTL)
		expiresAt = &deadline
	}

	lock := domain.FundLock{
		LockID: uuid.NewString(),
		UserID: req.UserID,
		Amount: amount,
		Status: domain.LockActive,
		Lockable: domain.LockableRef{
			Kind: domain.LockableKind(req.LockableKind),
			ID:   req.LockableID,
		},
		ExpiresAt:   expiresAt,
		AuditFields: auditFieldsFor(userID, now),
	}

	if err := s.lockRepo.SaveLock(ctx, lock); err != nil {
		logger.Error("Failed to save fund lock", slog.String("error", err.Error()), slog.String("user_id", req.UserID))
		return nil, fmt.Errorf("failed to save fund lock: %w", err)
	}

	logger.Info("Funds locked",
		slog.String("lock_id", lock.LockID),
		slog.String("user_id", req.UserID),
		slog.Int64("amount_paise", int64(amount)),
	)
	return &lock, nil
}

// ReleaseLock releases an active lock and returns the amount to the wallet's
// available balance. A lock that is already released or expired conflicts.
func (s *fundLockService) ReleaseLock(ctx context.Context, lockID string, req dto.ReleaseLockRequest, userID string) (*domain.FundLock, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	lock, err := s.lockRepo.ReleaseLock(ctx, lockID, domain.LockReleased, userID, req.Reason, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Release rejected, lock not active", slog.String("lock_id", lockID))
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrLockNotActive.Error())
		}
		logger.Error("Failed to release fund lock", slog.String("error", err.Error()), slog.String("lock_id", lockID))
		return nil, fmt.Errorf("failed to release lock %s: %w", lockID, err)
	}

	logger.Info("Fund lock released",
		slog.String("lock_id", lockID),
		slog.String("released_by", userID),
		slog.Int64("amount_paise", int64(lock.Amount)),
	)
	return lock, nil
}

// SweepExpiredLocks expires every active lock past its deadline. The underlying
// update is conditional on status, so overlapping sweeps each expire a disjoint
// set and redelivery is a no-op.
func (s *fundLockService) SweepExpiredLocks(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expired, err := s.lockRepo.SweepExpired(ctx, now)
	if err != nil {
		logger.Error("Fund lock sweep failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sweep expired locks: %w", err)
	}

	lockIDs := make([]string, len(expired))
	for i, lock := range expired {
		lockIDs[i] = lock.LockID
		s.audit.Enqueue(lock.UserID, "fund_lock_expired", map[string]any{
			"lock_id":       lock.LockID,
			"amount_paise":  int64(lock.Amount),
			"lockable_kind": string(lock.Lockable.Kind),
			"lockable_id":   lock.Lockable.ID,
			"expired_at":    now,
		})
	}

	if len(expired) > 0 {
		logger.Info("Expired fund locks swept", slog.Int("count", len(expired)))
	}
	return &dto.SweepResponse{ExpiredCount: len(expired), LockIDs: lockIDs}, nil
}

// GetLockByID retrieves a fund lock by its unique identifier.
func (s *fundLockService) GetLockByID(ctx context.Context, lockID string) (*domain.FundLock, error) {
	lock, err := s.lockRepo.FindLockByID(ctx, lockID)
	if err != nil {
		return nil, fmt.Errorf("failed to find lock %s: %w", lockID, err)
	}
	return lock, nil
}

// ListActiveLocks retrieves a user's active locks.
func (s *fundLockService) ListActiveLocks(ctx context.Context, userID string) ([]domain.FundLock, error) {
	locks, err := s.lockRepo.ListActiveLocksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active locks for user %s: %w", userID, err)
	}
	return locks, nil
}

// GetWallet retrieves a user's wallet, creating it on first access.
func (s *fundLockService) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find wallet for user %s: %w", userID, err)
	}

	wallet, err = s.walletRepo.EnsureWallet(ctx, userID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}
