package dto

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLockRequest defines the payload for reserving wallet funds.
// A nil ExpiresAt falls back to the configured default lock TTL.
type CreateLockRequest struct {
	UserID       string     `json:"userID" binding:"required"`
	AmountPaise  int64      `json:"amountPaise" binding:"required,gt=0"`
	LockableKind string     `json:"lockableKind" binding:"required,oneof=investment withdrawal payment"`
	LockableID   string     `json:"lockableID" binding:"required"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// ReleaseLockRequest defines the payload for releasing an active lock.
type ReleaseLockRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LockResponse defines the data returned for a fund lock.
type LockResponse struct {
	LockID        string     `json:"lockID"`
	UserID        string     `json:"userID"`
	AmountPaise   int64      `json:"amountPaise"`
	Status        string     `json:"status"`
	LockableKind  string     `json:"lockableKind"`
	LockableID    string     `json:"lockableID"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	ReleasedAt    *time.Time `json:"releasedAt,omitempty"`
	ReleasedBy    string     `json:"releasedBy,omitempty"`
	ReleaseReason string     `json:"releaseReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID           string          `json:"walletID"`
	UserID             string          `json:"userID"`
	BalancePaise       int64           `json:"balancePaise"`
	LockedBalancePaise int64           `json:"lockedBalancePaise"`
	BalanceRupees      decimal.Decimal `json:"balanceRupees"`
}

// SweepResponse reports the outcome of an expiry sweep.
type SweepResponse struct {
	ExpiredCount int      `json:"expiredCount"`
	LockIDs      []string `json:"lockIDs"`
}

// ToLockResponse converts a domain.FundLock to LockResponse.
func ToLockResponse(l *domain.FundLock) LockResponse {
	return LockResponse{
		LockID:        l.LockID,
		UserID:        l.UserID,
		AmountPaise:   int64(l.Amount),
		Status:        string(l.Status),
		LockableKind:  string(l.Lockable.Kind),
		LockableID:    l.Lockable.ID,
		ExpiresAt:     l.ExpiresAt,
		ReleasedAt:    l.ReleasedAt,
		ReleasedBy:    l.ReleasedBy,
		ReleaseReason: l.ReleaseReason,
		CreatedAt:     l.CreatedAt,
	}
}

// ToWalletResponse converts a domain.Wallet to WalletResponse.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:           w.WalletID,
		UserID:             w.UserID,
		BalancePaise:       int64(w.Balance),
		LockedBalancePaise: int64(w.LockedBalance),
		BalanceRupees:      w.Balance.Rupees(),
	}
}
