package models

import "time"

// FundLock is the fund_locks row. Release and expiry are conditional updates
// guarded by status = 'active'.
type FundLock struct {
	LockID        string     `db:"lock_id"`
	UserID        string     `db:"user_id"`
	AmountPaise   int64      `db:"amount_paise"`
	Status        string     `db:"status"`
	LockableKind  string     `db:"lockable_kind"`
	LockableID    string     `db:"lockable_id"`
	ExpiresAt     *time.Time `db:"expires_at"`
	ReleasedAt    *time.Time `db:"released_at"`
	ReleasedBy    string     `db:"released_by"`
	ReleaseReason string     `db:"release_reason"`
	AuditFields
}

// Wallet is the wallets row. locked_balance_paise only moves with a fund lock,
// in the same transaction, by the exact locked amount.
type Wallet struct {
	WalletID           string `db:"wallet_id"`
	UserID             string `db:"user_id"`
	BalancePaise       int64  `db:"balance_paise"`
	LockedBalancePaise int64  `db:"locked_balance_paise"`
	AuditFields
}
