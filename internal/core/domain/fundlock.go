package domain

import "time"

// FundLockStatus is the lifecycle state of a wallet reservation.
type FundLockStatus string

const (
	LockActive   FundLockStatus = "active"
	LockReleased FundLockStatus = "released"
	LockExpired  FundLockStatus = "expired"
)

// LockableKind enumerates what a fund lock can reserve money for.
type LockableKind string

const (
	LockableInvestment LockableKind = "investment"
	LockableWithdrawal LockableKind = "withdrawal"
	LockablePayment    LockableKind = "payment"
)

// LockableRef is a typed (kind, id) reference to the record the lock backs.
type LockableRef struct {
	Kind LockableKind `json:"kind"`
	ID   string       `json:"id"`
}

// FundLock reserves paise against a user's wallet. Release is one-way
// (active -> released, or active -> expired via the sweep job); a lock that is
// no longer active can never be released again.
type FundLock struct {
	LockID        string         `json:"lockID"`
	UserID        string         `json:"userID"`
	Amount        Paise          `json:"amountPaise"`
	Status        FundLockStatus `json:"status"`
	Lockable      LockableRef    `json:"lockable"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
	ReleasedAt    *time.Time     `json:"releasedAt,omitempty"`
	ReleasedBy    string         `json:"releasedBy,omitempty"`
	ReleaseReason string         `json:"releaseReason,omitempty"`
	AuditFields
}

// Wallet is the balance store a fund lock reserves against. LockedBalance moves
// only through lock create/release/expiry, always by the exact locked amount.
type Wallet struct {
	WalletID      string `json:"walletID"`
	UserID        string `json:"userID"`
	Balance       Paise  `json:"balancePaise"`
	LockedBalance Paise  `json:"lockedBalancePaise"`
	AuditFields
}
