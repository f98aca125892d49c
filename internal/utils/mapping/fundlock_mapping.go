package mapping

import (
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelFundLock converts a domain FundLock to a model FundLock
func ToModelFundLock(d domain.FundLock) models.FundLock {
	return models.FundLock{
		LockID:        d.LockID,
		UserID:        d.UserID,
		AmountPaise:   int64(d.Amount),
		Status:        string(d.Status),
		LockableKind:  string(d.Lockable.Kind),
		LockableID:    d.Lockable.ID,
		ExpiresAt:     d.ExpiresAt,
		ReleasedAt:    d.ReleasedAt,
		ReleasedBy:    d.ReleasedBy,
		ReleaseReason: d.ReleaseReason,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFundLock converts a model FundLock to a domain FundLock
func ToDomainFundLock(m models.FundLock) domain.FundLock {
	return domain.FundLock{
		LockID: m.LockID,
		UserID: m.UserID,
		Amount: domain.Paise(m.AmountPaise),
		Status: domain.FundLockStatus(m.Status),
		Lockable: domain.LockableRef{
			Kind: domain.LockableKind(m.LockableKind),
			ID:   m.LockableID,
		},
		ExpiresAt:     m.ExpiresAt,
		ReleasedAt:    m.ReleasedAt,
		ReleasedBy:    m.ReleasedBy,
		ReleaseReason: m.ReleaseReason,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelWallet converts a domain Wallet to a model Wallet
func ToModelWallet(d domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID:           d.WalletID,
		UserID:             d.UserID,
		BalancePaise:       int64(d.Balance),
		LockedBalancePaise: int64(d.LockedBalance),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWallet converts a model Wallet to a domain Wallet
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Balance:       domain.Paise(m.BalancePaise),
		LockedBalance: domain.Paise(m.LockedBalancePaise),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
