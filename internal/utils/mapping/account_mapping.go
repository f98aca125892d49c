package mapping

import (
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelAccount converts a domain LedgerAccount to a model LedgerAccount
func ToModelAccount(d domain.LedgerAccount) models.LedgerAccount {
	return models.LedgerAccount{
		AccountID:   d.AccountID,
		Code:        d.Code,
		Name:        d.Name,
		AccountType: string(d.Type),
		IsSystem:    d.IsSystem,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model LedgerAccount to a domain LedgerAccount
func ToDomainAccount(m models.LedgerAccount) domain.LedgerAccount {
	return domain.LedgerAccount{
		AccountID:   m.AccountID,
		Code:        m.Code,
		Name:        m.Name,
		Type:        domain.AccountType(m.AccountType),
		IsSystem:    m.IsSystem,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
