package mapping

import (
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:         d.EntryID,
		ReferenceType:   string(d.ReferenceType),
		ReferenceID:     d.ReferenceID,
		Description:     d.Description,
		EntryDate:       d.EntryDate,
		IsReversal:      d.IsReversal,
		ReversesEntryID: d.ReversesEntryID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:         m.EntryID,
		ReferenceType:   domain.ReferenceType(m.ReferenceType),
		ReferenceID:     m.ReferenceID,
		Description:     m.Description,
		EntryDate:       m.EntryDate,
		IsReversal:      m.IsReversal,
		ReversesEntryID: m.ReversesEntryID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain LedgerLine to a model LedgerLine
func ToModelLine(d domain.LedgerLine) models.LedgerLine {
	return models.LedgerLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		Direction:   string(d.Direction),
		AmountPaise: int64(d.Amount),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLine converts a model LedgerLine to a domain LedgerLine
func ToDomainLine(m models.LedgerLine) domain.LedgerLine {
	return domain.LedgerLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		Direction:   domain.EntryDirection(m.Direction),
		Amount:      domain.Paise(m.AmountPaise),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineSlice converts a slice of model LedgerLines to domain LedgerLines
func ToDomainLineSlice(ms []models.LedgerLine) []domain.LedgerLine {
	ds := make([]domain.LedgerLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLine(m)
	}
	return ds
}
