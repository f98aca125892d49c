package mapping

import (
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelBulkPurchase converts a domain BulkPurchase to a model BulkPurchase
func ToModelBulkPurchase(d domain.BulkPurchase) models.BulkPurchase {
	return models.BulkPurchase{
		PurchaseID:              d.PurchaseID,
		SourceType:              string(d.Provenance.SourceType),
		CompanyShareListingID:   d.Provenance.CompanyShareListingID,
		ManualEntryReason:       d.Provenance.ManualEntryReason,
		SourceDocumentation:     d.Provenance.SourceDocumentation,
		ActualCostPaidPaise:     int64(d.ActualCostPaid),
		FaceValuePurchasedPaise: int64(d.FaceValuePurchased),
		ExtraAllocationPct:      d.ExtraAllocationPct,
		TotalValueReceivedPaise: int64(d.TotalValueReceived),
		ValueRemainingPaise:     int64(d.ValueRemaining),
		LedgerEntryID:           d.LedgerEntryID,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBulkPurchase converts a model BulkPurchase to a domain BulkPurchase
func ToDomainBulkPurchase(m models.BulkPurchase) domain.BulkPurchase {
	return domain.BulkPurchase{
		PurchaseID: m.PurchaseID,
		Provenance: domain.LotProvenance{
			SourceType:            domain.LotSourceType(m.SourceType),
			CompanyShareListingID: m.CompanyShareListingID,
			ManualEntryReason:     m.ManualEntryReason,
			SourceDocumentation:   m.SourceDocumentation,
		},
		ActualCostPaid:     domain.Paise(m.ActualCostPaidPaise),
		FaceValuePurchased: domain.Paise(m.FaceValuePurchasedPaise),
		ExtraAllocationPct: m.ExtraAllocationPct,
		TotalValueReceived: domain.Paise(m.TotalValueReceivedPaise),
		ValueRemaining:     domain.Paise(m.ValueRemainingPaise),
		LedgerEntryID:      m.LedgerEntryID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAllocationLog converts a domain ShareAllocationLog to its model
func ToModelAllocationLog(d domain.ShareAllocationLog) models.ShareAllocationLog {
	return models.ShareAllocationLog{
		LogID:                d.LogID,
		BulkPurchaseID:       d.BulkPurchaseID,
		AllocatableKind:      string(d.Allocatable.Kind),
		AllocatableID:        d.Allocatable.ID,
		ValueAllocatedPaise:  int64(d.ValueAllocated),
		UnitsAllocated:       d.UnitsAllocated,
		InventoryBeforePaise: int64(d.InventoryBefore),
		InventoryAfterPaise:  int64(d.InventoryAfter),
		LedgerEntryID:        d.LedgerEntryID,
		IsReversed:           d.IsReversed,
		ReversalReason:       d.ReversalReason,
		ReversedAt:           d.ReversedAt,
		ReversalLogID:        d.ReversalLogID,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocationLog converts a model ShareAllocationLog to its domain type
func ToDomainAllocationLog(m models.ShareAllocationLog) domain.ShareAllocationLog {
	return domain.ShareAllocationLog{
		LogID:          m.LogID,
		BulkPurchaseID: m.BulkPurchaseID,
		Allocatable: domain.AllocatableRef{
			Kind: domain.AllocatableKind(m.AllocatableKind),
			ID:   m.AllocatableID,
		},
		ValueAllocated:  domain.Paise(m.ValueAllocatedPaise),
		UnitsAllocated:  m.UnitsAllocated,
		InventoryBefore: domain.Paise(m.InventoryBeforePaise),
		InventoryAfter:  domain.Paise(m.InventoryAfterPaise),
		LedgerEntryID:   m.LedgerEntryID,
		IsReversed:      m.IsReversed,
		ReversalReason:  m.ReversalReason,
		ReversedAt:      m.ReversedAt,
		ReversalLogID:   m.ReversalLogID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
