package domain

import (
	"fmt"
	"time"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// LotSourceType names where a bulk purchase's shares came from.
type LotSourceType string

const (
	SourceCompanyListing LotSourceType = "company_listing"
	SourceManualEntry    LotSourceType = "manual_entry"
)

// LotState is derived from ValueRemaining; no status column is stored.
type LotState string

const (
	LotCreated            LotState = "created"
	LotPartiallyAllocated LotState = "partially_allocated"
	LotFullyAllocated     LotState = "fully_allocated"
)

// LotProvenance is the documented origin of a bulk purchase. Creation is gated
// on it resolving to either an approved listing reference or an explicit manual
// justification with supporting documentation.
type LotProvenance struct {
	SourceType            LotSourceType `json:"sourceType"`
	CompanyShareListingID *string       `json:"companyShareListingID,omitempty"`
	ManualEntryReason     string        `json:"manualEntryReason,omitempty"`
	SourceDocumentation   string        `json:"sourceDocumentation,omitempty"`
}

// Validate enforces the provenance gate.
func (p LotProvenance) Validate() error {
	switch p.SourceType {
	case SourceCompanyListing:
		if p.CompanyShareListingID == nil || *p.CompanyShareListingID == "" {
			return fmt.Errorf("%w: company_listing source requires a company share listing reference", apperrors.ErrProvenance)
		}
	case SourceManualEntry:
		if p.ManualEntryReason == "" || p.SourceDocumentation == "" {
			return fmt.Errorf("%w: manual_entry source requires both a reason and supporting documentation", apperrors.ErrProvenance)
		}
	case "":
		return fmt.Errorf("%w: source type is required", apperrors.ErrProvenance)
	default:
		return fmt.Errorf("%w: unknown source type %q", apperrors.ErrProvenance, p.SourceType)
	}
	return nil
}

// BulkPurchase is one inventory lot of shares acquired for later allocation to
// investors. ValueRemaining only ever decreases through allocation and increases
// through allocation reversal; it is never user-settable.
type BulkPurchase struct {
	PurchaseID         string        `json:"purchaseID"`
	Provenance         LotProvenance `json:"provenance"`
	ActualCostPaid     Paise         `json:"actualCostPaidPaise"`
	FaceValuePurchased Paise         `json:"faceValuePurchasedPaise"`
	ExtraAllocationPct decimal.Decimal `json:"extraAllocationPercentage"`
	TotalValueReceived Paise         `json:"totalValueReceivedPaise"`
	ValueRemaining     Paise         `json:"valueRemainingPaise"`
	LedgerEntryID      string        `json:"ledgerEntryID"` // Proof of the capital outflow
	AuditFields
}

// State derives the lot lifecycle state from the remaining pool.
func (b BulkPurchase) State() LotState {
	switch {
	case b.ValueRemaining == b.TotalValueReceived:
		return LotCreated
	case b.ValueRemaining == 0:
		return LotFullyAllocated
	default:
		return LotPartiallyAllocated
	}
}

// ComputeTotalValueReceived applies the extra allocation percentage to the face
// value: face * (1 + pct/100), truncated to whole paise.
func ComputeTotalValueReceived(faceValue Paise, extraPct decimal.Decimal) Paise {
	face := decimal.NewFromInt(int64(faceValue))
	multiplier := decimal.NewFromInt(1).Add(extraPct.Div(decimal.NewFromInt(100)))
	return Paise(face.Mul(multiplier).IntPart())
}

// ComputeDiscountPercentage returns (face - cost) / face * 100 as a display
// metric. Zero face value yields zero rather than dividing by it.
func ComputeDiscountPercentage(costPaid, faceValue Paise) decimal.Decimal {
	if faceValue == 0 {
		return decimal.Zero
	}
	diff := decimal.NewFromInt(int64(faceValue - costPaid))
	return diff.Div(decimal.NewFromInt(int64(faceValue))).Mul(decimal.NewFromInt(100))
}

// AllocatableKind enumerates the destination record types an allocation can
// point at, replacing a runtime polymorphic relation with a closed set.
type AllocatableKind string

const (
	AllocatableInvestment AllocatableKind = "investment"
	AllocatableBonus      AllocatableKind = "bonus_grant"
)

// AllocatableRef is a typed (kind, id) reference to the destination record.
type AllocatableRef struct {
	Kind AllocatableKind `json:"kind"`
	ID   string          `json:"id"`
}

// ShareAllocationLog is the audit record of one inventory movement out of a lot.
// Core fields are locked on creation; only the reversal marker fields may ever
// change, exactly once.
type ShareAllocationLog struct {
	LogID           string         `json:"logID"`
	BulkPurchaseID  string         `json:"bulkPurchaseID"`
	Allocatable     AllocatableRef `json:"allocatable"`
	ValueAllocated  Paise          `json:"valueAllocatedPaise"`
	UnitsAllocated  int64          `json:"unitsAllocated"`
	InventoryBefore Paise          `json:"inventoryBeforePaise"` // Lot pool before the decrement
	InventoryAfter  Paise          `json:"inventoryAfterPaise"`  // Lot pool after the decrement
	LedgerEntryID   string         `json:"ledgerEntryID"`        // Proof of cash receipt
	IsReversed      bool           `json:"isReversed"`
	ReversalReason  string         `json:"reversalReason,omitempty"`
	ReversedAt      *time.Time     `json:"reversedAt,omitempty"`
	ReversalLogID   *string        `json:"reversalLogID,omitempty"`
	AuditFields
}
