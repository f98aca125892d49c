package dto

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLotRequest defines the payload for recording a bulk share purchase.
// The provenance fields are gated in the service: a listing source requires the
// listing reference, a manual source requires reason plus documentation.
type CreateLotRequest struct {
	SourceType                string          `json:"sourceType" binding:"required,oneof=company_listing manual_entry"`
	CompanyShareListingID     *string         `json:"companyShareListingID"`
	ManualEntryReason         string          `json:"manualEntryReason"`
	SourceDocumentation       string          `json:"sourceDocumentation"`
	ActualCostPaidPaise       int64           `json:"actualCostPaidPaise" binding:"required,gt=0"`
	FaceValuePurchasedPaise   int64           `json:"faceValuePurchasedPaise" binding:"required,gt=0"`
	ExtraAllocationPercentage decimal.Decimal `json:"extraAllocationPercentage"`
	Description               string          `json:"description"`
}

// LotResponse defines the data returned for a bulk purchase lot.
type LotResponse struct {
	PurchaseID                string          `json:"purchaseID"`
	SourceType                string          `json:"sourceType"`
	CompanyShareListingID     *string         `json:"companyShareListingID,omitempty"`
	ManualEntryReason         string          `json:"manualEntryReason,omitempty"`
	SourceDocumentation       string          `json:"sourceDocumentation,omitempty"`
	ActualCostPaidPaise       int64           `json:"actualCostPaidPaise"`
	FaceValuePurchasedPaise   int64           `json:"faceValuePurchasedPaise"`
	ExtraAllocationPercentage decimal.Decimal `json:"extraAllocationPercentage"`
	TotalValueReceivedPaise   int64           `json:"totalValueReceivedPaise"`
	ValueRemainingPaise       int64           `json:"valueRemainingPaise"`
	DiscountPercentage        decimal.Decimal `json:"discountPercentage"`
	State                     string          `json:"state"`
	LedgerEntryID             string          `json:"ledgerEntryID"`
	CreatedAt                 time.Time       `json:"createdAt"`
	CreatedBy                 string          `json:"createdBy"`
}

// AllocateRequest defines the payload for allocating value out of a lot to a
// destination investment record.
type AllocateRequest struct {
	AllocatableKind string `json:"allocatableKind" binding:"required,oneof=investment bonus_grant"`
	AllocatableID   string `json:"allocatableID" binding:"required"`
	AmountPaise     int64  `json:"amountPaise" binding:"required,gt=0"`
	UnitsAllocated  int64  `json:"unitsAllocated" binding:"required,gt=0"`
}

// ReverseAllocationRequest defines the payload for reversing an allocation.
type ReverseAllocationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AllocationLogResponse defines the data returned for one allocation log row.
type AllocationLogResponse struct {
	LogID                string     `json:"logID"`
	BulkPurchaseID       string     `json:"bulkPurchaseID"`
	AllocatableKind      string     `json:"allocatableKind"`
	AllocatableID        string     `json:"allocatableID"`
	ValueAllocatedPaise  int64      `json:"valueAllocatedPaise"`
	UnitsAllocated       int64      `json:"unitsAllocated"`
	InventoryBeforePaise int64      `json:"inventoryBeforePaise"`
	InventoryAfterPaise  int64      `json:"inventoryAfterPaise"`
	LedgerEntryID        string     `json:"ledgerEntryID"`
	IsReversed           bool       `json:"isReversed"`
	ReversalReason       string     `json:"reversalReason,omitempty"`
	ReversedAt           *time.Time `json:"reversedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	CreatedBy            string     `json:"createdBy"`
}

// ListLotsParams holds query parameters for listing lots.
type ListLotsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListLotsResponse wraps a page of lots.
type ListLotsResponse struct {
	Lots      []LotResponse `json:"lots"`
	NextToken *string       `json:"nextToken,omitempty"`
}

// ToLotResponse converts a domain.BulkPurchase to LotResponse.
func ToLotResponse(b *domain.BulkPurchase) LotResponse {
	return LotResponse{
		PurchaseID:                b.PurchaseID,
		SourceType:                string(b.Provenance.SourceType),
		CompanyShareListingID:     b.Provenance.CompanyShareListingID,
		ManualEntryReason:         b.Provenance.ManualEntryReason,
		SourceDocumentation:       b.Provenance.SourceDocumentation,
		ActualCostPaidPaise:       int64(b.ActualCostPaid),
		FaceValuePurchasedPaise:   int64(b.FaceValuePurchased),
		ExtraAllocationPercentage: b.ExtraAllocationPct,
		TotalValueReceivedPaise:   int64(b.TotalValueReceived),
		ValueRemainingPaise:       int64(b.ValueRemaining),
		DiscountPercentage:        domain.ComputeDiscountPercentage(b.ActualCostPaid, b.FaceValuePurchased),
		State:                     string(b.State()),
		LedgerEntryID:             b.LedgerEntryID,
		CreatedAt:                 b.CreatedAt,
		CreatedBy:                 b.CreatedBy,
	}
}

// ToAllocationLogResponse converts a domain.ShareAllocationLog to its DTO.
func ToAllocationLogResponse(l *domain.ShareAllocationLog) AllocationLogResponse {
	return AllocationLogResponse{
		LogID:                l.LogID,
		BulkPurchaseID:       l.BulkPurchaseID,
		AllocatableKind:      string(l.Allocatable.Kind),
		AllocatableID:        l.Allocatable.ID,
		ValueAllocatedPaise:  int64(l.ValueAllocated),
		UnitsAllocated:       l.UnitsAllocated,
		InventoryBeforePaise: int64(l.InventoryBefore),
		InventoryAfterPaise:  int64(l.InventoryAfter),
		LedgerEntryID:        l.LedgerEntryID,
		IsReversed:           l.IsReversed,
		ReversalReason:       l.ReversalReason,
		ReversedAt:           l.ReversedAt,
		CreatedAt:            l.CreatedAt,
		CreatedBy:            l.CreatedBy,
	}
}
