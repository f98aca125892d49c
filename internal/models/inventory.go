package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BulkPurchase is the bulk_purchases row. value_remaining_paise only moves
// through the allocation and reversal statements, never by direct assignment.
type BulkPurchase struct {
	PurchaseID               string          `db:"purchase_id"`
	SourceType               string          `db:"source_type"`
	CompanyShareListingID    *string         `db:"company_share_listing_id"`
	ManualEntryReason        string          `db:"manual_entry_reason"`
	SourceDocumentation      string          `db:"source_documentation"`
	ActualCostPaidPaise      int64           `db:"actual_cost_paid_paise"`
	FaceValuePurchasedPaise  int64           `db:"face_value_purchased_paise"`
	ExtraAllocationPct       decimal.Decimal `db:"extra_allocation_pct"`
	TotalValueReceivedPaise  int64           `db:"total_value_received_paise"`
	ValueRemainingPaise      int64           `db:"value_remaining_paise"`
	LedgerEntryID            string          `db:"ledger_entry_id"`
	AuditFields
}

// ShareAllocationLog is the share_allocation_logs row. Only the reversal marker
// columns are ever updated, exactly once, guarded by is_reversed = false.
type ShareAllocationLog struct {
	LogID                string     `db:"log_id"`
	BulkPurchaseID       string     `db:"bulk_purchase_id"`
	AllocatableKind      string     `db:"allocatable_kind"`
	AllocatableID        string     `db:"allocatable_id"`
	ValueAllocatedPaise  int64      `db:"value_allocated_paise"`
	UnitsAllocated       int64      `db:"units_allocated"`
	InventoryBeforePaise int64      `db:"inventory_before_paise"`
	InventoryAfterPaise  int64      `db:"inventory_after_paise"`
	LedgerEntryID        string     `db:"ledger_entry_id"`
	IsReversed           bool       `db:"is_reversed"`
	ReversalReason       string     `db:"reversal_reason"`
	ReversedAt           *time.Time `db:"reversed_at"`
	ReversalLogID        *string    `db:"reversal_log_id"`
	AuditFields
}
