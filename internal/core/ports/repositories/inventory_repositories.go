package repositories

import (
	"context"
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// InventoryReader defines read operations for bulk purchase lots and their
// allocation logs.
type InventoryReader interface {
	// FindLotByID retrieves a bulk purchase lot by its unique identifier.
	FindLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error)

	// ListLots retrieves a paginated list of lots using token-based pagination.
	ListLots(ctx context.Context, limit int, nextToken *string) ([]domain.BulkPurchase, *string, error)

	// FindAllocationLogByID retrieves a single allocation log row.
	FindAllocationLogByID(ctx context.Context, logID string) (*domain.ShareAllocationLog, error)

	// FindAllocationLogsByLot retrieves all allocation logs against a lot,
	// oldest first.
	FindAllocationLogsByLot(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error)
}

// InventoryWriter defines the write protocol for lots. Lots are mutated only
// through allocation and reversal; value_remaining is never set directly.
type InventoryWriter interface {
	// SaveLotWithEntry persists the lot together with its proving ledger entry
	// and lines in one database transaction. A lot must never become visible
	// without the entry that proves the capital outflow.
	SaveLotWithEntry(ctx context.Context, lot domain.BulkPurchase, entry domain.LedgerEntry, lines []domain.LedgerLine) error

	// Allocate locks the lot row, verifies the requested amount against
	// value_remaining, decrements the pool and inserts the allocation log with
	// before/after snapshots, all in one transaction. The proving cash-receipt
	// entry and lines are inserted in the same transaction. Returns the
	// completed log, or ErrInsufficientInventory without any partial effect.
	Allocate(ctx context.Context, log domain.ShareAllocationLog, entry domain.LedgerEntry, lines []domain.LedgerLine) (*domain.ShareAllocationLog, error)

	// ReverseAllocation marks a log reversed (conditional on it not being
	// reversed already), restores the allocated amount onto the lot, and
	// inserts the compensating ledger entry, all in the same transaction.
	// The log's core allocation fields are never altered.
	ReverseAllocation(ctx context.Context, logID string, reason string, reversedBy string, now time.Time, reversal domain.LedgerEntry, lines []domain.LedgerLine) error
}

// InventoryRepositoryFacade combines all inventory repository interfaces.
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryWriter
}
