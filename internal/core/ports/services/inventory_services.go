package services

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// InventoryReaderSvc defines read operations for lots and allocation logs.
type InventoryReaderSvc interface {
	// GetLotByID retrieves a bulk purchase lot.
	GetLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error)

	// ListLots retrieves a paginated list of lots.
	ListLots(ctx context.Context, params dto.ListLotsParams) (*dto.ListLotsResponse, error)

	// GetAllocationLog retrieves a single allocation log row.
	GetAllocationLog(ctx context.Context, logID string) (*domain.ShareAllocationLog, error)

	// ListLotAllocations retrieves all allocation logs against a lot.
	ListLotAllocations(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error)
}

// InventoryWriterSvc defines the inventory movement protocol.
type InventoryWriterSvc interface {
	// CreateLot enforces the provenance gate, computes the lot totals, and
	// persists the lot together with its proving ledger entry.
	CreateLot(ctx context.Context, req dto.CreateLotRequest, userID string) (*domain.BulkPurchase, error)

	// Allocate moves value out of a lot to a destination record, writing the
	// audit log with before/after snapshots.
	Allocate(ctx context.Context, purchaseID string, req dto.AllocateRequest, userID string) (*domain.ShareAllocationLog, error)

	// ReverseAllocation marks an allocation reversed and restores the value
	// onto the source lot.
	ReverseAllocation(ctx context.Context, logID string, reason string, userID string) error
}

// InventorySvcFacade combines all inventory service interfaces.
type InventorySvcFacade interface {
	InventoryReaderSvc
	InventoryWriterSvc
}
