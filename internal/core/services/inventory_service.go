package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
)

var ErrAllocationReversed = errors.New("allocation log has already been reversed")

// inventoryService manages bulk purchase lots and the allocation audit trail.
// Every inventory movement is committed in the same transaction as the ledger
// entry proving the money side of it.
type inventoryService struct {
	invRepo    portsrepo.InventoryRepositoryFacade
	accountSvc portssvc.AccountSvcFacade
	ledgerSvc  portssvc.LedgerSvcFacade
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(invRepo portsrepo.InventoryRepositoryFacade, accountSvc portssvc.AccountSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.InventorySvcFacade {
	return &inventoryService{
		invRepo:    invRepo,
		accountSvc: accountSvc,
		ledgerSvc:  ledgerSvc,
	}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

func (s *inventoryService) systemAccount(ctx context.Context, code string) (*domain.LedgerAccount, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: system account %s missing", apperrors.ErrDataIntegrity, code)
	}
	return account, nil
}

func auditFieldsFor(userID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

// CreateLot enforces the provenance gate and persists the lot together with the
// ledger entry proving the capital outflow, in one transaction. The inventory
// account is debited at received value; the gap to the cost paid lands on the
// purchase discount (or premium) account so the entry stays balanced.
func (s *inventoryService) CreateLot(ctx context.Context, req dto.CreateLotRequest, userID string) (*domain.BulkPurchase, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	provenance := domain.LotProvenance{
		SourceType:            domain.LotSourceType(req.SourceType),
		CompanyShareListingID: req.CompanyShareListingID,
		ManualEntryReason:     req.ManualEntryReason,
		SourceDocumentation:   req.SourceDocumentation,
	}
	if err := provenance.Validate(); err != nil {
		logger.Warn("Lot creation rejected by provenance gate", slog.String("source_type", req.SourceType), slog.String("error", err.Error()))
		return nil, err
	}

	costPaid := domain.Paise(req.ActualCostPaidPaise)
	faceValue := domain.Paise(req.FaceValuePurchasedPaise)
	totalReceived := domain.ComputeTotalValueReceived(faceValue, req.ExtraAllocationPercentage)
	if totalReceived <= 0 {
		return nil, fmt.Errorf("%w: computed total value received must be positive", apperrors.ErrValidation)
	}

	inventoryAcc, err := s.systemAccount(ctx, domain.AccountShareInventory)
	if err != nil {
		return nil, err
	}
	bankAcc, err := s.systemAccount(ctx, domain.AccountBank)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	purchaseID := uuid.NewString()
	entryID := uuid.NewString()

	lines := []domain.LedgerLine{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   inventoryAcc.AccountID,
			Direction:   domain.Debit,
			Amount:      totalReceived,
			AuditFields: auditFieldsFor(userID, now),
		},
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   bankAcc.AccountID,
			Direction:   domain.Credit,
			Amount:      costPaid,
			AuditFields: auditFieldsFor(userID, now),
		},
	}

	// Discount bought below received value is income; paying above it is an
	// expense. Either way the balancing line carries the exact paise gap.
	switch {
	case totalReceived > costPaid:
		discountAcc, err := s.systemAccount(ctx, domain.AccountPurchaseDiscount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.LedgerLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   discountAcc.AccountID,
			Direction:   domain.Credit,
			Amount:      totalReceived - costPaid,
			AuditFields: auditFieldsFor(userID, now),
		})
	case costPaid > totalReceived:
		premiumAcc, err := s.systemAccount(ctx, domain.AccountPurchasePremium)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.LedgerLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   premiumAcc.AccountID,
			Direction:   domain.Debit,
			Amount:      costPaid - totalReceived,
			AuditFields: auditFieldsFor(userID, now),
		})
	}

	if !domain.IsBalanced(lines) {
		debits, credits := domain.SumByDirection(lines)
		return nil, fmt.Errorf("%w: lot entry debits %d != credits %d", apperrors.ErrUnbalancedEntry, debits, credits)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Bulk purchase of shares, face value %d paise", faceValue)
	}

	entry := domain.LedgerEntry{
		EntryID:       entryID,
		ReferenceType: domain.RefBulkPurchase,
		ReferenceID:   purchaseID,
		Description:   description,
		EntryDate:     now,
		AuditFields:   auditFieldsFor(userID, now),
	}

	lot := domain.BulkPurchase{
		PurchaseID:         purchaseID,
		Provenance:         provenance,
		ActualCostPaid:     costPaid,
		FaceValuePurchased: faceValue,
		ExtraAllocationPct: req.ExtraAllocationPercentage,
		TotalValueReceived: totalReceived,
		ValueRemaining:     totalReceived,
		LedgerEntryID:      entryID,
		AuditFields:        auditFieldsFor(userID, now),
	}

	if err := s.invRepo.SaveLotWithEntry(ctx, lot, entry, lines); err != nil {
		logger.Error("Failed to save lot with proving entry", slog.String("error", err.Error()), slog.String("purchase_id", purchaseID))
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}

	logger.Info("Bulk purchase lot created",
		slog.String("purchase_id", purchaseID),
		slog.String("entry_id", entryID),
		slog.Int64("total_value_received_paise", int64(totalReceived)),
	)
	return &lot, nil
}

// Allocate moves value out of a lot to a destination record. The repository
// locks the lot row, verifies the remaining pool and snapshots it before and
// after the decrement, with the proving cash entry in the same transaction.
func (s *inventoryService) Allocate(ctx context.Context, purchaseID string, req dto.AllocateRequest, userID string) (*domain.ShareAllocationLog, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount := domain.Paise(req.AmountPaise)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: allocation amount must be positive paise", apperrors.ErrValidation)
	}

	kind := domain.AllocatableKind(req.AllocatableKind)
	if kind != domain.AllocatableInvestment && kind != domain.AllocatableBonus {
		return nil, fmt.Errorf("%w: unknown allocatable kind %q", apperrors.ErrValidation, req.AllocatableKind)
	}

	inventoryAcc, err := s.systemAccount(ctx, domain.AccountShareInventory)
	if err != nil {
		return nil, err
	}

	// Investments bring cash in against the inventory going out; bonus grants
	// give inventory away as an expense with no cash side.
	var debitAccountID string
	referenceType := domain.RefInvestment
	if kind == domain.AllocatableBonus {
		bonusAcc, err := s.systemAccount(ctx, domain.AccountBonusExpense)
		if err != nil {
			return nil, err
		}
		debitAccountID = bonusAcc.AccountID
		referenceType = domain.RefBonusCredit
	} else {
		bankAcc, err := s.systemAccount(ctx, domain.AccountBank)
		if err != nil {
			return nil, err
		}
		debitAccountID = bankAcc.AccountID
	}

	now := time.Now().UTC()
	logID := uuid.NewString()
	entryID := uuid.NewString()

	lines := []domain.LedgerLine{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   debitAccountID,
			Direction:   domain.Debit,
			Amount:      amount,
			AuditFields: auditFieldsFor(userID, now),
		},
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   inventoryAcc.AccountID,
			Direction:   domain.Credit,
			Amount:      amount,
			AuditFields: auditFieldsFor(userID, now),
		},
	}

	entry := domain.LedgerEntry{
		EntryID:       entryID,
		ReferenceType: referenceType,
		ReferenceID:   req.AllocatableID,
		Description:   fmt.Sprintf("Allocation of %d paise from lot %s", amount, purchaseID),
		EntryDate:     now,
		AuditFields:   auditFieldsFor(userID, now),
	}

	log := domain.ShareAllocationLog{
		LogID:          logID,
		BulkPurchaseID: purchaseID,
		Allocatable:    domain.AllocatableRef{Kind: kind, ID: req.AllocatableID},
		ValueAllocated: amount,
		UnitsAllocated: req.UnitsAllocated,
		LedgerEntryID:  entryID,
		AuditFields:    auditFieldsFor(userID, now),
	}

	completed, err := s.invRepo.Allocate(ctx, log, entry, lines)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			logger.Warn("Allocation rejected, insufficient inventory",
				slog.String("purchase_id", purchaseID),
				slog.Int64("requested_paise", int64(amount)),
			)
			return nil, err
		}
		logger.Error("Failed to allocate from lot", slog.String("error", err.Error()), slog.String("purchase_id", purchaseID))
		return nil, fmt.Errorf("failed to allocate from lot %s: %w", purchaseID, err)
	}

	logger.Info("Allocation recorded",
		slog.String("log_id", completed.LogID),
		slog.String("purchase_id", purchaseID),
		slog.Int64("inventory_before_paise", int64(completed.InventoryBefore)),
		slog.Int64("inventory_after_paise", int64(completed.InventoryAfter)),
	)
	return completed, nil
}

// ReverseAllocation marks a log reversed exactly once, restores the value onto
// the source lot, and reverses the proving cash entry. The restore and the
// compensating entry commit in one transaction, so restored inventory can
// never exist without its ledger trail.
func (s *inventoryService) ReverseAllocation(ctx context.Context, logID string, reason string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return fmt.Errorf("%w: reversal reason is required", apperrors.ErrValidation)
	}

	log, err := s.invRepo.FindAllocationLogByID(ctx, logID)
	if err != nil {
		return fmt.Errorf("failed to find allocation log %s: %w", logID, err)
	}
	if log.IsReversed {
		return fmt.Errorf("%w: %s", apperrors.ErrImmutableLog, ErrAllocationReversed.Error())
	}

	reversal, reversedLines, err := s.ledgerSvc.BuildReversalEntry(ctx, log.LedgerEntryID,
		fmt.Sprintf("allocation %s reversed: %s", logID, reason), userID)
	if err != nil {
		logger.Error("Failed to build reversal entry for allocation", slog.String("error", err.Error()), slog.String("log_id", logID), slog.String("entry_id", log.LedgerEntryID))
		return fmt.Errorf("failed to build reversal entry for allocation %s: %w", logID, err)
	}

	now := time.Now().UTC()
	if err := s.invRepo.ReverseAllocation(ctx, logID, reason, userID, now, *reversal, reversedLines); err != nil {
		logger.Error("Failed to reverse allocation", slog.String("error", err.Error()), slog.String("log_id", logID))
		return fmt.Errorf("failed to reverse allocation %s: %w", logID, err)
	}

	logger.Info("Allocation reversed", slog.String("log_id", logID), slog.String("reversed_by", userID))
	return nil
}

// GetLotByID retrieves a bulk purchase lot.
func (s *inventoryService) GetLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error) {
	lot, err := s.invRepo.FindLotByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find lot %s: %w", purchaseID, err)
	}
	return lot, nil
}

// ListLots retrieves a paginated list of lots.
func (s *inventoryService) ListLots(ctx context.Context, params dto.ListLotsParams) (*dto.ListLotsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	lots, nextToken, err := s.invRepo.ListLots(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	lotResponses := make([]dto.LotResponse, len(lots))
	for i := range lots {
		lotResponses[i] = dto.ToLotResponse(&lots[i])
	}
	return &dto.ListLotsResponse{Lots: lotResponses, NextToken: nextToken}, nil
}

// GetAllocationLog retrieves a single allocation log row.
func (s *inventoryService) GetAllocationLog(ctx context.Context, logID string) (*domain.ShareAllocationLog, error) {
	log, err := s.invRepo.FindAllocationLogByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to find allocation log %s: %w", logID, err)
	}
	return log, nil
}

// ListLotAllocations retrieves all allocation logs against a lot.
func (s *inventoryService) ListLotAllocations(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error) {
	logs, err := s.invRepo.FindAllocationLogsByLot(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for lot %s: %w", purchaseID, err)
	}
	return logs, nil
}
