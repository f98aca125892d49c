package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
	"github.com/paisetrail/ledger_backend/internal/utils/pagination"
)

type pgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new instance of pgxInventoryRepository
func newPgxInventoryRepository(pool *pgxpool.Pool) *pgxInventoryRepository {
	return &pgxInventoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxInventoryRepository implements the inventory repository facade
var _ portsrepo.InventoryRepositoryFacade = (*pgxInventoryRepository)(nil)

const lotColumns = `purchase_id, source_type, company_share_listing_id, manual_entry_reason, source_documentation, actual_cost_paid_paise, face_value_purchased_paise, extra_allocation_pct, total_value_received_paise, value_remaining_paise, ledger_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const allocationLogColumns = `log_id, bulk_purchase_id, allocatable_kind, allocatable_id, value_allocated_paise, units_allocated, inventory_before_paise, inventory_after_paise, ledger_entry_id, is_reversed, reversal_reason, reversed_at, reversal_log_id, created_at, created_by, last_updated_at, last_updated_by`

func scanLot(row pgx.Row) (models.BulkPurchase, error) {
	var m models.BulkPurchase
	err := row.Scan(
		&m.PurchaseID,
		&m.SourceType,
		&m.CompanyShareListingID,
		&m.ManualEntryReason,
		&m.SourceDocumentation,
		&m.ActualCostPaidPaise,
		&m.FaceValuePurchasedPaise,
		&m.ExtraAllocationPct,
		&m.TotalValueReceivedPaise,
		&m.ValueRemainingPaise,
		&m.LedgerEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanAllocationLog(row pgx.Row) (models.ShareAllocationLog, error) {
	var m models.ShareAllocationLog
	err := row.Scan(
		&m.LogID,
		&m.BulkPurchaseID,
		&m.AllocatableKind,
		&m.AllocatableID,
		&m.ValueAllocatedPaise,
		&m.UnitsAllocated,
		&m.InventoryBeforePaise,
		&m.InventoryAfterPaise,
		&m.LedgerEntryID,
		&m.IsReversed,
		&m.ReversalReason,
		&m.ReversedAt,
		&m.ReversalLogID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func insertLotInTx(ctx context.Context, tx pgx.Tx, lot models.BulkPurchase) error {
	insertSQL := `
		INSERT INTO bulk_purchases (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, insertSQL,
		lot.PurchaseID,
		lot.SourceType,
		lot.CompanyShareListingID,
		lot.ManualEntryReason,
		lot.SourceDocumentation,
		lot.ActualCostPaidPaise,
		lot.FaceValuePurchasedPaise,
		lot.ExtraAllocationPct,
		lot.TotalValueReceivedPaise,
		lot.ValueRemainingPaise,
		lot.LedgerEntryID,
		lot.CreatedAt,
		lot.CreatedBy,
		lot.LastUpdatedAt,
		lot.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert bulk purchase", err)
	}
	return nil
}

// SaveLotWithEntry persists the lot together with its proving ledger entry in
// a single transaction, so the lot can never exist without the entry that
// records the capital outflow.
func (r *pgxInventoryRepository) SaveLotWithEntry(ctx context.Context, lot domain.BulkPurchase, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryAndLines(ctx, tx, entry, lines); err != nil {
		return err
	}
	if err := insertLotInTx(ctx, tx, mapping.ToModelBulkPurchase(lot)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// Allocate decrements a lot's remaining pool and records the allocation log
// and its proving ledger entry, all in one transaction. The lot row is locked
// first so concurrent allocations against the same lot serialize and the
// before/after snapshots are exact.
func (r *pgxInventoryRepository) Allocate(ctx context.Context, log domain.ShareAllocationLog, entry domain.LedgerEntry, lines []domain.LedgerLine) (*domain.ShareAllocationLog, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockSQL := `SELECT value_remaining_paise FROM bulk_purchases WHERE purchase_id = $1 FOR UPDATE;`
	var remaining int64
	if err := tx.QueryRow(ctx, lockSQL, log.BulkPurchaseID).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to lock lot %s", log.BulkPurchaseID), err)
	}

	allocated := int64(log.ValueAllocated)
	if allocated > remaining {
		return nil, fmt.Errorf("requested %d paise, lot %s has %d remaining: %w",
			allocated, log.BulkPurchaseID, remaining, apperrors.ErrInsufficientInventory)
	}

	log.InventoryBefore = domain.Paise(remaining)
	log.InventoryAfter = domain.Paise(remaining - allocated)

	updateLotSQL := `
		UPDATE bulk_purchases
		SET value_remaining_paise = value_remaining_paise - $2, last_updated_at = $3, last_updated_by = $4
		WHERE purchase_id = $1;
	`
	if _, err := tx.Exec(ctx, updateLotSQL, log.BulkPurchaseID, allocated, log.LastUpdatedAt, log.LastUpdatedBy); err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to decrement lot %s", log.BulkPurchaseID), err)
	}

	if err := insertEntryAndLines(ctx, tx, entry, lines); err != nil {
		return nil, err
	}

	modelLog := mapping.ToModelAllocationLog(log)
	insertLogSQL := `
		INSERT INTO share_allocation_logs (` + allocationLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, insertLogSQL,
		modelLog.LogID,
		modelLog.BulkPurchaseID,
		modelLog.AllocatableKind,
		modelLog.AllocatableID,
		modelLog.ValueAllocatedPaise,
		modelLog.UnitsAllocated,
		modelLog.InventoryBeforePaise,
		modelLog.InventoryAfterPaise,
		modelLog.LedgerEntryID,
		modelLog.IsReversed,
		modelLog.ReversalReason,
		modelLog.ReversedAt,
		modelLog.ReversalLogID,
		modelLog.CreatedAt,
		modelLog.CreatedBy,
		modelLog.LastUpdatedAt,
		modelLog.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert allocation log", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &log, nil
}

// ReverseAllocation marks a log reversed, restores the allocated value onto
// the lot, and inserts the compensating ledger entry, all in one transaction.
// The update is conditional on the log not being reversed already, so a second
// reversal attempt fails cleanly and inserts nothing.
func (r *pgxInventoryRepository) ReverseAllocation(ctx context.Context, logID string, reason string, reversedBy string, now time.Time, reversal domain.LedgerEntry, lines []domain.LedgerLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	selectSQL := `SELECT bulk_purchase_id, value_allocated_paise, is_reversed FROM share_allocation_logs WHERE log_id = $1 FOR UPDATE;`
	var purchaseID string
	var allocated int64
	var isReversed bool
	if err := tx.QueryRow(ctx, selectSQL, logID).Scan(&purchaseID, &allocated, &isReversed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, fmt.Sprintf("failed to lock allocation log %s", logID), err)
	}
	if isReversed {
		return fmt.Errorf("allocation log %s: %w", logID, apperrors.ErrImmutableLog)
	}

	markSQL := `
		UPDATE share_allocation_logs
		SET is_reversed = TRUE, reversal_reason = $2, reversed_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE log_id = $1 AND is_reversed = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, markSQL, logID, reason, now, reversedBy)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to mark allocation log %s reversed", logID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("allocation log %s: %w", logID, apperrors.ErrImmutableLog)
	}

	restoreSQL := `
		UPDATE bulk_purchases
		SET value_remaining_paise = value_remaining_paise + $2, last_updated_at = $3, last_updated_by = $4
		WHERE purchase_id = $1;
	`
	if _, err := tx.Exec(ctx, restoreSQL, purchaseID, allocated, now, reversedBy); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to restore lot %s", purchaseID), err)
	}

	if err := insertEntryAndLines(ctx, tx, reversal, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindLotByID retrieves a bulk purchase lot by its ID.
func (r *pgxInventoryRepository) FindLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error) {
	selectSQL := `SELECT ` + lotColumns + ` FROM bulk_purchases WHERE purchase_id = $1;`
	m, err := scanLot(r.Pool.QueryRow(ctx, selectSQL, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find lot %s", purchaseID), err)
	}
	lot := mapping.ToDomainBulkPurchase(m)
	return &lot, nil
}

// ListLots retrieves a paginated list of lots, newest first, using token-based
// pagination over (created_at, purchase_id) to keep the cursor stable on ties.
func (r *pgxInventoryRepository) ListLots(ctx context.Context, limit int, nextToken *string) ([]domain.BulkPurchase, *string, error) {
	fetchLimit := limit + 1

	baseSQL := `SELECT ` + lotColumns + ` FROM bulk_purchases`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		baseSQL += ` WHERE (created_at, purchase_id) < ($1, $2)`
		args = append(args, createdAt, fields[1])
	}
	baseSQL += fmt.Sprintf(` ORDER BY created_at DESC, purchase_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, baseSQL, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lots", err)
	}
	defer rows.Close()

	var modelLots []models.BulkPurchase
	for rows.Next() {
		m, err := scanLot(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan lot row", err)
		}
		modelLots = append(modelLots, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating lot rows", err)
	}

	var newNextToken *string
	if len(modelLots) == fetchLimit {
		last := modelLots[limit-1]
		token := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.PurchaseID)
		newNextToken = &token
		modelLots = modelLots[:limit]
	}

	lots := make([]domain.BulkPurchase, 0, len(modelLots))
	for _, m := range modelLots {
		lots = append(lots, mapping.ToDomainBulkPurchase(m))
	}
	return lots, newNextToken, nil
}

// FindAllocationLogByID retrieves a single allocation log row.
func (r *pgxInventoryRepository) FindAllocationLogByID(ctx context.Context, logID string) (*domain.ShareAllocationLog, error) {
	selectSQL := `SELECT ` + allocationLogColumns + ` FROM share_allocation_logs WHERE log_id = $1;`
	m, err := scanAllocationLog(r.Pool.QueryRow(ctx, selectSQL, logID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find allocation log %s", logID), err)
	}
	log := mapping.ToDomainAllocationLog(m)
	return &log, nil
}

// FindAllocationLogsByLot retrieves all allocation logs against a lot, oldest
// first, which reads as the lot's consumption history.
func (r *pgxInventoryRepository) FindAllocationLogsByLot(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error) {
	selectSQL := `SELECT ` + allocationLogColumns + ` FROM share_allocation_logs WHERE bulk_purchase_id = $1 ORDER BY created_at ASC, log_id ASC;`
	rows, err := r.Pool.Query(ctx, selectSQL, purchaseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to query allocation logs for lot %s", purchaseID), err)
	}
	defer rows.Close()

	var logs []domain.ShareAllocationLog
	for rows.Next() {
		m, err := scanAllocationLog(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation log row", err)
		}
		logs = append(logs, mapping.ToDomainAllocationLog(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation log rows", err)
	}
	return logs, nil
}
