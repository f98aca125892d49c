package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
	"github.com/paisetrail/ledger_backend/internal/utils/pagination"
)

type pgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new instance of pgxPaymentRepository
func newPgxPaymentRepository(pool *pgxpool.Pool) *pgxPaymentRepository {
	return &pgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxPaymentRepository implements the payment repository facade
var _ portsrepo.PaymentRepositoryFacade = (*pgxPaymentRepository)(nil)

const paymentColumns = `payment_id, user_id, amount_paise, status, refund_amount_paise, chargeback_amount_paise, chargeback_reason, gateway_payment_id, gateway_order_id, gateway_chargeback_id, settlement_id, settled_at, chargeback_confirmed_at, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.UserID,
		&m.AmountPaise,
		&m.Status,
		&m.RefundAmountPaise,
		&m.ChargebackAmountPaise,
		&m.ChargebackReason,
		&m.GatewayPaymentID,
		&m.GatewayOrderID,
		&m.GatewayChargebackID,
		&m.SettlementID,
		&m.SettledAt,
		&m.ChargebackConfirmedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePayment persists a new payment record.
func (r *pgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	insertSQL := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, insertSQL,
		m.PaymentID,
		m.UserID,
		m.AmountPaise,
		m.Status,
		m.RefundAmountPaise,
		m.ChargebackAmountPaise,
		m.ChargebackReason,
		m.GatewayPaymentID,
		m.GatewayOrderID,
		m.GatewayChargebackID,
		m.SettlementID,
		m.SettledAt,
		m.ChargebackConfirmedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment", err)
	}
	return nil
}

const updatePaymentSQL = `
	UPDATE payments
	SET status = $2,
		refund_amount_paise = $3,
		chargeback_amount_paise = $4,
		chargeback_reason = $5,
		gateway_payment_id = $6,
		gateway_order_id = $7,
		gateway_chargeback_id = $8,
		settlement_id = $9,
		settled_at = $10,
		chargeback_confirmed_at = $11,
		last_updated_at = $12,
		last_updated_by = $13
	WHERE payment_id = $1 AND status = $14;
`

// paymentExecutor is satisfied by both *pgxpool.Pool and pgx.Tx, so the
// conditional status write runs identically inside and outside a transaction.
type paymentExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *pgxPaymentRepository) execUpdatePayment(ctx context.Context, db paymentExecutor, m models.Payment, expectedStatus domain.PaymentStatus) error {
	cmdTag, err := db.Exec(ctx, updatePaymentSQL,
		m.PaymentID,
		m.Status,
		m.RefundAmountPaise,
		m.ChargebackAmountPaise,
		m.ChargebackReason,
		m.GatewayPaymentID,
		m.GatewayOrderID,
		m.GatewayChargebackID,
		m.SettlementID,
		m.SettledAt,
		m.ChargebackConfirmedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		string(expectedStatus),
	)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to update payment %s", m.PaymentID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing payment from a lost optimistic race.
		if _, findErr := r.FindPaymentByID(ctx, m.PaymentID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("payment %s no longer in status %s: %w", m.PaymentID, expectedStatus, apperrors.ErrConflict)
	}
	return nil
}

// UpdatePayment writes the payment's mutable fields conditionally on the
// stored status still being expectedStatus. Zero rows affected means another
// writer got there first; the caller must re-read and retry.
func (r *pgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus) error {
	return r.execUpdatePayment(ctx, r.Pool, mapping.ToModelPayment(payment), expectedStatus)
}

// UpdatePaymentWithEntry commits the conditional status write and the ledger
// entry recording the money side of the transition in one transaction. If the
// optimistic check loses, the entry is rolled back with it and nothing lands.
func (r *pgxPaymentRepository) UpdatePaymentWithEntry(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.execUpdatePayment(ctx, tx, mapping.ToModelPayment(payment), expectedStatus); err != nil {
		return err
	}
	if err := insertEntryAndLines(ctx, tx, entry, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindPaymentByID retrieves a payment by its ID.
func (r *pgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	selectSQL := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, selectSQL, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find payment %s", paymentID), err)
	}
	payment := mapping.ToDomainPayment(m)
	return &payment, nil
}

// ListPaymentsByUser retrieves a paginated list of a user's payments, newest
// first, using token-based pagination over (created_at, payment_id).
func (r *pgxPaymentRepository) ListPaymentsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	fetchLimit := limit + 1

	baseSQL := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1`
	args := []interface{}{userID}
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		baseSQL += ` AND (created_at, payment_id) < ($2, $3)`
		args = append(args, createdAt, fields[1])
	}
	baseSQL += fmt.Sprintf(` ORDER BY created_at DESC, payment_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, baseSQL, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()

	var modelPayments []models.Payment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payment row", err)
		}
		modelPayments = append(modelPayments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}

	var newNextToken *string
	if len(modelPayments) == fetchLimit {
		last := modelPayments[limit-1]
		token := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.PaymentID)
		newNextToken = &token
		modelPayments = modelPayments[:limit]
	}

	payments := make([]domain.Payment, 0, len(modelPayments))
	for _, m := range modelPayments {
		payments = append(payments, mapping.ToDomainPayment(m))
	}
	return payments, newNextToken, nil
}
