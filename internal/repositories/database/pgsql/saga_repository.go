package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
)

type pgxSagaRepository struct {
	BaseRepository
}

// newPgxSagaRepository creates a new instance of pgxSagaRepository
func newPgxSagaRepository(pool *pgxpool.Pool) *pgxSagaRepository {
	return &pgxSagaRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxSagaRepository implements the saga repository facade
var _ portsrepo.SagaRepositoryFacade = (*pgxSagaRepository)(nil)

const sagaColumns = `saga_id, payment_id, status, total_steps, current_step, completed_steps, rollback_steps, failed_step, failure_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanSaga(row pgx.Row) (models.PaymentSaga, error) {
	var m models.PaymentSaga
	err := row.Scan(
		&m.SagaID,
		&m.PaymentID,
		&m.Status,
		&m.TotalSteps,
		&m.CurrentStep,
		&m.CompletedSteps,
		&m.RollbackSteps,
		&m.FailedStep,
		&m.FailureReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveSaga persists a new saga record. The unique index on payment_id rejects
// a second saga for the same payment.
func (r *pgxSagaRepository) SaveSaga(ctx context.Context, saga domain.PaymentSaga) error {
	m, err := mapping.ToModelSaga(saga)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode saga", err)
	}
	insertSQL := `
		INSERT INTO payment_sagas (` + sagaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = r.Pool.Exec(ctx, insertSQL,
		m.SagaID,
		m.PaymentID,
		m.Status,
		m.TotalSteps,
		m.CurrentStep,
		m.CompletedSteps,
		m.RollbackSteps,
		m.FailedStep,
		m.FailureReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("saga for payment %s: %w", m.PaymentID, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert saga", err)
	}
	return nil
}

// UpdateSaga writes the saga's progression fields conditionally on the stored
// status still being expectedStatus.
func (r *pgxSagaRepository) UpdateSaga(ctx context.Context, saga domain.PaymentSaga, expectedStatus domain.SagaStatus) error {
	m, err := mapping.ToModelSaga(saga)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode saga", err)
	}
	updateSQL := `
		UPDATE payment_sagas
		SET status = $2,
			current_step = $3,
			completed_steps = $4,
			rollback_steps = $5,
			failed_step = $6,
			failure_reason = $7,
			last_updated_at = $8,
			last_updated_by = $9
		WHERE saga_id = $1 AND status = $10;
	`
	cmdTag, err := r.Pool.Exec(ctx, updateSQL,
		m.SagaID,
		m.Status,
		m.CurrentStep,
		m.CompletedSteps,
		m.RollbackSteps,
		m.FailedStep,
		m.FailureReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		string(expectedStatus),
	)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to update saga %s", m.SagaID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindSagaByID(ctx, m.SagaID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("saga %s no longer in status %s: %w", m.SagaID, expectedStatus, apperrors.ErrConflict)
	}
	return nil
}

// FindSagaByID retrieves a saga by its ID.
func (r *pgxSagaRepository) FindSagaByID(ctx context.Context, sagaID string) (*domain.PaymentSaga, error) {
	selectSQL := `SELECT ` + sagaColumns + ` FROM payment_sagas WHERE saga_id = $1;`
	m, err := scanSaga(r.Pool.QueryRow(ctx, selectSQL, sagaID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find saga %s", sagaID), err)
	}
	saga, err := mapping.ToDomainSaga(m)
	if err != nil {
		return nil, err
	}
	return &saga, nil
}

// FindSagaByPaymentID retrieves the saga tracking a payment, if one exists.
func (r *pgxSagaRepository) FindSagaByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentSaga, error) {
	selectSQL := `SELECT ` + sagaColumns + ` FROM payment_sagas WHERE payment_id = $1;`
	m, err := scanSaga(r.Pool.QueryRow(ctx, selectSQL, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find saga for payment %s", paymentID), err)
	}
	saga, err := mapping.ToDomainSaga(m)
	if err != nil {
		return nil, err
	}
	return &saga, nil
}
