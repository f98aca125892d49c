package repositories

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// SagaReader defines read operations for payment sagas.
type SagaReader interface {
	// FindSagaByID retrieves a saga by its unique identifier.
	FindSagaByID(ctx context.Context, sagaID string) (*domain.PaymentSaga, error)

	// FindSagaByPaymentID retrieves the saga tracking a payment, if one exists.
	FindSagaByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentSaga, error)
}

// SagaWriter defines write operations for sagas. The step log is append-only;
// UpdateSaga writes status and step-progression fields conditionally on the
// stored status still being expectedStatus, returning ErrConflict otherwise.
type SagaWriter interface {
	// SaveSaga persists a new saga record.
	SaveSaga(ctx context.Context, saga domain.PaymentSaga) error

	// UpdateSaga writes the saga's progression fields (status, current step,
	// completed steps, failure info, rollback steps) optimistically.
	UpdateSaga(ctx context.Context, saga domain.PaymentSaga, expectedStatus domain.SagaStatus) error
}

// SagaRepositoryFacade combines all saga repository interfaces.
type SagaRepositoryFacade interface {
	SagaReader
	SagaWriter
}
