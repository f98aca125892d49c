package services

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// SagaReaderSvc defines read operations for payment sagas.
type SagaReaderSvc interface {
	// GetSagaByID retrieves a saga by its unique identifier.
	GetSagaByID(ctx context.Context, sagaID string) (*domain.PaymentSaga, error)

	// GetSagaByPaymentID retrieves the saga driving a payment.
	GetSagaByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentSaga, error)
}

// SagaWriterSvc orchestrates multi-step payment workflows and their
// compensating rollback.
type SagaWriterSvc interface {
	// StartSaga creates a saga for a payment and moves it to in_progress.
	StartSaga(ctx context.Context, req dto.CreateSagaRequest, userID string) (*domain.PaymentSaga, error)

	// CompleteStep appends a completed step to the saga's log.
	CompleteStep(ctx context.Context, sagaID string, req dto.CompleteStepRequest, userID string) (*domain.PaymentSaga, error)

	// CompleteSaga marks a saga whose steps all finished as completed.
	CompleteSaga(ctx context.Context, sagaID string, userID string) (*domain.PaymentSaga, error)

	// FailSaga records the failed step and reason and marks the saga failed.
	FailSaga(ctx context.Context, sagaID string, req dto.FailSagaRequest, userID string) (*domain.PaymentSaga, error)

	// Rollback compensates every completed step in reverse order. A failing
	// compensator is recorded and does not stop the remaining steps.
	Rollback(ctx context.Context, sagaID string, userID string) (*domain.PaymentSaga, error)
}

// SagaSvcFacade combines all saga service interfaces.
type SagaSvcFacade interface {
	SagaReaderSvc
	SagaWriterSvc
}
