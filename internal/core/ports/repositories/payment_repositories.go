package repositories

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUser retrieves a paginated list of a user's payments using
	// token-based pagination.
	ListPaymentsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Payment, *string, error)
}

// PaymentWriter defines write operations for payments. Status writes are
// optimistic: they only apply when the stored status still equals the status
// the caller read, otherwise ErrConflict is returned and the caller must retry
// the whole operation.
type PaymentWriter interface {
	// SavePayment persists a new payment record.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePayment writes the payment's mutable fields conditionally on the
	// stored status still being expectedStatus.
	UpdatePayment(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus) error

	// UpdatePaymentWithEntry performs the same conditional status write and
	// inserts the ledger entry recording the money side of the transition, in
	// one database transaction. A money-affecting status change must never
	// become visible without its entry.
	UpdatePaymentWithEntry(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus, entry domain.LedgerEntry, lines []domain.LedgerLine) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
