package services

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// PaymentReaderSvc defines read operations for payments.
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a payment by its unique identifier.
	GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUser retrieves all payments created by a user.
	ListPaymentsByUser(ctx context.Context, userID string) ([]domain.Payment, error)
}

// PaymentWriterSvc drives payments through their lifecycle. Every mutation
// validates the transition against the state machine before persisting.
type PaymentWriterSvc interface {
	// CreatePayment records a new payment in pending status.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, userID string) (*domain.Payment, error)

	// StartProcessing moves a pending payment to processing.
	StartProcessing(ctx context.Context, paymentID string, userID string) (*domain.Payment, error)

	// MarkPaid records gateway confirmation and moves the payment to paid.
	MarkPaid(ctx context.Context, paymentID string, req dto.MarkPaidRequest, userID string) (*domain.Payment, error)

	// FailPayment moves a payment to failed with the gateway's reason.
	FailPayment(ctx context.Context, paymentID string, req dto.FailPaymentRequest, userID string) (*domain.Payment, error)

	// CancelPayment cancels a payment that never reached the gateway.
	CancelPayment(ctx context.Context, paymentID string, userID string) (*domain.Payment, error)

	// SettlePayment records settlement details for a paid payment.
	SettlePayment(ctx context.Context, paymentID string, req dto.SettlePaymentRequest, userID string) (*domain.Payment, error)

	// RefundPayment refunds up to the refundable amount and posts the
	// corresponding ledger entry.
	RefundPayment(ctx context.Context, paymentID string, req dto.RefundRequest, userID string) (*domain.Payment, error)

	// RaiseChargeback moves a payment into chargeback_pending.
	RaiseChargeback(ctx context.Context, paymentID string, req dto.ChargebackRequest, userID string) (*domain.Payment, error)

	// ConfirmChargeback finalizes a pending chargeback. The boolean reports
	// whether this call performed the confirmation; repeat calls return false
	// without error.
	ConfirmChargeback(ctx context.Context, paymentID string, userID string) (*domain.Payment, bool, error)

	// ResolveChargeback returns a pending chargeback to its prior status when
	// the dispute is won.
	ResolveChargeback(ctx context.Context, paymentID string, req dto.ResolveChargebackRequest, userID string) (*domain.Payment, error)
}

// PaymentSvcFacade combines all payment service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
