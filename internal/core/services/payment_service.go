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
	"github.com/paisetrail/ledger_backend/internal/utils"
)

var (
	ErrRefundExceedsRefundable = errors.New("refund amount exceeds the refundable balance")
	ErrChargebackExceedsAmount = errors.New("chargeback amount exceeds the payment amount")
)

// paymentService drives payments through the lifecycle state machine. Every
// status write is optimistic: it only lands if the stored status still equals
// the one this service read, otherwise the caller gets ErrConflict and retries.
// Money-affecting transitions commit their ledger entry in the same database
// transaction as the status write.
type paymentService struct {
	paymentRepo portsrepo.PaymentRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	audit       *utils.PosthogClientWrapper
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, accountSvc portssvc.AccountSvcFacade, audit *utils.PosthogClientWrapper) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo: paymentRepo,
		accountSvc:  accountSvc,
		audit:       audit,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// CreatePayment records a new payment in pending status.
func (s *paymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:      uuid.NewString(),
		UserID:         req.UserID,
		Amount:         domain.Paise(req.AmountPaise),
		Status:         domain.PaymentPending,
		GatewayOrderID: req.GatewayOrderID,
		AuditFields:    auditFieldsFor(userID, now),
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to save payment", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info("Payment created", slog.String("payment_id", payment.PaymentID), slog.Int64("amount_paise", req.AmountPaise))
	return &payment, nil
}

// transition loads the payment, validates next against the state machine,
// applies mutate, and writes conditionally on the status it read. When
// buildEntry is non-nil, the entry it returns commits in the same transaction
// as the status write, so the transition and its money trail land together or
// not at all.
func (s *paymentService) transition(ctx context.Context, paymentID string, next domain.PaymentStatus, userID string, mutate func(*domain.Payment), buildEntry func(*domain.Payment) (*domain.LedgerEntry, []domain.LedgerLine, error)) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	if err := payment.CanTransitionTo(next); err != nil {
		logger.Warn("Illegal payment transition rejected",
			slog.String("payment_id", paymentID),
			slog.String("from", string(payment.Status)),
			slog.String("to", string(next)),
		)
		return nil, err
	}

	expected := payment.Status
	payment.Status = next
	if mutate != nil {
		mutate(payment)
	}
	now := time.Now().UTC()
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	var updateErr error
	if buildEntry != nil {
		entry, lines, err := buildEntry(payment)
		if err != nil {
			return nil, err
		}
		updateErr = s.paymentRepo.UpdatePaymentWithEntry(ctx, *payment, expected, *entry, lines)
	} else {
		updateErr = s.paymentRepo.UpdatePayment(ctx, *payment, expected)
	}
	if updateErr != nil {
		if errors.Is(updateErr, apperrors.ErrConflict) {
			logger.Warn("Payment status moved concurrently", slog.String("payment_id", paymentID), slog.String("expected", string(expected)))
		} else {
			logger.Error("Failed to update payment", slog.String("error", updateErr.Error()), slog.String("payment_id", paymentID))
		}
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID, updateErr)
	}

	logger.Info("Payment transitioned",
		slog.String("payment_id", paymentID),
		slog.String("from", string(expected)),
		slog.String("to", string(next)),
	)
	return payment, nil
}

// StartProcessing moves a pending payment to processing.
func (s *paymentService) StartProcessing(ctx context.Context, paymentID string, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentProcessing, userID, nil, nil)
}

// MarkPaid records gateway confirmation and posts the deposit entry in the
// same transaction as the status write.
func (s *paymentService) MarkPaid(ctx context.Context, paymentID string, req dto.MarkPaidRequest, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentPaid, userID, func(p *domain.Payment) {
		p.GatewayPaymentID = req.GatewayPaymentID
	}, func(p *domain.Payment) (*domain.LedgerEntry, []domain.LedgerLine, error) {
		// Cash in: bank up, user deposit liability up.
		return s.buildPaymentEntry(ctx, p, domain.RefUserDeposit,
			fmt.Sprintf("Payment %s captured by gateway", p.PaymentID),
			domain.AccountBank, domain.AccountUserDeposits, p.Amount, userID)
	})
}

// FailPayment moves a payment to failed with the gateway's reason. Failed
// payments are terminal; retries create a new payment record.
func (s *paymentService) FailPayment(ctx context.Context, paymentID string, req dto.FailPaymentRequest, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.transition(ctx, paymentID, domain.PaymentFailed, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Payment failed at gateway", slog.String("payment_id", paymentID), slog.String("reason", req.Reason))
	return payment, nil
}

// CancelPayment cancels a payment that never reached the gateway.
func (s *paymentService) CancelPayment(ctx context.Context, paymentID string, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentCancelled, userID, nil, nil)
}

// SettlePayment records settlement details for a paid payment.
func (s *paymentService) SettlePayment(ctx context.Context, paymentID string, req dto.SettlePaymentRequest, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentSettled, userID, func(p *domain.Payment) {
		now := time.Now().UTC()
		p.SettlementID = req.SettlementID
		p.SettledAt = &now
	}, nil)
}

// RefundPayment refunds up to the refundable amount, paise-exact, and posts
// the refund ledger entry. A full refund moves the payment to refunded.
func (s *paymentService) RefundPayment(ctx context.Context, paymentID string, req dto.RefundRequest, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	amount := domain.Paise(req.AmountPaise)
	refundable := payment.RefundableAmount()
	if amount > refundable {
		logger.Warn("Refund rejected, exceeds refundable amount",
			slog.String("payment_id", paymentID),
			slog.Int64("requested_paise", int64(amount)),
			slog.Int64("refundable_paise", int64(refundable)),
		)
		return nil, fmt.Errorf("%w: requested %d paise, refundable %d paise", ErrRefundExceedsRefundable, amount, refundable)
	}

	// A partial refund keeps the current status; refunding the full remaining
	// balance is the terminal transition.
	next := payment.Status
	if amount == refundable {
		next = domain.PaymentRefunded
	}
	expected := payment.Status
	if next != expected {
		if err := payment.CanTransitionTo(next); err != nil {
			return nil, err
		}
	} else if err := payment.CanTransitionTo(domain.PaymentRefunded); err != nil {
		// Even a partial refund is only legal from states that can reach refunded.
		return nil, err
	}

	payment.Status = next
	payment.RefundAmount += amount
	now := time.Now().UTC()
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	// Money out: deposit liability down, bank down. The refund entry commits
	// in the same transaction as the payment update.
	entry, lines, err := s.buildPaymentEntry(ctx, payment, domain.RefRefund,
		fmt.Sprintf("Refund of %d paise on payment %s: %s", amount, paymentID, req.Reason),
		domain.AccountUserDeposits, domain.AccountBank, amount, userID)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.UpdatePaymentWithEntry(ctx, *payment, expected, *entry, lines); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID, err)
	}

	logger.Info("Payment refunded",
		slog.String("payment_id", paymentID),
		slog.Int64("refund_paise", int64(amount)),
		slog.String("status", string(payment.Status)),
	)
	return payment, nil
}

// RaiseChargeback moves a payment into chargeback_pending with the disputed
// amount recorded. A pending chargeback does not yet move money.
func (s *paymentService) RaiseChargeback(ctx context.Context, paymentID string, req dto.ChargebackRequest, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentChargebackPending, userID, func(p *domain.Payment) {
		disputed := p.Amount
		if req.AmountPaise != nil {
			disputed = domain.Paise(*req.AmountPaise)
		}
		if disputed > p.Amount {
			disputed = p.Amount
		}
		p.ChargebackAmount = disputed
		p.ChargebackReason = req.Reason
		p.GatewayChargebackID = req.GatewayChargebackID
	}, nil)
}

// ConfirmChargeback finalizes a pending chargeback. Confirming an already
// confirmed chargeback is a no-op returning false, so gateway webhook
// redeliveries never error and never double-post.
func (s *paymentService) ConfirmChargeback(ctx context.Context, paymentID string, userID string) (*domain.Payment, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	if payment.IsChargebackConfirmed() {
		logger.Info("Chargeback already confirmed, no-op", slog.String("payment_id", paymentID))
		return payment, false, nil
	}

	payment, err = s.transition(ctx, paymentID, domain.PaymentChargebackConfirmed, userID, func(p *domain.Payment) {
		now := time.Now().UTC()
		p.ChargebackConfirmedAt = &now
	}, func(p *domain.Payment) (*domain.LedgerEntry, []domain.LedgerLine, error) {
		// The disputed cash is gone: expense up, bank down. Confirming the
		// status without this entry would strand the loss off the books, so
		// both commit in one transaction.
		return s.buildPaymentEntry(ctx, p, domain.RefChargeback,
			fmt.Sprintf("Chargeback confirmed on payment %s: %s", paymentID, p.ChargebackReason),
			domain.AccountChargebackExpense, domain.AccountBank, p.ChargebackAmount, userID)
	})
	if err != nil {
		return nil, false, err
	}

	s.audit.Enqueue(userID, "chargeback_confirmed", map[string]any{
		"payment_id":              paymentID,
		"chargeback_amount_paise": int64(payment.ChargebackAmount),
		"gateway_chargeback_id":   payment.GatewayChargebackID,
		"confirmed_at":            payment.ChargebackConfirmedAt,
	})

	return payment, true, nil
}

// ResolveChargeback returns a pending chargeback to its prior status when the
// dispute is won.
func (s *paymentService) ResolveChargeback(ctx context.Context, paymentID string, req dto.ResolveChargebackRequest, userID string) (*domain.Payment, error) {
	return s.transition(ctx, paymentID, domain.PaymentStatus(req.RestoreStatus), userID, func(p *domain.Payment) {
		p.ChargebackAmount = 0
		p.ChargebackReason = ""
		p.GatewayChargebackID = ""
	}, nil)
}

// GetPaymentByID retrieves a payment by its unique identifier.
func (s *paymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// ListPaymentsByUser retrieves all payments created by a user.
func (s *paymentService) ListPaymentsByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	payments, _, err := s.paymentRepo.ListPaymentsByUser(ctx, userID, 100, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user %s: %w", userID, err)
	}
	return payments, nil
}

// buildPaymentEntry constructs the balanced two-line ledger entry recording
// the money side of a payment event, for the repository to commit alongside
// the status write.
func (s *paymentService) buildPaymentEntry(ctx context.Context, payment *domain.Payment, refType domain.ReferenceType, description, debitCode, creditCode string, amount domain.Paise, userID string) (*domain.LedgerEntry, []domain.LedgerLine, error) {
	debitAcc, err := s.accountSvc.GetAccountByCode(ctx, debitCode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: system account %s missing", apperrors.ErrDataIntegrity, debitCode)
	}
	creditAcc, err := s.accountSvc.GetAccountByCode(ctx, creditCode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: system account %s missing", apperrors.ErrDataIntegrity, creditCode)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	entry := domain.LedgerEntry{
		EntryID:       entryID,
		ReferenceType: refType,
		ReferenceID:   payment.PaymentID,
		Description:   description,
		EntryDate:     now,
		AuditFields:   auditFieldsFor(userID, now),
	}
	lines := []domain.LedgerLine{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   debitAcc.AccountID,
			Direction:   domain.Debit,
			Amount:      amount,
			AuditFields: auditFieldsFor(userID, now),
		},
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   creditAcc.AccountID,
			Direction:   domain.Credit,
			Amount:      amount,
			AuditFields: auditFieldsFor(userID, now),
		},
	}
	return &entry, lines, nil
}
