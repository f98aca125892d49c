package domain

import (
	"testing"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func allPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed,
		PaymentRefunded, PaymentCancelled, PaymentSettled,
		PaymentChargebackPending, PaymentChargebackConfirmed,
	}
}

func TestPaymentTransitionTable(t *testing.T) {
	allowed := map[PaymentStatus]map[PaymentStatus]bool{
		PaymentPending:           {PaymentProcessing: true, PaymentPaid: true, PaymentFailed: true, PaymentCancelled: true},
		PaymentProcessing:        {PaymentPaid: true, PaymentFailed: true},
		PaymentPaid:              {PaymentRefunded: true, PaymentSettled: true, PaymentChargebackPending: true},
		PaymentSettled:           {PaymentRefunded: true, PaymentChargebackPending: true},
		PaymentChargebackPending: {PaymentChargebackConfirmed: true, PaymentPaid: true, PaymentSettled: true},
	}

	// Exhaustively check every (from, to) pair against the table: pairs not in
	// it must produce a transition error that leaves the status unchanged.
	for _, from := range allPaymentStatuses() {
		for _, to := range allPaymentStatuses() {
			p := &Payment{PaymentID: "pay-1", Status: from}
			err := p.CanTransitionTo(to)
			if allowed[from][to] {
				assert.NoError(t, err, "%s -> %s should be legal", from, to)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "%s -> %s should be illegal", from, to)
			}
			assert.Equal(t, from, p.Status, "validation must not mutate status")
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentFailed, PaymentRefunded, PaymentCancelled, PaymentChargebackConfirmed} {
		assert.True(t, IsTerminalPaymentStatus(s), "%s should be terminal", s)
		p := &Payment{Status: s}
		err := p.CanTransitionTo(PaymentPaid)
		assert.Error(t, err)
		assert.True(t, apperrors.IsTerminalStateError(err))
	}
	assert.False(t, IsTerminalPaymentStatus(PaymentPaid))
}

func TestTransitionErrorDiagnostics(t *testing.T) {
	p := &Payment{PaymentID: "pay-9", Status: PaymentPaid}
	err := p.CanTransitionTo(PaymentPending)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "paid")
	assert.Contains(t, err.Error(), "pending")
	assert.Contains(t, err.Error(), "settled") // Legal alternative named for diagnostics
}

func TestRefundableAmount(t *testing.T) {
	p := &Payment{Amount: 100000, Status: PaymentPaid}
	assert.Equal(t, Paise(100000), p.RefundableAmount())

	p.RefundAmount = 40000
	assert.Equal(t, Paise(60000), p.RefundableAmount())

	// A pending chargeback does not reduce the refundable amount.
	p.Status = PaymentChargebackPending
	p.ChargebackAmount = 60000
	assert.Equal(t, Paise(60000), p.RefundableAmount())

	// A confirmed one does, floored at zero.
	p.Status = PaymentChargebackConfirmed
	assert.Equal(t, Paise(0), p.RefundableAmount())

	p.ChargebackAmount = 70000
	assert.Equal(t, Paise(0), p.RefundableAmount(), "refundable never goes negative")
}
