package domain

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
)

// PaymentStatus is the state of a payment in its lifecycle graph.
type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentProcessing          PaymentStatus = "processing"
	PaymentPaid                PaymentStatus = "paid"
	PaymentFailed              PaymentStatus = "failed"
	PaymentRefunded            PaymentStatus = "refunded"
	PaymentCancelled           PaymentStatus = "cancelled"
	PaymentSettled             PaymentStatus = "settled"
	PaymentChargebackPending   PaymentStatus = "chargeback_pending"
	PaymentChargebackConfirmed PaymentStatus = "chargeback_confirmed"
)

// paymentTransitions is the single authority on legal status changes. A status
// absent from the map, or mapped to an empty slice, is terminal. Failed payments
// are never retried in place; retries create a brand-new payment record.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentProcessing, PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentProcessing:        {PaymentPaid, PaymentFailed},
	PaymentPaid:              {PaymentRefunded, PaymentSettled, PaymentChargebackPending},
	PaymentSettled:           {PaymentRefunded, PaymentChargebackPending},
	PaymentChargebackPending: {PaymentChargebackConfirmed, PaymentPaid, PaymentSettled},
}

// LegalNextStatuses returns the statuses reachable from the given one.
func LegalNextStatuses(from PaymentStatus) []PaymentStatus {
	return paymentTransitions[from]
}

// IsTerminalPaymentStatus reports whether no transition leads out of s.
func IsTerminalPaymentStatus(s PaymentStatus) bool {
	return len(paymentTransitions[s]) == 0
}

// Payment is a single money-in or money-out event against a gateway. AmountPaise
// is authoritative; any rupee figure is a derived read-only projection.
type Payment struct {
	PaymentID             string        `json:"paymentID"`
	UserID                string        `json:"userID"`
	Amount                Paise         `json:"amountPaise"`
	Status                PaymentStatus `json:"status"`
	RefundAmount          Paise         `json:"refundAmountPaise"`
	ChargebackAmount      Paise         `json:"chargebackAmountPaise"`
	ChargebackReason      string        `json:"chargebackReason,omitempty"`
	GatewayPaymentID      string        `json:"gatewayPaymentID,omitempty"`
	GatewayOrderID        string        `json:"gatewayOrderID,omitempty"`
	GatewayChargebackID   string        `json:"gatewayChargebackID,omitempty"`
	SettlementID          string        `json:"settlementID,omitempty"`
	SettledAt             *time.Time    `json:"settledAt,omitempty"`
	ChargebackConfirmedAt *time.Time    `json:"chargebackConfirmedAt,omitempty"`
	AuditFields
}

// CanTransitionTo checks the transition table and returns a typed error naming
// the old status, the attempted status and the legal alternatives. An illegal
// transition must never silently succeed.
func (p *Payment) CanTransitionTo(next PaymentStatus) error {
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == next {
			return nil
		}
	}
	legal := make([]string, 0, len(paymentTransitions[p.Status]))
	for _, s := range paymentTransitions[p.Status] {
		legal = append(legal, string(s))
	}
	return apperrors.NewInvalidTransitionError("payment "+p.PaymentID, string(p.Status), string(next), legal)
}

// IsChargebackConfirmed reports whether the disputed amount has been confirmed
// lost. Pending chargebacks do not reduce the refundable amount.
func (p *Payment) IsChargebackConfirmed() bool {
	return p.Status == PaymentChargebackConfirmed
}

// RefundableAmount returns the paise still refundable:
// amount - already refunded - (chargeback amount if confirmed), floored at zero.
// This prevents refund + chargeback double-spend against the same payment.
func (p *Payment) RefundableAmount() Paise {
	refundable := p.Amount - p.RefundAmount
	if p.IsChargebackConfirmed() {
		refundable -= p.ChargebackAmount
	}
	if refundable < 0 {
		return 0
	}
	return refundable
}
