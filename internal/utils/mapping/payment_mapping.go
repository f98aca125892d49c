package mapping

import (
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:             d.PaymentID,
		UserID:                d.UserID,
		AmountPaise:           int64(d.Amount),
		Status:                string(d.Status),
		RefundAmountPaise:     int64(d.RefundAmount),
		ChargebackAmountPaise: int64(d.ChargebackAmount),
		ChargebackReason:      d.ChargebackReason,
		GatewayPaymentID:      d.GatewayPaymentID,
		GatewayOrderID:        d.GatewayOrderID,
		GatewayChargebackID:   d.GatewayChargebackID,
		SettlementID:          d.SettlementID,
		SettledAt:             d.SettledAt,
		ChargebackConfirmedAt: d.ChargebackConfirmedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:             m.PaymentID,
		UserID:                m.UserID,
		Amount:                domain.Paise(m.AmountPaise),
		Status:                domain.PaymentStatus(m.Status),
		RefundAmount:          domain.Paise(m.RefundAmountPaise),
		ChargebackAmount:      domain.Paise(m.ChargebackAmountPaise),
		ChargebackReason:      m.ChargebackReason,
		GatewayPaymentID:      m.GatewayPaymentID,
		GatewayOrderID:        m.GatewayOrderID,
		GatewayChargebackID:   m.GatewayChargebackID,
		SettlementID:          m.SettlementID,
		SettledAt:             m.SettledAt,
		ChargebackConfirmedAt: m.ChargebackConfirmedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}
