package models

import "time"

// Payment is the payments row. Status changes go through optimistic
// conditional updates keyed on the previous status.
type Payment struct {
	PaymentID             string     `db:"payment_id"`
	UserID                string     `db:"user_id"`
	AmountPaise           int64      `db:"amount_paise"`
	Status                string     `db:"status"`
	RefundAmountPaise     int64      `db:"refund_amount_paise"`
	ChargebackAmountPaise int64      `db:"chargeback_amount_paise"`
	ChargebackReason      string     `db:"chargeback_reason"`
	GatewayPaymentID      string     `db:"gateway_payment_id"`
	GatewayOrderID        string     `db:"gateway_order_id"`
	GatewayChargebackID   string     `db:"gateway_chargeback_id"`
	SettlementID          string     `db:"settlement_id"`
	SettledAt             *time.Time `db:"settled_at"`
	ChargebackConfirmedAt *time.Time `db:"chargeback_confirmed_at"`
	AuditFields
}
