package dto

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest defines the payload for creating a payment record.
type CreatePaymentRequest struct {
	UserID         string `json:"userID" binding:"required"`
	AmountPaise    int64  `json:"amountPaise" binding:"required,gt=0"`
	GatewayOrderID string `json:"gatewayOrderID"`
}

// MarkPaidRequest carries the gateway correlation for a successful capture.
type MarkPaidRequest struct {
	GatewayPaymentID string `json:"gatewayPaymentID" binding:"required"`
}

// FailPaymentRequest carries the failure reason from the gateway.
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SettlePaymentRequest carries the settlement correlation id.
type SettlePaymentRequest struct {
	SettlementID string `json:"settlementID" binding:"required"`
}

// RefundRequest defines the payload for a (possibly partial) refund.
type RefundRequest struct {
	AmountPaise int64  `json:"amountPaise" binding:"required,gt=0"`
	Reason      string `json:"reason" binding:"required"`
}

// ChargebackRequest defines the payload for a bank-initiated dispute. A nil
// amount defaults the disputed value to the full payment amount.
type ChargebackRequest struct {
	GatewayChargebackID string `json:"gatewayChargebackID" binding:"required"`
	Reason              string `json:"reason" binding:"required"`
	AmountPaise         *int64 `json:"amountPaise"`
}

// ResolveChargebackRequest restores a disputed payment after winning the case.
type ResolveChargebackRequest struct {
	RestoreStatus string `json:"restoreStatus" binding:"required,oneof=paid settled"`
}

// PaymentResponse defines the data returned for a payment. Paise fields are
// authoritative; rupee fields are read-only projections.
type PaymentResponse struct {
	PaymentID             string          `json:"paymentID"`
	UserID                string          `json:"userID"`
	AmountPaise           int64           `json:"amountPaise"`
	AmountRupees          decimal.Decimal `json:"amountRupees"`
	Status                string          `json:"status"`
	RefundAmountPaise     int64           `json:"refundAmountPaise"`
	ChargebackAmountPaise int64           `json:"chargebackAmountPaise"`
	RefundablePaise       int64           `json:"refundablePaise"`
	GatewayPaymentID      string          `json:"gatewayPaymentID,omitempty"`
	GatewayOrderID        string          `json:"gatewayOrderID,omitempty"`
	SettlementID          string          `json:"settlementID,omitempty"`
	SettledAt             *time.Time      `json:"settledAt,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// ListPaymentsParams holds query parameters for listing payments.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:             p.PaymentID,
		UserID:                p.UserID,
		AmountPaise:           int64(p.Amount),
		AmountRupees:          p.Amount.Rupees(),
		Status:                string(p.Status),
		RefundAmountPaise:     int64(p.RefundAmount),
		ChargebackAmountPaise: int64(p.ChargebackAmount),
		RefundablePaise:       int64(p.RefundableAmount()),
		GatewayPaymentID:      p.GatewayPaymentID,
		GatewayOrderID:        p.GatewayOrderID,
		SettlementID:          p.SettlementID,
		SettledAt:             p.SettledAt,
		CreatedAt:             p.CreatedAt,
	}
}
