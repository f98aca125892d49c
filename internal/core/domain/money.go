package domain

import (
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Paise is a signed 64-bit count of minor currency units (1/100 rupee).
// Every monetary field in the system stores and computes in Paise; there is no
// float path for money anywhere in the core.
type Paise int64

// Rupees projects the amount to a decimal rupee value for display.
// This is a one-way, presentation-only conversion; the result must never be
// fed back into arithmetic or storage.
func (p Paise) Rupees() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(100))
}

// IsPositive reports whether the amount is strictly greater than zero.
func (p Paise) IsPositive() bool {
	return p > 0
}

// PaiseFromPtr returns the paise value behind ptr, or ErrDataIntegrity when the
// column was null. A missing paise amount is a data corruption signal, never a
// recoverable condition, so callers must propagate the error.
func PaiseFromPtr(ptr *int64) (Paise, error) {
	if ptr == nil {
		return 0, apperrors.ErrDataIntegrity
	}
	return Paise(*ptr), nil
}
