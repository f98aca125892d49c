package domain

import (
	"testing"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestPaiseRupeesProjection(t *testing.T) {
	assert.Equal(t, "123.45", Paise(12345).Rupees().String())
	assert.Equal(t, "-0.01", Paise(-1).Rupees().String())
	assert.Equal(t, "0", Paise(0).Rupees().String())
}

func TestPaiseFromPtr(t *testing.T) {
	v := int64(5000)
	p, err := PaiseFromPtr(&v)
	assert.NoError(t, err)
	assert.Equal(t, Paise(5000), p)

	// A null paise column is a data-integrity violation, never a silent zero.
	_, err = PaiseFromPtr(nil)
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
}
