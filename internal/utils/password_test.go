package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisetrail/ledger_backend/internal/utils"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("paise-trail-operator-1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, utils.CheckPasswordHash("paise-trail-operator-1", hash))
	assert.False(t, utils.CheckPasswordHash("wrong-password", hash))
}

func TestHashPassword_RejectsOversizedInput(t *testing.T) {
	_, err := utils.HashPassword(strings.Repeat("x", 73))
	require.ErrorIs(t, err, utils.ErrPasswordTooLong)
}
