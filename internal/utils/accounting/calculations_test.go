package accounting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/utils/accounting"
)

func TestSignedAmount(t *testing.T) {
	testCases := []struct {
		name        string
		direction   domain.EntryDirection
		accountType domain.AccountType
		amount      domain.Paise
		expected    domain.Paise
	}{
		{"debit to asset increases", domain.Debit, domain.Asset, 10000, 10000},
		{"credit to asset decreases", domain.Credit, domain.Asset, 10000, -10000},
		{"credit to liability increases", domain.Credit, domain.Liability, 5000, 5000},
		{"debit to liability decreases", domain.Debit, domain.Liability, 5000, -5000},
		{"credit to income increases", domain.Credit, domain.Income, 7500, 7500},
		{"debit to expense increases", domain.Debit, domain.Expense, 2500, 2500},
		{"credit to equity increases", domain.Credit, domain.Equity, 100, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := domain.LedgerLine{
				AccountID: "acc-1",
				Direction: tc.direction,
				Amount:    tc.amount,
			}
			signed, err := accounting.SignedAmount(line, tc.accountType)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, signed)
		})
	}
}

func TestBalanceFromSums(t *testing.T) {
	assert.Equal(t, domain.Paise(30000), accounting.BalanceFromSums(domain.Asset, 50000, 20000))
	assert.Equal(t, domain.Paise(-30000), accounting.BalanceFromSums(domain.Liability, 50000, 20000))
	assert.Equal(t, domain.Paise(45000), accounting.BalanceFromSums(domain.Income, 5000, 50000))
	assert.Equal(t, domain.Paise(45000), accounting.BalanceFromSums(domain.Expense, 50000, 5000))
}

func TestSignedSum(t *testing.T) {
	types := map[string]domain.AccountType{
		"bank":     domain.Asset,
		"deposits": domain.Liability,
	}
	lines := []domain.LedgerLine{
		{AccountID: "bank", Direction: domain.Debit, Amount: 10000},
		{AccountID: "deposits", Direction: domain.Credit, Amount: 10000},
	}

	sum, err := accounting.SignedSum(lines, types)
	require.NoError(t, err)
	assert.Equal(t, domain.Paise(20000), sum)
}

func TestSignedSum_MissingAccountType(t *testing.T) {
	lines := []domain.LedgerLine{
		{AccountID: "mystery", Direction: domain.Debit, Amount: 100},
	}

	_, err := accounting.SignedSum(lines, map[string]domain.AccountType{})
	require.Error(t, err)
}
