package accounting

import (
	"fmt"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// SignedAmount applies the correct sign to a ledger line amount based on the
// account type's normal balance. Lines that move with the normal balance are
// positive; lines that move against it are negative.
func SignedAmount(line domain.LedgerLine, accountType domain.AccountType) (domain.Paise, error) {
	normal := accountType.NormalBalance()
	if normal != domain.Debit && normal != domain.Credit {
		return 0, fmt.Errorf("unknown account type %q for account %s", accountType, line.AccountID)
	}
	if line.Direction == normal {
		return line.Amount, nil
	}
	return -line.Amount, nil
}

// BalanceFromSums derives an account balance from its debit and credit paise
// totals, honoring the account type's normal-balance polarity.
func BalanceFromSums(accountType domain.AccountType, debits, credits domain.Paise) domain.Paise {
	if accountType.NormalBalance() == domain.Debit {
		return debits - credits
	}
	return credits - debits
}

// SignedSum folds a set of lines into one signed total given each account's
// type. This is the net movement across the lines with every amount carrying
// its normal-balance polarity.
func SignedSum(lines []domain.LedgerLine, accountTypes map[string]domain.AccountType) (domain.Paise, error) {
	var sum domain.Paise
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return 0, fmt.Errorf("account type not found for account %s", line.AccountID)
		}
		signed, err := SignedAmount(line, accountType)
		if err != nil {
			return 0, err
		}
		sum += signed
	}
	return sum, nil
}
