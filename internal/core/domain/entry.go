package domain

import "time"

// ReferenceType tags a ledger entry with the business event that produced it.
type ReferenceType string

const (
	RefBulkPurchase     ReferenceType = "bulk_purchase"
	RefUserDeposit      ReferenceType = "user_deposit"
	RefInvestment       ReferenceType = "investment"
	RefBonusCredit      ReferenceType = "bonus_credit"
	RefRefund           ReferenceType = "refund"
	RefChargeback       ReferenceType = "chargeback"
	RefWithdrawal       ReferenceType = "withdrawal"
	RefTDSDeduction     ReferenceType = "tds_deduction"
	RefRegulatoryAdjust ReferenceType = "regulatory_adjustment"
	RefManualCorrection ReferenceType = "manual_correction"
)

// LedgerEntry is the immutable header of one balanced journal posting.
// Entries are never updated or deleted after creation; corrections are realized
// exclusively through a new entry with IsReversal set, pointing back here.
type LedgerEntry struct {
	EntryID         string        `json:"entryID"`
	ReferenceType   ReferenceType `json:"referenceType"`
	ReferenceID     string        `json:"referenceID"`
	Description     string        `json:"description"`
	EntryDate       time.Time     `json:"entryDate"`
	IsReversal      bool          `json:"isReversal"`
	ReversesEntryID *string       `json:"reversesEntryID,omitempty"`
	Lines           []LedgerLine  `json:"lines,omitempty"` // Loaded separately unless requested
	AuditFields
}

// LedgerLine is a single debit or credit against one account, exclusively owned
// by its entry. Amounts are strictly positive paise; the sign is carried by the
// direction, never by the amount.
type LedgerLine struct {
	LineID    string         `json:"lineID"`
	EntryID   string         `json:"entryID"`
	AccountID string         `json:"accountID"`
	Direction EntryDirection `json:"direction"`
	Amount    Paise          `json:"amountPaise"`
	AuditFields
}

// SignedAmount returns the line's effect on an account of the given type,
// positive when it moves the balance in the account's normal direction.
func (l LedgerLine) SignedAmount(accountType AccountType) Paise {
	if l.Direction == accountType.NormalBalance() {
		return l.Amount
	}
	return -l.Amount
}

// SumByDirection returns the integer paise totals of the debit and credit sides.
func SumByDirection(lines []LedgerLine) (debits Paise, credits Paise) {
	for _, line := range lines {
		if line.Direction == Debit {
			debits += line.Amount
		} else {
			credits += line.Amount
		}
	}
	return debits, credits
}

// IsBalanced reports whether the debit and credit paise sums of the lines are
// exactly equal. The comparison is integer-exact, never tolerant of rounding.
func IsBalanced(lines []LedgerLine) bool {
	debits, credits := SumByDirection(lines)
	return debits == credits
}
