package domain

// AccountType defines the fundamental accounting type of a ledger account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// EntryDirection indicates whether a ledger line debits or credits its account.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// NormalBalance returns the direction in which an account of this type
// naturally increases. ASSET and EXPENSE accounts are debit-normal, the rest
// are credit-normal.
func (t AccountType) NormalBalance() EntryDirection {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// IsValid reports whether t is one of the five chart-of-accounts types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// Codes of the seeded system accounts that automated postings target. The seed
// migration creates these; services look them up by code, never by id.
const (
	AccountBank              = "BANK"
	AccountShareInventory    = "SHARE_INVENTORY"
	AccountUserDeposits      = "USER_DEPOSITS"
	AccountLockedFunds       = "LOCKED_FUNDS"
	AccountSalesRevenue      = "SALES_REVENUE"
	AccountPurchaseDiscount  = "PURCHASE_DISCOUNT"
	AccountPurchasePremium   = "PURCHASE_PREMIUM"
	AccountBonusExpense      = "BONUS_EXPENSE"
	AccountRefundExpense     = "REFUND_EXPENSE"
	AccountChargebackExpense = "CHARGEBACK_EXPENSE"
	AccountGatewayFees       = "GATEWAY_FEES"
	AccountTDSPayable        = "TDS_PAYABLE"
	AccountRetainedEarnings  = "RETAINED_EARNINGS"
	AccountOwnerCapital      = "OWNER_CAPITAL"
)

// LedgerAccount is one node of the chart of accounts. Balances are never stored
// on the account row; they are always recomputed from posted lines so the
// journal stays the single source of truth.
type LedgerAccount struct {
	AccountID string      `json:"accountID"`
	Code      string      `json:"code"` // Unique string key, e.g. BANK_HDFC
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	IsSystem  bool        `json:"isSystem"` // Seeded accounts; never deletable
	AuditFields
}
