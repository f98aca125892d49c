package models

// LedgerAccount is the ledger_accounts row. No balance column exists by design;
// balances are derived from ledger_lines.
type LedgerAccount struct {
	AccountID   string `db:"account_id"`
	Code        string `db:"code"`
	Name        string `db:"name"`
	AccountType string `db:"account_type"`
	IsSystem    bool   `db:"is_system"`
	AuditFields
}
