package models

import "time"

// LedgerEntry is the ledger_entries row. The table is append-only: no code path
// issues UPDATE or DELETE against it.
type LedgerEntry struct {
	EntryID         string    `db:"entry_id"`
	ReferenceType   string    `db:"reference_type"`
	ReferenceID     string    `db:"reference_id"`
	Description     string    `db:"description"`
	EntryDate       time.Time `db:"entry_date"`
	IsReversal      bool      `db:"is_reversal"`
	ReversesEntryID *string   `db:"reverses_entry_id"`
	AuditFields
}

// LedgerLine is the ledger_lines row, exclusively owned by one entry.
type LedgerLine struct {
	LineID      string `db:"line_id"`
	EntryID     string `db:"entry_id"`
	AccountID   string `db:"account_id"`
	Direction   string `db:"direction"`
	AmountPaise int64  `db:"amount_paise"`
	AuditFields
}
