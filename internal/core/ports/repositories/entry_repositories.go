package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// EntryReader defines read operations for the journal.
type EntryReader interface {
	// FindEntryByID retrieves a ledger entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error)

	// FindReversalOf returns the reversal entry pointing at the given original,
	// or ErrNotFound when the original has not been reversed.
	FindReversalOf(ctx context.Context, originalEntryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination. It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// SumLinesByAccountID returns the integer paise debit and credit totals of
	// all lines posted against an account. Balances are always derived from
	// this, never from a stored column.
	SumLinesByAccountID(ctx context.Context, accountID string) (debits domain.Paise, credits domain.Paise, err error)

	// HasLinesForAccount reports whether any posted line references the account.
	HasLinesForAccount(ctx context.Context, accountID string) (bool, error)
}

// EntryWriter defines the only legal write path into the journal: atomic insert
// of a header plus its lines. There is deliberately no update or delete.
type EntryWriter interface {
	// SaveEntry persists an entry and all its lines in one database transaction.
	// Partial persistence is never acceptable.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry, lines []domain.LedgerLine) error

	// SaveEntryInTx persists an entry and its lines inside a caller-owned
	// transaction, so business writes (lot creation, allocation) commit together
	// with their proving ledger entry or not at all.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, lines []domain.LedgerLine) error
}

// EntryRepositoryFacade combines all journal repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities.
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
