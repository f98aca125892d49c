package services

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// LedgerReaderSvc defines read operations over the journal.
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a ledger entry with its lines populated.
	GetEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves a paginated list of journal entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// AccountBalance recomputes an account's balance from its posted lines,
	// honoring the account type's normal-balance polarity.
	AccountBalance(ctx context.Context, accountID string) (domain.Paise, error)
}

// LedgerWriterSvc defines the only legal ways the journal changes: posting a
// new balanced entry, or reversing a posted one with a new compensating entry.
type LedgerWriterSvc interface {
	// PostEntry validates and persists a balanced entry with its lines
	// atomically.
	PostEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// ReverseEntry creates a new entry with every line direction flipped,
	// marked as a reversal of the original.
	ReverseEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, error)

	// BuildReversalEntry runs the reversal guards and returns the unsaved
	// compensating entry and lines, for callers that must persist the reversal
	// in the same transaction as their own rows.
	BuildReversalEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, []domain.LedgerLine, error)
}

// LedgerSvcFacade combines all journal service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
