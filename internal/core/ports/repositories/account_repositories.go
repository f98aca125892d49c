package repositories

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// FindAccountByCode retrieves an account by its unique string code.
	FindAccountByCode(ctx context.Context, code string) (*domain.LedgerAccount, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error)

	// ListAccounts retrieves the chart of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.LedgerAccount, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.LedgerAccount) error

	// DeleteAccount removes an account row. Callers must have verified the
	// account is non-system and has no posted lines.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
