package services

import (
	"context"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// GetAccountByCode retrieves an account by its unique code.
	GetAccountByCode(ctx context.Context, code string) (*domain.LedgerAccount, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error)

	// ListAccounts retrieves the chart of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.LedgerAccount, error)
}

// AccountWriterSvc defines write operations for the chart of accounts.
type AccountWriterSvc interface {
	// CreateAccount persists a new non-system account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.LedgerAccount, error)

	// DeleteAccount removes an account. System accounts and accounts with any
	// posted lines are never deletable.
	DeleteAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
