package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInUse      = errors.New("account has posted lines and cannot be deleted")
	ErrSystemAccount     = errors.New("system accounts cannot be deleted")
	ErrDuplicateCode     = errors.New("an account with this code already exists")
	ErrInvalidAccountTyp = errors.New("account type is not one of the five chart types")
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	entryRepo   portsrepo.EntryReader
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, entryRepo portsrepo.EntryReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new non-system account after validating its type and
// code uniqueness.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.LedgerAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(req.Type)
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountTyp, req.Type)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code uniqueness", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, req.Code)
	}

	now := time.Now().UTC()
	account := domain.LedgerAccount{
		AccountID: uuid.NewString(),
		Code:      req.Code,
		Name:      req.Name,
		Type:      accountType,
		IsSystem:  false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its unique code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts by their IDs.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves the chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.LedgerAccount, error) {
	if limit <= 0 {
		limit = 100
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes a non-system account that has never been posted to.
// System accounts and accounts with lines are permanent.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if account.IsSystem {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrSystemAccount.Error())
	}

	hasLines, err := s.entryRepo.HasLinesForAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to check account usage before delete", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to check account usage: %w", err)
	}
	if hasLines {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountInUse.Error())
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		logger.Error("Failed to delete account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to delete account: %w", err)
	}

	logger.Info("Account deleted", slog.String("account_id", accountID), slog.String("deleted_by", userID))
	return nil
}
