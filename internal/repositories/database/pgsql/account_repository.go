package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
)

type pgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new instance of pgxAccountRepository
func newPgxAccountRepository(pool *pgxpool.Pool) *pgxAccountRepository {
	return &pgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxAccountRepository implements the account repository facade
var _ portsrepo.AccountRepositoryFacade = (*pgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, is_system, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.LedgerAccount, error) {
	var m models.LedgerAccount
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.IsSystem,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount persists a new account row.
func (r *pgxAccountRepository) SaveAccount(ctx context.Context, account domain.LedgerAccount) error {
	modelAccount := mapping.ToModelAccount(account)
	insertSQL := `
		INSERT INTO ledger_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, insertSQL,
		modelAccount.AccountID,
		modelAccount.Code,
		modelAccount.Name,
		modelAccount.AccountType,
		modelAccount.IsSystem,
		modelAccount.CreatedAt,
		modelAccount.CreatedBy,
		modelAccount.LastUpdatedAt,
		modelAccount.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("account code %s: %w", modelAccount.Code, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert account", err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *pgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	selectSQL := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, selectSQL, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find account %s", accountID), err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (r *pgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.LedgerAccount, error) {
	selectSQL := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE code = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, selectSQL, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find account by code %s", code), err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs are
// simply absent from the result map; callers decide whether that is an error.
func (r *pgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.LedgerAccount{}, nil
	}
	selectSQL := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, selectSQL, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by ids", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.LedgerAccount, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

// ListAccounts retrieves the chart of accounts ordered by code.
func (r *pgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.LedgerAccount, error) {
	selectSQL := `SELECT ` + accountColumns + ` FROM ledger_accounts ORDER BY code ASC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.LedgerAccount, 0, limit)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

// DeleteAccount removes an account row. The service layer has already verified
// the account is non-system and has no posted lines; the FK on ledger_lines is
// the final guard.
func (r *pgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	deleteSQL := `DELETE FROM ledger_accounts WHERE account_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, deleteSQL, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("account %s has posted lines: %w", accountID, apperrors.ErrConflict)
		}
		return apperrors.NewAppError(500, fmt.Sprintf("failed to delete account %s", accountID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
