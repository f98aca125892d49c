package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
)

type pgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new instance of pgxWalletRepository
func newPgxWalletRepository(pool *pgxpool.Pool) *pgxWalletRepository {
	return &pgxWalletRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxWalletRepository implements the wallet repository facade
var _ portsrepo.WalletRepositoryFacade = (*pgxWalletRepository)(nil)

const walletColumns = `wallet_id, user_id, balance_paise, locked_balance_paise, created_at, created_by, last_updated_at, last_updated_by`

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.UserID,
		&m.BalancePaise,
		&m.LockedBalancePaise,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// adjustWalletLockedInTx moves a wallet's locked balance by delta paise inside
// the given transaction, locking the wallet row first. A negative result would
// mean locks and wallet drifted apart, which is a data integrity fault.
func adjustWalletLockedInTx(ctx context.Context, tx pgx.Tx, userID string, delta int64, updatedBy string, now time.Time) error {
	lockSQL := `SELECT locked_balance_paise FROM wallets WHERE user_id = $1 FOR UPDATE;`
	var locked int64
	if err := tx.QueryRow(ctx, lockSQL, userID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("wallet for user %s: %w", userID, apperrors.ErrNotFound)
		}
		return apperrors.NewAppError(500, fmt.Sprintf("failed to lock wallet for user %s", userID), err)
	}
	if locked+delta < 0 {
		return fmt.Errorf("locked balance for user %s would go negative (%d%+d): %w",
			userID, locked, delta, apperrors.ErrDataIntegrity)
	}

	updateSQL := `
		UPDATE wallets
		SET locked_balance_paise = locked_balance_paise + $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1;
	`
	if _, err := tx.Exec(ctx, updateSQL, userID, delta, now, updatedBy); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to adjust locked balance for user %s", userID), err)
	}
	return nil
}

// FindWalletByUserID retrieves a user's wallet.
func (r *pgxWalletRepository) FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	selectSQL := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1;`
	m, err := scanWallet(r.Pool.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find wallet for user %s", userID), err)
	}
	wallet := mapping.ToDomainWallet(m)
	return &wallet, nil
}

// EnsureWallet creates the user's wallet if it does not exist yet and returns
// it. ON CONFLICT makes concurrent first-lock races safe.
func (r *pgxWalletRepository) EnsureWallet(ctx context.Context, userID string, createdBy string, now time.Time) (*domain.Wallet, error) {
	insertSQL := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, 0, 0, $3, $4, $3, $4)
		ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, insertSQL, uuid.NewString(), userID, now, createdBy); err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to ensure wallet for user %s", userID), err)
	}
	return r.FindWalletByUserID(ctx, userID)
}

// AdjustLockedBalanceInTx moves the wallet's locked balance by delta paise
// inside a caller-owned transaction.
func (r *pgxWalletRepository) AdjustLockedBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, delta domain.Paise, updatedBy string, now time.Time) error {
	return adjustWalletLockedInTx(ctx, tx, userID, int64(delta), updatedBy, now)
}
