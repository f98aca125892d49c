package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	sagaRepo := newPgxSagaRepository(dbPool)
	fundLockRepo := newPgxFundLockRepository(dbPool)
	walletRepo := newPgxWalletRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		EntryRepo:     entryRepo,
		InventoryRepo: inventoryRepo,
		PaymentRepo:   paymentRepo,
		SagaRepo:      sagaRepo,
		FundLockRepo:  fundLockRepo,
		WalletRepo:    walletRepo,
		UserRepo:      userRepo,
	}
}
