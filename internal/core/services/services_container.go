package services

import (
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/platform/config"
	"github.com/paisetrail/ledger_backend/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, audit *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account and ledger come first since most other services post entries.
	container.Account = NewAccountService(repos.AccountRepo, repos.EntryRepo)
	container.Ledger = NewLedgerService(repos.EntryRepo, container.Account, audit)

	container.Inventory = NewInventoryService(repos.InventoryRepo, container.Account, container.Ledger)
	container.Payment = NewPaymentService(repos.PaymentRepo, container.Account, audit)
	container.FundLock = NewFundLockService(repos.FundLockRepo, repos.WalletRepo, cfg.FundLockDefaultTTL, audit)
	container.Saga = NewSagaService(repos.SagaRepo, container.FundLock, container.Inventory, container.Ledger, audit)
	container.User = NewUserService(repos.UserRepo, cfg.JWTSecret, cfg.JWTExpiryDuration)

	return container
}
