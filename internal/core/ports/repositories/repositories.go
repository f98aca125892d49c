package repositories

// RepositoryProvider holds every repository facade the services depend on.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	EntryRepo     EntryRepositoryFacade
	InventoryRepo InventoryRepositoryFacade
	PaymentRepo   PaymentRepositoryFacade
	SagaRepo      SagaRepositoryFacade
	FundLockRepo  FundLockRepositoryFacade
	WalletRepo    WalletRepositoryFacade
	UserRepo      UserRepositoryFacade
}
