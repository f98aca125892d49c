package services

// ServiceContainer holds every service facade the handlers depend on.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Ledger    LedgerSvcFacade
	Inventory InventorySvcFacade
	Payment   PaymentSvcFacade
	Saga      SagaSvcFacade
	FundLock  FundLockSvcFacade
	User      UserSvc
}
