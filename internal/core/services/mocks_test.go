package services_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/utils"
)

// testAudit returns a disabled audit sink so services can enqueue events
// without a live analytics client.
func testAudit() *utils.PosthogClientWrapper {
	return utils.InitializePosthogClient("", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// MockEntryRepository is a mock type for the EntryRepositoryFacade interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	args := m.Called(ctx, tx, entry, lines)
	return args.Error(0)
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLine), args.Error(1)
}

func (m *MockEntryRepository) FindReversalOf(ctx context.Context, originalEntryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, originalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockEntryRepository) SumLinesByAccountID(ctx context.Context, accountID string) (domain.Paise, domain.Paise, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(domain.Paise), args.Get(1).(domain.Paise), args.Error(2)
}

func (m *MockEntryRepository) HasLinesForAccount(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

// MockAccountService is a mock type for the AccountSvcFacade interface
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// MockLedgerService is a mock type for the LedgerSvcFacade interface
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) PostEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) BuildReversalEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, []domain.LedgerLine, error) {
	args := m.Called(ctx, entryID, reason, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Get(1).([]domain.LedgerLine), args.Error(2)
}

func (m *MockLedgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockLedgerService) AccountBalance(ctx context.Context, accountID string) (domain.Paise, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(domain.Paise), args.Error(1)
}

// MockInventoryRepository is a mock type for the InventoryRepositoryFacade interface
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) SaveLotWithEntry(ctx context.Context, lot domain.BulkPurchase, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	args := m.Called(ctx, lot, entry, lines)
	return args.Error(0)
}

func (m *MockInventoryRepository) Allocate(ctx context.Context, log domain.ShareAllocationLog, entry domain.LedgerEntry, lines []domain.LedgerLine) (*domain.ShareAllocationLog, error) {
	args := m.Called(ctx, log, entry, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareAllocationLog), args.Error(1)
}

func (m *MockInventoryRepository) ReverseAllocation(ctx context.Context, logID string, reason string, reversedBy string, now time.Time, reversal domain.LedgerEntry, lines []domain.LedgerLine) error {
	args := m.Called(ctx, logID, reason, reversedBy, now, reversal, lines)
	return args.Error(0)
}

func (m *MockInventoryRepository) FindLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkPurchase), args.Error(1)
}

func (m *MockInventoryRepository) ListLots(ctx context.Context, limit int, nextToken *string) ([]domain.BulkPurchase, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var lots []domain.BulkPurchase
	if args.Get(0) != nil {
		lots = args.Get(0).([]domain.BulkPurchase)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return lots, token, args.Error(2)
}

func (m *MockInventoryRepository) FindAllocationLogByID(ctx context.Context, logID string) (*domain.ShareAllocationLog, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareAllocationLog), args.Error(1)
}

func (m *MockInventoryRepository) FindAllocationLogsByLot(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShareAllocationLog), args.Error(1)
}

// MockPaymentRepository is a mock type for the PaymentRepositoryFacade interface
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus) error {
	args := m.Called(ctx, payment, expectedStatus)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentWithEntry(ctx context.Context, payment domain.Payment, expectedStatus domain.PaymentStatus, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	args := m.Called(ctx, payment, expectedStatus, entry, lines)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var payments []domain.Payment
	if args.Get(0) != nil {
		payments = args.Get(0).([]domain.Payment)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return payments, token, args.Error(2)
}

// MockSagaRepository is a mock type for the SagaRepositoryFacade interface
type MockSagaRepository struct {
	mock.Mock
}

func (m *MockSagaRepository) SaveSaga(ctx context.Context, saga domain.PaymentSaga) error {
	args := m.Called(ctx, saga)
	return args.Error(0)
}

func (m *MockSagaRepository) UpdateSaga(ctx context.Context, saga domain.PaymentSaga, expectedStatus domain.SagaStatus) error {
	args := m.Called(ctx, saga, expectedStatus)
	return args.Error(0)
}

func (m *MockSagaRepository) FindSagaByID(ctx context.Context, sagaID string) (*domain.PaymentSaga, error) {
	args := m.Called(ctx, sagaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSaga), args.Error(1)
}

func (m *MockSagaRepository) FindSagaByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentSaga, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSaga), args.Error(1)
}

// MockFundLockRepository is a mock type for the FundLockRepositoryFacade interface
type MockFundLockRepository struct {
	mock.Mock
}

func (m *MockFundLockRepository) SaveLock(ctx context.Context, lock domain.FundLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

func (m *MockFundLockRepository) ReleaseLock(ctx context.Context, lockID string, status domain.FundLockStatus, releasedBy string, reason string, now time.Time) (*domain.FundLock, error) {
	args := m.Called(ctx, lockID, status, releasedBy, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundLock), args.Error(1)
}

func (m *MockFundLockRepository) SweepExpired(ctx context.Context, now time.Time) ([]domain.FundLock, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundLock), args.Error(1)
}

func (m *MockFundLockRepository) FindLockByID(ctx context.Context, lockID string) (*domain.FundLock, error) {
	args := m.Called(ctx, lockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundLock), args.Error(1)
}

func (m *MockFundLockRepository) ListActiveLocksByUser(ctx context.Context, userID string) ([]domain.FundLock, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundLock), args.Error(1)
}

// MockWalletRepository is a mock type for the WalletRepositoryFacade interface
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, userID string, createdBy string, now time.Time) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, createdBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AdjustLockedBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, delta domain.Paise, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, userID, delta, updatedBy, now)
	return args.Error(0)
}

// MockFundLockService is a mock type for the FundLockSvcFacade interface
type MockFundLockService struct {
	mock.Mock
}

func (m *MockFundLockService) LockFunds(ctx context.Context, req dto.CreateLockRequest, userID string) (*domain.FundLock, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundLock), args.Error(1)
}

func (m *MockFundLockService) ReleaseLock(ctx context.Context, lockID string, req dto.ReleaseLockRequest, userID string) (*domain.FundLock, error) {
	args := m.Called(ctx, lockID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundLock), args.Error(1)
}

func (m *MockFundLockService) SweepExpiredLocks(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SweepResponse), args.Error(1)
}

func (m *MockFundLockService) GetLockByID(ctx context.Context, lockID string) (*domain.FundLock, error) {
	args := m.Called(ctx, lockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundLock), args.Error(1)
}

func (m *MockFundLockService) ListActiveLocks(ctx context.Context, userID string) ([]domain.FundLock, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundLock), args.Error(1)
}

func (m *MockFundLockService) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

// MockInventoryService is a mock type for the InventorySvcFacade interface
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CreateLot(ctx context.Context, req dto.CreateLotRequest, userID string) (*domain.BulkPurchase, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkPurchase), args.Error(1)
}

func (m *MockInventoryService) Allocate(ctx context.Context, purchaseID string, req dto.AllocateRequest, userID string) (*domain.ShareAllocationLog, error) {
	args := m.Called(ctx, purchaseID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareAllocationLog), args.Error(1)
}

func (m *MockInventoryService) ReverseAllocation(ctx context.Context, logID string, reason string, userID string) error {
	args := m.Called(ctx, logID, reason, userID)
	return args.Error(0)
}

func (m *MockInventoryService) GetLotByID(ctx context.Context, purchaseID string) (*domain.BulkPurchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkPurchase), args.Error(1)
}

func (m *MockInventoryService) ListLots(ctx context.Context, params dto.ListLotsParams) (*dto.ListLotsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLotsResponse), args.Error(1)
}

func (m *MockInventoryService) GetAllocationLog(ctx context.Context, logID string) (*domain.ShareAllocationLog, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareAllocationLog), args.Error(1)
}

func (m *MockInventoryService) ListLotAllocations(ctx context.Context, purchaseID string) ([]domain.ShareAllocationLog, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShareAllocationLog), args.Error(1)
}
