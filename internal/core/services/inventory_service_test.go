package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/core/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	mockInvRepo    *MockInventoryRepository
	mockAccountSvc *MockAccountService
	mockLedgerSvc  *MockLedgerService
	service        portssvc.InventorySvcFacade
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	suite.mockInvRepo = new(MockInventoryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewInventoryService(suite.mockInvRepo, suite.mockAccountSvc, suite.mockLedgerSvc)
}

func (suite *InventoryServiceTestSuite) expectSystemAccount(code string, accountType domain.AccountType) *domain.LedgerAccount {
	account := &domain.LedgerAccount{
		AccountID: uuid.NewString(),
		Code:      code,
		Type:      accountType,
		IsSystem:  true,
	}
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, code).Return(account, nil)
	return account
}

func (suite *InventoryServiceTestSuite) TestCreateLot_ProvenanceGateRejectsUndocumentedManualEntry() {
	ctx := context.Background()
	req := dto.CreateLotRequest{
		SourceType:              "manual_entry",
		ManualEntryReason:       "off-market block deal",
		ActualCostPaidPaise:     8000000,
		FaceValuePurchasedPaise: 10000000,
	}

	_, err := suite.service.CreateLot(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrProvenance)
	suite.mockInvRepo.AssertNotCalled(suite.T(), "SaveLotWithEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestCreateLot_DiscountLineBalancesTheEntry() {
	ctx := context.Background()
	userID := uuid.NewString()
	listingID := uuid.NewString()

	inventoryAcc := suite.expectSystemAccount(domain.AccountShareInventory, domain.Asset)
	bankAcc := suite.expectSystemAccount(domain.AccountBank, domain.Asset)
	discountAcc := suite.expectSystemAccount(domain.AccountPurchaseDiscount, domain.Income)

	req := dto.CreateLotRequest{
		SourceType:                "company_listing",
		CompanyShareListingID:     &listingID,
		ActualCostPaidPaise:       8000000,
		FaceValuePurchasedPaise:   10000000,
		ExtraAllocationPercentage: decimal.NewFromInt(5),
	}

	var savedLot domain.BulkPurchase
	var savedLines []domain.LedgerLine
	suite.mockInvRepo.On("SaveLotWithEntry", ctx, mock.AnythingOfType("domain.BulkPurchase"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Run(func(args mock.Arguments) {
			savedLot = args.Get(1).(domain.BulkPurchase)
			savedLines = args.Get(3).([]domain.LedgerLine)
		}).Return(nil).Once()

	lot, err := suite.service.CreateLot(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(lot)

	// face 100,000.00 at +5% extra allocation
	suite.Equal(domain.Paise(10500000), savedLot.TotalValueReceived)
	suite.Equal(savedLot.TotalValueReceived, savedLot.ValueRemaining)
	suite.Equal(domain.LotCreated, savedLot.State())

	suite.Require().Len(savedLines, 3)
	suite.True(domain.IsBalanced(savedLines))
	byAccount := map[string]domain.LedgerLine{}
	for _, line := range savedLines {
		byAccount[line.AccountID] = line
	}
	suite.Equal(domain.Debit, byAccount[inventoryAcc.AccountID].Direction)
	suite.Equal(domain.Paise(10500000), byAccount[inventoryAcc.AccountID].Amount)
	suite.Equal(domain.Credit, byAccount[bankAcc.AccountID].Direction)
	suite.Equal(domain.Paise(8000000), byAccount[bankAcc.AccountID].Amount)
	suite.Equal(domain.Credit, byAccount[discountAcc.AccountID].Direction)
	suite.Equal(domain.Paise(2500000), byAccount[discountAcc.AccountID].Amount)
	suite.mockInvRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestAllocate_InsufficientInventoryRejected() {
	ctx := context.Background()
	purchaseID := uuid.NewString()

	suite.expectSystemAccount(domain.AccountShareInventory, domain.Asset)
	suite.expectSystemAccount(domain.AccountBank, domain.Asset)

	req := dto.AllocateRequest{
		AllocatableKind: "investment",
		AllocatableID:   uuid.NewString(),
		AmountPaise:     500000,
		UnitsAllocated:  50,
	}

	suite.mockInvRepo.On("Allocate", ctx, mock.AnythingOfType("domain.ShareAllocationLog"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Return(nil, fmt.Errorf("lot %s has 100000 paise remaining, 500000 requested: %w", purchaseID, apperrors.ErrInsufficientInventory)).Once()

	_, err := suite.service.Allocate(ctx, purchaseID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientInventory)
}

func (suite *InventoryServiceTestSuite) TestAllocate_BonusGrantDebitsExpense() {
	ctx := context.Background()
	purchaseID := uuid.NewString()

	suite.expectSystemAccount(domain.AccountShareInventory, domain.Asset)
	bonusAcc := suite.expectSystemAccount(domain.AccountBonusExpense, domain.Expense)

	req := dto.AllocateRequest{
		AllocatableKind: "bonus_grant",
		AllocatableID:   uuid.NewString(),
		AmountPaise:     25000,
		UnitsAllocated:  10,
	}

	var savedEntry domain.LedgerEntry
	var savedLines []domain.LedgerLine
	suite.mockInvRepo.On("Allocate", ctx, mock.AnythingOfType("domain.ShareAllocationLog"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Run(func(args mock.Arguments) {
			savedEntry = args.Get(2).(domain.LedgerEntry)
			savedLines = args.Get(3).([]domain.LedgerLine)
		}).Return(&domain.ShareAllocationLog{LogID: uuid.NewString()}, nil).Once()

	_, err := suite.service.Allocate(ctx, purchaseID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.RefBonusCredit, savedEntry.ReferenceType)
	suite.Require().Len(savedLines, 2)
	suite.Equal(bonusAcc.AccountID, savedLines[0].AccountID)
	suite.Equal(domain.Debit, savedLines[0].Direction)
	suite.True(domain.IsBalanced(savedLines))
}

func (suite *InventoryServiceTestSuite) TestReverseAllocation_SecondReversalRejected() {
	ctx := context.Background()
	logID := uuid.NewString()

	suite.mockInvRepo.On("FindAllocationLogByID", ctx, logID).
		Return(&domain.ShareAllocationLog{LogID: logID, IsReversed: true}, nil).Once()

	err := suite.service.ReverseAllocation(ctx, logID, "duplicate correction", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImmutableLog)
	suite.mockInvRepo.AssertNotCalled(suite.T(), "ReverseAllocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "BuildReversalEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestReverseAllocation_CompensatingEntryRidesRestore() {
	ctx := context.Background()
	logID := uuid.NewString()
	entryID := uuid.NewString()
	userID := uuid.NewString()

	reversal := &domain.LedgerEntry{
		EntryID:         uuid.NewString(),
		IsReversal:      true,
		ReversesEntryID: &entryID,
	}
	reversedLines := []domain.LedgerLine{
		{LineID: uuid.NewString(), EntryID: reversal.EntryID, Direction: domain.Credit, Amount: 25000},
		{LineID: uuid.NewString(), EntryID: reversal.EntryID, Direction: domain.Debit, Amount: 25000},
	}

	suite.mockInvRepo.On("FindAllocationLogByID", ctx, logID).
		Return(&domain.ShareAllocationLog{LogID: logID, LedgerEntryID: entryID}, nil).Once()
	suite.mockLedgerSvc.On("BuildReversalEntry", ctx, entryID, mock.AnythingOfType("string"), userID).
		Return(reversal, reversedLines, nil).Once()

	var passedEntry domain.LedgerEntry
	var passedLines []domain.LedgerLine
	suite.mockInvRepo.On("ReverseAllocation", ctx, logID, "mis-allocated", userID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Run(func(args mock.Arguments) {
			passedEntry = args.Get(5).(domain.LedgerEntry)
			passedLines = args.Get(6).([]domain.LedgerLine)
		}).Return(nil).Once()

	err := suite.service.ReverseAllocation(ctx, logID, "mis-allocated", userID)

	suite.Require().NoError(err)
	// The compensating entry travels in the same repository call as the lot
	// restore, so a crash or retry cannot strand restored inventory without
	// its ledger trail.
	suite.Equal(reversal.EntryID, passedEntry.EntryID)
	suite.True(passedEntry.IsReversal)
	suite.Require().NotNil(passedEntry.ReversesEntryID)
	suite.Equal(entryID, *passedEntry.ReversesEntryID)
	suite.Equal(reversedLines, passedLines)
	suite.mockInvRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestReverseAllocation_RepoFailureLeavesNothingPosted() {
	ctx := context.Background()
	logID := uuid.NewString()
	entryID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockInvRepo.On("FindAllocationLogByID", ctx, logID).
		Return(&domain.ShareAllocationLog{LogID: logID, LedgerEntryID: entryID}, nil).Once()
	suite.mockLedgerSvc.On("BuildReversalEntry", ctx, entryID, mock.AnythingOfType("string"), userID).
		Return(&domain.LedgerEntry{EntryID: uuid.NewString(), IsReversal: true}, []domain.LedgerLine{}, nil).Once()
	suite.mockInvRepo.On("ReverseAllocation", ctx, logID, "mis-allocated", userID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Return(apperrors.ErrImmutableLog).Once()

	err := suite.service.ReverseAllocation(ctx, logID, "mis-allocated", userID)

	// A concurrent reversal won the row guard; the whole transaction rolled
	// back, including the compensating entry, and the caller sees the
	// immutability error.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImmutableLog)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
