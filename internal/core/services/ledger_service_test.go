package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/core/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockEntryRepo  *MockEntryRepository
	mockAccountSvc *MockAccountService
	service        portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewLedgerService(suite.mockEntryRepo, suite.mockAccountSvc, testAudit())
}

func twoAccounts() (string, string, map[string]domain.LedgerAccount) {
	bankID := uuid.NewString()
	depositsID := uuid.NewString()
	accounts := map[string]domain.LedgerAccount{
		bankID:     {AccountID: bankID, Code: domain.AccountBank, Type: domain.Asset},
		depositsID: {AccountID: depositsID, Code: domain.AccountUserDeposits, Type: domain.Liability},
	}
	return bankID, depositsID, accounts
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	bankID, depositsID, accounts := twoAccounts()

	req := dto.CreateEntryRequest{
		ReferenceType: string(domain.RefUserDeposit),
		ReferenceID:   uuid.NewString(),
		Description:   "Deposit captured",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: bankID, Direction: "DEBIT", AmountPaise: 10000},
			{AccountID: depositsID, Direction: "CREDIT", AmountPaise: 10000},
		},
	}

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.False(entry.IsReversal)
	suite.Len(entry.Lines, 2)
	suite.True(domain.IsBalanced(entry.Lines))
	suite.Equal(userID, entry.CreatedBy)
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntry_UnbalancedRejectedBeforeAnyWrite() {
	ctx := context.Background()
	bankID, depositsID, _ := twoAccounts()

	req := dto.CreateEntryRequest{
		ReferenceType: string(domain.RefUserDeposit),
		Description:   "Broken entry",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: bankID, Direction: "DEBIT", AmountPaise: 10000},
			{AccountID: depositsID, Direction: "CREDIT", AmountPaise: 9999},
		},
	}

	entry, err := suite.service.PostEntry(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_SingleAccountRejected() {
	ctx := context.Background()
	accountID := uuid.NewString()

	req := dto.CreateEntryRequest{
		ReferenceType: string(domain.RefUserDeposit),
		Description:   "Self-transfer",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: accountID, Direction: "DEBIT", AmountPaise: 500},
			{AccountID: accountID, Direction: "CREDIT", AmountPaise: 500},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinAccounts)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_MissingAccountRejected() {
	ctx := context.Background()
	bankID, depositsID, accounts := twoAccounts()
	delete(accounts, depositsID)

	req := dto.CreateEntryRequest{
		ReferenceType: string(domain.RefUserDeposit),
		Description:   "Entry against unknown account",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: bankID, Direction: "DEBIT", AmountPaise: 700},
			{AccountID: depositsID, Direction: "CREDIT", AmountPaise: 700},
		},
	}

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_FlipsEveryLine() {
	ctx := context.Background()
	userID := uuid.NewString()
	bankID, depositsID, _ := twoAccounts()

	originalID := uuid.NewString()
	original := &domain.LedgerEntry{
		EntryID:       originalID,
		ReferenceType: domain.RefUserDeposit,
		ReferenceID:   uuid.NewString(),
		Description:   "Deposit captured",
	}
	originalLines := []domain.LedgerLine{
		{LineID: uuid.NewString(), EntryID: originalID, AccountID: bankID, Direction: domain.Debit, Amount: 10000},
		{LineID: uuid.NewString(), EntryID: originalID, AccountID: depositsID, Direction: domain.Credit, Amount: 10000},
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockEntryRepo.On("FindReversalOf", ctx, originalID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, originalID).Return(originalLines, nil).Once()

	var savedLines []domain.LedgerLine
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Run(func(args mock.Arguments) {
			savedLines = args.Get(2).([]domain.LedgerLine)
		}).Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, originalID, "posting error", userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.True(reversal.IsReversal)
	suite.Require().NotNil(reversal.ReversesEntryID)
	suite.Equal(originalID, *reversal.ReversesEntryID)

	suite.Require().Len(savedLines, 2)
	suite.Equal(domain.Credit, savedLines[0].Direction)
	suite.Equal(domain.Debit, savedLines[1].Direction)
	suite.Equal(originalLines[0].Amount, savedLines[0].Amount)
	suite.Equal(originalLines[1].Amount, savedLines[1].Amount)
	suite.True(domain.IsBalanced(savedLines))
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_DoubleReversalRejected() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.LedgerEntry{EntryID: originalID, Description: "Original"}
	existingReversal := &domain.LedgerEntry{EntryID: uuid.NewString(), IsReversal: true, ReversesEntryID: &originalID}

	suite.mockEntryRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockEntryRepo.On("FindReversalOf", ctx, originalID).Return(existingReversal, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, originalID, "again", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_ReversalOfReversalRejected() {
	ctx := context.Background()
	reversalID := uuid.NewString()
	reversal := &domain.LedgerEntry{EntryID: reversalID, IsReversal: true}

	suite.mockEntryRepo.On("FindEntryByID", ctx, reversalID).Return(reversal, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, reversalID, "undo the undo", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAccountBalance_HonorsNormalBalance() {
	ctx := context.Background()

	assetID := uuid.NewString()
	suite.mockAccountSvc.On("GetAccountByID", ctx, assetID).
		Return(&domain.LedgerAccount{AccountID: assetID, Type: domain.Asset}, nil).Once()
	suite.mockEntryRepo.On("SumLinesByAccountID", ctx, assetID).
		Return(domain.Paise(150000), domain.Paise(50000), nil).Once()

	balance, err := suite.service.AccountBalance(ctx, assetID)
	suite.Require().NoError(err)
	suite.Equal(domain.Paise(100000), balance)

	liabilityID := uuid.NewString()
	suite.mockAccountSvc.On("GetAccountByID", ctx, liabilityID).
		Return(&domain.LedgerAccount{AccountID: liabilityID, Type: domain.Liability}, nil).Once()
	suite.mockEntryRepo.On("SumLinesByAccountID", ctx, liabilityID).
		Return(domain.Paise(20000), domain.Paise(90000), nil).Once()

	balance, err = suite.service.AccountBalance(ctx, liabilityID)
	suite.Require().NoError(err)
	suite.Equal(domain.Paise(70000), balance)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
