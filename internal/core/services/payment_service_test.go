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

type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo *MockPaymentRepository
	mockAccountSvc  *MockAccountService
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewPaymentService(suite.mockPaymentRepo, suite.mockAccountSvc, testAudit())
}

func (suite *PaymentServiceTestSuite) expectSystemAccount(code string, accountType domain.AccountType) *domain.LedgerAccount {
	account := &domain.LedgerAccount{AccountID: uuid.NewString(), Code: code, Type: accountType, IsSystem: true}
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, code).Return(account, nil)
	return account
}

// expectUpdateWithEntry wires UpdatePaymentWithEntry and captures the entry and
// lines the service hands the repository for the transactional write.
func (suite *PaymentServiceTestSuite) expectUpdateWithEntry(ctx context.Context, expectedStatus domain.PaymentStatus, entry *domain.LedgerEntry, lines *[]domain.LedgerLine) {
	suite.mockPaymentRepo.On("UpdatePaymentWithEntry", ctx, mock.AnythingOfType("domain.Payment"), expectedStatus, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Run(func(args mock.Arguments) {
			*entry = args.Get(3).(domain.LedgerEntry)
			*lines = args.Get(4).([]domain.LedgerLine)
		}).Return(nil).Once()
}

func (suite *PaymentServiceTestSuite) TestMarkPaid_DepositEntryRidesStatusWrite() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID: uuid.NewString(),
		UserID:    uuid.NewString(),
		Amount:    10000,
		Status:    domain.PaymentPending,
	}

	bankAcc := suite.expectSystemAccount(domain.AccountBank, domain.Asset)
	depositsAcc := suite.expectSystemAccount(domain.AccountUserDeposits, domain.Liability)

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	var entry domain.LedgerEntry
	var lines []domain.LedgerLine
	suite.expectUpdateWithEntry(ctx, domain.PaymentPending, &entry, &lines)

	updated, err := suite.service.MarkPaid(ctx, payment.PaymentID, dto.MarkPaidRequest{GatewayPaymentID: "pay_abc"}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentPaid, updated.Status)
	suite.Equal("pay_abc", updated.GatewayPaymentID)

	// The deposit entry lands in the same repository call as the status
	// write, never as a separate post.
	suite.Equal(domain.RefUserDeposit, entry.ReferenceType)
	suite.Equal(payment.PaymentID, entry.ReferenceID)
	suite.Require().Len(lines, 2)
	suite.Equal(bankAcc.AccountID, lines[0].AccountID)
	suite.Equal(domain.Debit, lines[0].Direction)
	suite.Equal(depositsAcc.AccountID, lines[1].AccountID)
	suite.Equal(domain.Credit, lines[1].Direction)
	suite.Equal(domain.Paise(10000), lines[0].Amount)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestMarkPaid_ConflictRollsBackEntryWithStatus() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID: uuid.NewString(),
		Amount:    10000,
		Status:    domain.PaymentPending,
	}

	suite.expectSystemAccount(domain.AccountBank, domain.Asset)
	suite.expectSystemAccount(domain.AccountUserDeposits, domain.Liability)

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentWithEntry", ctx, mock.AnythingOfType("domain.Payment"), domain.PaymentPending, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("[]domain.LedgerLine")).
		Return(apperrors.ErrConflict).Once()

	_, err := suite.service.MarkPaid(ctx, payment.PaymentID, dto.MarkPaidRequest{GatewayPaymentID: "pay_abc"}, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	// The losing writer leaves nothing behind: no unconditional status write,
	// no stray entry outside the transaction.
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestSettle_FromPendingRejected() {
	ctx := context.Background()
	payment := &domain.Payment{PaymentID: uuid.NewString(), Status: domain.PaymentPending}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.SettlePayment(ctx, payment.PaymentID, dto.SettlePaymentRequest{SettlementID: "settle_1"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestFail_IsTerminal() {
	ctx := context.Background()
	payment := &domain.Payment{PaymentID: uuid.NewString(), Status: domain.PaymentFailed}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.StartProcessing(ctx, payment.PaymentID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.True(apperrors.IsTerminalStateError(err))
}

func (suite *PaymentServiceTestSuite) TestRefund_ExceedingRefundableRejected() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID:    uuid.NewString(),
		Amount:       10000,
		RefundAmount: 4000,
		Status:       domain.PaymentPaid,
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.RefundPayment(ctx, payment.PaymentID, dto.RefundRequest{AmountPaise: 7000, Reason: "customer request"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRefundExceedsRefundable)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentWithEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRefund_PartialKeepsStatus() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID: uuid.NewString(),
		Amount:    10000,
		Status:    domain.PaymentPaid,
	}

	depositsAcc := suite.expectSystemAccount(domain.AccountUserDeposits, domain.Liability)
	suite.expectSystemAccount(domain.AccountBank, domain.Asset)

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	var entry domain.LedgerEntry
	var lines []domain.LedgerLine
	suite.expectUpdateWithEntry(ctx, domain.PaymentPaid, &entry, &lines)

	updated, err := suite.service.RefundPayment(ctx, payment.PaymentID, dto.RefundRequest{AmountPaise: 4000, Reason: "partial dispute"}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentPaid, updated.Status)
	suite.Equal(domain.Paise(4000), updated.RefundAmount)
	suite.Equal(domain.Paise(6000), updated.RefundableAmount())

	suite.Equal(domain.RefRefund, entry.ReferenceType)
	suite.Require().Len(lines, 2)
	suite.Equal(depositsAcc.AccountID, lines[0].AccountID)
	suite.Equal(domain.Debit, lines[0].Direction)
	suite.Equal(domain.Paise(4000), lines[0].Amount)
}

func (suite *PaymentServiceTestSuite) TestRefund_FullMovesToRefunded() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID:    uuid.NewString(),
		Amount:       10000,
		RefundAmount: 4000,
		Status:       domain.PaymentPaid,
	}

	suite.expectSystemAccount(domain.AccountUserDeposits, domain.Liability)
	suite.expectSystemAccount(domain.AccountBank, domain.Asset)

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	var entry domain.LedgerEntry
	var lines []domain.LedgerLine
	suite.expectUpdateWithEntry(ctx, domain.PaymentPaid, &entry, &lines)

	updated, err := suite.service.RefundPayment(ctx, payment.PaymentID, dto.RefundRequest{AmountPaise: 6000, Reason: "full refund"}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentRefunded, updated.Status)
	suite.Equal(domain.Paise(10000), updated.RefundAmount)
	suite.Equal(domain.Paise(0), updated.RefundableAmount())
	suite.Equal(domain.Paise(6000), lines[0].Amount)
}

func (suite *PaymentServiceTestSuite) TestRaiseChargeback_ClampsDisputeToPaymentAmount() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID: uuid.NewString(),
		Amount:    10000,
		Status:    domain.PaymentPaid,
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("UpdatePayment", ctx, mock.AnythingOfType("domain.Payment"), domain.PaymentPaid).Return(nil).Once()

	disputed := int64(999999)
	updated, err := suite.service.RaiseChargeback(ctx, payment.PaymentID, dto.ChargebackRequest{
		GatewayChargebackID: "cb_1",
		Reason:              "card holder dispute",
		AmountPaise:         &disputed,
	}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentChargebackPending, updated.Status)
	suite.Equal(domain.Paise(10000), updated.ChargebackAmount)
}

func (suite *PaymentServiceTestSuite) TestConfirmChargeback_ExpenseEntryRidesStatusWrite() {
	ctx := context.Background()
	userID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID:        uuid.NewString(),
		Amount:           10000,
		ChargebackAmount: 2500,
		ChargebackReason: "card holder dispute",
		Status:           domain.PaymentChargebackPending,
	}

	expenseAcc := suite.expectSystemAccount(domain.AccountChargebackExpense, domain.Expense)
	suite.expectSystemAccount(domain.AccountBank, domain.Asset)

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil)

	var entry domain.LedgerEntry
	var lines []domain.LedgerLine
	suite.expectUpdateWithEntry(ctx, domain.PaymentChargebackPending, &entry, &lines)

	updated, confirmed, err := suite.service.ConfirmChargeback(ctx, payment.PaymentID, userID)

	suite.Require().NoError(err)
	suite.True(confirmed)
	suite.Equal(domain.PaymentChargebackConfirmed, updated.Status)
	suite.Require().NotNil(updated.ChargebackConfirmedAt)
	// Expense entry and confirmation commit together, so a confirmation can
	// never exist without the loss on the books.
	suite.Equal(domain.RefChargeback, entry.ReferenceType)
	suite.Require().Len(lines, 2)
	suite.Equal(expenseAcc.AccountID, lines[0].AccountID)
	suite.Equal(domain.Paise(2500), lines[0].Amount)
}

func (suite *PaymentServiceTestSuite) TestConfirmChargeback_RedeliveryIsNoOp() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID:        uuid.NewString(),
		Amount:           10000,
		ChargebackAmount: 2500,
		Status:           domain.PaymentChargebackConfirmed,
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	same, confirmed, err := suite.service.ConfirmChargeback(ctx, payment.PaymentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(confirmed)
	suite.Equal(payment.PaymentID, same.PaymentID)
	// A confirmed payment already carries its expense entry, so the no-op
	// branch must not touch the repository or the accounts.
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePayment", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentWithEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "GetAccountByCode", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestTransition_ConcurrentStatusMoveSurfacesConflict() {
	ctx := context.Background()
	payment := &domain.Payment{PaymentID: uuid.NewString(), Status: domain.PaymentPending}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("UpdatePayment", ctx, mock.AnythingOfType("domain.Payment"), domain.PaymentPending).
		Return(apperrors.ErrConflict).Once()

	_, err := suite.service.StartProcessing(ctx, payment.PaymentID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
