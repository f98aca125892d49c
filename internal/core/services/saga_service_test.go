package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/core/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
)

type SagaServiceTestSuite struct {
	suite.Suite
	mockSagaRepo     *MockSagaRepository
	mockFundLockSvc  *MockFundLockService
	mockInventorySvc *MockInventoryService
	mockLedgerSvc    *MockLedgerService
	service          portssvc.SagaSvcFacade
}

func (suite *SagaServiceTestSuite) SetupTest() {
	suite.mockSagaRepo = new(MockSagaRepository)
	suite.mockFundLockSvc = new(MockFundLockService)
	suite.mockInventorySvc = new(MockInventoryService)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewSagaService(
		suite.mockSagaRepo,
		suite.mockFundLockSvc,
		suite.mockInventorySvc,
		suite.mockLedgerSvc,
		testAudit(),
	)
}

func (suite *SagaServiceTestSuite) TestStartSaga_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateSagaRequest{PaymentID: uuid.NewString(), TotalSteps: 4}

	suite.mockSagaRepo.On("FindSagaByPaymentID", ctx, req.PaymentID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockSagaRepo.On("SaveSaga", ctx, mock.AnythingOfType("domain.PaymentSaga")).Return(nil).Once()

	saga, err := suite.service.StartSaga(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SagaPending, saga.Status)
	suite.Equal(0, saga.CurrentStep)
	suite.Equal(4, saga.TotalSteps)
	suite.Empty(saga.CompletedSteps)
}

func (suite *SagaServiceTestSuite) TestStartSaga_OnePerPayment() {
	ctx := context.Background()
	paymentID := uuid.NewString()

	suite.mockSagaRepo.On("FindSagaByPaymentID", ctx, paymentID).
		Return(&domain.PaymentSaga{SagaID: uuid.NewString(), PaymentID: paymentID}, nil).Once()

	_, err := suite.service.StartSaga(ctx, dto.CreateSagaRequest{PaymentID: paymentID, TotalSteps: 3}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockSagaRepo.AssertNotCalled(suite.T(), "SaveSaga", mock.Anything, mock.Anything)
}

func (suite *SagaServiceTestSuite) TestCompleteStep_UnregisteredStepRejected() {
	ctx := context.Background()

	_, err := suite.service.CompleteStep(ctx, uuid.NewString(), dto.CompleteStepRequest{Name: "send_gift_hamper"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownSagaStep)
	suite.mockSagaRepo.AssertNotCalled(suite.T(), "FindSagaByID", mock.Anything, mock.Anything)
}

func (suite *SagaServiceTestSuite) TestCompleteStep_BeyondTotalRejected() {
	ctx := context.Background()
	saga := &domain.PaymentSaga{
		SagaID:      uuid.NewString(),
		Status:      domain.SagaInProgress,
		TotalSteps:  2,
		CurrentStep: 2,
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()

	_, err := suite.service.CompleteStep(ctx, saga.SagaID, dto.CompleteStepRequest{Name: "notify_user"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTooManySteps)
	suite.mockSagaRepo.AssertNotCalled(suite.T(), "UpdateSaga", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SagaServiceTestSuite) TestCompleteStep_FirstStepMovesPendingToInProgress() {
	ctx := context.Background()
	saga := &domain.PaymentSaga{
		SagaID:         uuid.NewString(),
		Status:         domain.SagaPending,
		TotalSteps:     3,
		CurrentStep:    0,
		CompletedSteps: []domain.SagaStep{},
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaPending).Return(nil).Once()

	updated, err := suite.service.CompleteStep(ctx, saga.SagaID, dto.CompleteStepRequest{
		Name: "lock_funds",
		Data: map[string]string{"lock_id": uuid.NewString()},
	}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SagaInProgress, updated.Status)
	suite.Equal(1, updated.CurrentStep)
}

func (suite *SagaServiceTestSuite) TestCompleteStep_AppendsToLog() {
	ctx := context.Background()
	userID := uuid.NewString()
	saga := &domain.PaymentSaga{
		SagaID:         uuid.NewString(),
		Status:         domain.SagaInProgress,
		TotalSteps:     3,
		CurrentStep:    1,
		CompletedSteps: []domain.SagaStep{{Name: domain.StepLockFunds, Data: map[string]string{"lock_id": uuid.NewString()}}},
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaInProgress).Return(nil).Once()

	logID := uuid.NewString()
	updated, err := suite.service.CompleteStep(ctx, saga.SagaID, dto.CompleteStepRequest{
		Name: "allocate_shares",
		Data: map[string]string{"allocation_log_id": logID},
	}, userID)

	suite.Require().NoError(err)
	suite.Equal(2, updated.CurrentStep)
	suite.Require().Len(updated.CompletedSteps, 2)
	suite.Equal(domain.StepAllocateShares, updated.CompletedSteps[1].Name)
	suite.Equal(logID, updated.CompletedSteps[1].Data["allocation_log_id"])
}

func (suite *SagaServiceTestSuite) TestRollback_CompensatesLIFOAndContinuesPastFailure() {
	ctx := context.Background()
	userID := uuid.NewString()
	lockID := uuid.NewString()
	allocationLogID := uuid.NewString()

	saga := &domain.PaymentSaga{
		SagaID:      uuid.NewString(),
		PaymentID:   uuid.NewString(),
		Status:      domain.SagaFailed,
		TotalSteps:  4,
		CurrentStep: 3,
		CompletedSteps: []domain.SagaStep{
			{Name: domain.StepLockFunds, Data: map[string]string{"lock_id": lockID}},
			{Name: domain.StepAllocateShares, Data: map[string]string{"allocation_log_id": allocationLogID}},
			{Name: domain.StepNotifyUser},
		},
		FailedStep:    domain.StepGatewayCharge,
		FailureReason: "gateway timeout",
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaFailed).Return(nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaRollingBack).Return(nil).Once()

	// The allocation reversal fails; the remaining compensations must still run.
	suite.mockInventorySvc.On("ReverseAllocation", ctx, allocationLogID, mock.AnythingOfType("string"), userID).
		Return(assert.AnError).Once()
	suite.mockFundLockSvc.On("ReleaseLock", ctx, lockID, mock.AnythingOfType("dto.ReleaseLockRequest"), userID).
		Return(&domain.FundLock{LockID: lockID, Status: domain.LockReleased}, nil).Once()

	rolled, err := suite.service.Rollback(ctx, saga.SagaID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SagaRolledBack, rolled.Status)
	suite.Require().Len(rolled.RollbackSteps, 3)

	// Reverse completion order: notify_user, allocate_shares, lock_funds.
	suite.Equal(domain.StepNotifyUser, rolled.RollbackSteps[0].Name)
	suite.True(rolled.RollbackSteps[0].Success)
	suite.Equal(domain.StepAllocateShares, rolled.RollbackSteps[1].Name)
	suite.False(rolled.RollbackSteps[1].Success)
	suite.NotEmpty(rolled.RollbackSteps[1].Error)
	suite.Equal(domain.StepLockFunds, rolled.RollbackSteps[2].Name)
	suite.True(rolled.RollbackSteps[2].Success)

	suite.mockFundLockSvc.AssertExpectations(suite.T())
	suite.mockInventorySvc.AssertExpectations(suite.T())
}

func (suite *SagaServiceTestSuite) TestRollback_AlreadyReleasedLockTolerated() {
	ctx := context.Background()
	userID := uuid.NewString()
	lockID := uuid.NewString()

	saga := &domain.PaymentSaga{
		SagaID:      uuid.NewString(),
		PaymentID:   uuid.NewString(),
		Status:      domain.SagaFailed,
		TotalSteps:  2,
		CurrentStep: 1,
		CompletedSteps: []domain.SagaStep{
			{Name: domain.StepLockFunds, Data: map[string]string{"lock_id": lockID}},
		},
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaFailed).Return(nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaRollingBack).Return(nil).Once()

	suite.mockFundLockSvc.On("ReleaseLock", ctx, lockID, mock.AnythingOfType("dto.ReleaseLockRequest"), userID).
		Return(nil, fmt.Errorf("%w: fund lock is not active", apperrors.ErrConflict)).Once()

	rolled, err := suite.service.Rollback(ctx, saga.SagaID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SagaRolledBack, rolled.Status)
	suite.Require().Len(rolled.RollbackSteps, 1)
	suite.True(rolled.RollbackSteps[0].Success)
}

func (suite *SagaServiceTestSuite) TestRollback_FromInProgressRejected() {
	ctx := context.Background()
	saga := &domain.PaymentSaga{
		SagaID: uuid.NewString(),
		Status: domain.SagaInProgress,
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()

	_, err := suite.service.Rollback(ctx, saga.SagaID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockSagaRepo.AssertNotCalled(suite.T(), "UpdateSaga", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SagaServiceTestSuite) TestCompleteSaga_RequiresAllSteps() {
	ctx := context.Background()
	saga := &domain.PaymentSaga{
		SagaID:      uuid.NewString(),
		Status:      domain.SagaInProgress,
		TotalSteps:  3,
		CurrentStep: 2,
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()

	_, err := suite.service.CompleteSaga(ctx, saga.SagaID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockSagaRepo.AssertNotCalled(suite.T(), "UpdateSaga", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SagaServiceTestSuite) TestFailSaga_RecordsStepAndReason() {
	ctx := context.Background()
	userID := uuid.NewString()
	saga := &domain.PaymentSaga{
		SagaID:      uuid.NewString(),
		Status:      domain.SagaInProgress,
		TotalSteps:  3,
		CurrentStep: 1,
	}

	suite.mockSagaRepo.On("FindSagaByID", ctx, saga.SagaID).Return(saga, nil).Once()
	suite.mockSagaRepo.On("UpdateSaga", ctx, mock.AnythingOfType("domain.PaymentSaga"), domain.SagaInProgress).Return(nil).Once()

	failed, err := suite.service.FailSaga(ctx, saga.SagaID, dto.FailSagaRequest{
		StepName: "gateway_charge",
		Reason:   "gateway timeout",
	}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SagaFailed, failed.Status)
	suite.Equal(domain.StepGatewayCharge, failed.FailedStep)
	suite.Equal("gateway timeout", failed.FailureReason)
	suite.WithinDuration(time.Now(), failed.LastUpdatedAt, time.Second)
}

func TestSagaServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SagaServiceTestSuite))
}
