package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
	"github.com/paisetrail/ledger_backend/internal/utils"
)

var (
	ErrSagaExists      = errors.New("a saga already exists for this payment")
	ErrUnknownSagaStep = errors.New("step name has no registered compensator")
	ErrTooManySteps    = errors.New("saga has already completed all its steps")
)

// StepCompensator undoes the side effect of one completed pipeline step during
// rollback. Implementations receive the step's recorded data (lock id,
// allocation log id, entry id) and must be safe to retry.
type StepCompensator interface {
	Compensate(ctx context.Context, step domain.SagaStep, userID string) error
}

// StepCompensatorFunc adapts a function to the StepCompensator interface.
type StepCompensatorFunc func(ctx context.Context, step domain.SagaStep, userID string) error

func (f StepCompensatorFunc) Compensate(ctx context.Context, step domain.SagaStep, userID string) error {
	return f(ctx, step, userID)
}

// sagaService orchestrates multi-step payment pipelines with best-effort LIFO
// compensation. The compensator registry is closed at construction: a step name
// outside it can never be appended to a saga, so rollback always knows how to
// undo everything it finds in the log.
type sagaService struct {
	sagaRepo     portsrepo.SagaRepositoryFacade
	compensators map[domain.SagaStepName]StepCompensator
	audit        *utils.PosthogClientWrapper
}

// NewSagaService creates a new SagaService wiring one compensator per step.
func NewSagaService(
	sagaRepo portsrepo.SagaRepositoryFacade,
	fundLockSvc portssvc.FundLockSvcFacade,
	inventorySvc portssvc.InventorySvcFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	audit *utils.PosthogClientWrapper,
) portssvc.SagaSvcFacade {
	compensators := map[domain.SagaStepName]StepCompensator{
		domain.StepLockFunds: StepCompensatorFunc(func(ctx context.Context, step domain.SagaStep, userID string) error {
			lockID := step.Data["lock_id"]
			if lockID == "" {
				return fmt.Errorf("%w: lock_funds step carries no lock_id", apperrors.ErrDataIntegrity)
			}
			_, err := fundLockSvc.ReleaseLock(ctx, lockID, dto.ReleaseLockRequest{Reason: "saga rollback"}, userID)
			if errors.Is(err, apperrors.ErrConflict) {
				// Lock already released or expired; the funds are free either way.
				return nil
			}
			return err
		}),
		domain.StepGatewayCharge: StepCompensatorFunc(func(ctx context.Context, step domain.SagaStep, userID string) error {
			entryID := step.Data["entry_id"]
			if entryID == "" {
				// Charge never produced a posting; nothing to undo.
				return nil
			}
			_, err := ledgerSvc.ReverseEntry(ctx, entryID, "saga rollback of gateway charge", userID)
			if errors.Is(err, apperrors.ErrConflict) {
				return nil
			}
			return err
		}),
		domain.StepAllocateShares: StepCompensatorFunc(func(ctx context.Context, step domain.SagaStep, userID string) error {
			logID := step.Data["allocation_log_id"]
			if logID == "" {
				return fmt.Errorf("%w: allocate_shares step carries no allocation_log_id", apperrors.ErrDataIntegrity)
			}
			err := inventorySvc.ReverseAllocation(ctx, logID, "saga rollback", userID)
			if errors.Is(err, apperrors.ErrImmutableLog) {
				// Already reversed by an earlier attempt.
				return nil
			}
			return err
		}),
		domain.StepCreditBonus: StepCompensatorFunc(func(ctx context.Context, step domain.SagaStep, userID string) error {
			logID := step.Data["allocation_log_id"]
			if logID == "" {
				return fmt.Errorf("%w: credit_bonus step carries no allocation_log_id", apperrors.ErrDataIntegrity)
			}
			err := inventorySvc.ReverseAllocation(ctx, logID, "saga rollback of bonus credit", userID)
			if errors.Is(err, apperrors.ErrImmutableLog) {
				return nil
			}
			return err
		}),
		domain.StepNotifyUser: StepCompensatorFunc(func(ctx context.Context, step domain.SagaStep, userID string) error {
			// Notifications cannot be unsent; compensation is a no-op.
			return nil
		}),
	}

	return &sagaService{
		sagaRepo:     sagaRepo,
		compensators: compensators,
		audit:        audit,
	}
}

var _ portssvc.SagaSvcFacade = (*sagaService)(nil)

// StartSaga creates a saga for a payment in the pending state. The first
// completed step moves it to in_progress.
func (s *sagaService) StartSaga(ctx context.Context, req dto.CreateSagaRequest, userID string) (*domain.PaymentSaga, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.sagaRepo.FindSagaByPaymentID(ctx, req.PaymentID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing saga", slog.String("error", err.Error()), slog.String("payment_id", req.PaymentID))
		return nil, fmt.Errorf("failed to check for existing saga: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrSagaExists.Error())
	}

	now := time.Now().UTC()
	saga := domain.PaymentSaga{
		SagaID:         uuid.NewString(),
		PaymentID:      req.PaymentID,
		Status:         domain.SagaPending,
		TotalSteps:     req.TotalSteps,
		CurrentStep:    0,
		CompletedSteps: []domain.SagaStep{},
		AuditFields:    auditFieldsFor(userID, now),
	}

	if err := s.sagaRepo.SaveSaga(ctx, saga); err != nil {
		logger.Error("Failed to save saga", slog.String("error", err.Error()), slog.String("payment_id", req.PaymentID))
		return nil, fmt.Errorf("failed to save saga: %w", err)
	}

	logger.Info("Saga started", slog.String("saga_id", saga.SagaID), slog.String("payment_id", req.PaymentID), slog.Int("total_steps", req.TotalSteps))
	return &saga, nil
}

// CompleteStep appends a completed step to the saga's log. Only step names with
// a registered compensator are accepted, keeping rollback total.
func (s *sagaService) CompleteStep(ctx context.Context, sagaID string, req dto.CompleteStepRequest, userID string) (*domain.PaymentSaga, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	stepName := domain.SagaStepName(req.Name)
	if _, registered := s.compensators[stepName]; !registered {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSagaStep, req.Name)
	}

	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga %s: %w", sagaID, err)
	}

	if err := saga.CanTransitionTo(domain.SagaInProgress); err != nil {
		return nil, err
	}
	if saga.CurrentStep >= saga.TotalSteps {
		return nil, fmt.Errorf("%w: %d of %d done", ErrTooManySteps, saga.CurrentStep, saga.TotalSteps)
	}

	expected := saga.Status
	now := time.Now().UTC()
	saga.Status = domain.SagaInProgress
	saga.CurrentStep++
	saga.CompletedSteps = append(saga.CompletedSteps, domain.SagaStep{
		Name:        stepName,
		CompletedAt: now,
		Data:        req.Data,
	})
	saga.LastUpdatedAt = now
	saga.LastUpdatedBy = userID

	if err := s.sagaRepo.UpdateSaga(ctx, *saga, expected); err != nil {
		logger.Error("Failed to append saga step", slog.String("error", err.Error()), slog.String("saga_id", sagaID))
		return nil, fmt.Errorf("failed to update saga %s: %w", sagaID, err)
	}

	logger.Info("Saga step completed", slog.String("saga_id", sagaID), slog.String("step", req.Name), slog.Int("current_step", saga.CurrentStep))
	return saga, nil
}

// CompleteSaga marks a saga whose steps all finished as completed.
func (s *sagaService) CompleteSaga(ctx context.Context, sagaID string, userID string) (*domain.PaymentSaga, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga %s: %w", sagaID, err)
	}

	if err := saga.CanTransitionTo(domain.SagaCompleted); err != nil {
		return nil, err
	}
	if saga.CurrentStep < saga.TotalSteps {
		return nil, fmt.Errorf("%w: only %d of %d steps completed", apperrors.ErrConflict, saga.CurrentStep, saga.TotalSteps)
	}

	expected := saga.Status
	now := time.Now().UTC()
	saga.Status = domain.SagaCompleted
	saga.LastUpdatedAt = now
	saga.LastUpdatedBy = userID

	if err := s.sagaRepo.UpdateSaga(ctx, *saga, expected); err != nil {
		return nil, fmt.Errorf("failed to update saga %s: %w", sagaID, err)
	}

	logger.Info("Saga completed", slog.String("saga_id", sagaID))
	return saga, nil
}

// FailSaga records the failed step and reason and marks the saga failed.
func (s *sagaService) FailSaga(ctx context.Context, sagaID string, req dto.FailSagaRequest, userID string) (*domain.PaymentSaga, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga %s: %w", sagaID, err)
	}

	if err := saga.CanTransitionTo(domain.SagaFailed); err != nil {
		return nil, err
	}

	expected := saga.Status
	now := time.Now().UTC()
	saga.Status = domain.SagaFailed
	saga.FailedStep = domain.SagaStepName(req.StepName)
	saga.FailureReason = req.Reason
	saga.LastUpdatedAt = now
	saga.LastUpdatedBy = userID

	if err := s.sagaRepo.UpdateSaga(ctx, *saga, expected); err != nil {
		return nil, fmt.Errorf("failed to update saga %s: %w", sagaID, err)
	}

	logger.Warn("Saga failed",
		slog.String("saga_id", sagaID),
		slog.String("failed_step", req.StepName),
		slog.String("reason", req.Reason),
	)
	return saga, nil
}

// Rollback compensates every completed step in reverse order. A compensator
// failure is recorded and the loop continues; the saga always ends rolled_back
// with per-step outcomes for operators to act on.
func (s *sagaService) Rollback(ctx context.Context, sagaID string, userID string) (*domain.PaymentSaga, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga %s: %w", sagaID, err)
	}

	if err := saga.CanTransitionTo(domain.SagaRollingBack); err != nil {
		return nil, err
	}

	expected := saga.Status
	saga.Status = domain.SagaRollingBack
	now := time.Now().UTC()
	saga.LastUpdatedAt = now
	saga.LastUpdatedBy = userID
	if err := s.sagaRepo.UpdateSaga(ctx, *saga, expected); err != nil {
		return nil, fmt.Errorf("failed to move saga %s to rolling_back: %w", sagaID, err)
	}

	rollbackSteps := make([]domain.RollbackStep, 0, len(saga.CompletedSteps))
	failures := 0
	for i := len(saga.CompletedSteps) - 1; i >= 0; i-- {
		step := saga.CompletedSteps[i]
		outcome := domain.RollbackStep{
			Name:          step.Name,
			Success:       true,
			CompensatedAt: time.Now().UTC(),
		}

		compensator := s.compensators[step.Name]
		if compensator == nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("no compensator registered for step %s", step.Name)
		} else if err := compensator.Compensate(ctx, step, userID); err != nil {
			outcome.Success = false
			outcome.Error = err.Error()
		}

		if !outcome.Success {
			failures++
			logger.Error("Saga compensation failed, continuing with remaining steps",
				slog.String("saga_id", sagaID),
				slog.String("step", string(step.Name)),
				slog.String("error", outcome.Error),
			)
		}
		rollbackSteps = append(rollbackSteps, outcome)
	}

	saga.Status = domain.SagaRolledBack
	saga.RollbackSteps = rollbackSteps
	now = time.Now().UTC()
	saga.LastUpdatedAt = now
	saga.LastUpdatedBy = userID
	if err := s.sagaRepo.UpdateSaga(ctx, *saga, domain.SagaRollingBack); err != nil {
		return nil, fmt.Errorf("failed to finalize rollback of saga %s: %w", sagaID, err)
	}

	s.audit.Enqueue(userID, "saga_rollback_completed", map[string]any{
		"saga_id":          sagaID,
		"payment_id":       saga.PaymentID,
		"steps_rolled":     len(rollbackSteps),
		"failed_rollbacks": failures,
		"completed_at":     now,
	})

	logger.Info("Saga rollback completed",
		slog.String("saga_id", sagaID),
		slog.Int("steps_rolled", len(rollbackSteps)),
		slog.Int("failed_rollbacks", failures),
	)
	return saga, nil
}

// GetSagaByID retrieves a saga by its unique identifier.
func (s *sagaService) GetSagaByID(ctx context.Context, sagaID string) (*domain.PaymentSaga, error) {
	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga %s: %w", sagaID, err)
	}
	return saga, nil
}

// GetSagaByPaymentID retrieves the saga driving a payment.
func (s *sagaService) GetSagaByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentSaga, error) {
	saga, err := s.sagaRepo.FindSagaByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find saga for payment %s: %w", paymentID, err)
	}
	return saga, nil
}
