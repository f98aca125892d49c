package domain

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
)

// SagaStatus tracks a multi-step payment pipeline.
type SagaStatus string

const (
	SagaPending     SagaStatus = "pending"
	SagaInProgress  SagaStatus = "in_progress"
	SagaCompleted   SagaStatus = "completed"
	SagaFailed      SagaStatus = "failed"
	SagaRollingBack SagaStatus = "rolling_back"
	SagaRolledBack  SagaStatus = "rolled_back"
)

// SagaStepName is the closed set of pipeline steps. Each name has exactly one
// compensator registered in the saga service; adding a step without one is a
// construction-time error, not a runtime surprise.
type SagaStepName string

const (
	StepLockFunds      SagaStepName = "lock_funds"
	StepGatewayCharge  SagaStepName = "gateway_charge"
	StepAllocateShares SagaStepName = "allocate_shares"
	StepCreditBonus    SagaStepName = "credit_bonus"
	StepNotifyUser     SagaStepName = "notify_user"
)

// SagaStep is one append-only record of a completed pipeline step. Step data is
// written once and never altered.
type SagaStep struct {
	Name        SagaStepName      `json:"name"`
	CompletedAt time.Time         `json:"completedAt"`
	Data        map[string]string `json:"data,omitempty"` // Step-local references (lock id, log id, entry id)
}

// RollbackStep records the outcome of one compensating action. A failed
// compensation is surfaced here, it never halts the remaining compensations.
type RollbackStep struct {
	Name          SagaStepName `json:"name"`
	Success       bool         `json:"success"`
	Error         string       `json:"error,omitempty"`
	CompensatedAt time.Time    `json:"compensatedAt"`
}

var sagaTransitions = map[SagaStatus][]SagaStatus{
	SagaPending:     {SagaInProgress, SagaFailed},
	SagaInProgress:  {SagaInProgress, SagaCompleted, SagaFailed},
	SagaFailed:      {SagaRollingBack},
	SagaRollingBack: {SagaRolledBack},
}

// PaymentSaga tracks a payment pipeline with compensating rollback. The step
// log is append-only; only status and step-progression fields ever change.
type PaymentSaga struct {
	SagaID         string         `json:"sagaID"`
	PaymentID      string         `json:"paymentID"`
	Status         SagaStatus     `json:"status"`
	TotalSteps     int            `json:"totalSteps"`
	CurrentStep    int            `json:"currentStep"`
	CompletedSteps []SagaStep     `json:"completedSteps"`
	RollbackSteps  []RollbackStep `json:"rollbackSteps,omitempty"`
	FailedStep     SagaStepName   `json:"failedStep,omitempty"`
	FailureReason  string         `json:"failureReason,omitempty"`
	AuditFields
}

// CanTransitionTo validates a saga status change against the transition table.
func (s *PaymentSaga) CanTransitionTo(next SagaStatus) error {
	for _, allowed := range sagaTransitions[s.Status] {
		if allowed == next {
			return nil
		}
	}
	legal := make([]string, 0, len(sagaTransitions[s.Status]))
	for _, st := range sagaTransitions[s.Status] {
		legal = append(legal, string(st))
	}
	return apperrors.NewInvalidTransitionError("saga "+s.SagaID, string(s.Status), string(next), legal)
}
