package dto

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
)

// CreateSagaRequest defines the payload for starting a payment saga.
type CreateSagaRequest struct {
	PaymentID  string `json:"paymentID" binding:"required"`
	TotalSteps int    `json:"totalSteps" binding:"required,gt=0"`
}

// CompleteStepRequest records one completed pipeline step. Data holds the
// step-local references the compensator will need on rollback (lock id,
// allocation log id, ledger entry id).
type CompleteStepRequest struct {
	Name string            `json:"name" binding:"required,oneof=lock_funds gateway_charge allocate_shares credit_bonus notify_user"`
	Data map[string]string `json:"data"`
}

// FailSagaRequest records which step failed and why.
type FailSagaRequest struct {
	StepName string `json:"stepName" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// SagaStepResponse is one append-only step record.
type SagaStepResponse struct {
	Name        string            `json:"name"`
	CompletedAt time.Time         `json:"completedAt"`
	Data        map[string]string `json:"data,omitempty"`
}

// RollbackStepResponse is the outcome of one compensating action.
type RollbackStepResponse struct {
	Name          string    `json:"name"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	CompensatedAt time.Time `json:"compensatedAt"`
}

// SagaResponse defines the data returned for a payment saga.
type SagaResponse struct {
	SagaID         string                 `json:"sagaID"`
	PaymentID      string                 `json:"paymentID"`
	Status         string                 `json:"status"`
	TotalSteps     int                    `json:"totalSteps"`
	CurrentStep    int                    `json:"currentStep"`
	CompletedSteps []SagaStepResponse     `json:"completedSteps"`
	RollbackSteps  []RollbackStepResponse `json:"rollbackSteps,omitempty"`
	FailedStep     string                 `json:"failedStep,omitempty"`
	FailureReason  string                 `json:"failureReason,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// ToSagaResponse converts a domain.PaymentSaga to SagaResponse.
func ToSagaResponse(s *domain.PaymentSaga) SagaResponse {
	resp := SagaResponse{
		SagaID:        s.SagaID,
		PaymentID:     s.PaymentID,
		Status:        string(s.Status),
		TotalSteps:    s.TotalSteps,
		CurrentStep:   s.CurrentStep,
		FailedStep:    string(s.FailedStep),
		FailureReason: s.FailureReason,
		CreatedAt:     s.CreatedAt,
	}
	resp.CompletedSteps = make([]SagaStepResponse, len(s.CompletedSteps))
	for i, step := range s.CompletedSteps {
		resp.CompletedSteps[i] = SagaStepResponse{Name: string(step.Name), CompletedAt: step.CompletedAt, Data: step.Data}
	}
	if len(s.RollbackSteps) > 0 {
		resp.RollbackSteps = make([]RollbackStepResponse, len(s.RollbackSteps))
		for i, step := range s.RollbackSteps {
			resp.RollbackSteps[i] = RollbackStepResponse{Name: string(step.Name), Success: step.Success, Error: step.Error, CompensatedAt: step.CompensatedAt}
		}
	}
	return resp
}
