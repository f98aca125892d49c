package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/paisetrail/ledger_backend/internal/models"
)

// ToModelSaga converts a domain PaymentSaga to a model PaymentSaga, serializing
// the step logs to JSONB payloads.
func ToModelSaga(d domain.PaymentSaga) (models.PaymentSaga, error) {
	completed, err := json.Marshal(d.CompletedSteps)
	if err != nil {
		return models.PaymentSaga{}, fmt.Errorf("failed to marshal completed steps: %w", err)
	}
	rollback, err := json.Marshal(d.RollbackSteps)
	if err != nil {
		return models.PaymentSaga{}, fmt.Errorf("failed to marshal rollback steps: %w", err)
	}
	return models.PaymentSaga{
		SagaID:         d.SagaID,
		PaymentID:      d.PaymentID,
		Status:         string(d.Status),
		TotalSteps:     d.TotalSteps,
		CurrentStep:    d.CurrentStep,
		CompletedSteps: completed,
		RollbackSteps:  rollback,
		FailedStep:     string(d.FailedStep),
		FailureReason:  d.FailureReason,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainSaga converts a model PaymentSaga to a domain PaymentSaga. A step log
// that fails to decode is a data integrity fault, not a recoverable condition.
func ToDomainSaga(m models.PaymentSaga) (domain.PaymentSaga, error) {
	var completed []domain.SagaStep
	if len(m.CompletedSteps) > 0 {
		if err := json.Unmarshal(m.CompletedSteps, &completed); err != nil {
			return domain.PaymentSaga{}, fmt.Errorf("%w: undecodable completed steps for saga %s: %v", apperrors.ErrDataIntegrity, m.SagaID, err)
		}
	}
	var rollback []domain.RollbackStep
	if len(m.RollbackSteps) > 0 {
		if err := json.Unmarshal(m.RollbackSteps, &rollback); err != nil {
			return domain.PaymentSaga{}, fmt.Errorf("%w: undecodable rollback steps for saga %s: %v", apperrors.ErrDataIntegrity, m.SagaID, err)
		}
	}
	return domain.PaymentSaga{
		SagaID:         m.SagaID,
		PaymentID:      m.PaymentID,
		Status:         domain.SagaStatus(m.Status),
		TotalSteps:     m.TotalSteps,
		CurrentStep:    m.CurrentStep,
		CompletedSteps: completed,
		RollbackSteps:  rollback,
		FailedStep:     domain.SagaStepName(m.FailedStep),
		FailureReason:  m.FailureReason,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}, nil
}
