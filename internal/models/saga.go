package models

// PaymentSaga is the payment_sagas row. completed_steps and rollback_steps are
// JSONB columns; the step log is append-only.
type PaymentSaga struct {
	SagaID         string `db:"saga_id"`
	PaymentID      string `db:"payment_id"`
	Status         string `db:"status"`
	TotalSteps     int    `db:"total_steps"`
	CurrentStep    int    `db:"current_step"`
	CompletedSteps []byte `db:"completed_steps"`
	RollbackSteps  []byte `db:"rollback_steps"`
	FailedStep     string `db:"failed_step"`
	FailureReason  string `db:"failure_reason"`
	AuditFields
}
