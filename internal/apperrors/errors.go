package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrConflict indicates an optimistic concurrency check failed (e.g. a payment
// status or lot counter changed under the caller). The whole operation should be
// retried, not just the write.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrImmutableEntry indicates an attempted update or delete of a posted ledger
// entry or one of its lines. Posted journal rows are append-only, corrections go
// through reversal entries.
var ErrImmutableEntry = errors.New("ledger entry is immutable once posted")

// ErrImmutableLog indicates an attempted change to the core fields of a share
// allocation log. Only the reversal marker fields may change, and only once.
var ErrImmutableLog = errors.New("allocation log is immutable once written")

// ErrUnbalancedEntry indicates the debit and credit sums of a ledger entry differ.
var ErrUnbalancedEntry = errors.New("ledger entry debits and credits do not balance")

// ErrProvenance indicates a bulk purchase is missing its required source
// justification fields.
var ErrProvenance = errors.New("bulk purchase provenance requirements not met")

// ErrInsufficientInventory indicates an allocation amount exceeds the remaining
// value of a lot.
var ErrInsufficientInventory = errors.New("allocation exceeds remaining lot value")

// ErrDataIntegrity indicates a monetary field expected to hold integer paise was
// null or absent. This is always fatal, never silently defaulted.
var ErrDataIntegrity = errors.New("monetary data integrity violation")

// ErrInvalidTransition indicates a payment or saga status change not present in
// the allowed-transitions table. Use NewInvalidTransitionError to include the
// diagnostic context.
var ErrInvalidTransition = errors.New("invalid status transition")
