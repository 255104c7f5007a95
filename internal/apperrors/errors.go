package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user is not permitted to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates the resource changed underneath the caller (stale version).
var ErrConflict = errors.New("resource version conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInvalidTransition indicates the actor/role/action/current-status combination
// is not permitted by the claim workflow table. The claim is left unchanged.
var ErrInvalidTransition = errors.New("invalid claim transition")

// ErrIncompleteBatch indicates a data-entry worker tried to complete their batch
// while one or more invoices assigned to them still lack a decision.
var ErrIncompleteBatch = errors.New("data entry batch incomplete")

// ErrUnknownInvoice indicates a target invoice id does not belong to the claim.
var ErrUnknownInvoice = errors.New("invoice does not belong to claim")

// ErrAnalysisUnavailable indicates the external invoice analysis service failed
// or timed out. Workflow transitions never depend on it; affected fields simply
// stay empty and editable.
var ErrAnalysisUnavailable = errors.New("invoice analysis unavailable")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
