package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrInsufficientFunds rejects a charge the account balance cannot cover.
func ErrInsufficientFunds() *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: "insufficient coin balance", Status: 400}
}

// ErrInvalidQuantity rejects a pack quantity outside the allow-list.
func ErrInvalidQuantity(quantity int) *AppError {
	return &AppError{Code: "INVALID_QUANTITY", Message: fmt.Sprintf("quantity %d is not allowed", quantity), Status: 400}
}

// ErrInvalidConfiguration rejects caller-supplied parameters outside allow-lists
// (for example a team battle whose seats do not factor into teams).
func ErrInvalidConfiguration(msg string) *AppError {
	return &AppError{Code: "INVALID_CONFIGURATION", Message: msg, Status: 400}
}

// ErrEmptyPool rejects a draw against a pool with no items or zero total weight.
// Raised before any charge, so it never leaves a side effect.
func ErrEmptyPool(msg string) *AppError {
	return &AppError{Code: "EMPTY_POOL", Message: msg, Status: 422}
}

// ErrStateConflict rejects an action against a battle or pull in the wrong state.
func ErrStateConflict(msg string) *AppError {
	return &AppError{Code: "STATE_CONFLICT", Message: msg, Status: 409}
}

// ErrStateConflictCause wraps a sentinel so callers can branch on the
// conflict kind with errors.Is instead of matching message text.
func ErrStateConflictCause(msg string, cause error) *AppError {
	return &AppError{Code: "STATE_CONFLICT", Message: msg, Status: 409, Cause: cause}
}

// ErrUnresolvedWinner aborts a finalize that cannot deterministically pick a
// winner. Fatal for the settlement transaction; nothing is paid out.
func ErrUnresolvedWinner(msg string) *AppError {
	return &AppError{Code: "UNRESOLVED_WINNER", Message: msg, Status: 500}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
