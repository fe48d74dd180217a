package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data or a precondition failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent modification or a uniqueness clash.
var ErrConflict = fmt.Errorf("conflict: %w", ErrDuplicate)

// ErrForbidden indicates the caller is authenticated but may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidState indicates the resource is not in a state that allows the operation.
// It is a kind of validation failure.
var ErrInvalidState = fmt.Errorf("%w: invalid state", ErrValidation)

// ErrInternal is returned instead of unexpected errors so internals are not leaked to callers.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower level error with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// DomainError carries a user-facing message alongside the sentinel kind it belongs to.
// errors.Is(err, kind) holds for any DomainError created with that kind.
type DomainError struct {
	Kind    error
	Message string
}

// New creates a DomainError of the given kind.
func New(kind error, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// UserMessage returns the user-facing message of the first DomainError in err's chain,
// or fallback when there is none.
func UserMessage(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
