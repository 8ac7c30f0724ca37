package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// Domain error kinds. Each one wraps the generic sentinel it specializes so
// errors.Is matches both.
var (
	ErrDuplicateIdentity = fmt.Errorf("duplicate identity: %w", ErrAlreadyExists)
	ErrAuthentication    = fmt.Errorf("authentication failed: %w", ErrUnauthorized)
	ErrUnauthenticated   = fmt.Errorf("unauthenticated: %w", ErrUnauthorized)
	ErrInvalidToken      = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrValidation        = fmt.Errorf("validation failed: %w", ErrInvalidInput)
	ErrUserNotFound      = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrPersistence       = fmt.Errorf("persistence failure: %w", ErrServiceUnavail)
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// DuplicateIdentity creates a 409 error for a username that is already registered.
func DuplicateIdentity(username string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_IDENTITY",
		Message: fmt.Sprintf("username %q is already registered", username),
		Status:  http.StatusConflict,
		Err:     ErrDuplicateIdentity,
	}
}

// AuthenticationFailure creates a 401 error for rejected credentials. The
// message is the same whatever check failed.
func AuthenticationFailure() *AppError {
	return &AppError{
		Code:    "AUTHENTICATION_FAILED",
		Message: "invalid username or password",
		Status:  http.StatusUnauthorized,
		Err:     ErrAuthentication,
	}
}

// Unauthenticated creates a 401 error for a call that carried no credential.
func Unauthenticated() *AppError {
	return &AppError{
		Code:    "UNAUTHENTICATED",
		Message: "missing bearer credential",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// InvalidToken creates a 401 error for a credential that failed verification.
// Expired, malformed and badly signed tokens all map here.
func InvalidToken() *AppError {
	return &AppError{
		Code:    "INVALID_TOKEN",
		Message: "invalid or expired token",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidToken,
	}
}

// Validation creates a 400 error listing the offending fields.
func Validation(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid fields: " + strings.Join(names, ", "),
		Fields:  fields,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// UserNotFound creates a 404 error for an identity that no longer exists.
func UserNotFound(id string) *AppError {
	return &AppError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
		Status:  http.StatusNotFound,
		Err:     fmt.Errorf("%w: %s", ErrUserNotFound, id),
	}
}

// PersistenceFailure creates a 503 error for storage unavailability. The
// message is generic; the cause is kept for logging only.
func PersistenceFailure(err error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_FAILURE",
		Message: "service temporarily unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrPersistence, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
