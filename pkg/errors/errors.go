package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure kinds the storefront core distinguishes.
// Callers classify with errors.Is against these.
var (
	// ErrTransport covers network-level failures: timeouts, connection
	// refusal, DNS. Always retryable.
	ErrTransport = errors.New("transport failure")

	// ErrServer covers 5xx responses from the backend. Retryable with backoff.
	ErrServer = errors.New("server error")

	// ErrAuth covers 401 and invalid-token failures. Not retryable; triggers
	// session teardown.
	ErrAuth = errors.New("authentication failure")

	// ErrValidation covers 422 responses and structured validation payloads.
	// Not retryable; carries field-level messages.
	ErrValidation = errors.New("validation failure")

	// ErrNotFound covers absent resources.
	ErrNotFound = errors.New("resource not found")

	// ErrShape marks a response that arrived but matched no recognized
	// schema. Treated as a backend contract violation; not retried.
	ErrShape = errors.New("unrecognized response shape")

	// ErrInvalidRecord marks a raw product record missing its identity field.
	ErrInvalidRecord = errors.New("invalid product record")

	// ErrEmptyResult marks an aggregate operation whose final pool was empty
	// where the contract requires at least one element.
	ErrEmptyResult = errors.New("empty result set")
)

// AppError is a structured error with a stable code, an HTTP status mapping,
// and an optional wrapped cause.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
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

// Transport wraps a network-level failure.
func Transport(err error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_ERROR",
		Message: "could not reach the backend",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// Server creates an error for a 5xx backend response.
func Server(status int, body string) *AppError {
	return &AppError{
		Code:    "SERVER_ERROR",
		Message: fmt.Sprintf("backend returned status %d: %s", status, body),
		Status:  status,
		Err:     ErrServer,
	}
}

// Auth creates a 401 error.
func Auth(message string) *AppError {
	return &AppError{
		Code:    "AUTH_ERROR",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrAuth,
	}
}

// Validation creates a 422 error with optional per-field messages.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Fields:  fields,
		Err:     ErrValidation,
	}
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

// Shape creates an error for a response that matched no recognized schema.
func Shape(detail string) *AppError {
	return &AppError{
		Code:    "SHAPE_ERROR",
		Message: detail,
		Status:  http.StatusBadGateway,
		Err:     ErrShape,
	}
}

// InvalidRecord creates an error for a raw record lacking its identity field.
func InvalidRecord(detail string) *AppError {
	return &AppError{
		Code:    "INVALID_RECORD",
		Message: detail,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInvalidRecord,
	}
}

// InvalidInput creates a 400 error for caller mistakes.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// EmptyCatalog creates an error for a catalog listing that yielded no valid
// products. The catalog is never empty by design, so this is a hard failure
// rather than an empty-state result.
func EmptyCatalog() *AppError {
	return &AppError{
		Code:    "EMPTY_CATALOG",
		Message: "catalog contained no valid products",
		Status:  http.StatusBadGateway,
		Err:     ErrEmptyResult,
	}
}

// EmptyCategory creates an error for a category query that matched nothing.
func EmptyCategory(label string) *AppError {
	return &AppError{
		Code:    "EMPTY_CATEGORY",
		Message: fmt.Sprintf("no products matched category %q", label),
		Status:  http.StatusNotFound,
		Err:     ErrEmptyResult,
	}
}

// EmptyRecommendations creates an error for a recommendation pool that ended
// up empty after self-exclusion.
func EmptyRecommendations() *AppError {
	return &AppError{
		Code:    "EMPTY_RECOMMENDATIONS",
		Message: "no recommendations available",
		Status:  http.StatusNotFound,
		Err:     ErrEmptyResult,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// CanRetry reports whether the failure class is transient. Only transport
// failures and 5xx server errors qualify; auth, validation, not-found, and
// shape errors never do.
func CanRetry(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServer)
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
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransport), errors.Is(err, ErrShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
