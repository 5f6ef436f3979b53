package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrTransport, ErrServer, ErrAuth, ErrValidation,
		ErrNotFound, ErrShape, ErrInvalidRecord, ErrEmptyResult,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("connection reset by peer")
	appErr := &AppError{Code: "TRANSPORT_ERROR", Message: "could not reach the backend", Err: inner}
	assert.Contains(t, appErr.Error(), "TRANSPORT_ERROR")
	assert.Contains(t, appErr.Error(), "could not reach the backend")
	assert.Contains(t, appErr.Error(), "connection reset by peer")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestTransport(t *testing.T) {
	cause := fmt.Errorf("dial tcp: i/o timeout")
	err := Transport(cause)
	require.NotNil(t, err)
	assert.Equal(t, "TRANSPORT_ERROR", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestServer(t *testing.T) {
	err := Server(http.StatusServiceUnavailable, "maintenance")
	require.NotNil(t, err)
	assert.Equal(t, "SERVER_ERROR", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Message, "503")
	assert.Contains(t, err.Message, "maintenance")
	assert.True(t, errors.Is(err, ErrServer))
}

func TestAuth(t *testing.T) {
	err := Auth("token rejected")
	require.NotNil(t, err)
	assert.Equal(t, "AUTH_ERROR", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestValidation_CarriesFields(t *testing.T) {
	err := Validation("invalid payload", map[string]string{"quantity": "must be positive"})
	require.NotNil(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "must be positive", err.Fields["quantity"])
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "abc-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestShape(t *testing.T) {
	err := Shape("no product list under any known key")
	require.NotNil(t, err)
	assert.Equal(t, "SHAPE_ERROR", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestInvalidRecord(t *testing.T) {
	err := InvalidRecord("record missing id")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_RECORD", err.Code)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("product id is required")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestEmptyErrors(t *testing.T) {
	assert.True(t, errors.Is(EmptyCatalog(), ErrEmptyResult))
	assert.True(t, errors.Is(EmptyCategory("SHOES"), ErrEmptyResult))
	assert.True(t, errors.Is(EmptyRecommendations(), ErrEmptyResult))
	assert.Contains(t, EmptyCategory("SHOES").Message, "SHOES")
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrServer, "refreshing catalog")
	assert.True(t, errors.Is(err, ErrServer))
	assert.Contains(t, err.Error(), "refreshing catalog")
}

// --- Retry classification ---

func TestCanRetry_TransportAndServer(t *testing.T) {
	assert.True(t, CanRetry(Transport(fmt.Errorf("timeout"))))
	assert.True(t, CanRetry(Server(http.StatusBadGateway, "")))
}

func TestCanRetry_NeverForTerminalFailures(t *testing.T) {
	assert.False(t, CanRetry(Auth("expired")))
	assert.False(t, CanRetry(Validation("bad", nil)))
	assert.False(t, CanRetry(NotFound("product", "1")))
	assert.False(t, CanRetry(Shape("garbage")))
	assert.False(t, CanRetry(nil))
}

func TestCanRetry_Wrapped(t *testing.T) {
	err := Wrap(Transport(fmt.Errorf("refused")), "fetching cart")
	assert.True(t, CanRetry(err))
}

// --- HTTP status mapping ---

func TestHTTPStatus_FromAppError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("product", "9")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Auth("nope")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Validation("bad", nil)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Transport(fmt.Errorf("x"))))
}

func TestHTTPStatus_FromSentinel(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrAuth))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrShape))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
