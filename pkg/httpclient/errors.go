package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/cipr/storefront/pkg/errors"
)

// upstreamErrorBody covers the error shapes the commerce backend emits.
// Simple failures carry a single string under "error" or "message"; 422
// validation failures carry a map of field names to message lists under
// "errors".
type upstreamErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into the matching AppError class. The response body is fully consumed
// and closed.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx).
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Server(resp.StatusCode, fmt.Sprintf("%s: failed to read body: %v", operation, err))
	}

	var upstream upstreamErrorBody
	_ = json.Unmarshal(bodyBytes, &upstream)

	message := upstream.Error
	if message == "" {
		message = upstream.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(bodyBytes))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if message == "" {
			message = "request was not authorized"
		}
		return apperrors.Auth(fmt.Sprintf("%s: %s", operation, message))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(operation, message)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.Validation(fmt.Sprintf("%s: %s", operation, message), flattenFieldErrors(upstream.Errors))
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", operation, message))
	case resp.StatusCode >= 500:
		return apperrors.Server(resp.StatusCode, fmt.Sprintf("%s: %s", operation, message))
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: fmt.Sprintf("%s: %s", operation, message),
			Status:  resp.StatusCode,
		}
	}
}

// flattenFieldErrors collapses the backend's field->messages map into the
// single-message-per-field form AppError carries.
func flattenFieldErrors(in map[string][]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	fields := make(map[string]string, len(in))
	for field, msgs := range in {
		fields[field] = strings.Join(msgs, "; ")
	}
	return fields
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors are terminal: retrying the same request cannot succeed.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
