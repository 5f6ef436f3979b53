package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(addLineRequest{ProductID: "42", Quantity: 2})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addLineRequest{Quantity: 1})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields()["product_id"])
}

func TestValidate_BelowMinimum(t *testing.T) {
	err := Validate(addLineRequest{ProductID: "42", Quantity: 0})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields()["quantity"], "greater than or equal to 1")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(addLineRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_id")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate_OK(t *testing.T) {
	r := httptest.NewRequest("POST", "/cart", strings.NewReader(`{"product_id":"7","quantity":3}`))

	var req addLineRequest
	err := DecodeAndValidate(r, &req)
	require.NoError(t, err)
	assert.Equal(t, "7", req.ProductID)
	assert.Equal(t, 3, req.Quantity)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/cart", strings.NewReader(`{not json`))

	var req addLineRequest
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
