package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/cipr/storefront/pkg/errors"
)

// User is the raw identity the backend returns for a valid token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Recognizable reports whether at least one identifying field is present.
func (u User) Recognizable() bool {
	return u.ID != "" || u.Name != "" || u.Email != ""
}

// The listing endpoint wraps its lists in named keys; older deployments
// return a single "products" key, and some return a bare array. All three
// shapes are accepted.
func decodeProductLists(body []byte) (ProductLists, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err == nil {
		known := false
		for _, key := range []string{"latest_products", "best_selling_products", "recommended_products", "products"} {
			if _, ok := keys[key]; ok {
				known = true
				break
			}
		}
		// An envelope with empty lists is a valid empty catalog, not a
		// contract violation; callers decide how to surface emptiness.
		if known {
			var envelope struct {
				Latest      []map[string]any `json:"latest_products"`
				BestSelling []map[string]any `json:"best_selling_products"`
				Recommended []map[string]any `json:"recommended_products"`
				Products    []map[string]any `json:"products"`
			}
			if err := json.Unmarshal(body, &envelope); err == nil {
				return ProductLists{
					Latest:      envelope.Latest,
					BestSelling: envelope.BestSelling,
					Recommended: envelope.Recommended,
					Products:    envelope.Products,
				}, nil
			}
		}
	}

	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return ProductLists{Products: bare}, nil
	}

	return ProductLists{}, apperrors.Shape("product listing response matched no known shape")
}

// decodeProductEnvelope accepts {"product": {...}} or a bare object.
func decodeProductEnvelope(body []byte) (map[string]any, error) {
	var envelope struct {
		Product map[string]any `json:"product"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Product) > 0 {
		return envelope.Product, nil
	}

	var bare map[string]any
	if err := json.Unmarshal(body, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	return nil, apperrors.Shape("product response matched no known shape")
}

// decodeProductsArray accepts {"products": [...]} or a bare array. An empty
// list is a valid result, not a shape failure.
func decodeProductsArray(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Products != nil {
		return envelope.Products, nil
	}

	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		if bare == nil {
			bare = []map[string]any{}
		}
		return bare, nil
	}

	// An empty object means the key was absent rather than malformed.
	var probe map[string]any
	if err := json.Unmarshal(body, &probe); err == nil {
		return []map[string]any{}, nil
	}

	return nil, apperrors.Shape("product list response matched no known shape")
}

func decodeCartEnvelope(body []byte) ([]CartEntry, error) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
		Cart  []json.RawMessage `json:"cart"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Items != nil:
			return decodeCartEntries(envelope.Items)
		case envelope.Cart != nil:
			return decodeCartEntries(envelope.Cart)
		}
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		return decodeCartEntries(bare)
	}

	return nil, apperrors.Shape("cart response matched no known shape")
}

func decodeCartEntries(raws []json.RawMessage) ([]CartEntry, error) {
	entries := make([]CartEntry, 0, len(raws))
	for _, raw := range raws {
		var record map[string]any
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, apperrors.Shape(fmt.Sprintf("cart entry is not an object: %v", err))
		}
		entry := CartEntry{
			ID:        coerceString(record["id"]),
			ProductID: coerceString(record["product_id"]),
			Quantity:  coerceInt(record["quantity"]),
			Name:      coerceString(record["name"]),
			Price:     coerceFloat(record["price"]),
			Image:     coerceString(record["image"]),
		}
		if entry.ProductID == "" {
			entry.ProductID = coerceString(record["productId"])
		}
		if entry.ID == "" {
			// A line without an identity cannot be updated or removed later.
			return nil, apperrors.Shape("cart entry is missing an id")
		}
		if entry.Quantity < 1 {
			entry.Quantity = 1
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeSalesArray(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Sales []map[string]any `json:"sales"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Sales != nil {
		return envelope.Sales, nil
	}

	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		if bare == nil {
			bare = []map[string]any{}
		}
		return bare, nil
	}

	return nil, apperrors.Shape("sales response matched no known shape")
}

// decodeUserEnvelope accepts {"user": {...}} or a bare object, and requires
// that the result carries at least one identifying field. The backend sends
// the id as a number or a string depending on the deployment, so fields are
// coerced the same way cart entries are.
func decodeUserEnvelope(body []byte) (User, error) {
	var envelope struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.User != nil {
		if user := userFromRecord(envelope.User); user.Recognizable() {
			return user, nil
		}
	}

	var bare map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		if user := userFromRecord(bare); user.Recognizable() {
			return user, nil
		}
	}

	return User{}, apperrors.Shape("user response carries no identifying fields")
}

func userFromRecord(record map[string]any) User {
	return User{
		ID:    coerceString(record["id"]),
		Name:  coerceString(record["name"]),
		Email: coerceString(record["email"]),
	}
}

// decodeTokenEnvelope extracts the bearer token, under either of the two
// keys the backend has used historically.
func decodeTokenEnvelope(body []byte) (string, error) {
	var envelope struct {
		AccessToken string `json:"access_token"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", apperrors.Shape("login response is not an object")
	}
	if envelope.AccessToken != "" {
		return envelope.AccessToken, nil
	}
	if envelope.Token != "" {
		return envelope.Token, nil
	}
	return "", apperrors.Shape("login response carries no token")
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
