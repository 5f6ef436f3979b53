package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/cipr/storefront/pkg/errors"
	"github.com/cipr/storefront/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is the adapter over the commerce backend's REST API. It attaches
// the bearer token, classifies failures into the error taxonomy, and
// normalizes the backend's inconsistent response envelopes.
type Client struct {
	baseURL string
	http    HTTPDoer
	token   *BearerToken
	logger  *slog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, doer HTTPDoer, token *BearerToken, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    doer,
		token:   token,
		logger:  logger,
	}
}

// ProductLists is the raw result of the catalog listing endpoint: up to three
// named sub-lists plus a general pool, each a list of unnormalized records.
type ProductLists struct {
	Latest      []map[string]any
	BestSelling []map[string]any
	Recommended []map[string]any
	Products    []map[string]any
}

// All concatenates the sub-lists in a stable order.
func (p ProductLists) All() []map[string]any {
	out := make([]map[string]any, 0, len(p.Latest)+len(p.BestSelling)+len(p.Recommended)+len(p.Products))
	out = append(out, p.Latest...)
	out = append(out, p.BestSelling...)
	out = append(out, p.Recommended...)
	out = append(out, p.Products...)
	return out
}

// CartEntry is one raw cart line as the backend returns it.
type CartEntry struct {
	ID        string
	ProductID string
	Quantity  int
	Name      string
	Price     float64
	Image     string
}

// FetchProducts retrieves the catalog listing. A limit of 0 requests the
// backend default.
func (c *Client) FetchProducts(ctx context.Context, limit int) (ProductLists, error) {
	path := "/products"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	body, err := c.get(ctx, path, "fetch products")
	if err != nil {
		return ProductLists{}, err
	}
	return decodeProductLists(body)
}

// FetchProduct retrieves a single raw product record.
func (c *Client) FetchProduct(ctx context.Context, id string) (map[string]any, error) {
	body, err := c.get(ctx, "/products/"+url.PathEscape(id), "fetch product")
	if err != nil {
		return nil, err
	}
	return decodeProductEnvelope(body)
}

// SearchProducts queries the backend search endpoint. An empty result is a
// valid success.
func (c *Client) SearchProducts(ctx context.Context, term string, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("search", term)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/products/search?"+q.Encode(), "search products")
	if err != nil {
		return nil, err
	}
	return decodeProductsArray(body)
}

// FetchCart retrieves the authoritative cart lines.
func (c *Client) FetchCart(ctx context.Context) ([]CartEntry, error) {
	body, err := c.get(ctx, "/cart", "fetch cart")
	if err != nil {
		return nil, err
	}
	return decodeCartEnvelope(body)
}

// AddCartItem posts a new cart line. Quantities below 1 are clamped to 1
// before the request is issued; this matches the contract the backend
// enforces.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	payload := map[string]any{"product_id": productID, "quantity": quantity}
	_, err := c.send(ctx, http.MethodPost, "/cart", payload, "add cart item")
	return err
}

// UpdateCartItem sets an existing line's quantity, clamped to a minimum of 1.
// Removal is a separate operation; callers wanting delete-on-zero resolve it
// before reaching this method.
func (c *Client) UpdateCartItem(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	payload := map[string]any{"quantity": quantity}
	_, err := c.send(ctx, http.MethodPut, "/cart/"+url.PathEscape(lineID), payload, "update cart item")
	return err
}

// RemoveCartItem deletes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, lineID string) error {
	_, err := c.send(ctx, http.MethodDelete, "/cart/"+url.PathEscape(lineID), nil, "remove cart item")
	return err
}

// ClearCart deletes all cart lines.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodDelete, "/cart", nil, "clear cart")
	return err
}

// FetchSales retrieves the purchase history.
func (c *Client) FetchSales(ctx context.Context) ([]map[string]any, error) {
	body, err := c.get(ctx, "/sales", "fetch sales")
	if err != nil {
		return nil, err
	}
	return decodeSalesArray(body)
}

// CreateSale converts the given cart lines into a purchase.
func (c *Client) CreateSale(ctx context.Context, cartIDs []string) error {
	payload := map[string]any{"cart_ids": cartIDs}
	_, err := c.send(ctx, http.MethodPost, "/sales", payload, "create sale")
	return err
}

// FetchUser resolves the identity behind the current bearer token.
func (c *Client) FetchUser(ctx context.Context) (User, error) {
	body, err := c.get(ctx, "/user", "fetch user")
	if err != nil {
		return User{}, err
	}
	return decodeUserEnvelope(body)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]any{"email": email, "password": password}
	body, err := c.send(ctx, http.MethodPost, "/login", payload, "login")
	if err != nil {
		return "", err
	}
	return decodeTokenEnvelope(body)
}

// Register creates a new account. The backend's field-level validation
// errors surface as a validation error with per-field messages.
func (c *Client) Register(ctx context.Context, fields map[string]any) error {
	_, err := c.send(ctx, http.MethodPost, "/register", fields, "register")
	return err
}

// Logout invalidates the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodPost, "/logout", nil, "logout")
	return err
}

// Ping probes the catalog endpoint for health checking.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/products?limit=1", "ping backend")
	return err
}

func (c *Client) get(ctx context.Context, path, operation string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil, operation)
}

// send issues one request with the bearer token attached and returns the
// response body on 2xx. Network failures become transport errors; non-2xx
// responses are classified by status.
func (c *Client) send(ctx context.Context, method, path string, payload any, operation string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", operation, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.logger.WarnContext(ctx, "backend unreachable",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, operation)
	}

	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apperrors.Transport(fmt.Errorf("read %s response: %w", operation, err))
	}
	return body, nil
}
