package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/repository/memory"
	"github.com/cipr/storefront/internal/service"
	"github.com/cipr/storefront/pkg/health"
	"github.com/cipr/storefront/pkg/httpclient"
)

// fakeBackend serves the minimal commerce API the facade integrates against.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"latest_products": [{"id": 1, "name": "alpha tee", "price": "19.99", "description": "t-shirt m black"}],
			"best_selling_products": [{"id": 2, "name": "runner", "price": 59.5, "description": "shoes l white"}]
		}`))
	})
	mux.HandleFunc("GET /products/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"product": {"id": 1, "name": "alpha tee", "price": "19.99", "description": "t-shirt m black"}}`))
	})
	mux.HandleFunc("GET /products/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "not found"}`))
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"items": [{"id": 20, "product_id": 1, "quantity": 2}]}`))
	})
	mux.HandleFunc("POST /cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /sales", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-valid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user": {"id": 7, "name": "Alex", "email": "a@b.c"}}`))
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "tok-valid"}`))
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	upstream := fakeBackend(t)

	logger := slog.Default()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0

	token := &backend.BearerToken{}
	client := backend.NewClient(upstream.URL, httpclient.New(cfg), token, logger)

	sessionService := service.NewSessionService(client, memory.NewSessionStore(), token, service.NopNotifier{}, logger, "test")
	catalogService := service.NewCatalogService(client, sessionService, logger)
	cartService := service.NewCartService(client, catalogService, sessionService, service.NopNotifier{}, logger)
	sessionService.OnAuthChange(cartService.HandleAuthChange)

	return NewRouter(catalogService, cartService, sessionService, health.NewHandler(), logger, RouterConfig{
		CatalogCacheAge: 60,
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"email":"a@b.c","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alpha tee")
	assert.Contains(t, rec.Body.String(), "T-SHIRT")
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
}

func TestGetProduct_NotFoundFromUpstream(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	assert.Contains(t, rec.Body.String(), `"retryable":false`)
}

func TestCategory_SectionLabel(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/category/NEW", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alpha tee")
	assert.NotContains(t, rec.Body.String(), "runner")
}

func TestSearch_RequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/search?search=tee", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_ERROR")
}

func TestCart_RequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThenCart(t *testing.T) {
	router := newTestRouter(t)
	login(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"READY"`)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	// Lines are enriched from the catalog lookup.
	assert.Contains(t, rec.Body.String(), "alpha tee")
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"email":"a@b.c","password":"wrong-1"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_ValidationFailure(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"email":"not-an-email","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestAddItem_ValidationFailure(t *testing.T) {
	router := newTestRouter(t)
	login(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", `{"quantity": 1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_id")
}

func TestAddItem_Success(t *testing.T) {
	router := newTestRouter(t)
	login(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id": "1", "quantity": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSession_AnonymousByDefault(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestLogout_ClearsSessionAndCart(t *testing.T) {
	router := newTestRouter(t)
	login(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/session/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSales_History(t *testing.T) {
	router := newTestRouter(t)
	login(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
