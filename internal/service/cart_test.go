package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/domain"
	apperrors "github.com/cipr/storefront/pkg/errors"
)

// --- Mock cart backend ---

type mockCartBackend struct {
	mock.Mock
}

func (m *mockCartBackend) FetchCart(ctx context.Context) ([]backend.CartEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.CartEntry), args.Error(1)
}

func (m *mockCartBackend) AddCartItem(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockCartBackend) UpdateCartItem(ctx context.Context, lineID string, quantity int) error {
	return m.Called(ctx, lineID, quantity).Error(0)
}

func (m *mockCartBackend) RemoveCartItem(ctx context.Context, lineID string) error {
	return m.Called(ctx, lineID).Error(0)
}

func (m *mockCartBackend) ClearCart(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCartBackend) FetchSales(ctx context.Context) ([]map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *mockCartBackend) CreateSale(ctx context.Context, cartIDs []string) error {
	return m.Called(ctx, cartIDs).Error(0)
}

// --- Mock product lookup ---

type mockProductLookup struct {
	mock.Mock
}

func (m *mockProductLookup) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// --- Recording notifier ---

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, notification.Kind)
}

func (n *recordingNotifier) has(kind string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, k := range n.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func sampleProduct(id, name string) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Price:    20,
		Category: domain.CategoryTShirt,
		Image:    "/images/t-shirt1.png",
	}
}

func newTestCart(b *mockCartBackend, lookup *mockProductLookup) (*CartService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewCartService(b, lookup, stubAuth{authenticated: true}, notifier, slog.Default())
	return svc, notifier
}

// --- Fetch ---

func TestCartFetch_EnrichesFromCatalog(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "10", ProductID: "1", Quantity: 2},
	}, nil)
	lookup.On("GetByID", ctx, "1").Return(sampleProduct("1", "alpha tee"), nil)

	svc, _ := newTestCart(b, lookup)
	snapshot, err := svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, CartReady, snapshot.State)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, "alpha tee", snapshot.Lines[0].Name)
	assert.Equal(t, float64(20), snapshot.Lines[0].Price)
	assert.Equal(t, domain.CategoryTShirt, snapshot.Lines[0].Category)
	assert.Equal(t, 2, snapshot.Count)
}

func TestCartFetch_OneBadLineDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "10", ProductID: "1", Quantity: 1},
		{ID: "11", ProductID: "2", Quantity: 1},
		{ID: "12", ProductID: "3", Quantity: 1},
	}, nil)
	lookup.On("GetByID", ctx, "1").Return(sampleProduct("1", "alpha"), nil)
	lookup.On("GetByID", ctx, "2").Return(nil, apperrors.NotFound("product", "2"))
	lookup.On("GetByID", ctx, "3").Return(sampleProduct("3", "charlie"), nil)

	svc, _ := newTestCart(b, lookup)
	snapshot, err := svc.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 3)
	assert.Equal(t, "alpha", snapshot.Lines[0].Name)
	assert.Equal(t, domain.FallbackProductName, snapshot.Lines[1].Name)
	assert.Equal(t, domain.DefaultImage, snapshot.Lines[1].Image)
	assert.Equal(t, float64(0), snapshot.Lines[1].Price)
	assert.Equal(t, "charlie", snapshot.Lines[2].Name)
}

func TestCartFetch_Unauthenticated(t *testing.T) {
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	svc := NewCartService(b, lookup, stubAuth{authenticated: false}, NopNotifier{}, slog.Default())

	_, err := svc.Fetch(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAuth)
	b.AssertNotCalled(t, "FetchCart")
}

func TestCartFetch_StaleResponseDiscardedAfterLogout(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	b.On("FetchCart", ctx).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return([]backend.CartEntry{
		{ID: "10", ProductID: "1", Quantity: 5},
	}, nil)
	lookup.On("GetByID", ctx, "1").Return(sampleProduct("1", "stale"), nil)

	svc, _ := newTestCart(b, lookup)

	done := make(chan CartSnapshot)
	go func() {
		snapshot, _ := svc.Fetch(ctx)
		done <- snapshot
	}()

	<-entered
	svc.HandleAuthChange(ctx, false)
	close(release)

	snapshot := <-done
	assert.Equal(t, CartEmpty, snapshot.State)
	assert.Empty(t, snapshot.Lines)
	assert.Zero(t, snapshot.Count)
}

// --- AddItem ---

func TestAddItem_MergesByProductIdentity(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 1).Return(nil)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "20", ProductID: "5", Quantity: 2},
	}, nil).Maybe()

	svc, notifier := newTestCart(b, lookup)

	_, err := svc.AddItem(ctx, "5", 1)
	require.NoError(t, err)
	snapshot, err := svc.AddItem(ctx, "5", 1)
	require.NoError(t, err)

	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].Quantity)
	assert.Equal(t, 2, snapshot.Count)
	assert.True(t, notifier.has(NotifyCartUpdated))
}

func TestAddItem_ServerRejectionReverts(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 1).Return(apperrors.Server(500, ""))
	// The revert refetch restores the authoritative (empty) cart.
	b.On("FetchCart", ctx).Return([]backend.CartEntry{}, nil)

	svc, _ := newTestCart(b, lookup)
	snapshot, err := svc.AddItem(ctx, "5", 1)
	require.ErrorIs(t, err, apperrors.ErrServer)
	assert.Empty(t, snapshot.Lines)
	b.AssertCalled(t, "FetchCart", ctx)
}

// --- UpdateQuantity / RemoveItem ---

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 3).Return(nil)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "20", ProductID: "5", Quantity: 3},
	}, nil)
	b.On("RemoveCartItem", ctx, "20").Return(nil)

	svc, _ := newTestCart(b, lookup)
	snapshot, err := svc.AddItem(ctx, "5", 3)
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.Count)

	snapshot, err = svc.UpdateQuantity(ctx, "20", 0)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines)
	assert.Zero(t, snapshot.Count)
	b.AssertCalled(t, "RemoveCartItem", ctx, "20")
	b.AssertNotCalled(t, "UpdateCartItem")
}

func TestRemoveItem_AbsentLineIsNoOp(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)

	svc, _ := newTestCart(b, lookup)
	snapshot, err := svc.RemoveItem(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines)
	b.AssertNotCalled(t, "RemoveCartItem")
}

// --- Clear / logout ---

func TestClear_EmptiesLocalAndServer(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	b.On("ClearCart", ctx).Return(nil)

	svc, notifier := newTestCart(b, lookup)
	snapshot, err := svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, CartEmpty, snapshot.State)
	assert.True(t, notifier.has(NotifyCartCleared))
}

func TestHandleAuthChange_LogoutClearsImmediately(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 1).Return(nil)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "20", ProductID: "5", Quantity: 1},
	}, nil)

	svc, _ := newTestCart(b, lookup)
	_, err := svc.AddItem(ctx, "5", 1)
	require.NoError(t, err)

	svc.HandleAuthChange(ctx, false)

	snapshot := svc.Snapshot()
	assert.Equal(t, CartEmpty, snapshot.State)
	assert.Empty(t, snapshot.Lines)
}

// --- Purchase / History ---

func TestPurchase_EmptyCartIsInvalid(t *testing.T) {
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)

	svc, _ := newTestCart(b, lookup)
	_, err := svc.Purchase(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	b.AssertNotCalled(t, "CreateSale")
}

func TestPurchase_SubmitsLineIDsAndRefetches(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 1).Return(nil)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "20", ProductID: "5", Quantity: 1},
	}, nil).Once()
	b.On("CreateSale", ctx, []string{"20"}).Return(nil)
	// Post-purchase refetch comes back empty.
	b.On("FetchCart", ctx).Return([]backend.CartEntry{}, nil)

	svc, notifier := newTestCart(b, lookup)
	_, err := svc.AddItem(ctx, "5", 1)
	require.NoError(t, err)

	snapshot, err := svc.Purchase(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines)
	assert.True(t, notifier.has(NotifyPurchaseCompleted))
}

func TestHistory_PassesThrough(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	b.On("FetchSales", ctx).Return([]map[string]any{{"id": float64(1)}}, nil)

	svc, _ := newTestCart(b, lookup)
	sales, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestCartFetch_BackendErrorKeepsExistingLines(t *testing.T) {
	ctx := context.Background()
	b := new(mockCartBackend)
	lookup := new(mockProductLookup)
	lookup.On("GetByID", ctx, "5").Return(sampleProduct("5", "echo"), nil)
	b.On("AddCartItem", ctx, "5", 1).Return(nil)
	b.On("FetchCart", ctx).Return([]backend.CartEntry{
		{ID: "20", ProductID: "5", Quantity: 1},
	}, nil).Once()
	b.On("FetchCart", ctx).Return(nil, apperrors.Transport(assert.AnError))

	svc, _ := newTestCart(b, lookup)
	_, err := svc.AddItem(ctx, "5", 1)
	require.NoError(t, err)

	snapshot, err := svc.Fetch(ctx)
	require.ErrorIs(t, err, apperrors.ErrTransport)
	assert.Equal(t, CartReady, snapshot.State)
	require.Len(t, snapshot.Lines, 1)

	// Guard against the state getting stuck in LOADING.
	require.Eventually(t, func() bool {
		return svc.Snapshot().State == CartReady
	}, time.Second, 10*time.Millisecond)
}
