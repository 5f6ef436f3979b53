package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/domain"
	apperrors "github.com/cipr/storefront/pkg/errors"
)

// CartState is the lifecycle state of the reconciled cart.
type CartState string

const (
	CartEmpty   CartState = "EMPTY"
	CartLoading CartState = "LOADING"
	CartReady   CartState = "READY"
)

// CartBackend is the slice of the backend client the cart service uses.
type CartBackend interface {
	FetchCart(ctx context.Context) ([]backend.CartEntry, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, lineID string, quantity int) error
	RemoveCartItem(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
	FetchSales(ctx context.Context) ([]map[string]any, error)
	CreateSale(ctx context.Context, cartIDs []string) error
}

// ProductLookup resolves a product for cart line enrichment.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// CartSnapshot is a point-in-time copy of the reconciled cart.
type CartSnapshot struct {
	State CartState         `json:"state"`
	Lines []domain.CartLine `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

// CartService reconciles the local cart against the server cart. Local
// state is mutated optimistically; a rejected server call reverts by
// refetching the authoritative cart rather than patching speculatively.
//
// Fetches are tagged with a generation counter. Logout bumps the
// generation, so a response from a fetch issued before the logout is
// discarded instead of resurrecting a stale cart.
type CartService struct {
	backend  CartBackend
	catalog  ProductLookup
	auth     AuthState
	notifier Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	state      CartState
	cart       domain.Cart
	generation uint64
}

// NewCartService creates a new cart service in the EMPTY state.
func NewCartService(b CartBackend, catalog ProductLookup, auth AuthState, notifier Notifier, logger *slog.Logger) *CartService {
	return &CartService{
		backend:  b,
		catalog:  catalog,
		auth:     auth,
		notifier: notifier,
		logger:   logger,
		state:    CartEmpty,
	}
}

// Snapshot returns a copy of the current cart state.
func (s *CartService) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CartService) snapshotLocked() CartSnapshot {
	lines := make([]domain.CartLine, len(s.cart.Lines))
	copy(lines, s.cart.Lines)
	return CartSnapshot{
		State: s.state,
		Lines: lines,
		Count: s.cart.Count(),
		Total: s.cart.Total(),
	}
}

// Fetch retrieves the authoritative cart and enriches each line from the
// catalog. Enrichment runs one lookup per line concurrently; a failed
// lookup degrades that line to safe fallback values instead of failing the
// fetch. The result is applied only if no newer fetch or logout started in
// the meantime.
func (s *CartService) Fetch(ctx context.Context) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("cart requires an authenticated session")
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = CartLoading
	s.mu.Unlock()

	entries, err := s.backend.FetchCart(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen == s.generation && s.state == CartLoading {
			// Leave whatever lines we had; the state is no longer loading.
			if len(s.cart.Lines) == 0 {
				s.state = CartEmpty
			} else {
				s.state = CartReady
			}
		}
		return s.snapshotLocked(), fmt.Errorf("fetch cart: %w", err)
	}

	lines := s.enrichEntries(ctx, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.DebugContext(ctx, "discarding superseded cart fetch",
			slog.Uint64("fetch_generation", gen),
			slog.Uint64("current_generation", s.generation),
		)
		return s.snapshotLocked(), nil
	}
	s.cart.Lines = lines
	s.state = CartReady
	return s.snapshotLocked(), nil
}

// enrichEntries resolves the catalog product behind every cart line,
// fanning out one lookup per line and waiting for all of them.
func (s *CartService) enrichEntries(ctx context.Context, entries []backend.CartEntry) []domain.CartLine {
	lines := make([]domain.CartLine, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry backend.CartEntry) {
			defer wg.Done()
			lines[i] = s.enrichEntry(ctx, entry)
		}(i, entry)
	}
	wg.Wait()

	return lines
}

func (s *CartService) enrichEntry(ctx context.Context, entry backend.CartEntry) domain.CartLine {
	line := domain.CartLine{
		ID:        entry.ID,
		ProductID: entry.ProductID,
		Name:      entry.Name,
		Image:     entry.Image,
		Price:     entry.Price,
		Quantity:  entry.Quantity,
	}

	product, err := s.catalog.GetByID(ctx, entry.ProductID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart line enrichment failed, using fallbacks",
			slog.String("line_id", entry.ID),
			slog.String("product_id", entry.ProductID),
			slog.String("error", err.Error()),
		)
		if line.Name == "" {
			line.Name = domain.FallbackProductName
		}
		if line.Image == "" {
			line.Image = domain.DefaultImage
		}
		return line
	}

	line.Name = product.Name
	line.Image = product.Image
	line.Price = product.Price
	line.Category = product.Category
	line.Size = product.Size
	line.Color = product.Color
	return line
}

// AddItem upserts a line for the product, merging by product identity. The
// local cart is updated first; a rejected server call reverts by refetch.
func (s *CartService) AddItem(ctx context.Context, productID string, quantity int) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("cart requires an authenticated session")
	}
	if productID == "" {
		return s.Snapshot(), apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.cart.Upsert(domain.CartLine{
		ID:        pendingLineID(productID),
		ProductID: productID,
		Name:      product.Name,
		Image:     product.Image,
		Price:     product.Price,
		Category:  product.Category,
		Size:      product.Size,
		Color:     product.Color,
		Quantity:  quantity,
	})
	s.state = CartReady
	s.mu.Unlock()

	if err := s.backend.AddCartItem(ctx, productID, quantity); err != nil {
		return s.revert(ctx, err)
	}

	// The server assigns the real line id; refetch to pick it up.
	snapshot, err := s.Fetch(ctx)
	if err != nil {
		return snapshot, err
	}
	s.notifier.Notify(ctx, Notification{
		Kind:    NotifyCartUpdated,
		Message: product.Name + " added to cart",
		Fields:  map[string]any{"product_id": productID, "quantity": quantity},
	})
	return snapshot, nil
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line instead.
func (s *CartService) UpdateQuantity(ctx context.Context, lineID string, quantity int) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("cart requires an authenticated session")
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID)
	}

	s.mu.Lock()
	s.cart.SetQuantity(lineID, quantity)
	s.mu.Unlock()

	if err := s.backend.UpdateCartItem(ctx, lineID, quantity); err != nil {
		return s.revert(ctx, err)
	}

	s.notifier.Notify(ctx, Notification{
		Kind:   NotifyCartUpdated,
		Fields: map[string]any{"line_id": lineID, "quantity": quantity},
	})
	return s.Snapshot(), nil
}

// RemoveItem removes a line. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, lineID string) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("cart requires an authenticated session")
	}

	s.mu.Lock()
	present := s.cart.FindLineIndex(lineID) >= 0
	if present {
		s.cart.Remove(lineID)
	}
	s.mu.Unlock()

	if !present {
		return s.Snapshot(), nil
	}

	if err := s.backend.RemoveCartItem(ctx, lineID); err != nil {
		return s.revert(ctx, err)
	}

	s.notifier.Notify(ctx, Notification{
		Kind:   NotifyCartUpdated,
		Fields: map[string]any{"line_id": lineID},
	})
	return s.Snapshot(), nil
}

// Clear empties the cart locally and on the server.
func (s *CartService) Clear(ctx context.Context) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("cart requires an authenticated session")
	}

	s.mu.Lock()
	s.cart.Clear()
	s.state = CartEmpty
	s.mu.Unlock()

	if err := s.backend.ClearCart(ctx); err != nil {
		return s.revert(ctx, err)
	}

	s.notifier.Notify(ctx, Notification{Kind: NotifyCartCleared})
	return s.Snapshot(), nil
}

// Purchase converts the current cart lines into a sale, then refetches the
// cart so local state reflects whatever the server did with it.
func (s *CartService) Purchase(ctx context.Context) (CartSnapshot, error) {
	if !s.auth.IsAuthenticated() {
		return s.Snapshot(), apperrors.Auth("purchase requires an authenticated session")
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.cart.Lines))
	for _, line := range s.cart.Lines {
		ids = append(ids, line.ID)
	}
	total := s.cart.Total()
	s.mu.Unlock()

	if len(ids) == 0 {
		return s.Snapshot(), apperrors.InvalidInput("cart is empty")
	}

	if err := s.backend.CreateSale(ctx, ids); err != nil {
		return s.Snapshot(), err
	}

	snapshot, err := s.Fetch(ctx)
	if err != nil {
		return snapshot, err
	}
	s.notifier.Notify(ctx, Notification{
		Kind:    NotifyPurchaseCompleted,
		Message: "purchase completed",
		Fields:  map[string]any{"lines": len(ids), "total": total},
	})
	return snapshot, nil
}

// History returns the raw purchase history records.
func (s *CartService) History(ctx context.Context) ([]map[string]any, error) {
	if !s.auth.IsAuthenticated() {
		return nil, apperrors.Auth("purchase history requires an authenticated session")
	}
	return s.backend.FetchSales(ctx)
}

// HandleAuthChange reacts to session transitions. Logout clears the cart
// immediately and invalidates every in-flight fetch; login triggers a
// fresh fetch.
func (s *CartService) HandleAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.mu.Lock()
		s.generation++
		s.cart.Clear()
		s.state = CartEmpty
		s.mu.Unlock()
		return
	}

	if _, err := s.Fetch(ctx); err != nil {
		s.logger.WarnContext(ctx, "cart fetch after login failed",
			slog.String("error", err.Error()),
		)
	}
}

// revert discards the optimistic local state by refetching the
// authoritative cart, and returns the original server rejection.
func (s *CartService) revert(ctx context.Context, cause error) (CartSnapshot, error) {
	snapshot, fetchErr := s.Fetch(ctx)
	if fetchErr != nil {
		s.logger.ErrorContext(ctx, "cart revert refetch failed",
			slog.String("error", fetchErr.Error()),
		)
	}
	return snapshot, cause
}

// pendingLineID marks a locally-created line that has not yet been assigned
// a server id. The next fetch replaces it.
func pendingLineID(productID string) string {
	return "pending:" + productID
}
