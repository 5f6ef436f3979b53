package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/domain"
	apperrors "github.com/cipr/storefront/pkg/errors"
)

// Section labels the rendering layer uses for the named catalog sub-lists.
const (
	SectionNew         = "NEW"
	SectionBestSellers = "BEST SELLERS"
	SectionRecommended = "RECOMMENDED"
)

// CatalogBackend is the slice of the backend client the catalog service uses.
type CatalogBackend interface {
	FetchProducts(ctx context.Context, limit int) (backend.ProductLists, error)
	FetchProduct(ctx context.Context, id string) (map[string]any, error)
	SearchProducts(ctx context.Context, term string, limit int) ([]map[string]any, error)
}

// AuthState reports whether the current session is fully authenticated.
type AuthState interface {
	IsAuthenticated() bool
}

// ProductSet is the normalized catalog listing: the three named sub-lists
// plus the combined pool of every valid product seen.
type ProductSet struct {
	Latest      []domain.Product `json:"latest"`
	BestSelling []domain.Product `json:"best_selling"`
	Recommended []domain.Product `json:"recommended"`
	All         []domain.Product `json:"all"`
}

// CatalogService implements the product listing, lookup, search and
// recommendation use cases over the backend catalog endpoints.
type CatalogService struct {
	backend CatalogBackend
	auth    AuthState
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(b CatalogBackend, auth AuthState, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		backend: b,
		auth:    auth,
		logger:  logger,
	}
}

// ListAll fetches the catalog listing and normalizes every record. Records
// without an identity are dropped from the batch. An entirely empty valid
// set is an error, not a listing of placeholders.
func (s *CatalogService) ListAll(ctx context.Context) (*ProductSet, error) {
	lists, err := s.backend.FetchProducts(ctx, 0)
	if err != nil {
		return nil, err
	}

	set := &ProductSet{
		Latest:      s.normalizeBatch(ctx, lists.Latest),
		BestSelling: s.normalizeBatch(ctx, lists.BestSelling),
		Recommended: s.normalizeBatch(ctx, lists.Recommended),
	}
	set.All = make([]domain.Product, 0, len(set.Latest)+len(set.BestSelling)+len(set.Recommended))
	set.All = append(set.All, set.Latest...)
	set.All = append(set.All, set.BestSelling...)
	set.All = append(set.All, set.Recommended...)
	set.All = append(set.All, s.normalizeBatch(ctx, lists.Products)...)

	if len(set.All) == 0 {
		return nil, apperrors.EmptyCatalog()
	}
	return set, nil
}

// GetByID fetches and normalizes a single product. A record the backend
// returns but that cannot be normalized is treated as not found.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := s.backend.FetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := domain.Normalize(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "product record failed normalization",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.NotFound("product", id)
	}
	return product, nil
}

// GetByCategory resolves a section label to one of the named sub-lists, or
// filters the combined pool by derived category for any other label. A
// limit of 0 means no truncation.
func (s *CatalogService) GetByCategory(ctx context.Context, label string, limit int) ([]domain.Product, error) {
	set, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var pool []domain.Product
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case SectionNew:
		pool = set.Latest
	case SectionBestSellers:
		pool = set.BestSelling
	case SectionRecommended:
		pool = set.Recommended
	default:
		category := domain.Category(strings.ToUpper(strings.TrimSpace(label)))
		for _, p := range set.All {
			if p.Category == category {
				pool = append(pool, p)
			}
		}
	}

	if len(pool) == 0 {
		return nil, apperrors.EmptyCategory(label)
	}
	return truncate(pool, limit), nil
}

// Search queries the backend search endpoint. Requires an authenticated
// session. An empty result is a valid success.
func (s *CatalogService) Search(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	if !s.auth.IsAuthenticated() {
		return nil, apperrors.Auth("search requires an authenticated session")
	}

	raw, err := s.backend.SearchProducts(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	return s.normalizeBatch(ctx, raw), nil
}

// GetRecommendations returns the personalized recommendation list, falling
// back to the general catalog pool when the personalized path fails or
// comes back empty.
func (s *CatalogService) GetRecommendations(ctx context.Context, limit int) ([]domain.Product, error) {
	set, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	pool := set.Recommended
	if len(pool) == 0 {
		pool = set.All
	}
	if len(pool) == 0 {
		return nil, apperrors.EmptyRecommendations()
	}
	return truncate(pool, limit), nil
}

// GetProductRecommendations returns products related to the given one,
// drawn from the curated recommended list when the backend serves one and
// otherwise from the general pool. The product itself is excluded.
func (s *CatalogService) GetProductRecommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	set, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	pool := set.Recommended
	if len(pool) == 0 {
		pool = set.All
	}

	filtered := make([]domain.Product, 0, len(pool))
	for _, p := range pool {
		if p.ID != productID {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return nil, apperrors.EmptyRecommendations()
	}
	return truncate(filtered, limit), nil
}

// normalizeBatch normalizes a batch of raw records, dropping any that lack
// an identity.
func (s *CatalogService) normalizeBatch(ctx context.Context, raws []map[string]any) []domain.Product {
	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		product, err := domain.Normalize(raw)
		if err != nil {
			s.logger.DebugContext(ctx, "dropping invalid product record",
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, *product)
	}
	return products
}

func truncate(products []domain.Product, limit int) []domain.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
