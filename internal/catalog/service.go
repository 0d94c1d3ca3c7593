// Package catalog serves the read side of the terminal: product search plus
// customer and supplier lookups. All writes go through the commit pipelines.
package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

const productsCacheKey = "pos:catalog:products"

// Service answers catalog reads, with a short-lived product list cache.
type Service struct {
	Store store.Gateway
	Cache *Cache
}

// ListProducts returns products, optionally filtered by a case-insensitive
// substring match on name, SKU or category. Only the unfiltered list is
// cached; filters are cheap once the rows are loaded.
func (s *Service) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog: service not configured")
	}
	query = strings.TrimSpace(strings.ToLower(query))

	var products []domain.Product
	if query == "" {
		if hit, err := s.Cache.GetJSON(ctx, productsCacheKey, &products); err == nil && hit {
			return products, nil
		}
	}
	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		_ = s.Cache.SetJSON(ctx, productsCacheKey, products)
		return products, nil
	}
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.SKU), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetProduct loads one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, common.NewAppError(common.CodeNotFound, "product not found", http.StatusNotFound, err)
		}
		return domain.Product{}, err
	}
	return p, nil
}

// ListCustomers returns all registered customers. The walk-in sentinel is
// not stored and not listed.
func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.Store.ListCustomers(ctx)
}

// ListSuppliers returns all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.Store.ListSuppliers(ctx)
}

// InvalidateProducts drops the cached product list. Checkout and restock
// call this after a committed stock change.
func (s *Service) InvalidateProducts(ctx context.Context) {
	_ = s.Cache.Invalidate(ctx, productsCacheKey)
}
