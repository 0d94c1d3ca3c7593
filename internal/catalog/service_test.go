package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store/memory"
)

func seededService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.SeedProduct(domain.Product{ID: "p1", SKU: "BRS-5", Name: "Beras 5kg", Category: "Sembako", Stock: 10, PriceGeneral: 12000})
	st.SeedProduct(domain.Product{ID: "p2", SKU: "GUL-1", Name: "Gula 1kg", Category: "Sembako", Stock: 7, PriceGeneral: 14000})
	st.SeedProduct(domain.Product{ID: "p3", SKU: "KOP-S", Name: "Kopi Sachet", Category: "Minuman", Stock: 50, PriceGeneral: 2000})
	st.SeedCustomer(domain.Customer{ID: "c1", Name: "Budi", Type: domain.ClassGeneral})
	st.SeedSupplier(domain.Supplier{ID: "sup-1", Name: "PT Sumber Rejeki"})
	return &Service{Store: st}, st
}

func TestListProductsFilters(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byName, err := svc.ListProducts(ctx, "beras")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "p1", byName[0].ID)

	byCategory, err := svc.ListProducts(ctx, "minuman")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "p3", byCategory[0].ID)

	bySKU, err := svc.ListProducts(ctx, "gul-1")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
}

func TestListProductsUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	svc, st := seededService(t)
	svc.Cache = NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 3)

	st.SeedProduct(domain.Product{ID: "p4", Name: "Teh Celup", Stock: 5, PriceGeneral: 6000})
	cached, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	svc.InvalidateProducts(ctx)
	fresh, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := seededService(t)
	_, err := svc.GetProduct(context.Background(), "nope")
	assert.Error(t, err)
}
