package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/pricing"
)

func beras() domain.Product {
	return domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 5, CostPrice: 9000, PriceGeneral: 12000, PriceAgen: 11000, PriceDistributor: 10000}
}

func gula() domain.Product {
	return domain.Product{ID: "p2", Name: "Gula 1kg", Stock: 3, CostPrice: 10000, PriceGeneral: 14000, PriceAgen: 13000, PriceDistributor: 12500}
}

func agen() domain.Customer {
	return domain.Customer{ID: "c2", Name: "Toko Jaya", Type: domain.ClassAgen}
}

func subtotalInvariant(t *testing.T, c *Cart) {
	t.Helper()
	var want domain.Money
	for _, line := range c.Lines {
		assert.Equal(t, domain.Money(line.Qty)*line.UnitPrice, line.Subtotal)
		want += line.Subtotal
	}
	assert.Equal(t, want, c.GrandTotal())
}

func TestAddItemResolvesTierPrice(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), agen()))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(11000), c.Lines[0].UnitPrice)
	subtotalInvariant(t, c)
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Qty)
	subtotalInvariant(t, c)
}

func TestAddItemRejectsOutOfStock(t *testing.T) {
	c := &Cart{}
	empty := beras()
	empty.Stock = 0
	assert.ErrorIs(t, c.AddItem(empty, domain.WalkIn()), ErrOutOfStock)
	assert.True(t, c.Empty())
}

func TestAddItemCapsAtStock(t *testing.T) {
	c := &Cart{}
	p := gula() // stock 3
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AddItem(p, domain.WalkIn()))
	}
	assert.ErrorIs(t, c.AddItem(p, domain.WalkIn()), ErrOutOfStock)
	assert.Equal(t, 3, c.Lines[0].Qty)
	subtotalInvariant(t, c)
}

func TestAddItemCapFollowsRestockedProduct(t *testing.T) {
	c := &Cart{}
	p := gula() // stock 3
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AddItem(p, domain.WalkIn()))
	}
	require.ErrorIs(t, c.AddItem(p, domain.WalkIn()), ErrOutOfStock)

	// A restock between adds raises the cap once the caller reloads.
	p.Stock = 5
	require.NoError(t, c.AddItem(p, domain.WalkIn()))
	assert.Equal(t, 4, c.Lines[0].Qty)
	assert.Equal(t, 5, c.Lines[0].Product.Stock)
	subtotalInvariant(t, c)
}

func TestSetQuantityClamps(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))

	require.NoError(t, c.SetQuantity("p1", 99))
	assert.Equal(t, 5, c.Lines[0].Qty)

	require.NoError(t, c.SetQuantity("p1", -7))
	assert.Equal(t, 1, c.Lines[0].Qty)

	assert.ErrorIs(t, c.SetQuantity("nope", 2), ErrLineNotFound)
	subtotalInvariant(t, c)
}

func TestRemoveItem(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))
	require.NoError(t, c.AddItem(gula(), domain.WalkIn()))

	require.NoError(t, c.RemoveItem("p1"))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].Product.ID)
	assert.ErrorIs(t, c.RemoveItem("p1"), ErrLineNotFound)
	subtotalInvariant(t, c)
}

func TestRepriceForCustomerReplacesEveryLine(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))
	require.NoError(t, c.AddItem(gula(), domain.WalkIn()))
	require.NoError(t, c.SetQuantity("p1", 4))

	distributor := domain.Customer{ID: "c3", Type: domain.ClassDistributor}
	c.RepriceForCustomer(distributor)

	for _, line := range c.Lines {
		assert.Equal(t, pricing.ResolveUnitPrice(line.Product, domain.ClassDistributor), line.UnitPrice)
	}
	assert.Equal(t, 4, c.Lines[0].Qty)
	assert.Equal(t, 1, c.Lines[1].Qty)
	subtotalInvariant(t, c)
}

func TestGrandTotalAfterMixedOperations(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), agen()))
	require.NoError(t, c.AddItem(gula(), agen()))
	require.NoError(t, c.SetQuantity("p1", 3))
	require.NoError(t, c.RemoveItem("p2"))
	c.RepriceForCustomer(domain.WalkIn())

	assert.Equal(t, int64(36000), c.GrandTotal())
	subtotalInvariant(t, c)
}

func TestSnapshotCapturesCostBasis(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(beras(), domain.WalkIn()))
	require.NoError(t, c.SetQuantity("p1", 2))

	items := c.Snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, "Beras 5kg", items[0].ProductName)
	assert.Equal(t, int64(9000), items[0].CostPrice)
	assert.Equal(t, int64(24000), items[0].Subtotal)

	// mutating the cart afterwards does not touch the snapshot
	c.Clear()
	assert.Equal(t, 2, items[0].Qty)
}
