package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/cart"
	"github.com/yusapos/backend-pos/internal/domain"
)

var testClock = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func testEngine() Engine {
	return Engine{
		Now:   func() time.Time { return testClock },
		NewID: func() string { return "trx-1" },
	}
}

func testCashier() domain.User {
	return domain.User{ID: "usr-1", FullName: "Siti"}
}

func cartWith(t *testing.T, p domain.Product, customer domain.Customer, qty int) *cart.Cart {
	t.Helper()
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(p, customer))
	if qty > 1 {
		require.NoError(t, c.SetQuantity(p.ID, qty))
	}
	return c
}

func TestBuildCashSaleWithChange(t *testing.T) {
	p := domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000}
	customer := domain.WalkIn()
	c := cartWith(t, p, customer, 1)

	trx, err := testEngine().Build(c, customer, testCashier(), 15000)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCash, trx.PaymentMethod)
	assert.Equal(t, int64(12000), trx.TotalAmount)
	assert.Equal(t, int64(15000), trx.AmountPaid)
	assert.Equal(t, int64(3000), trx.Change)
	assert.Equal(t, "INV-1715333400000-TRX1", trx.InvoiceNumber)
	assert.Equal(t, "Siti", trx.CashierName)
	require.Len(t, trx.Items, 1)
	assert.Equal(t, int64(9000), trx.Items[0].CostPrice)
}

func TestBuildRejectsEmptyCart(t *testing.T) {
	_, err := testEngine().Build(&cart.Cart{}, domain.WalkIn(), testCashier(), 5000)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildRejectsDebtForGeneralCustomer(t *testing.T) {
	p := domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, PriceGeneral: 12000}
	customer := domain.Customer{ID: "c1", Name: "Budi", Type: domain.ClassGeneral}
	c := cartWith(t, p, customer, 1)

	_, err := testEngine().Build(c, customer, testCashier(), 5000)
	assert.ErrorIs(t, err, ErrDebtNotAllowed)
	// rejection happens before any mutation, the cart keeps its lines
	assert.False(t, c.Empty())
	assert.Equal(t, int64(12000), c.GrandTotal())
}

func TestBuildRejectsDebtForWalkIn(t *testing.T) {
	p := domain.Product{ID: "p1", Stock: 10, PriceGeneral: 12000}
	customer := domain.WalkIn()
	c := cartWith(t, p, customer, 1)

	_, err := testEngine().Build(c, customer, testCashier(), 0)
	assert.ErrorIs(t, err, ErrDebtNotAllowed)
}

func TestBuildDebtSaleForAgent(t *testing.T) {
	p := domain.Product{ID: "p1", Stock: 10, PriceGeneral: 12000, PriceAgen: 12000}
	customer := domain.Customer{ID: "c2", Name: "Toko Jaya", Type: domain.ClassAgen}
	c := cartWith(t, p, customer, 1)

	trx, err := testEngine().Build(c, customer, testCashier(), 5000)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentDebt, trx.PaymentMethod)
	assert.Equal(t, int64(0), trx.Change)
	assert.Equal(t, int64(7000), trx.DebtAmount())
}

func TestBuildInvoiceUniqueWithinSameMillisecond(t *testing.T) {
	p := domain.Product{ID: "p1", Stock: 10, PriceGeneral: 12000}
	customer := domain.WalkIn()

	ids := []string{"5f1c3a2b-0000-4000-8000-000000000001", "9ad04e7c-0000-4000-8000-000000000002"}
	eng := Engine{
		Now:   func() time.Time { return testClock },
		NewID: func() string { id := ids[0]; ids = ids[1:]; return id },
	}

	first, err := eng.Build(cartWith(t, p, customer, 1), customer, testCashier(), 12000)
	require.NoError(t, err)
	second, err := eng.Build(cartWith(t, p, customer, 1), customer, testCashier(), 12000)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, "INV-1715333400000-5F1C3A2B", first.InvoiceNumber)
	assert.Equal(t, "INV-1715333400000-9AD04E7C", second.InvoiceNumber)
}

func TestBuildCoercesNegativeTender(t *testing.T) {
	p := domain.Product{ID: "p1", Stock: 10, PriceGeneral: 12000, PriceDistributor: 10000}
	customer := domain.Customer{ID: "c3", Type: domain.ClassDistributor}
	c := cartWith(t, p, customer, 1)

	trx, err := testEngine().Build(c, customer, testCashier(), -500)
	require.NoError(t, err)
	assert.Equal(t, int64(0), trx.AmountPaid)
	assert.Equal(t, domain.PaymentDebt, trx.PaymentMethod)
	assert.Equal(t, int64(10000), trx.DebtAmount())
}
