package checkout

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/cart"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/events"
	"github.com/yusapos/backend-pos/internal/store/memory"
)

func seededStore() *memory.Store {
	st := memory.New()
	st.SeedProduct(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000, PriceAgen: 12000})
	st.SeedProduct(domain.Product{ID: "p2", Name: "Gula 1kg", Stock: 7, CostPrice: 10000, PriceGeneral: 14000})
	st.SeedCustomer(domain.Customer{ID: "c2", Name: "Toko Jaya", Type: domain.ClassAgen})
	return st
}

func TestCommitDecrementsOnlySoldProducts(t *testing.T) {
	st := seededStore()
	pl := &Pipeline{Store: st, Bus: &events.Bus{Store: st}, Log: zerolog.Nop()}

	customer := domain.WalkIn()
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000}, customer))
	require.NoError(t, c.SetQuantity("p1", 3))
	trx, err := testEngine().Build(c, customer, testCashier(), 40000)
	require.NoError(t, err)

	require.NoError(t, pl.Commit(context.Background(), trx))

	p1, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, p1.Stock)
	p2, err := st.GetProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 7, p2.Stock)

	stored, err := st.GetTransaction(context.Background(), trx.ID)
	require.NoError(t, err)
	assert.Equal(t, trx.InvoiceNumber, stored.InvoiceNumber)

	evs := st.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TopicSaleCommitted, evs[0].Topic)
	assert.Equal(t, trx.ID, evs[0].AggregateID)
}

func TestCommitAccruesDebtForUnderpaidAgentSale(t *testing.T) {
	st := seededStore()
	pl := &Pipeline{Store: st, Log: zerolog.Nop()}

	customer, err := st.GetCustomer(context.Background(), "c2")
	require.NoError(t, err)
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000, PriceAgen: 12000}, customer))
	trx, err := testEngine().Build(c, customer, testCashier(), 5000)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentDebt, trx.PaymentMethod)

	require.NoError(t, pl.Commit(context.Background(), trx))

	after, err := st.GetCustomer(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(7000), after.Debt)
}

func TestCommitIsIdempotentByTransactionID(t *testing.T) {
	st := seededStore()
	pl := &Pipeline{Store: st, Log: zerolog.Nop()}

	customer, err := st.GetCustomer(context.Background(), "c2")
	require.NoError(t, err)
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000, PriceAgen: 12000}, customer))
	trx, err := testEngine().Build(c, customer, testCashier(), 5000)
	require.NoError(t, err)

	require.NoError(t, pl.Commit(context.Background(), trx))
	require.NoError(t, pl.Commit(context.Background(), trx))

	p1, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 9, p1.Stock)
	after, err := st.GetCustomer(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(7000), after.Debt)
}

func TestCommitRollsBackWhenStockStepFails(t *testing.T) {
	st := seededStore()
	pl := &Pipeline{Store: st, Log: zerolog.Nop()}

	customer := domain.WalkIn()
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000}, customer))
	trx, err := testEngine().Build(c, customer, testCashier(), 12000)
	require.NoError(t, err)
	// point one line at a product that no longer exists
	trx.Items = append(trx.Items, domain.TransactionItem{ProductID: "ghost", Qty: 1, UnitPrice: 100, Subtotal: 100})

	err = pl.Commit(context.Background(), trx)
	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, StepStock, commitErr.Step)
	assert.Equal(t, trx.ID, commitErr.TransactionID)

	// nothing from the failed commit is visible
	p1, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p1.Stock)
	_, err = st.GetTransaction(context.Background(), trx.ID)
	assert.Error(t, err)
}

type stubAlerter struct {
	alerts []string
}

func (a *stubAlerter) StockLow(_ context.Context, p domain.Product) error {
	a.alerts = append(a.alerts, p.ID)
	return nil
}

func TestCommitEnqueuesLowStockAlert(t *testing.T) {
	st := seededStore()
	alerts := &stubAlerter{}
	pl := &Pipeline{Store: st, Alerts: alerts, LowStockThreshold: 8, Log: zerolog.Nop()}

	customer := domain.WalkIn()
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(domain.Product{ID: "p1", Name: "Beras 5kg", Stock: 10, CostPrice: 9000, PriceGeneral: 12000}, customer))
	require.NoError(t, c.SetQuantity("p1", 3))
	trx, err := testEngine().Build(c, customer, testCashier(), 40000)
	require.NoError(t, err)

	require.NoError(t, pl.Commit(context.Background(), trx))
	assert.Equal(t, []string{"p1"}, alerts.alerts)
}
