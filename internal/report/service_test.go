package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store/memory"
)

func seedTransactions(t *testing.T, st *memory.Store) {
	t.Helper()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	trxs := []domain.Transaction{
		{
			ID: "t1", InvoiceNumber: "INV-1", Date: day.Add(9 * time.Hour),
			CustomerID: "walk-in", CustomerName: "Umum", CustomerType: domain.ClassGeneral,
			Items: []domain.TransactionItem{
				{ProductID: "p1", ProductName: "Beras 5kg", Qty: 2, UnitPrice: 12000, CostPrice: 9000, Subtotal: 24000},
			},
			TotalAmount: 24000, AmountPaid: 24000, PaymentMethod: domain.PaymentCash,
		},
		{
			ID: "t2", InvoiceNumber: "INV-2", Date: day.Add(14 * time.Hour),
			CustomerID: "c2", CustomerName: "Toko Jaya", CustomerType: domain.ClassAgen,
			Items: []domain.TransactionItem{
				// zero cost basis, profit falls back to 20% of the price
				{ProductID: "p3", ProductName: "Kopi Sachet", Qty: 1, UnitPrice: 10000, CostPrice: 0, Subtotal: 10000},
			},
			TotalAmount: 10000, AmountPaid: 4000, PaymentMethod: domain.PaymentDebt,
		},
		{
			ID: "t3", InvoiceNumber: "INV-3", Date: day.AddDate(0, 0, 5),
			CustomerID: "walk-in", CustomerName: "Umum", CustomerType: domain.ClassGeneral,
			Items: []domain.TransactionItem{
				{ProductID: "p1", ProductName: "Beras 5kg", Qty: 1, UnitPrice: 12000, CostPrice: 9000, Subtotal: 12000},
			},
			TotalAmount: 12000, AmountPaid: 12000, PaymentMethod: domain.PaymentCash,
		},
	}
	for _, trx := range trxs {
		require.NoError(t, st.InsertTransaction(context.Background(), trx))
	}
}

func TestSalesDailySummary(t *testing.T) {
	st := memory.New()
	seedTransactions(t, st)
	svc := &Service{Store: st, Log: zerolog.Nop()}

	sum, err := svc.Sales(context.Background(), PeriodDaily, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TransactionCount)
	assert.Equal(t, 3, sum.ItemsSold)
	assert.Equal(t, int64(34000), sum.Revenue)
	// t1: (12000-9000)*2 = 6000; t2 fallback cost 8000: (10000-8000)*1 = 2000
	assert.Equal(t, int64(8000), sum.Profit)
	assert.Equal(t, int64(6000), sum.DebtAccrued)
}

func TestSalesMonthlyIncludesWholeMonth(t *testing.T) {
	st := memory.New()
	seedTransactions(t, st)
	svc := &Service{Store: st, Log: zerolog.Nop()}

	sum, err := svc.Sales(context.Background(), PeriodMonthly, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TransactionCount)
	assert.Equal(t, int64(46000), sum.Revenue)
}

func TestSalesUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	st := memory.New()
	seedTransactions(t, st)
	svc := &Service{
		Store: st,
		Cache: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		TTL:   time.Minute,
		Log:   zerolog.Nop(),
	}
	anchor := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	first, err := svc.Sales(context.Background(), PeriodDaily, anchor)
	require.NoError(t, err)

	// new sales after caching are not visible until the entry expires
	require.NoError(t, st.InsertTransaction(context.Background(), domain.Transaction{
		ID: "t4", InvoiceNumber: "INV-4", Date: anchor,
		Items:       []domain.TransactionItem{{ProductID: "p1", Qty: 1, UnitPrice: 12000, CostPrice: 9000, Subtotal: 12000}},
		TotalAmount: 12000, AmountPaid: 12000, PaymentMethod: domain.PaymentCash,
	}))
	cached, err := svc.Sales(context.Background(), PeriodDaily, anchor)
	require.NoError(t, err)
	assert.Equal(t, first.Revenue, cached.Revenue)

	mr.FastForward(2 * time.Minute)
	fresh, err := svc.Sales(context.Background(), PeriodDaily, anchor)
	require.NoError(t, err)
	assert.Equal(t, first.Revenue+12000, fresh.Revenue)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodDaily, p)

	_, err = ParsePeriod("weekly")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
