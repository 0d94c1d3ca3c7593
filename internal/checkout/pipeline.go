package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/events"
	"github.com/yusapos/backend-pos/internal/obs"
	"github.com/yusapos/backend-pos/internal/store"
)

// Pipeline step labels surfaced in CommitError and metrics.
const (
	StepPersist = "persist"
	StepStock   = "stock"
	StepDebt    = "debt"
)

// CommitError reports which step of the commit failed for which transaction.
// The cart that produced the transaction is left untouched so the operator
// can retry.
type CommitError struct {
	TransactionID string
	Step          string
	Err           error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit transaction %s: step %s: %v", e.TransactionID, e.Step, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// LowStockAlerter schedules an asynchronous alert for a product whose stock
// fell to or below the configured threshold.
type LowStockAlerter interface {
	StockLow(ctx context.Context, p domain.Product) error
}

var errAlreadyCommitted = errors.New("transaction already committed")

// Pipeline applies a built transaction to storage. All three effects run in
// one storage transaction; a duplicate transaction id is treated as a
// confirmed earlier success and re-applies nothing.
type Pipeline struct {
	Store             store.Gateway
	Bus               *events.Bus
	Alerts            LowStockAlerter
	LowStockThreshold int
	Log               zerolog.Logger
}

// Commit persists the transaction, decrements stock per line and accrues
// customer debt for underpaid sales.
func (p *Pipeline) Commit(ctx context.Context, trx domain.Transaction) error {
	if p == nil || p.Store == nil {
		return errors.New("checkout: pipeline not configured")
	}
	err := p.Store.RunInTx(ctx, func(g store.Gateway) error {
		if err := g.InsertTransaction(ctx, trx); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errAlreadyCommitted
			}
			return &CommitError{TransactionID: trx.ID, Step: StepPersist, Err: err}
		}
		for _, item := range trx.Items {
			if err := g.DecrementStock(ctx, item.ProductID, item.Qty); err != nil {
				return &CommitError{TransactionID: trx.ID, Step: StepStock, Err: err}
			}
		}
		if debt := trx.DebtAmount(); debt > 0 {
			if err := g.IncrementDebt(ctx, trx.CustomerID, debt); err != nil {
				return &CommitError{TransactionID: trx.ID, Step: StepDebt, Err: err}
			}
		}
		return nil
	})
	if errors.Is(err, errAlreadyCommitted) {
		p.Log.Info().Str("transaction_id", trx.ID).Msg("sale already committed, skipping re-apply")
		return nil
	}
	if err != nil {
		var commitErr *CommitError
		if !errors.As(err, &commitErr) {
			commitErr = &CommitError{TransactionID: trx.ID, Step: StepPersist, Err: err}
		}
		if obs.CommitFailuresTotal != nil {
			obs.CommitFailuresTotal.WithLabelValues("sale", commitErr.Step).Inc()
		}
		p.Log.Error().Err(commitErr.Err).
			Str("transaction_id", trx.ID).
			Str("step", commitErr.Step).
			Msg("sale commit failed")
		return commitErr
	}
	p.afterCommit(ctx, trx)
	return nil
}

func (p *Pipeline) afterCommit(ctx context.Context, trx domain.Transaction) {
	if obs.SalesCommittedTotal != nil {
		obs.SalesCommittedTotal.WithLabelValues(string(trx.PaymentMethod)).Inc()
	}
	if debt := trx.DebtAmount(); debt > 0 && obs.DebtAccruedTotal != nil {
		obs.DebtAccruedTotal.Add(float64(debt))
	}
	if p.Bus != nil {
		if _, err := p.Bus.Emit(ctx, events.TopicSaleCommitted, trx.ID, trx); err != nil {
			p.Log.Warn().Err(err).Str("transaction_id", trx.ID).Msg("emit sale event")
		}
	}
	p.checkLowStock(ctx, trx)
}

func (p *Pipeline) checkLowStock(ctx context.Context, trx domain.Transaction) {
	if p.Alerts == nil || p.LowStockThreshold <= 0 {
		return
	}
	for _, item := range trx.Items {
		product, err := p.Store.GetProduct(ctx, item.ProductID)
		if err != nil {
			p.Log.Warn().Err(err).Str("product_id", item.ProductID).Msg("low stock lookup")
			continue
		}
		if product.Stock > p.LowStockThreshold {
			continue
		}
		if err := p.Alerts.StockLow(ctx, product); err != nil {
			p.Log.Warn().Err(err).Str("product_id", product.ID).Msg("enqueue low stock alert")
			continue
		}
		if obs.StockLowAlertsTotal != nil {
			obs.StockLowAlertsTotal.Inc()
		}
	}
}
