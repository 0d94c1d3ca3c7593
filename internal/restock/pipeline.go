package restock

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
)

// CommitError reports which step of the commit failed for which purchase.
type CommitError struct {
	PurchaseID string
	Step       string
	Err        error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit purchase %s: step %s: %v", e.PurchaseID, e.Step, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

var errAlreadyCommitted = errors.New("purchase already committed")

// Pipeline applies a built purchase to storage: header plus line items, then
// per line stock increment and cost overwrite, all in one storage
// transaction. A duplicate purchase id re-applies nothing.
type Pipeline struct {
	Store store.Gateway
	Bus   *events.Bus
	Log   zerolog.Logger
}

// Commit persists the purchase and updates stock and cost basis per line.
func (p *Pipeline) Commit(ctx context.Context, purchase domain.Purchase) error {
	if p == nil || p.Store == nil {
		return errors.New("restock: pipeline not configured")
	}
	err := p.Store.RunInTx(ctx, func(g store.Gateway) error {
		if err := g.InsertPurchase(ctx, purchase); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errAlreadyCommitted
			}
			return &CommitError{PurchaseID: purchase.ID, Step: StepPersist, Err: err}
		}
		for _, item := range purchase.Items {
			if err := g.AddStockSetCost(ctx, item.ProductID, item.Qty, item.CostPrice); err != nil {
				return &CommitError{PurchaseID: purchase.ID, Step: StepStock, Err: err}
			}
		}
		return nil
	})
	if errors.Is(err, errAlreadyCommitted) {
		p.Log.Info().Str("purchase_id", purchase.ID).Msg("purchase already committed, skipping re-apply")
		return nil
	}
	if err != nil {
		var commitErr *CommitError
		if !errors.As(err, &commitErr) {
			commitErr = &CommitError{PurchaseID: purchase.ID, Step: StepPersist, Err: err}
		}
		if obs.CommitFailuresTotal != nil {
			obs.CommitFailuresTotal.WithLabelValues("purchase", commitErr.Step).Inc()
		}
		p.Log.Error().Err(commitErr.Err).
			Str("purchase_id", purchase.ID).
			Str("step", commitErr.Step).
			Msg("purchase commit failed")
		return commitErr
	}
	if obs.RestocksCommittedTotal != nil {
		obs.RestocksCommittedTotal.Inc()
	}
	if p.Bus != nil {
		if _, err := p.Bus.Emit(ctx, events.TopicPurchaseCommitted, purchase.ID, purchase); err != nil {
			p.Log.Warn().Err(err).Str("purchase_id", purchase.ID).Msg("emit purchase event")
		}
	}
	return nil
}
