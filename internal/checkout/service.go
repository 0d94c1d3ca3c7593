package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/yusapos/backend-pos/internal/cart"
	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/obs"
)

// Input is the checkout request payload. AmountTendered is free-form operator
// input; anything non-numeric counts as zero.
type Input struct {
	SessionID      string `json:"sessionId"`
	AmountTendered string `json:"amountTendered"`
}

// ProductCache invalidates cached product listings once stock has changed.
type ProductCache interface {
	InvalidateProducts(ctx context.Context)
}

// Service drives the full checkout flow: load the session, build the
// transaction, commit it, then clear the cart. The cart survives every
// failure so the operator can correct and retry.
type Service struct {
	Sessions *cart.Sessions
	Engine   Engine
	Pipeline *Pipeline
	Catalog  ProductCache
	Log      zerolog.Logger
}

// Checkout processes a sale for the given cashier.
func (s *Service) Checkout(ctx context.Context, cashier domain.User, in Input) (domain.Transaction, error) {
	if s == nil || s.Sessions == nil || s.Pipeline == nil {
		return domain.Transaction{}, errors.New("checkout: service not configured")
	}
	if in.SessionID == "" {
		return domain.Transaction{}, common.NewAppError(common.CodeValidation, "sessionId is required", http.StatusBadRequest, nil)
	}
	sess, err := s.Sessions.Get(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return domain.Transaction{}, common.NewAppError(common.CodeNotFound, "cart session not found", http.StatusNotFound, err)
		}
		return domain.Transaction{}, err
	}

	tendered := common.ParseAmount(in.AmountTendered)
	trx, err := s.Engine.Build(&sess.Cart, sess.Customer, cashier, tendered)
	if err != nil {
		s.countRejection(err)
		switch {
		case errors.Is(err, ErrEmptyCart):
			return domain.Transaction{}, common.NewAppError(common.CodeEmptyCart, "cart has no items", http.StatusUnprocessableEntity, err)
		case errors.Is(err, ErrDebtNotAllowed):
			return domain.Transaction{}, common.NewAppError(common.CodeDebtNotAllowed, "customer must pay the full amount", http.StatusUnprocessableEntity, err)
		default:
			return domain.Transaction{}, err
		}
	}

	if err := s.Pipeline.Commit(ctx, trx); err != nil {
		return domain.Transaction{}, common.NewAppError(common.CodeCommitFailed, "sale could not be committed", http.StatusInternalServerError, err)
	}
	if s.Catalog != nil {
		// Stock just moved, cached product listings are stale.
		s.Catalog.InvalidateProducts(ctx)
	}

	sess.Cart.Clear()
	if err := s.Sessions.Save(ctx, sess); err != nil {
		// The sale is durable; a stale cached cart only risks a duplicate
		// attempt, which the pipeline dedups by transaction id.
		s.Log.Warn().Err(err).Str("session_id", sess.ID).Msg("clear cart after checkout")
	}
	return trx, nil
}

func (s *Service) countRejection(err error) {
	if obs.CheckoutRejectedTotal == nil {
		return
	}
	switch {
	case errors.Is(err, ErrEmptyCart):
		obs.CheckoutRejectedTotal.WithLabelValues("empty_cart").Inc()
	case errors.Is(err, ErrDebtNotAllowed):
		obs.CheckoutRejectedTotal.WithLabelValues("debt_not_allowed").Inc()
	default:
		obs.CheckoutRejectedTotal.WithLabelValues("other").Inc()
	}
}
