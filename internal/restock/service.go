package restock

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

// LineInput is one received line of the restock request.
type LineInput struct {
	ProductID string       `json:"productId" validate:"required"`
	Qty       int          `json:"qty" validate:"gte=0"`
	UnitCost  domain.Money `json:"unitCost" validate:"gte=0"`
}

// Input is the restock request payload.
type Input struct {
	SupplierID string      `json:"supplierId" validate:"required"`
	InvoiceRef string      `json:"invoiceRef" validate:"required"`
	Lines      []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// ProductCache invalidates cached product listings once stock has changed.
type ProductCache interface {
	InvalidateProducts(ctx context.Context)
}

// Service resolves the supplier and products referenced by a restock request,
// builds the purchase and commits it.
type Service struct {
	Store    store.Gateway
	Engine   Engine
	Pipeline *Pipeline
	Catalog  ProductCache
	Validate *validator.Validate
}

// Commit processes a restock for the given operator.
func (s *Service) Commit(ctx context.Context, operator domain.User, in Input) (domain.Purchase, error) {
	if s == nil || s.Store == nil || s.Pipeline == nil {
		return domain.Purchase{}, errors.New("restock: service not configured")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return domain.Purchase{}, common.NewAppError(common.CodeValidation, "invalid restock payload", http.StatusBadRequest, err)
		}
	}
	supplier, err := s.Store.GetSupplier(ctx, in.SupplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Purchase{}, common.NewAppError(common.CodeNotFound, "supplier not found", http.StatusNotFound, err)
		}
		return domain.Purchase{}, err
	}
	lines := make([]Line, 0, len(in.Lines))
	for _, line := range in.Lines {
		product, err := s.Store.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Purchase{}, common.NewAppError(common.CodeNotFound, "product not found: "+line.ProductID, http.StatusNotFound, err)
			}
			return domain.Purchase{}, err
		}
		lines = append(lines, Line{Product: product, Qty: line.Qty, UnitCost: line.UnitCost})
	}

	purchase, err := s.Engine.BuildPurchase(supplier, operator, in.InvoiceRef, lines)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return domain.Purchase{}, common.NewAppError(common.CodeValidation, vErr.Reason, http.StatusBadRequest, err)
		}
		return domain.Purchase{}, err
	}
	if err := s.Pipeline.Commit(ctx, purchase); err != nil {
		return domain.Purchase{}, common.NewAppError(common.CodeCommitFailed, "restock could not be committed", http.StatusInternalServerError, err)
	}
	if s.Catalog != nil {
		// Stock and cost prices just changed, cached listings are stale.
		s.Catalog.InvalidateProducts(ctx)
	}
	return purchase, nil
}
