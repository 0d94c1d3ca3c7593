package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Svc *Service
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	identity, ok := common.IdentityFrom(r.Context())
	if !ok || identity.ID == "" {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "authentication required", nil)
		return
	}
	var payload Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	cashier := domain.User{ID: identity.ID, FullName: identity.Name}
	trx, err := h.Svc.Checkout(r.Context(), cashier, payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": trx})
}
