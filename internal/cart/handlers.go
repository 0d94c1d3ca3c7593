package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

// Handler exposes cart sessions over HTTP. Products and customers are always
// reloaded from the gateway so cart lines snapshot current stock and prices.
type Handler struct {
	Sessions *Sessions
	Store    store.Gateway
}

type createRequest struct {
	CustomerID string `json:"customerId"`
}

// Create handles POST /carts. An empty customerId opens a walk-in session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if r.Body != nil {
		// body is optional for walk-in sessions
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	customer := domain.WalkIn()
	if payload.CustomerID != "" {
		loaded, err := h.Store.GetCustomer(r.Context(), payload.CustomerID)
		if err != nil {
			h.writeStoreError(w, err, "customer not found")
			return
		}
		customer = loaded
	}
	sess, err := h.Sessions.Create(r.Context(), customer)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sess})
}

// Get handles GET /carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

// AddItem handles POST /carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "productId is required", nil)
		return
	}
	product, err := h.Store.GetProduct(r.Context(), payload.ProductID)
	if err != nil {
		h.writeStoreError(w, err, "product not found")
		return
	}
	if err := sess.Cart.AddItem(product, sess.Customer); err != nil {
		if errors.Is(err, ErrOutOfStock) {
			common.JSONError(w, http.StatusUnprocessableEntity, common.CodeOutOfStock, "product is out of stock", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	h.save(w, r, sess)
}

type setQtyRequest struct {
	Qty int `json:"qty"`
}

// SetQuantity handles PATCH /carts/{id}/items/{productID}.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var payload setQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := sess.Cart.SetQuantity(productID, payload.Qty); err != nil {
		if errors.Is(err, ErrLineNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product is not in the cart", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	h.save(w, r, sess)
}

// RemoveItem handles DELETE /carts/{id}/items/{productID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := sess.Cart.RemoveItem(productID); err != nil {
		if errors.Is(err, ErrLineNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product is not in the cart", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	h.save(w, r, sess)
}

type setCustomerRequest struct {
	CustomerID string `json:"customerId"`
}

// SetCustomer handles PUT /carts/{id}/customer. Switching the customer
// bulk-reprices every line for the new classification.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var payload setCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	customer := domain.WalkIn()
	if payload.CustomerID != "" {
		loaded, err := h.Store.GetCustomer(r.Context(), payload.CustomerID)
		if err != nil {
			h.writeStoreError(w, err, "customer not found")
			return
		}
		customer = loaded
	}
	sess.Customer = customer
	sess.Cart.RepriceForCustomer(customer)
	h.save(w, r, sess)
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	if h.Sessions == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart handler not configured", nil)
		return Session{}, false
	}
	id := chi.URLParam(r, "id")
	sess, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "cart session not found", nil)
			return Session{}, false
		}
		common.WriteError(w, err)
		return Session{}, false
	}
	return sess, true
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, sess Session) {
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, notFoundMsg, nil)
		return
	}
	common.WriteError(w, err)
}
