package api

import (
	"net/http"

	"shopnest-bff/internal/recent"
	"shopnest-bff/internal/services"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), h.owner(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// AddCartItem defaults to one unit.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.carts.Add(r.Context(), h.owner(w, r), req.ProductID, req.Quantity)
	if err != nil {
		if services.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// UpdateCartItem sets a line's quantity; zero or less removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.carts.SetQuantity(r.Context(), h.owner(w, r), r.PathValue("id"), *req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Remove(r.Context(), h.owner(w, r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), h.owner(w, r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", recent.DefaultLimit)
	writeJSON(w, http.StatusOK, h.recentProducts(r.Context(), h.owner(w, r), limit))
}

func (h *Handler) ClearRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	if err := h.recent.Clear(r.Context(), h.owner(w, r).Scope()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
