package api

import (
	"net/http"

	"shopnest-bff/internal/models"
)

func (h *Handler) SellerProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetSellerProfile(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) CreateSellerProfile(w http.ResponseWriter, r *http.Request) {
	var req models.SellerProfileInput
	if !h.decode(w, r, &req) {
		return
	}
	if req.BusinessName == "" {
		writeError(w, r, http.StatusBadRequest, "business_name is required")
		return
	}
	profile, err := h.svc.CreateSellerProfile(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) UpdateSellerProfile(w http.ResponseWriter, r *http.Request) {
	var req models.SellerProfileInput
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.svc.UpdateSellerProfile(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) SellerDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.SellerDashboard(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) SellerProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListMyProducts(r.Context(), token(r), boolQuery(r, "include_inactive"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(products))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductInput
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.CategoryID == "" || req.Price == nil {
		writeError(w, r, http.StatusBadRequest, "name, category_id and price are required")
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixProducts, prefixRecs)
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductInput
	if !h.decode(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), token(r), r.PathValue("id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixProducts, prefixRecs)
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), token(r), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixProducts, prefixRecs)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SellerOrders(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListSellerOrders(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

func (h *Handler) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	var req models.OrderStatusUpdate
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.svc.UpdateOrderItemStatus(r.Context(), token(r), r.PathValue("itemId"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
