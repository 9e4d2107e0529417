package api

import (
	"net/http"

	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/models"
)

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.AdminDashboard(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) PendingSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.PendingSellers(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sellers))
}

func (h *Handler) AllSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.AllSellers(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sellers))
}

// ReviewSeller approves or rejects a pending seller. Rejections must carry
// a reason.
func (h *Handler) ReviewSeller(w http.ResponseWriter, r *http.Request) {
	var req models.SellerApproval
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sellerID := r.PathValue("id")
	out, err := h.svc.ReviewSeller(r.Context(), token(r), sellerID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "seller."+string(req.Action), sellerID)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SuspendSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("id")
	out, err := h.svc.SuspendSeller(r.Context(), token(r), sellerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "seller.suspend", sellerID)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ReactivateSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("id")
	out, err := h.svc.ReactivateSeller(r.Context(), token(r), sellerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "seller.reactivate", sellerID)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAllOrders(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(orders))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	category, err := h.svc.CreateCategory(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixCategories)
	h.audit(r, "category.create", category.ID)
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if !h.decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	category, err := h.svc.UpdateCategory(r.Context(), token(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixCategories)
	h.audit(r, "category.update", id)
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.DeleteCategory(r.Context(), token(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), prefixCategories)
	h.audit(r, "category.delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.ListSettings(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(settings))
}

func (h *Handler) GroupedSettings(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.GroupedSettings(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) ConfirmSetting(w http.ResponseWriter, r *http.Request) {
	var req models.SettingConfirmation
	if !h.decode(w, r, &req) {
		return
	}
	setting, err := h.svc.ConfirmSetting(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "setting.change", req.SettingKey)
	writeJSON(w, http.StatusOK, setting)
}

func (h *Handler) SettingsAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.SettingsAuditLog(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(entries))
}

// audit logs an admin write for later review.
func (h *Handler) audit(r *http.Request, action, target string) {
	id, _ := auth.FromContext(r.Context())
	h.log.Info("Admin action",
		zap.String("action", action),
		zap.String("target", target),
		zap.String("admin_id", id.UserID),
		zap.String("request_id", RequestIDFrom(r.Context())),
	)
}
