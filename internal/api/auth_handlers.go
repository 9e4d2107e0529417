package api

import (
	"net/http"

	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/models"
)

// AuthResponse is the backend token response plus the signed-in user's
// cart, so the storefront can swap carts in one round trip.
type AuthResponse struct {
	models.TokenResponse
	Cart cart.View `json:"cart"`
}

type LogoutResponse struct {
	Message string    `json:"message"`
	Cart    cart.View `json:"cart"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Role == models.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "admin accounts cannot self-register")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleBuyer
	}

	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.signedIn(w, r, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.signedIn(w, r, http.StatusOK, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.signedIn(w, r, http.StatusOK, resp)
}

// signedIn stores the session and answers with the user's persisted cart.
func (h *Handler) signedIn(w http.ResponseWriter, r *http.Request, status int, resp *models.TokenResponse) {
	ctx := r.Context()
	if err := h.sessions.Save(ctx, resp.User); err != nil {
		h.log.Warn("Session not saved", zap.String("user_id", resp.User.ID), zap.Error(err))
	}
	h.dropAccountCache(ctx, resp.User.ID)

	c, err := h.carts.Get(ctx, models.Owner{UserID: resp.User.ID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("User signed in", zap.String("user_id", resp.User.ID), zap.String("role", string(resp.User.Role)))
	writeJSON(w, status, AuthResponse{TokenResponse: *resp, Cart: c.View()})
}

// Logout revokes the access token and returns the guest cart view. The
// user's cart stays stored for the next sign in.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.FromContext(ctx)

	if err := h.blacklist.Revoke(ctx, id.Token, id.ExpiresAt); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.sessions.Delete(ctx, id.UserID); err != nil {
		h.log.Warn("Session not deleted", zap.String("user_id", id.UserID), zap.Error(err))
	}
	h.dropAccountCache(ctx, id.UserID)

	c, err := h.carts.Get(ctx, h.guestOwner(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogoutResponse{Message: "Logged out", Cart: c.View()})
}
