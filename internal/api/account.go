package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/models"
	"shopnest-bff/internal/telemetry"
)

func accountCacheKey(userID string) string {
	return "account:" + userID
}

func (h *Handler) dropAccountCache(ctx context.Context, userID string) {
	if err := h.cache.Del(ctx, accountCacheKey(userID)); err != nil {
		h.log.Warn("Account cache not dropped", zap.String("user_id", userID), zap.Error(err))
	}
}

// Account aggregates the signed-in user's profile, orders and suggestions.
// The assembled page is cached briefly per user.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.FromContext(ctx)
	cacheKey := accountCacheKey(id.UserID)
	start := time.Now()

	cachedData, err := h.cache.Get(ctx, cacheKey)
	if err == nil {
		telemetry.CacheLookups.WithLabelValues("account", "hit").Inc()
		h.log.Debug("Cache HIT", zap.String("user_id", id.UserID), zap.Duration("duration", time.Since(start)))
		w.Header().Set("Content-Type", "application/json")
		w.Write(cachedData)
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.log.Warn("Account cache read failed", zap.Error(err))
	}
	telemetry.CacheLookups.WithLabelValues("account", "miss").Inc()

	user, err := h.sessions.Get(ctx, id.UserID)
	if err != nil {
		h.log.Warn("Session missing for account page", zap.String("user_id", id.UserID), zap.Error(err))
		writeError(w, r, http.StatusUnauthorized, "session expired, sign in again")
		return
	}

	var (
		wg              sync.WaitGroup
		orders          []models.Order
		recommendations []models.Product
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		res, err := h.svc.ListOrders(ctx, id.Token)
		if err != nil {
			h.log.Error("Orders fetch error", zap.String("user_id", id.UserID), zap.Error(err))
		}
		orders = orEmpty(res)
	}()

	go func() {
		defer wg.Done()
		res, err := h.cachedRecs(ctx, "popular", detailListLimit, h.svc.Popular)
		if err != nil {
			h.log.Warn("Recommendations fallback", zap.String("user_id", id.UserID), zap.Error(err))
		}
		recommendations = orEmpty(res)
	}()

	wg.Wait()

	response := models.AccountOverview{
		User:            user,
		Orders:          orders,
		Recommendations: recommendations,
	}

	responseBytes, err := json.Marshal(response)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	go func() {
		_ = h.cache.Set(context.Background(), cacheKey, responseBytes, h.cfg.Cache.ProfileTTL)
	}()

	h.log.Info("Request processed", zap.String("user_id", id.UserID), zap.Duration("duration", time.Since(start)))
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseBytes)
}

func (h *Handler) CheckoutQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.checkout.Quote(r.Context(), h.owner(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	id, _ := auth.FromContext(ctx)
	order, err := h.checkout.Submit(ctx, id.Token, h.owner(w, r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.dropAccountCache(ctx, id.UserID)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(r.Context(), token(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CancelOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	id, _ := auth.FromContext(ctx)
	out, err := h.svc.CancelOrder(ctx, id.Token, r.PathValue("id"), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.dropAccountCache(ctx, id.UserID)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, r, http.StatusBadRequest, "amount must be positive")
		return
	}
	intent, err := h.svc.CreatePaymentIntent(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.svc.ConfirmPayment(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewInput
	if !h.decode(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.Rating == 0 {
		writeError(w, r, http.StatusBadRequest, "product_id and rating are required")
		return
	}
	review, err := h.svc.CreateReview(r.Context(), token(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r.Context(), "catalog:product:"+req.ProductID)
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.MyReviews(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reviews))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewInput
	if !h.decode(w, r, &req) {
		return
	}
	review, err := h.svc.UpdateReview(r.Context(), token(r), r.PathValue("id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteReview(r.Context(), token(r), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkReviewHelpful(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.MarkReviewHelpful(r.Context(), token(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
