package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/models"
	"shopnest-bff/internal/telemetry"
)

// NewRouter registers every route. Route handlers are wrapped in the
// metrics middleware individually so it sees the matched pattern.
func NewRouter(h *Handler, authMW *auth.Middleware) http.Handler {
	authMW.OnError = writeError

	mux := http.NewServeMux()
	handle := func(pattern string, handler http.Handler, mws ...func(http.Handler) http.Handler) {
		mux.Handle(pattern, telemetry.Middleware(chain(handler, mws...)))
	}

	optional := authMW.Optional
	required := authMW.Require
	seller := authMW.RequireRole(models.RoleSeller)
	admin := authMW.RequireRole(models.RoleAdmin)

	mux.Handle("GET /metrics", promhttp.Handler())
	handle("GET /healthz", http.HandlerFunc(h.Healthz))
	handle("GET /readyz", http.HandlerFunc(h.Readyz))

	handle("POST /api/auth/register", http.HandlerFunc(h.Register))
	handle("POST /api/auth/login", http.HandlerFunc(h.Login))
	handle("POST /api/auth/refresh", http.HandlerFunc(h.Refresh))
	handle("POST /api/auth/logout", http.HandlerFunc(h.Logout), required)

	// storefront
	handle("GET /api/home", http.HandlerFunc(h.Home), optional)
	handle("GET /api/products", http.HandlerFunc(h.ListProducts))
	handle("GET /api/products/{id}", http.HandlerFunc(h.ProductDetail), optional)
	handle("GET /api/categories", http.HandlerFunc(h.ListCategories))
	handle("GET /api/categories/{id}", http.HandlerFunc(h.GetCategory))
	handle("GET /api/recommendations/similar/{id}", h.Similar())
	handle("GET /api/recommendations/popular", h.Popular())
	handle("GET /api/recommendations/trending", h.Trending())
	handle("GET /api/recommendations/seller/{sellerId}/other/{id}", h.SellerOther())
	handle("GET /api/recommendations/bought-together/{id}", h.BoughtTogether())
	handle("GET /api/recommendations/category/{id}", h.CategoryPopular())
	handle("GET /api/reviews/product/{id}", http.HandlerFunc(h.ProductReviews))
	handle("GET /api/reviews/product/{id}/stats", http.HandlerFunc(h.ProductReviewStats))
	handle("GET /api/orders/track", http.HandlerFunc(h.TrackOrder))
	handle("GET /api/payments/public-key", http.HandlerFunc(h.PaymentPublicKey))

	// cart and history, for guests and signed-in users alike
	handle("GET /api/cart", http.HandlerFunc(h.GetCart), optional)
	handle("POST /api/cart/items", http.HandlerFunc(h.AddCartItem), optional)
	handle("PUT /api/cart/items/{id}", http.HandlerFunc(h.UpdateCartItem), optional)
	handle("DELETE /api/cart/items/{id}", http.HandlerFunc(h.RemoveCartItem), optional)
	handle("DELETE /api/cart", http.HandlerFunc(h.ClearCart), optional)
	handle("GET /api/recently-viewed", http.HandlerFunc(h.RecentlyViewed), optional)
	handle("DELETE /api/recently-viewed", http.HandlerFunc(h.ClearRecentlyViewed), optional)
	handle("POST /api/checkout/quote", http.HandlerFunc(h.CheckoutQuote), optional)

	// buyer
	handle("GET /api/account", http.HandlerFunc(h.Account), required)
	handle("POST /api/checkout", http.HandlerFunc(h.Checkout), required)
	handle("GET /api/orders", http.HandlerFunc(h.ListOrders), required)
	handle("GET /api/orders/{id}", http.HandlerFunc(h.GetOrder), required)
	handle("PUT /api/orders/{id}/cancel", http.HandlerFunc(h.CancelOrder), required)
	handle("POST /api/payments/intents", http.HandlerFunc(h.CreatePaymentIntent), required)
	handle("POST /api/payments/confirm", http.HandlerFunc(h.ConfirmPayment), required)
	handle("POST /api/reviews", http.HandlerFunc(h.CreateReview), required)
	handle("GET /api/reviews/mine", http.HandlerFunc(h.MyReviews), required)
	handle("PUT /api/reviews/{id}", http.HandlerFunc(h.UpdateReview), required)
	handle("DELETE /api/reviews/{id}", http.HandlerFunc(h.DeleteReview), required)
	handle("POST /api/reviews/{id}/helpful", http.HandlerFunc(h.MarkReviewHelpful), required)

	// seller
	handle("GET /api/seller/profile", http.HandlerFunc(h.SellerProfile), required, seller)
	handle("POST /api/seller/profile", http.HandlerFunc(h.CreateSellerProfile), required, seller)
	handle("PUT /api/seller/profile", http.HandlerFunc(h.UpdateSellerProfile), required, seller)
	handle("GET /api/seller/dashboard", http.HandlerFunc(h.SellerDashboard), required, seller)
	handle("GET /api/seller/products", http.HandlerFunc(h.SellerProducts), required, seller)
	handle("POST /api/seller/products", http.HandlerFunc(h.CreateProduct), required, seller)
	handle("PUT /api/seller/products/{id}", http.HandlerFunc(h.UpdateProduct), required, seller)
	handle("DELETE /api/seller/products/{id}", http.HandlerFunc(h.DeleteProduct), required, seller)
	handle("GET /api/seller/orders", http.HandlerFunc(h.SellerOrders), required, seller)
	handle("PUT /api/seller/orders/{itemId}/status", http.HandlerFunc(h.UpdateOrderItemStatus), required, seller)

	// admin
	handle("GET /api/admin/dashboard", http.HandlerFunc(h.AdminDashboard), required, admin)
	handle("GET /api/admin/sellers/pending", http.HandlerFunc(h.PendingSellers), required, admin)
	handle("GET /api/admin/sellers", http.HandlerFunc(h.AllSellers), required, admin)
	handle("POST /api/admin/sellers/{id}/approval", http.HandlerFunc(h.ReviewSeller), required, admin)
	handle("PUT /api/admin/sellers/{id}/suspend", http.HandlerFunc(h.SuspendSeller), required, admin)
	handle("PUT /api/admin/sellers/{id}/reactivate", http.HandlerFunc(h.ReactivateSeller), required, admin)
	handle("GET /api/admin/orders", http.HandlerFunc(h.AllOrders), required, admin)
	handle("POST /api/admin/categories", http.HandlerFunc(h.CreateCategory), required, admin)
	handle("PUT /api/admin/categories/{id}", http.HandlerFunc(h.UpdateCategory), required, admin)
	handle("DELETE /api/admin/categories/{id}", http.HandlerFunc(h.DeleteCategory), required, admin)
	handle("GET /api/admin/settings", http.HandlerFunc(h.ListSettings), required, admin)
	handle("GET /api/admin/settings/grouped", http.HandlerFunc(h.GroupedSettings), required, admin)
	handle("POST /api/admin/settings/confirm", http.HandlerFunc(h.ConfirmSetting), required, admin)
	handle("GET /api/admin/settings/audit-log", http.HandlerFunc(h.SettingsAuditLog), required, admin)

	return chain(mux,
		RequestID,
		Recover(h.log),
		Logging(h.log, h.cfg.HTTP.TrustedProxies),
		CORS(h.cfg.HTTP),
		RateLimit(h.cache, h.cfg.RateLimit, h.cfg.HTTP.TrustedProxies, h.log),
	)
}
