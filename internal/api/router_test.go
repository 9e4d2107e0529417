package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/demo"
	"shopnest-bff/internal/models"
)

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rec = f.do(t, call{method: http.MethodGet, path: "/readyz"})
	assert.Equal(t, http.StatusOK, rec.Code)

	f.redis.Close()
	rec = f.do(t, call{method: http.MethodGet, path: "/readyz"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGuestCart(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-kettle", Quantity: 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := rec.Header().Get(headerCartSession)
	_, err := uuid.Parse(session)
	require.NoError(t, err, "a guest without a session gets one")

	view := decodeBody[cart.View](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "64.00", view.Total.StringFixed(2))

	rec = f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-pot"}, session: session})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(headerCartSession), "existing sessions are kept")
	assert.Equal(t, 3, decodeBody[cart.View](t, rec).ItemCount)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/cart"})
	assert.Empty(t, decodeBody[cart.View](t, rec).Items, "another browser sees its own cart")

	zero := 0
	rec = f.do(t, call{method: http.MethodPut, path: "/api/cart/items/prod-pot", body: SetQuantityRequest{Quantity: &zero}, session: session})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[cart.View](t, rec).Items, 1)

	rec = f.do(t, call{method: http.MethodPut, path: "/api/cart/items/prod-pot", body: SetQuantityRequest{Quantity: &zero}, session: session})
	require.Equal(t, http.StatusOK, rec.Code, "removing twice is a no-op")
	assert.Len(t, decodeBody[cart.View](t, rec).Items, 1)

	rec = f.do(t, call{method: http.MethodDelete, path: "/api/cart", session: session})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, call{method: http.MethodGet, path: "/api/cart", session: session})
	assert.Empty(t, decodeBody[cart.View](t, rec).Items)
}

func TestAddCartItemErrors(t *testing.T) {
	f := newFixture(t, nil)
	session := uuid.NewString()

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown product", AddItemRequest{ProductID: "prod-missing"}, http.StatusNotFound},
		{"out of stock", AddItemRequest{ProductID: "prod-sandals"}, http.StatusConflict},
		{"more than in stock", AddItemRequest{ProductID: "prod-pot", Quantity: 9}, http.StatusConflict},
		{"missing product id", AddItemRequest{Quantity: 1}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"product_id": "prod-pot", "quantity": -1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: tt.body, session: session})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-ebook", Quantity: 50}, session: session})
	assert.Equal(t, http.StatusOK, rec.Code, "digital products have no stock limit")
}

func TestLoginSwapsCarts(t *testing.T) {
	f := newFixture(t, nil)
	guest := uuid.NewString()

	rec := f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-kente"}, session: guest})
	require.Equal(t, http.StatusOK, rec.Code)

	signIn := f.login(t, demo.BuyerEmail, guest)
	assert.NotEmpty(t, signIn.AccessToken)
	assert.Equal(t, models.RoleBuyer, signIn.User.Role)
	assert.Empty(t, signIn.Cart.Items, "the guest cart is not merged")

	rec = f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-speaker"}, token: signIn.AccessToken, session: guest})
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[cart.View](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "prod-speaker", items[0].ProductID)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/auth/logout", token: signIn.AccessToken, session: guest})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[LogoutResponse](t, rec)
	require.Len(t, out.Cart.Items, 1)
	assert.Equal(t, "prod-kente", out.Cart.Items[0].ProductID)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/orders", token: signIn.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked tokens are refused")

	again := f.login(t, demo.BuyerEmail, "")
	require.Len(t, again.Cart.Items, 1)
	assert.Equal(t, "prod-speaker", again.Cart.Items[0].ProductID)
}

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, call{method: http.MethodPost, path: "/api/auth/register",
		body: models.RegisterRequest{Email: "root@shopnest.dev", Password: "password123", Role: models.RoleAdmin}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/auth/register",
		body: models.RegisterRequest{Email: "not-an-email", Password: "password123"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/auth/register",
		body: models.RegisterRequest{Email: "kwame@shopnest.dev", Password: "password123"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[AuthResponse](t, rec)
	assert.Equal(t, models.RoleBuyer, resp.User.Role)
	assert.Empty(t, resp.Cart.Items)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/auth/register",
		body: models.RegisterRequest{Email: "kwame@shopnest.dev", Password: "password123"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody[errorResponse](t, rec).Error)
}

func TestLoginFailure(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, call{method: http.MethodPost, path: "/api/auth/login",
		body: models.LoginRequest{Email: demo.BuyerEmail, Password: "nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect email or password", decodeBody[errorResponse](t, rec).Error)
}

func TestProductDetailAndRecentlyViewed(t *testing.T) {
	f := newFixture(t, nil)
	session := uuid.NewString()

	rec := f.do(t, call{method: http.MethodGet, path: "/api/products/prod-kettle", session: session})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decodeBody[models.ProductDetailPage](t, rec)
	require.NotNil(t, page.Product)
	assert.Equal(t, "Electric Kettle", page.Product.Name)
	require.Len(t, page.Similar, 1)
	assert.Equal(t, "prod-pot", page.Similar[0].ID)
	assert.NotEmpty(t, page.BoughtTogether)
	assert.NotNil(t, page.Reviews)
	assert.NotNil(t, page.ReviewStats)

	f.do(t, call{method: http.MethodGet, path: "/api/products/prod-kente", session: session})

	rec = f.do(t, call{method: http.MethodGet, path: "/api/recently-viewed", session: session})
	require.Equal(t, http.StatusOK, rec.Code)
	viewed := decodeBody[[]models.Product](t, rec)
	require.Len(t, viewed, 2)
	assert.Equal(t, "prod-kente", viewed[0].ID, "most recent first")
	assert.Equal(t, "prod-kettle", viewed[1].ID)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/home", session: session})
	require.Equal(t, http.StatusOK, rec.Code)
	home := decodeBody[models.HomePage](t, rec)
	assert.Len(t, home.RecentlyViewed, 2)
	assert.Len(t, home.Categories, 4, "inactive categories are hidden")
	require.NotEmpty(t, home.Popular)
	assert.Equal(t, "prod-kente", home.Popular[0].ID)

	rec = f.do(t, call{method: http.MethodDelete, path: "/api/recently-viewed", session: session})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, call{method: http.MethodGet, path: "/api/recently-viewed", session: session})
	assert.Empty(t, decodeBody[[]models.Product](t, rec))

	rec = f.do(t, call{method: http.MethodGet, path: "/api/products/prod-missing", session: session})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, nil)
	buyer := f.login(t, demo.BuyerEmail, "")

	rec := f.do(t, call{method: http.MethodPost, path: "/api/cart/items", body: AddItemRequest{ProductID: "prod-kettle", Quantity: 2}, token: buyer.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/checkout/quote", token: buyer.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decodeBody[checkout.Quote](t, rec)
	assert.Equal(t, "64.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", quote.ShippingCost.StringFixed(2))
	assert.Equal(t, "8.00", quote.Tax.StringFixed(2))
	assert.Equal(t, "87.00", quote.Total.StringFixed(2))

	rec = f.do(t, call{method: http.MethodPost, path: "/api/checkout", token: buyer.AccessToken,
		body: checkout.Request{ShippingAddress: shippingAddress(), PaymentMethod: "cash"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/checkout",
		body: checkout.Request{ShippingAddress: shippingAddress(), PaymentMethod: "card"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/checkout", token: buyer.AccessToken,
		body: checkout.Request{ShippingAddress: shippingAddress(), PaymentMethod: "mobile_money"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody[models.Order](t, rec)
	assert.Equal(t, "87.00", order.Total.StringFixed(2))
	assert.Equal(t, "mobile_money", order.PaymentMethod)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/cart", token: buyer.AccessToken})
	assert.Empty(t, decodeBody[cart.View](t, rec).Items, "checkout empties the cart")

	rec = f.do(t, call{method: http.MethodPost, path: "/api/checkout", token: buyer.AccessToken,
		body: checkout.Request{ShippingAddress: shippingAddress(), PaymentMethod: "card"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/orders/track?order_number=" + order.OrderNumber + "&email=ama@mail.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decodeBody[models.Order](t, rec).ID)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/orders/track?order_number=" + order.OrderNumber})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, call{method: http.MethodPut, path: "/api/orders/" + order.ID + "/cancel", token: buyer.AccessToken,
		body: models.CancelOrderRequest{Reason: "too short"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, call{method: http.MethodPut, path: "/api/orders/" + order.ID + "/cancel", token: buyer.AccessToken,
		body: models.CancelOrderRequest{Reason: "changed my mind about the kettle"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, order.OrderNumber, decodeBody[models.CancelOrderResponse](t, rec).OrderNumber)
}

func TestAccount(t *testing.T) {
	f := newFixture(t, nil)
	buyer := f.login(t, demo.BuyerEmail, "")

	rec := f.do(t, call{method: http.MethodGet, path: "/api/account", token: buyer.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decodeBody[models.AccountOverview](t, rec)
	require.NotNil(t, page.User)
	assert.Equal(t, demo.BuyerEmail, page.User.Email)
	assert.NotNil(t, page.Orders)
	assert.NotEmpty(t, page.Recommendations)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/account"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	f := newFixture(t, nil)
	buyer := f.login(t, demo.BuyerEmail, "")
	seller := f.login(t, demo.SellerEmail, "")
	admin := f.login(t, demo.AdminEmail, "")

	rec := f.do(t, call{method: http.MethodGet, path: "/api/admin/sellers/pending", token: buyer.AccessToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, call{method: http.MethodGet, path: "/api/admin/sellers/pending", token: seller.AccessToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, call{method: http.MethodGet, path: "/api/seller/profile", token: buyer.AccessToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/seller/profile", token: seller.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Boateng Crafts", decodeBody[models.SellerProfile](t, rec).BusinessName)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/admin/sellers", token: admin.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.SellerProfile](t, rec), 1)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/admin/sellers/pending"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSellerApproval(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(t, demo.AdminEmail, "")

	rec := f.do(t, call{method: http.MethodPost, path: "/api/auth/register",
		body: models.RegisterRequest{Email: "weaver@shopnest.dev", Password: "password123", Role: models.RoleSeller}})
	require.Equal(t, http.StatusCreated, rec.Code)
	seller := decodeBody[AuthResponse](t, rec)

	rec = f.do(t, call{method: http.MethodPost, path: "/api/seller/profile", token: seller.AccessToken,
		body: models.SellerProfileInput{BusinessName: "Weaver Studio"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profile := decodeBody[models.SellerProfile](t, rec)
	assert.Equal(t, models.ApprovalPending, profile.ApprovalStatus)

	approval := "/api/admin/sellers/" + profile.ID + "/approval"
	rec = f.do(t, call{method: http.MethodPost, path: approval, token: admin.AccessToken,
		body: models.SellerApproval{Action: models.ActionReject}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rejection reason is required", decodeBody[errorResponse](t, rec).Error)

	rec = f.do(t, call{method: http.MethodPost, path: approval, token: admin.AccessToken,
		body: map[string]string{"action": "suspend"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, call{method: http.MethodPost, path: approval, token: admin.AccessToken,
		body: models.SellerApproval{Action: models.ActionApprove}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.ApprovalApproved, decodeBody[models.SellerActionResponse](t, rec).Seller.ApprovalStatus)

	rec = f.do(t, call{method: http.MethodPut, path: "/api/admin/sellers/" + profile.ID + "/reactivate", token: admin.AccessToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "approved sellers cannot be reactivated")

	rec = f.do(t, call{method: http.MethodPut, path: "/api/admin/sellers/" + profile.ID + "/suspend", token: admin.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ApprovalSuspended, decodeBody[models.SellerActionResponse](t, rec).Seller.ApprovalStatus)
}

func TestCatalogReadsAreCached(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, call{method: http.MethodGet, path: "/api/products?category_id=cat-home"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Product](t, rec), 2)
	assert.NotEmpty(t, f.redis.Keys())

	rec = f.do(t, call{method: http.MethodGet, path: "/api/categories?include_inactive=true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Category](t, rec), 5)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/categories/cat-missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogLoadSurvivesCancelledCaller(t *testing.T) {
	marketplace := demo.New(testSecret, zap.NewNop()).Handler()
	arrived := make(chan struct{}, 4)
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/products" {
			arrived <- struct{}{}
			<-release
		}
		marketplace.ServeHTTP(w, r)
	})
	f := newFixture(t, slow)
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil).WithContext(firstCtx))
		first <- rec
	}()
	<-arrived

	second := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		second <- f.do(t, call{method: http.MethodGet, path: "/api/products"})
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.Empty(t, (<-first).Body.String())

	unblock()
	rec := <-second
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody[[]models.Product](t, rec))
}
