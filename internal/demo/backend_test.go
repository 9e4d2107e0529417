package demo

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/models"
)

const testSecret = "demo-test-secret"

func do(t *testing.T, h http.Handler, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func login(t *testing.T, h http.Handler, email string) models.TokenResponse {
	var tok models.TokenResponse
	code := do(t, h, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: DemoPassword}, &tok)
	require.Equal(t, http.StatusOK, code)
	return tok
}

func TestLogin_TokensVerifyWithGatewayMiddleware(t *testing.T) {
	h := New(testSecret, zap.NewNop()).Handler()
	tok := login(t, h, SellerEmail)

	id, err := auth.NewMiddleware(testSecret, nil, nil, zap.NewNop()).Parse(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, id.UserID)
	assert.Equal(t, models.RoleSeller, id.Role)

	_, err = auth.NewMiddleware(testSecret, nil, nil, zap.NewNop()).Parse(tok.RefreshToken)
	assert.Error(t, err, "refresh tokens are not access tokens")

	code := do(t, h, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: SellerEmail, Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterAndRefresh(t *testing.T) {
	h := New(testSecret, zap.NewNop()).Handler()

	var tok models.TokenResponse
	code := do(t, h, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{Email: "new@shopnest.dev", Password: "longenough"}, &tok)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.RoleBuyer, tok.User.Role)

	code = do(t, h, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{Email: "new@shopnest.dev", Password: "longenough"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var refreshed models.TokenResponse
	code = do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: tok.RefreshToken}, &refreshed)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, tok.User.ID, refreshed.User.ID)

	code = do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: tok.AccessToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestListProductsFilters(t *testing.T) {
	h := New(testSecret, zap.NewNop()).Handler()

	var products []models.Product
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/products?category_id=cat-fashion", "", nil, &products))
	assert.Len(t, products, 2)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/products?search=kettle", "", nil, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "prod-kettle", products[0].ID)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/products?sort_by=price&sort_order=asc&page_size=1", "", nil, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "prod-ebook", products[0].ID)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/products/nope", "", nil, nil))
}

func TestOrderLifecycle(t *testing.T) {
	b := New(testSecret, zap.NewNop())
	h := b.Handler()
	buyer := login(t, h, BuyerEmail)

	create := models.OrderCreate{
		Items:           []models.OrderItemCreate{{ProductID: "prod-kettle", Quantity: 2, Price: decimal.RequireFromString("1.00")}},
		PaymentMethod:   "card",
		ShippingAddress: models.Address{Email: "ama@mail.test", Phone: "1", AddressLine1: "x", City: "Accra", State: "GA", PostalCode: "1"},
		ShippingCost:    decimal.NewFromInt(15),
		Tax:             decimal.RequireFromString("8.00"),
	}
	var order models.Order
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/orders", buyer.AccessToken, create, &order))
	assert.Equal(t, "64.00", order.Subtotal.StringFixed(2), "catalog price is charged")
	assert.Equal(t, 13, b.products["prod-kettle"].Quantity)

	var tracked models.Order
	path := "/api/orders/track?order_number=" + order.OrderNumber + "&email=ama@mail.test"
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, path, "", nil, &tracked))
	assert.Equal(t, order.ID, tracked.ID)

	cancel := models.CancelOrderRequest{Reason: "ordered the wrong kettle"}
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/orders/"+order.ID+"/cancel", buyer.AccessToken, cancel, nil))
	assert.Equal(t, 15, b.products["prod-kettle"].Quantity)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/orders/"+order.ID+"/cancel", buyer.AccessToken, cancel, nil))

	tooMany := create
	tooMany.Items = []models.OrderItemCreate{{ProductID: "prod-sandals", Quantity: 1}}
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/orders", buyer.AccessToken, tooMany, nil))

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/orders", "", nil, nil))
}

func TestSellerApprovalWorkflow(t *testing.T) {
	h := New(testSecret, zap.NewNop()).Handler()

	var newSeller models.TokenResponse
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/auth/register", "",
		models.RegisterRequest{Email: "crafts@shopnest.dev", Password: "password123", Role: models.RoleSeller}, &newSeller))

	var profile models.SellerProfile
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/sellers/profile", newSeller.AccessToken,
		models.SellerProfileInput{BusinessName: "Crafts Co"}, &profile))
	assert.Equal(t, models.ApprovalPending, profile.ApprovalStatus)

	admin := login(t, h, AdminEmail)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/admin/sellers/pending", newSeller.AccessToken, nil, nil))

	var pending []models.SellerProfile
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/admin/sellers/pending", admin.AccessToken, nil, &pending))
	require.Len(t, pending, 1)

	base := "/api/admin/sellers/" + profile.ID
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, base+"/suspend", admin.AccessToken, nil, nil), "pending sellers cannot be suspended")
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, base+"/approval", admin.AccessToken, models.SellerApproval{Action: models.ActionReject}, nil))

	var resp models.SellerActionResponse
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, base+"/approval", admin.AccessToken, models.SellerApproval{Action: models.ActionApprove}, &resp))
	assert.Equal(t, models.ApprovalApproved, resp.Seller.ApprovalStatus)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, base+"/suspend", admin.AccessToken, nil, &resp))
	assert.Equal(t, models.ApprovalSuspended, resp.Seller.ApprovalStatus)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, base+"/reactivate", admin.AccessToken, nil, &resp))
	assert.Equal(t, models.ApprovalApproved, resp.Seller.ApprovalStatus)
}

func TestBoughtTogetherShape(t *testing.T) {
	h := New(testSecret, zap.NewNop()).Handler()
	var bt models.BoughtTogether
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/recommendations/bought-together/prod-kettle?limit=2", "", nil, &bt))
	assert.Equal(t, "prod-kettle", bt.ProductID)
	assert.Len(t, bt.Recommendations, 2)
	for _, p := range bt.Recommendations {
		assert.NotEqual(t, "cat-home", p.CategoryID)
	}
}
