package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/config"
	"shopnest-bff/internal/demo"
	"shopnest-bff/internal/models"
	"shopnest-bff/internal/recent"
	"shopnest-bff/internal/services"
)

const testSecret = "gateway-test-secret"

const allowedOrigin = "http://localhost:5173"

type fixture struct {
	router  http.Handler
	backend *demo.Backend
	redis   *miniredis.Miniredis
	cfg     *config.Config
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Env:                      "test",
		HTTPPort:                 "0",
		UserServiceURL:           backendURL + "/api",
		OrderServiceURL:          backendURL + "/api",
		ProductServiceURL:        backendURL + "/api",
		RecommendationServiceURL: backendURL + "/api",
		BackendHealthURL:         backendURL + "/health",
		JWTSecret:                testSecret,
		Upstream: config.UpstreamConfig{
			Timeout:          2 * time.Second,
			RetryAttempts:    1,
			RetryDelay:       time.Millisecond,
			BreakerThreshold: 50,
			BreakerTimeout:   time.Second,
		},
		Cart:      config.CartConfig{GuestTTL: time.Hour, UserTTL: 2 * time.Hour},
		Cache:     config.CacheConfig{CatalogTTL: time.Minute, LocalTTL: time.Second, ProfileTTL: time.Minute},
		Session:   config.SessionConfig{TTL: time.Hour},
		RateLimit: config.RateLimitConfig{Enabled: false, Requests: 100, Window: time.Minute},
		KeepAlive: config.KeepAliveConfig{MaxFailures: 3},
		HTTP:      config.HTTPConfig{CORSAllowOrigins: []string{allowedOrigin}},
	}
}

// newFixture runs the gateway against the in-memory marketplace, or against
// upstream when one is given.
func newFixture(t *testing.T, upstream http.Handler, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	backend := demo.New(testSecret, zap.NewNop())
	if upstream == nil {
		upstream = backend.Handler()
	}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	client := cache.Wrap(rdb)

	cfg := testConfig(srv.URL)
	for _, fn := range mutate {
		fn(cfg)
	}

	log := zap.NewNop()
	svc := services.NewServiceClient(cfg, log)
	carts := cart.NewService(cart.NewRedisStore(rdb), svc, cfg.Cart.GuestTTL, cfg.Cart.UserTTL, log)
	sessions := auth.NewSessionStore(client, cfg.Session.TTL)
	blacklist := auth.NewBlacklist(client)

	h := NewHandler(Deps{
		Config:    cfg,
		Services:  svc,
		Redis:     client,
		Pages:     cache.NewTiered(client, cfg.Cache.CatalogTTL, cfg.Cache.LocalTTL, log),
		Carts:     carts,
		Recent:    recent.NewRedisStore(rdb, cfg.Cart.UserTTL),
		Checkout:  checkout.NewService(carts, svc, log),
		Sessions:  sessions,
		Blacklist: blacklist,
		Logger:    log,
	})
	return &fixture{
		router:  NewRouter(h, auth.NewMiddleware(cfg.JWTSecret, sessions, blacklist, log)),
		backend: backend,
		redis:   mr,
		cfg:     cfg,
	}
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	session string
	headers map[string]string
}

func (f *fixture) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != "" {
		req.Header.Set(headerCartSession, c.session)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) login(t *testing.T, email, session string) AuthResponse {
	t.Helper()
	rec := f.do(t, call{
		method:  http.MethodPost,
		path:    "/api/auth/login",
		body:    models.LoginRequest{Email: email, Password: demo.DemoPassword},
		session: session,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[AuthResponse](t, rec)
}

func shippingAddress() models.Address {
	return models.Address{
		FullName:     "Ama Mensah",
		Email:        "ama@mail.test",
		Phone:        "+233200000000",
		AddressLine1: "12 Oxford Street",
		City:         "Accra",
		State:        "Greater Accra",
		PostalCode:   "00233",
		Country:      "GH",
	}
}
