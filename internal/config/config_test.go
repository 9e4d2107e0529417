package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8000/api", cfg.ProductServiceURL)
	assert.Equal(t, "http://localhost:8000/health", cfg.BackendHealthURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.Upstream.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Upstream.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Upstream.BreakerTimeout)
	assert.Equal(t, 5*time.Minute, cfg.KeepAlive.Interval)
	assert.Equal(t, 3, cfg.KeepAlive.MaxFailures)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.HTTP.CORSAllowOrigins)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("SHOPNEST_HTTP_TRUSTED_PROXIES", "10.1.2.3/8, 192.0.2.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
	}, cfg.HTTP.TrustedProxies)

	t.Setenv("SHOPNEST_HTTP_TRUSTED_PROXIES", "not-an-ip")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.trusted_proxies")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOPNEST_APP_PORT", "9090")
	t.Setenv("SHOPNEST_UPSTREAM_PRODUCT_SERVICE_URL", "http://catalog.internal/api/")
	t.Setenv("SHOPNEST_UPSTREAM_RETRY_ATTEMPTS", "5")
	t.Setenv("SHOPNEST_CART_GUEST_TTL", "48h")
	t.Setenv("SHOPNEST_HTTP_CORS_ALLOW_ORIGINS", "https://shop.example,https://admin.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "http://catalog.internal/api", cfg.ProductServiceURL)
	assert.Equal(t, 5, cfg.Upstream.RetryAttempts)
	assert.Equal(t, 48*time.Hour, cfg.Cart.GuestTTL)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("SHOPNEST_APP_ENV", "production")
	t.Setenv("SHOPNEST_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			HTTPPort:  "8080",
			Upstream:  UpstreamConfig{RetryAttempts: 1, BreakerThreshold: 1},
			RateLimit: RateLimitConfig{Enabled: true, Requests: 10},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("zero retry attempts", func(t *testing.T) {
		cfg := base()
		cfg.Upstream.RetryAttempts = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("wildcard cors in production", func(t *testing.T) {
		cfg := base()
		cfg.Env = "production"
		cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.Validate())
	})
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://api.example:8000/health", healthURL("http://api.example:8000/api"))
	assert.Equal(t, "http://api.example/health", healthURL("http://api.example"))
}
