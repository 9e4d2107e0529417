package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	HTTPPort string

	UserServiceURL           string
	OrderServiceURL          string
	ProductServiceURL        string
	RecommendationServiceURL string
	BackendHealthURL         string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	// StubAddr is where cmd/stub-backend listens.
	StubAddr string

	Upstream  UpstreamConfig
	Cart      CartConfig
	Cache     CacheConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	KeepAlive KeepAliveConfig
	HTTP      HTTPConfig
	Log       LogConfig
}

// UpstreamConfig controls calls to the marketplace backend.
type UpstreamConfig struct {
	Timeout          time.Duration
	RetryAttempts    int
	RetryDelay       time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

type CartConfig struct {
	GuestTTL time.Duration
	UserTTL  time.Duration
}

type CacheConfig struct {
	CatalogTTL time.Duration // shared catalog responses in redis
	LocalTTL   time.Duration // in-process copy in front of redis
	ProfileTTL time.Duration
}

type SessionConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type KeepAliveConfig struct {
	Enabled     bool
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures int
}

type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies []netip.Prefix
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration with the following priority:
// SHOPNEST_* environment variables, then config.toml, then defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shopnest")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SHOPNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Env:      v.GetString("app.env"),
		HTTPPort: v.GetString("app.port"),

		UserServiceURL:           trimURL(v.GetString("upstream.user_service_url")),
		OrderServiceURL:          trimURL(v.GetString("upstream.order_service_url")),
		ProductServiceURL:        trimURL(v.GetString("upstream.product_service_url")),
		RecommendationServiceURL: trimURL(v.GetString("upstream.recommendation_service_url")),
		BackendHealthURL:         v.GetString("upstream.health_url"),

		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		JWTSecret: v.GetString("jwt.secret"),
		StubAddr:  v.GetString("stub.addr"),

		Upstream: UpstreamConfig{
			Timeout:          v.GetDuration("upstream.timeout"),
			RetryAttempts:    v.GetInt("upstream.retry_attempts"),
			RetryDelay:       v.GetDuration("upstream.retry_delay"),
			BreakerThreshold: v.GetInt("upstream.breaker_threshold"),
			BreakerTimeout:   v.GetDuration("upstream.breaker_timeout"),
		},
		Cart: CartConfig{
			GuestTTL: v.GetDuration("cart.guest_ttl"),
			UserTTL:  v.GetDuration("cart.user_ttl"),
		},
		Cache: CacheConfig{
			CatalogTTL: v.GetDuration("cache.catalog_ttl"),
			LocalTTL:   v.GetDuration("cache.local_ttl"),
			ProfileTTL: v.GetDuration("cache.profile_ttl"),
		},
		Session: SessionConfig{
			TTL: v.GetDuration("session.ttl"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("rate_limit.enabled"),
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		KeepAlive: KeepAliveConfig{
			Enabled:     v.GetBool("keep_alive.enabled"),
			Interval:    v.GetDuration("keep_alive.interval"),
			Timeout:     v.GetDuration("keep_alive.timeout"),
			MaxFailures: v.GetInt("keep_alive.max_failures"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			CORSAllowOrigins: splitList(v.GetStringSlice("http.cors_allow_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	proxies, err := parsePrefixes(splitList(v.GetStringSlice("http.trusted_proxies")))
	if err != nil {
		return nil, fmt.Errorf("http.trusted_proxies: %w", err)
	}
	cfg.HTTP.TrustedProxies = proxies

	if cfg.BackendHealthURL == "" {
		cfg.BackendHealthURL = healthURL(cfg.UserServiceURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("upstream.user_service_url", "http://localhost:8000/api")
	v.SetDefault("upstream.order_service_url", "http://localhost:8000/api")
	v.SetDefault("upstream.product_service_url", "http://localhost:8000/api")
	v.SetDefault("upstream.recommendation_service_url", "http://localhost:8000/api")
	v.SetDefault("upstream.health_url", "")
	v.SetDefault("upstream.timeout", 5*time.Second)
	v.SetDefault("upstream.retry_attempts", 3)
	v.SetDefault("upstream.retry_delay", 500*time.Millisecond)
	v.SetDefault("upstream.breaker_threshold", 3)
	v.SetDefault("upstream.breaker_timeout", 10*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "shopnest-dev-secret")
	v.SetDefault("stub.addr", ":8000")

	v.SetDefault("cart.guest_ttl", 30*24*time.Hour)
	v.SetDefault("cart.user_ttl", 90*24*time.Hour)

	v.SetDefault("cache.catalog_ttl", 30*time.Second)
	v.SetDefault("cache.local_ttl", 5*time.Second)
	v.SetDefault("cache.profile_ttl", 30*time.Second)

	// matches the backend refresh token lifetime
	v.SetDefault("session.ttl", 7*24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("keep_alive.enabled", true)
	v.SetDefault("keep_alive.interval", 5*time.Minute)
	v.SetDefault("keep_alive.timeout", 10*time.Second)
	v.SetDefault("keep_alive.max_failures", 3)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.trusted_proxies", []string{})
	v.SetDefault("http.cors_allow_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "stdout")
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("app.port is required")
	}
	if c.Upstream.RetryAttempts < 1 {
		return fmt.Errorf("upstream.retry_attempts must be at least 1, got %d", c.Upstream.RetryAttempts)
	}
	if c.Upstream.BreakerThreshold < 1 {
		return fmt.Errorf("upstream.breaker_threshold must be at least 1, got %d", c.Upstream.BreakerThreshold)
	}
	if c.RateLimit.Enabled && c.RateLimit.Requests < 1 {
		return errors.New("rate_limit.requests must be positive when rate limiting is enabled")
	}

	if c.Env == "production" {
		if len(c.JWTSecret) < 32 {
			return errors.New("jwt.secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return errors.New("http.cors_allow_origins cannot be '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func trimURL(u string) string {
	return strings.TrimRight(u, "/")
}

// healthURL derives the backend root health endpoint from an API base URL,
// e.g. http://host:8000/api -> http://host:8000/health.
func healthURL(apiBase string) string {
	return strings.TrimSuffix(apiBase, "/api") + "/health"
}

// parsePrefixes accepts CIDRs and bare addresses.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if !strings.Contains(v, "/") {
			addr, err := netip.ParseAddr(v)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(v)
		if err != nil {
			return nil, err
		}
		out = append(out, prefix.Masked())
	}
	return out, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
