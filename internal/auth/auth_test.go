package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/models"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func accessToken(t *testing.T, sub string, extra jwt.MapClaims) string {
	claims := jwt.MapClaims{"sub": sub, "type": "access", "exp": time.Now().Add(15 * time.Minute).Unix()}
	for k, v := range extra {
		claims[k] = v
	}
	return sign(t, secret, claims)
}

type fixture struct {
	mr        *miniredis.Miniredis
	sessions  *SessionStore
	blacklist *Blacklist
	mw        *Middleware
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	rdb := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := NewSessionStore(rdb, time.Hour)
	blacklist := NewBlacklist(rdb)
	return &fixture{
		mr:        mr,
		sessions:  sessions,
		blacklist: blacklist,
		mw:        NewMiddleware(secret, sessions, blacklist, zap.NewNop()),
	}
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(id.UserID + "/" + string(id.Role)))
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequire(t *testing.T) {
	f := newFixture(t)
	h := f.mw.Require(echoIdentity())

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"valid with role claim", accessToken(t, "u1", jwt.MapClaims{"role": "seller"}), http.StatusOK, "u1/seller"},
		{"wrong secret", sign(t, "other", jwt.MapClaims{"sub": "u1", "type": "access"}), http.StatusUnauthorized, ""},
		{"refresh token", sign(t, secret, jwt.MapClaims{"sub": "u1", "type": "refresh"}), http.StatusUnauthorized, ""},
		{"expired", sign(t, secret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized, ""},
		{"no subject", sign(t, secret, jwt.MapClaims{"type": "access"}), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequire_RejectsNonHMAC(t *testing.T) {
	f := newFixture(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec := serve(f.mw.Require(echoIdentity()), tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequire_RoleFromSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Save(context.Background(), models.User{ID: "u2", Email: "a@b.c", Role: models.RoleAdmin}))

	rec := serve(f.mw.Require(echoIdentity()), accessToken(t, "u2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2/admin", rec.Body.String())
}

func TestRequire_RevokedToken(t *testing.T) {
	f := newFixture(t)
	tok := accessToken(t, "u1", nil)
	require.NoError(t, f.blacklist.Revoke(context.Background(), tok, time.Now().Add(time.Minute)))

	rec := serve(f.mw.Require(echoIdentity()), tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestOptional(t *testing.T) {
	f := newFixture(t)
	h := f.mw.Optional(echoIdentity())

	assert.Equal(t, "anonymous", serve(h, "").Body.String())
	assert.Equal(t, "anonymous", serve(h, "garbage").Body.String())
	assert.Equal(t, "u1/buyer", serve(h, accessToken(t, "u1", jwt.MapClaims{"role": "buyer"})).Body.String())
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	h := f.mw.Require(f.mw.RequireRole(models.RoleAdmin)(echoIdentity()))

	assert.Equal(t, http.StatusForbidden, serve(h, accessToken(t, "u1", jwt.MapClaims{"role": "buyer"})).Code)
	assert.Equal(t, http.StatusOK, serve(h, accessToken(t, "u1", jwt.MapClaims{"role": "admin"})).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, accessToken(t, "u3", nil)).Code, "no role and no session")
}

func TestOnErrorOverride(t *testing.T) {
	f := newFixture(t)
	f.mw.OnError = func(w http.ResponseWriter, _ *http.Request, status int, msg string) {
		w.WriteHeader(status)
		w.Write([]byte("custom:" + msg))
	}

	rec := serve(f.mw.Require(echoIdentity()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "custom:missing Authorization header", rec.Body.String())
}

func TestSessionStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sessions.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, f.sessions.Save(ctx, models.User{ID: "u1", Email: "ama@example.com", Role: models.RoleSeller}))
	user, err := f.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, user.Role)
	assert.Equal(t, time.Hour, f.mr.TTL("session:u1"))

	require.NoError(t, f.sessions.Delete(ctx, "u1"))
	_, err = f.sessions.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBlacklist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f.blacklist.now = func() time.Time { return now }

	require.NoError(t, f.blacklist.Revoke(ctx, "tok-a", now.Add(10*time.Minute)))
	revoked, err := f.blacklist.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 10*time.Minute, f.mr.TTL(blacklistKey("tok-a")))

	require.NoError(t, f.blacklist.Revoke(ctx, "tok-b", now.Add(-time.Minute)))
	revoked, err = f.blacklist.IsRevoked(ctx, "tok-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}
