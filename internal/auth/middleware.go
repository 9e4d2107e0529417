package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"shopnest-bff/internal/models"
)

var (
	ErrMissingToken = errors.New("missing Authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Identity is the caller behind a valid access token.
type Identity struct {
	UserID    string
	Role      models.Role
	Token     string
	ExpiresAt time.Time
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ErrorFunc writes an authentication or authorization failure.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, msg string)

type Middleware struct {
	secretKey []byte
	sessions  *SessionStore
	blacklist *Blacklist
	log       *zap.Logger

	// OnError replaces the plain text error responses.
	OnError ErrorFunc
}

func NewMiddleware(secret string, sessions *SessionStore, blacklist *Blacklist, log *zap.Logger) *Middleware {
	return &Middleware{
		secretKey: []byte(secret),
		sessions:  sessions,
		blacklist: blacklist,
		log:       log,
		OnError: func(w http.ResponseWriter, _ *http.Request, status int, msg string) {
			http.Error(w, msg, status)
		},
	}
}

// Authenticate resolves the bearer token of r into an Identity.
func (m *Middleware) Authenticate(r *http.Request) (Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Identity{}, ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return Identity{}, fmt.Errorf("%w: bad Authorization header format", ErrInvalidToken)
	}

	id, err := m.Parse(parts[1])
	if err != nil {
		return Identity{}, err
	}

	ctx := r.Context()
	if m.blacklist != nil {
		revoked, err := m.blacklist.IsRevoked(ctx, id.Token)
		if err != nil {
			m.log.Warn("Token blacklist unavailable", zap.Error(err))
		} else if revoked {
			return Identity{}, ErrRevokedToken
		}
	}

	if id.Role == "" && m.sessions != nil {
		if user, err := m.sessions.Get(ctx, id.UserID); err == nil {
			id.Role = user.Role
		} else if !errors.Is(err, ErrNoSession) {
			m.log.Warn("Session lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
		}
	}
	return id, nil
}

// Parse verifies an HMAC signed access token.
func (m *Middleware) Parse(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "" && typ != "access" {
		return Identity{}, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	id := Identity{UserID: userID, Token: tokenString}
	if role, ok := claims["role"].(string); ok {
		id.Role = models.Role(role)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

// Require rejects requests without a valid access token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.Authenticate(r)
		if err != nil {
			if !errors.Is(err, ErrMissingToken) {
				m.log.Warn("Invalid token attempt", zap.Error(err))
			}
			m.OnError(w, r, http.StatusUnauthorized, unauthorizedMessage(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := m.Authenticate(r); err == nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole must run inside Require.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				m.OnError(w, r, http.StatusUnauthorized, ErrMissingToken.Error())
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.OnError(w, r, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return ErrMissingToken.Error()
	case errors.Is(err, ErrRevokedToken):
		return ErrRevokedToken.Error()
	default:
		return ErrInvalidToken.Error()
	}
}
