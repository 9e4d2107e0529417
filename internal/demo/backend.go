// Package demo is an in-memory marketplace backend speaking the same REST
// dialect as the production one. It backs local development and end-to-end
// tests of the gateway.
package demo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopnest-bff/internal/models"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type account struct {
	user         models.User
	passwordHash string
}

type order struct {
	models.Order
	userID string
	email  string
}

type Backend struct {
	secret []byte
	log    *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	accounts   map[string]*account // by email
	products   map[string]*models.Product
	productIDs []string // insertion order
	categories []models.Category
	orders     map[string]*order
	sellers    map[string]*models.SellerProfile // by seller profile id
}

func New(secret string, log *zap.Logger) *Backend {
	b := &Backend{
		secret:   []byte(secret),
		log:      log,
		now:      time.Now,
		accounts: make(map[string]*account),
		products: make(map[string]*models.Product),
		orders:   make(map[string]*order),
		sellers:  make(map[string]*models.SellerProfile),
	}
	b.seed()
	return b
}

func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", b.health)
	mux.HandleFunc("GET /api/health", b.health)

	mux.HandleFunc("POST /api/auth/register", b.register)
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/refresh", b.refresh)

	mux.HandleFunc("GET /api/products", b.listProducts)
	mux.HandleFunc("GET /api/products/{id}", b.getProduct)
	mux.HandleFunc("GET /api/categories", b.listCategories)
	mux.HandleFunc("GET /api/categories/{id}", b.getCategory)
	mux.HandleFunc("GET /api/recommendations/popular", b.popular)
	mux.HandleFunc("GET /api/recommendations/trending", b.trending)
	mux.HandleFunc("GET /api/recommendations/similar/{id}", b.similar)
	mux.HandleFunc("GET /api/recommendations/seller/{sellerId}/other/{id}", b.sellerOther)
	mux.HandleFunc("GET /api/recommendations/bought-together/{id}", b.boughtTogether)
	mux.HandleFunc("GET /api/recommendations/category/{id}", b.categoryPopular)
	mux.HandleFunc("GET /api/reviews/product/{id}", b.productReviews)
	mux.HandleFunc("GET /api/reviews/product/{id}/stats", b.productReviewStats)

	mux.HandleFunc("POST /api/orders", b.authed(b.createOrder))
	mux.HandleFunc("GET /api/orders", b.authed(b.listOrders))
	mux.HandleFunc("GET /api/orders/track", b.trackOrder)
	mux.HandleFunc("GET /api/orders/{id}", b.authed(b.getOrder))
	mux.HandleFunc("PUT /api/orders/{id}/cancel", b.authed(b.cancelOrder))

	mux.HandleFunc("GET /api/sellers/profile", b.authed(b.sellerProfile))
	mux.HandleFunc("POST /api/sellers/profile", b.authed(b.createSellerProfile))

	mux.HandleFunc("GET /api/admin/sellers/pending", b.admin(b.pendingSellers))
	mux.HandleFunc("GET /api/admin/sellers/all", b.admin(b.allSellers))
	mux.HandleFunc("POST /api/admin/sellers/{id}/approval", b.admin(b.reviewSeller))
	mux.HandleFunc("PUT /api/admin/sellers/{id}/suspend", b.admin(b.sellerAction(models.ActionSuspend)))
	mux.HandleFunc("PUT /api/admin/sellers/{id}/reactivate", b.admin(b.sellerAction(models.ActionReactivate)))

	return mux
}

func (b *Backend) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("JSON encode error", zap.Error(err))
	}
}

// detail writes the backend's error body.
func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

func hashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func newID() string {
	return uuid.NewString()
}

// Auth

func (b *Backend) issue(user models.User, typ string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"type": typ,
		"exp":  b.now().Add(ttl).Unix(),
		"iat":  b.now().Unix(),
		"jti":  newID(),
	}
	if typ == "access" {
		claims["role"] = string(user.Role)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) tokens(user models.User) (*models.TokenResponse, error) {
	access, err := b.issue(user, "access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := b.issue(user, "refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer", User: user}, nil
}

func (b *Backend) verify(tokenString, typ string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	if claims["type"] != typ {
		return "", errors.New("invalid token type")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (b *Backend) userByID(id string) (*account, bool) {
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			return acc, true
		}
	}
	return nil, false
}

type userHandler func(w http.ResponseWriter, r *http.Request, user models.User)

func (b *Backend) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		sub, err := b.verify(tok, "access")
		if err != nil {
			detail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		b.mu.RLock()
		acc, found := b.userByID(sub)
		b.mu.RUnlock()
		if !found {
			detail(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !acc.user.IsActive {
			detail(w, http.StatusForbidden, "User account is inactive")
			return
		}
		next(w, r, acc.user)
	}
}

func (b *Backend) admin(next userHandler) http.HandlerFunc {
	return b.authed(func(w http.ResponseWriter, r *http.Request, user models.User) {
		if user.Role != models.RoleAdmin {
			detail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, user)
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 8 {
		detail(w, http.StatusUnprocessableEntity, "email and a password of at least 8 characters are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleBuyer
	}

	b.mu.Lock()
	if _, exists := b.accounts[email]; exists {
		b.mu.Unlock()
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	user := models.User{
		ID:        newID(),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: b.now().UTC(),
	}
	b.accounts[email] = &account{user: user, passwordHash: hashPassword(req.Password)}
	b.mu.Unlock()

	resp, err := b.tokens(user)
	if err != nil {
		detail(w, http.StatusInternalServerError, err.Error())
		return
	}
	b.log.Info("Demo user registered", zap.String("email", email), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusCreated, resp)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	b.mu.RLock()
	acc, ok := b.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	b.mu.RUnlock()
	if !ok || acc.passwordHash != hashPassword(req.Password) {
		detail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !acc.user.IsActive {
		detail(w, http.StatusForbidden, "User account is inactive")
		return
	}

	resp, err := b.tokens(acc.user)
	if err != nil {
		detail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	sub, err := b.verify(req.RefreshToken, "refresh")
	if err != nil {
		detail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	b.mu.RLock()
	acc, ok := b.userByID(sub)
	b.mu.RUnlock()
	if !ok {
		detail(w, http.StatusUnauthorized, "User not found")
		return
	}

	resp, err := b.tokens(acc.user)
	if err != nil {
		detail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
