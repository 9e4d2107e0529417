package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/config"
	"shopnest-bff/internal/keepalive"
	"shopnest-bff/internal/models"
	"shopnest-bff/internal/recent"
	"shopnest-bff/internal/services"
)

// Deps are the collaborators the HTTP layer is built from. KeepAlive may be
// nil when pinging is disabled.
type Deps struct {
	Config    *config.Config
	Services  *services.ServiceClient
	Redis     *cache.Client
	Pages     *cache.Tiered
	Carts     *cart.Service
	Recent    recent.Store
	Checkout  *checkout.Service
	Sessions  *auth.SessionStore
	Blacklist *auth.Blacklist
	KeepAlive *keepalive.Service
	Logger    *zap.Logger
}

type Handler struct {
	cfg       *config.Config
	svc       *services.ServiceClient
	cache     *cache.Client
	pages     *cache.Tiered
	carts     *cart.Service
	recent    recent.Store
	checkout  *checkout.Service
	sessions  *auth.SessionStore
	blacklist *auth.Blacklist
	keepalive *keepalive.Service
	validate  *validator.Validate
	log       *zap.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		cfg:       d.Config,
		svc:       d.Services,
		cache:     d.Redis,
		pages:     d.Pages,
		carts:     d.Carts,
		recent:    d.Recent,
		checkout:  d.Checkout,
		sessions:  d.Sessions,
		blacklist: d.Blacklist,
		keepalive: d.KeepAlive,
		validate:  validator.New(),
		log:       d.Logger,
	}
}

// owner resolves whose cart and history the request touches.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) models.Owner {
	if id, ok := auth.FromContext(r.Context()); ok {
		return models.Owner{UserID: id.UserID, GuestID: guestSession(r)}
	}
	return h.guestOwner(w, r)
}

// guestOwner ignores any signed-in identity. Callers without a valid
// X-Cart-Session get a fresh one in the response.
func (h *Handler) guestOwner(w http.ResponseWriter, r *http.Request) models.Owner {
	guest := guestSession(r)
	if guest == "" {
		guest = uuid.NewString()
		w.Header().Set(headerCartSession, guest)
	}
	return models.Owner{GuestID: guest}
}

func guestSession(r *http.Request) string {
	guest := r.Header.Get(headerCartSession)
	if _, err := uuid.Parse(guest); err != nil {
		return ""
	}
	return guest
}

// token is the caller's bearer token for forwarding to the backend.
func token(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.Token
}

func intQuery(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v >= 0 {
		return v
	}
	return def
}

func boolQuery(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// Cache keys for shared catalog reads. Writes invalidate by prefix.
const (
	prefixProducts   = "catalog:product"
	prefixCategories = "catalog:categor"
	prefixRecs       = "catalog:recs:"
)

func (h *Handler) cachedProduct(ctx context.Context, id string) (*models.Product, error) {
	return cache.Fetch(ctx, h.pages, "catalog:product:"+id, func(ctx context.Context) (*models.Product, error) {
		return h.svc.GetProduct(ctx, id)
	})
}

func (h *Handler) cachedProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	return cache.Fetch(ctx, h.pages, "catalog:products:"+q.Values().Encode(), func(ctx context.Context) ([]models.Product, error) {
		return h.svc.ListProducts(ctx, q)
	})
}

func (h *Handler) cachedCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	key := fmt.Sprintf("catalog:categories:%t", includeInactive)
	return cache.Fetch(ctx, h.pages, key, func(ctx context.Context) ([]models.Category, error) {
		return h.svc.ListCategories(ctx, includeInactive)
	})
}

func (h *Handler) cachedRecs(ctx context.Context, kind string, limit int, load func(context.Context, int) ([]models.Product, error)) ([]models.Product, error) {
	key := fmt.Sprintf("%s%s:%d", prefixRecs, kind, limit)
	return cache.Fetch(ctx, h.pages, key, func(ctx context.Context) ([]models.Product, error) {
		return load(ctx, limit)
	})
}

func (h *Handler) invalidate(ctx context.Context, prefixes ...string) {
	if err := h.pages.Invalidate(ctx, prefixes...); err != nil {
		h.log.Warn("Catalog cache invalidation failed", zap.Strings("prefixes", prefixes), zap.Error(err))
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
