package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopnest-bff/internal/models"
	"shopnest-bff/internal/recent"
)

const (
	homeListLimit   = 12
	detailListLimit = 8
	reviewPageSize  = 10
)

// Home renders the storefront landing page. Every section is best effort.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := h.owner(w, r)
	start := time.Now()

	var page models.HomePage
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := h.cachedRecs(gctx, "popular", homeListLimit, h.svc.Popular)
		if err != nil {
			h.log.Warn("Popular products fallback", zap.Error(err))
		}
		page.Popular = orEmpty(res)
		return nil
	})
	g.Go(func() error {
		res, err := h.cachedRecs(gctx, "trending", homeListLimit, h.svc.Trending)
		if err != nil {
			h.log.Warn("Trending products fallback", zap.Error(err))
		}
		page.Trending = orEmpty(res)
		return nil
	})
	g.Go(func() error {
		res, err := h.cachedCategories(gctx, false)
		if err != nil {
			h.log.Warn("Categories fallback", zap.Error(err))
		}
		page.Categories = orEmpty(res)
		return nil
	})
	g.Go(func() error {
		page.RecentlyViewed = h.recentProducts(gctx, owner, recent.DefaultLimit)
		return nil
	})
	_ = g.Wait()

	h.log.Debug("Home page assembled", zap.Duration("duration", time.Since(start)))
	writeJSON(w, http.StatusOK, page)
}

// recentProducts resolves the owner's recently viewed ids, keeping order and
// skipping products that no longer load.
func (h *Handler) recentProducts(ctx context.Context, owner models.Owner, limit int) []models.Product {
	ids, err := h.recent.List(ctx, owner.Scope(), limit)
	if err != nil {
		h.log.Warn("Recently viewed fallback", zap.String("owner", owner.Scope()), zap.Error(err))
		return []models.Product{}
	}

	slots := make([]*models.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := h.cachedProduct(gctx, id)
			if err == nil && p.IsActive {
				slots[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	products := make([]models.Product, 0, len(ids))
	for _, p := range slots {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.cachedProducts(r.Context(), models.ParseProductQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(products))
}

// ProductDetail needs the product itself; the surrounding sections degrade
// to empty values. Viewing a product records it as recently viewed.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	owner := h.owner(w, r)

	product, err := h.cachedProduct(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := models.ProductDetailPage{Product: product}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := h.svc.ProductReviewStats(gctx, id)
		if err != nil {
			h.log.Warn("Review stats fallback", zap.String("product_id", id), zap.Error(err))
			stats = &models.ReviewStats{RatingDistribution: map[string]int{}}
		}
		page.ReviewStats = stats
		return nil
	})
	g.Go(func() error {
		reviews, err := h.svc.ProductReviews(gctx, id, 0, reviewPageSize)
		if err != nil {
			h.log.Warn("Reviews fallback", zap.String("product_id", id), zap.Error(err))
		}
		page.Reviews = orEmpty(reviews)
		return nil
	})
	g.Go(func() error {
		similar, err := h.svc.Similar(gctx, id, detailListLimit)
		if err != nil {
			h.log.Warn("Similar products fallback", zap.String("product_id", id), zap.Error(err))
		}
		page.Similar = orEmpty(similar)
		return nil
	})
	g.Go(func() error {
		together, err := h.svc.BoughtTogether(gctx, id, 4)
		if err != nil {
			h.log.Warn("Bought together fallback", zap.String("product_id", id), zap.Error(err))
		}
		page.BoughtTogether = orEmpty(together)
		return nil
	})
	g.Go(func() error {
		others, err := h.svc.SellerOther(gctx, product.SellerID, id, detailListLimit)
		if err != nil {
			h.log.Warn("Seller products fallback", zap.String("seller_id", product.SellerID), zap.Error(err))
		}
		page.SellerOther = orEmpty(others)
		return nil
	})
	g.Go(func() error {
		if err := h.recent.Record(gctx, owner.Scope(), id); err != nil {
			h.log.Warn("Recently viewed not recorded", zap.String("owner", owner.Scope()), zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.cachedCategories(r.Context(), boolQuery(r, "include_inactive"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(categories))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	category, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// recommendations serves one recommendation list. Failures answer with an
// empty list, the storefront just hides the section.
func (h *Handler) recommendations(kind string, load func(r *http.Request, limit int) ([]models.Product, error), def int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := load(r, intQuery(r, "limit", def))
		if err != nil {
			h.log.Warn("Recommendations fallback", zap.String("kind", kind), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, orEmpty(products))
	}
}

func (h *Handler) Similar() http.HandlerFunc {
	return h.recommendations("similar", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.svc.Similar(r.Context(), r.PathValue("id"), limit)
	}, 8)
}

func (h *Handler) Popular() http.HandlerFunc {
	return h.recommendations("popular", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.cachedRecs(r.Context(), "popular", limit, h.svc.Popular)
	}, homeListLimit)
}

func (h *Handler) Trending() http.HandlerFunc {
	return h.recommendations("trending", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.cachedRecs(r.Context(), "trending", limit, h.svc.Trending)
	}, homeListLimit)
}

func (h *Handler) SellerOther() http.HandlerFunc {
	return h.recommendations("seller_other", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.svc.SellerOther(r.Context(), r.PathValue("sellerId"), r.PathValue("id"), limit)
	}, 8)
}

func (h *Handler) BoughtTogether() http.HandlerFunc {
	return h.recommendations("bought_together", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.svc.BoughtTogether(r.Context(), r.PathValue("id"), limit)
	}, 4)
}

func (h *Handler) CategoryPopular() http.HandlerFunc {
	return h.recommendations("category", func(r *http.Request, limit int) ([]models.Product, error) {
		return h.svc.Category(r.Context(), r.PathValue("id"), r.URL.Query().Get("exclude_id"), limit)
	}, 8)
}

func (h *Handler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ProductReviews(r.Context(), r.PathValue("id"),
		intQuery(r, "skip", 0), intQuery(r, "limit", reviewPageSize))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reviews))
}

func (h *Handler) ProductReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ProductReviewStats(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	number, email := q.Get("order_number"), q.Get("email")
	if number == "" || email == "" {
		writeError(w, r, http.StatusBadRequest, "order_number and email are required")
		return
	}
	order, err := h.svc.TrackOrder(r.Context(), number, email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) PaymentPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.PaymentPublicKey(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}
