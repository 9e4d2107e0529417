package demo

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"shopnest-bff/internal/models"
)

const defaultPageSize = 20

// active returns active products in seed order. Callers hold b.mu.
func (b *Backend) active() []models.Product {
	out := make([]models.Product, 0, len(b.productIDs))
	for _, id := range b.productIDs {
		if p := b.products[id]; p.IsActive {
			out = append(out, *p)
		}
	}
	return out
}

func limitParam(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return def
}

func head(products []models.Product, n int) []models.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	q := models.ParseProductQuery(r.URL.Query())

	b.mu.RLock()
	all := b.active()
	b.mu.RUnlock()

	search := strings.ToLower(q.Search)
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.SellerID != "" && p.SellerID != q.SellerID {
			continue
		}
		if q.InStock != nil && *q.InStock != p.InStock() {
			continue
		}
		if q.IsFeatured != nil && *q.IsFeatured != p.IsFeatured {
			continue
		}
		out = append(out, p)
	}

	switch q.SortBy {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case "sales":
		sort.SliceStable(out, func(i, j int) bool { return out[i].SalesCount < out[j].SalesCount })
	}
	if q.SortOrder == "desc" && q.SortBy != "" && q.SortBy != "created_at" {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	start := (page - 1) * size
	if start >= len(out) {
		writeJSON(w, http.StatusOK, []models.Product{})
		return
	}
	writeJSON(w, http.StatusOK, head(out[start:], size))
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	p, ok := b.products[r.PathValue("id")]
	if ok {
		p.ViewsCount++
	}
	var out models.Product
	if ok {
		out = *p
	}
	b.mu.Unlock()

	if !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Category, 0, len(b.categories))
	for _, c := range b.categories {
		if c.IsActive || includeInactive {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.categories {
		if c.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	detail(w, http.StatusNotFound, "Category not found")
}

func (b *Backend) ranked(less func(a, b models.Product) bool) []models.Product {
	b.mu.RLock()
	out := b.active()
	b.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (b *Backend) popular(w http.ResponseWriter, r *http.Request) {
	out := b.ranked(func(x, y models.Product) bool { return x.SalesCount > y.SalesCount })
	writeJSON(w, http.StatusOK, head(out, limitParam(r, 12)))
}

func (b *Backend) trending(w http.ResponseWriter, r *http.Request) {
	out := b.ranked(func(x, y models.Product) bool { return x.ViewsCount > y.ViewsCount })
	writeJSON(w, http.StatusOK, head(out, limitParam(r, 12)))
}

// filtered returns active products matching keep, excluding excludeID.
func (b *Backend) filtered(excludeID string, keep func(models.Product) bool) []models.Product {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []models.Product{}
	for _, p := range b.active() {
		if p.ID != excludeID && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (b *Backend) similar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b.mu.RLock()
	p, ok := b.products[id]
	b.mu.RUnlock()
	if !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	category := p.CategoryID
	out := b.filtered(id, func(x models.Product) bool { return x.CategoryID == category })
	writeJSON(w, http.StatusOK, head(out, limitParam(r, 8)))
}

func (b *Backend) sellerOther(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("sellerId")
	out := b.filtered(r.PathValue("id"), func(x models.Product) bool { return x.SellerID == sellerID })
	writeJSON(w, http.StatusOK, head(out, limitParam(r, 8)))
}

// boughtTogether has no order history to mine, so it suggests best sellers
// from other categories.
func (b *Backend) boughtTogether(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b.mu.RLock()
	p, ok := b.products[id]
	b.mu.RUnlock()
	if !ok {
		detail(w, http.StatusNotFound, "Product not found")
		return
	}
	category := p.CategoryID
	out := b.filtered(id, func(x models.Product) bool { return x.CategoryID != category })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SalesCount > out[j].SalesCount })
	writeJSON(w, http.StatusOK, models.BoughtTogether{ProductID: id, Recommendations: head(out, limitParam(r, 4))})
}

func (b *Backend) categoryPopular(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("id")
	out := b.filtered(r.URL.Query().Get("exclude_id"), func(x models.Product) bool { return x.CategoryID == category })
	writeJSON(w, http.StatusOK, head(out, limitParam(r, 8)))
}

func (b *Backend) productReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []models.Review{})
}

func (b *Backend) productReviewStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ReviewStats{RatingDistribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}})
}
