package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type ProductImage struct {
	ID        string    `json:"id,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	ImageURL  string    `json:"image_url"`
	AltText   string    `json:"alt_text,omitempty"`
	Position  int       `json:"position"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID                string           `json:"id"`
	SellerID          string           `json:"seller_id"`
	CategoryID        string           `json:"category_id"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	Description       string           `json:"description,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	Quantity          int              `json:"quantity"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	Weight            *decimal.Decimal `json:"weight,omitempty"`
	Dimensions        map[string]any   `json:"dimensions,omitempty"`
	IsDigital         bool             `json:"is_digital"`
	IsActive          bool             `json:"is_active"`
	IsFeatured        bool             `json:"is_featured"`
	ViewsCount        int              `json:"views_count"`
	SalesCount        int              `json:"sales_count"`
	RatingAverage     decimal.Decimal  `json:"rating_average"`
	TotalReviews      int              `json:"total_reviews"`
	CreatedAt         time.Time        `json:"created_at"`
	Images            []ProductImage   `json:"images"`
	PrimaryImage      string           `json:"primary_image,omitempty"`
}

// MainImage returns the list-view image, the primary image or the first one.
func (p *Product) MainImage() string {
	if p.PrimaryImage != "" {
		return p.PrimaryImage
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

func (p *Product) InStock() bool {
	return p.IsDigital || p.Quantity > 0
}

// ProductInput is the seller create/update payload. Pointer fields are
// omitted from updates when nil.
type ProductInput struct {
	CategoryID        string           `json:"category_id,omitempty"`
	Name              string           `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price,omitempty"`
	CostPerItem       *decimal.Decimal `json:"cost_per_item,omitempty"`
	SKU               *string          `json:"sku,omitempty"`
	Barcode           *string          `json:"barcode,omitempty"`
	Quantity          *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	Weight            *decimal.Decimal `json:"weight,omitempty"`
	Dimensions        map[string]any   `json:"dimensions,omitempty"`
	IsDigital         *bool            `json:"is_digital,omitempty"`
	DigitalFileURL    *string          `json:"digital_file_url,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsFeatured        *bool            `json:"is_featured,omitempty"`
	Images            []ProductImage   `json:"images,omitempty"`
}

// ProductQuery mirrors the backend's product search parameters.
type ProductQuery struct {
	Search     string
	CategoryID string
	SellerID   string
	MinPrice   string
	MaxPrice   string
	InStock    *bool
	IsFeatured *bool
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// ParseProductQuery reads the storefront query string.
func ParseProductQuery(q url.Values) ProductQuery {
	pq := ProductQuery{
		Search:     q.Get("search"),
		CategoryID: q.Get("category_id"),
		SellerID:   q.Get("seller_id"),
		MinPrice:   q.Get("min_price"),
		MaxPrice:   q.Get("max_price"),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
	}
	if b, err := strconv.ParseBool(q.Get("in_stock")); err == nil {
		pq.InStock = &b
	}
	if b, err := strconv.ParseBool(q.Get("is_featured")); err == nil {
		pq.IsFeatured = &b
	}
	pq.Page, _ = strconv.Atoi(q.Get("page"))
	pq.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	return pq
}

// Values encodes the query for the backend. url.Values.Encode sorts keys,
// so the result doubles as a stable cache key.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("search", q.Search)
	set("category_id", q.CategoryID)
	set("seller_id", q.SellerID)
	set("min_price", q.MinPrice)
	set("max_price", q.MaxPrice)
	set("sort_by", q.SortBy)
	set("sort_order", q.SortOrder)
	if q.InStock != nil {
		v.Set("in_stock", strconv.FormatBool(*q.InStock))
	}
	if q.IsFeatured != nil {
		v.Set("is_featured", strconv.FormatBool(*q.IsFeatured))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryInput struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// BoughtTogether is the backend's frequently-bought-together payload.
type BoughtTogether struct {
	ProductID       string    `json:"product_id"`
	Recommendations []Product `json:"recommendations"`
}
