// Package cart implements the per-user shopping cart: pure reducers over a
// Cart value and stores that persist it under a key namespaced by the active
// identity.
package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"shopnest-bff/internal/models"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrItemNotFound      = errors.New("item not in cart")
	ErrUnavailable       = errors.New("product is not available")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrConflict          = errors.New("cart was modified concurrently, try again")
	ErrNoOwner           = errors.New("cart has no owner")
)

// Item is a product snapshot plus the selected quantity.
type Item struct {
	ProductID      string           `json:"product_id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Image          string           `json:"image,omitempty"`
	SellerID       string           `json:"seller_id"`
	Stock          int              `json:"stock"`
	IsDigital      bool             `json:"is_digital"`
	Quantity       int              `json:"quantity"`
	AddedAt        time.Time        `json:"added_at"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot captures the product fields the cart renders and prices with.
func Snapshot(p *models.Product) Item {
	return Item{
		ProductID:      p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Image:          p.MainImage(),
		SellerID:       p.SellerID,
		Stock:          p.Quantity,
		IsDigital:      p.IsDigital,
	}
}

// Cart keeps items in the order they were first added.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cart) index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Find(productID string) (Item, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// Add puts qty units of item into the cart. An existing line keeps its
// position, takes the fresh snapshot and has its quantity increased.
func (c *Cart) Add(item Item, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	i := c.index(item.ProductID)
	if i < 0 {
		if item.AddedAt.IsZero() {
			item.AddedAt = time.Now().UTC()
		}
		item.Quantity = qty
		c.Items = append(c.Items, item)
		return nil
	}

	existing := c.Items[i]
	item.AddedAt = existing.AddedAt
	item.Quantity = existing.Quantity + qty
	c.Items[i] = item
	return nil
}

// SetQuantity replaces the quantity of a line; qty <= 0 removes it.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty <= 0 {
		c.Remove(productID)
		return nil
	}
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = qty
	return nil
}

// Remove drops a line and reports whether it was present.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of units, not lines.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// View is the cart as the storefront renders it.
type View struct {
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (c *Cart) View() View {
	v := View{
		Items:     c.Items,
		Total:     c.Total(),
		ItemCount: c.Count(),
	}
	if v.Items == nil {
		v.Items = []Item{}
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		v.UpdatedAt = &t
	}
	return v
}
