// Package checkout prices a cart and turns it into a backend order.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/models"
	"shopnest-bff/internal/telemetry"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidRequest = errors.New("invalid checkout request")
)

var (
	FreeShippingOver = decimal.NewFromInt(100)
	FlatShipping     = decimal.NewFromInt(15)
	TaxRate          = decimal.RequireFromString("0.125")
)

type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"item_count"`
}

// Price computes the order amounts for items. Shipping is free strictly
// above the threshold.
func Price(items []cart.Item) Quote {
	c := cart.Cart{Items: items}
	subtotal := c.Total().Round(2)

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingOver) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)

	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
		ItemCount:    c.Count(),
	}
}

// Request is what the checkout form submits. Billing defaults to shipping.
type Request struct {
	ShippingAddress models.Address  `json:"shipping_address" validate:"required"`
	BillingAddress  *models.Address `json:"billing_address,omitempty"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=card mobile_money"`
	Notes           string          `json:"notes,omitempty" validate:"max=1000"`
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, order models.OrderCreate) (*models.Order, error)
}

type Service struct {
	carts    *cart.Service
	orders   OrderCreator
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(carts *cart.Service, orders OrderCreator, log *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		validate: validator.New(),
		log:      log,
	}
}

func (s *Service) Quote(ctx context.Context, owner models.Owner) (Quote, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		return Quote{}, err
	}
	return Price(c.Items), nil
}

// Submit places an order for the owner's cart. The cart is cleared only
// after the backend accepted the order.
func (s *Service) Submit(ctx context.Context, token string, owner models.Owner, req Request) (*models.Order, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		telemetry.Checkouts.WithLabelValues("error").Inc()
		return nil, err
	}
	if c.IsEmpty() {
		telemetry.Checkouts.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	if req.BillingAddress == nil {
		billing := req.ShippingAddress
		req.BillingAddress = &billing
	}
	if err := s.validate.Struct(req); err != nil {
		telemetry.Checkouts.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	order, err := s.orders.CreateOrder(ctx, token, BuildOrder(c.Items, req))
	if err != nil {
		telemetry.Checkouts.WithLabelValues("failed").Inc()
		return nil, err
	}
	telemetry.Checkouts.WithLabelValues("success").Inc()

	if err := s.carts.Clear(ctx, owner); err != nil {
		s.log.Warn("Cart not cleared after order", zap.String("order_id", order.ID), zap.Error(err))
	}
	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("owner", owner.Scope()),
	)
	return order, nil
}

// BuildOrder maps cart lines and the priced totals onto the backend payload.
func BuildOrder(items []cart.Item, req Request) models.OrderCreate {
	q := Price(items)

	lines := make([]models.OrderItemCreate, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderItemCreate{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	return models.OrderCreate{
		Items:           lines,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Notes:           req.Notes,
		Subtotal:        q.Subtotal,
		ShippingCost:    q.ShippingCost,
		Tax:             q.Tax,
		Total:           q.Total,
	}
}
