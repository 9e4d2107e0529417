package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"shopnest-bff/internal/models"
	"shopnest-bff/internal/telemetry"
)

// ProductLookup fetches the current product record used for snapshots.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type Service struct {
	store    Store
	products ProductLookup
	guestTTL time.Duration
	userTTL  time.Duration
	log      *zap.Logger
}

func NewService(store Store, products ProductLookup, guestTTL, userTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		guestTTL: guestTTL,
		userTTL:  userTTL,
		log:      log,
	}
}

// Key is the storage key for owner's cart.
func Key(owner models.Owner) string {
	return "cart:" + owner.Scope()
}

func ownerKey(owner models.Owner) (string, error) {
	if !owner.Valid() {
		return "", ErrNoOwner
	}
	return Key(owner), nil
}

func (s *Service) ttl(owner models.Owner) time.Duration {
	if owner.IsGuest() {
		return s.guestTTL
	}
	return s.userTTL
}

func (s *Service) Get(ctx context.Context, owner models.Owner) (*Cart, error) {
	key, err := ownerKey(owner)
	if err != nil {
		return nil, err
	}
	return s.store.Load(ctx, key)
}

// Add snapshots the product and adds qty units. Inactive products and
// quantities beyond physical stock are rejected.
func (s *Service) Add(ctx context.Context, owner models.Owner, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	key, err := ownerKey(owner)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || !product.InStock() {
		s.record("add", ErrUnavailable)
		return nil, ErrUnavailable
	}
	item := Snapshot(product)

	c, err := s.store.Update(ctx, key, s.ttl(owner), func(c *Cart) error {
		want := qty
		if existing, ok := c.Find(productID); ok {
			want += existing.Quantity
		}
		if !item.IsDigital && want > item.Stock {
			return ErrInsufficientStock
		}
		return c.Add(item, qty)
	})
	s.record("add", err)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Cart item added",
		zap.String("owner", owner.Scope()),
		zap.String("product_id", productID),
		zap.Int("quantity", qty),
	)
	return c, nil
}

func (s *Service) SetQuantity(ctx context.Context, owner models.Owner, productID string, qty int) (*Cart, error) {
	key, err := ownerKey(owner)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Update(ctx, key, s.ttl(owner), func(c *Cart) error {
		if item, ok := c.Find(productID); ok && qty > 0 && !item.IsDigital && qty > item.Stock {
			return ErrInsufficientStock
		}
		return c.SetQuantity(productID, qty)
	})
	s.record("set_quantity", err)
	return c, err
}

// Remove is idempotent.
func (s *Service) Remove(ctx context.Context, owner models.Owner, productID string) (*Cart, error) {
	key, err := ownerKey(owner)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Update(ctx, key, s.ttl(owner), func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
	s.record("remove", err)
	return c, err
}

func (s *Service) Clear(ctx context.Context, owner models.Owner) error {
	key, err := ownerKey(owner)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, key)
	s.record("clear", err)
	return err
}

func (s *Service) record(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrUnavailable), errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrNoOwner):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	telemetry.CartOperations.WithLabelValues(op, outcome).Inc()
}
