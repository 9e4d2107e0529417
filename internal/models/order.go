package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Cancellable reports whether a buyer may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Address is a shipping or billing address as the checkout form sends it.
type Address struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country"`
}

type OrderItemCreate struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreate is the payload posted to the backend's order endpoint.
type OrderCreate struct {
	Items           []OrderItemCreate `json:"items"`
	PaymentMethod   string            `json:"payment_method"`
	ShippingAddress Address           `json:"shipping_address"`
	BillingAddress  Address           `json:"billing_address"`
	Notes           string            `json:"notes,omitempty"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingCost    decimal.Decimal   `json:"shipping_cost"`
	Tax             decimal.Decimal   `json:"tax"`
	Total           decimal.Decimal   `json:"total"`
}

type OrderItem struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Status        OrderStatus      `json:"status"`
	PlatformFee   *decimal.Decimal `json:"platform_fee,omitempty"`
	SellerEarning *decimal.Decimal `json:"seller_earning,omitempty"`
}

type Order struct {
	ID              string           `json:"id"`
	OrderNumber     string           `json:"order_number"`
	Status          OrderStatus      `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	PlatformFee     *decimal.Decimal `json:"platform_fee,omitempty"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Tax             decimal.Decimal  `json:"tax"`
	Total           decimal.Decimal  `json:"total"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	ShippingAddress map[string]any   `json:"shipping_address,omitempty"`
	BillingAddress  map[string]any   `json:"billing_address,omitempty"`
	TrackingNumber  *string          `json:"tracking_number,omitempty"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	CancelledReason *string          `json:"cancelled_reason,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
	Items           []OrderItem      `json:"items"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

type CancelOrderResponse struct {
	Message     string `json:"message"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// SellerOrderItem is an order line from the seller's point of view.
type SellerOrderItem struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	SellerEarning   decimal.Decimal `json:"seller_earning"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	BuyerName       string          `json:"buyer_name,omitempty"`
	ShippingAddress map[string]any  `json:"shipping_address,omitempty"`
}

type OrderStatusUpdate struct {
	Status         OrderStatus `json:"status" validate:"required,oneof=confirmed processing shipped delivered cancelled"`
	TrackingNumber *string     `json:"tracking_number,omitempty"`
}

// PaymentIntentRequest asks the backend to open a payment for an order.
type PaymentIntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	OrderID  string          `json:"order_id" validate:"required"`
	Currency string          `json:"currency"`
}

type PaymentConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	OrderID         string `json:"order_id" validate:"required"`
}

// PaymentIntent and payment confirmations are owned by the payment provider,
// so they are relayed untouched.
type PaymentIntent = json.RawMessage
