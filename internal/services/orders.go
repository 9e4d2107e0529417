package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"shopnest-bff/internal/models"
)

func (s *ServiceClient) CreateOrder(ctx context.Context, token string, order models.OrderCreate) (*models.Order, error) {
	var out models.Order
	if err := s.send(ctx, svcOrders, http.MethodPost, s.cfg.OrderServiceURL+"/orders", token, order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *ServiceClient) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.get(ctx, svcOrders, s.cfg.OrderServiceURL+"/orders", token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *ServiceClient) GetOrder(ctx context.Context, token, id string) (*models.Order, error) {
	var order models.Order
	u := s.cfg.OrderServiceURL + "/orders/" + url.PathEscape(id)
	if err := s.get(ctx, svcOrders, u, token, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *ServiceClient) CancelOrder(ctx context.Context, token, id, reason string) (*models.CancelOrderResponse, error) {
	var out models.CancelOrderResponse
	u := s.cfg.OrderServiceURL + "/orders/" + url.PathEscape(id) + "/cancel"
	body := models.CancelOrderRequest{Reason: reason}
	if err := s.send(ctx, svcOrders, http.MethodPut, u, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackOrder looks an order up by number and buyer email without a session.
func (s *ServiceClient) TrackOrder(ctx context.Context, number, email string) (*models.Order, error) {
	var order models.Order
	q := url.Values{"order_number": {number}, "email": {email}}
	u := endpoint(s.cfg.OrderServiceURL, "/orders/track", q)
	if err := s.get(ctx, svcOrders, u, "", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *ServiceClient) ListSellerOrders(ctx context.Context, token string) ([]models.SellerOrderItem, error) {
	var items []models.SellerOrderItem
	if err := s.get(ctx, svcOrders, s.cfg.OrderServiceURL+"/sellers/orders", token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ServiceClient) UpdateOrderItemStatus(ctx context.Context, token, itemID string, update models.OrderStatusUpdate) (*models.SellerOrderItem, error) {
	var out models.SellerOrderItem
	u := s.cfg.OrderServiceURL + "/sellers/orders/" + url.PathEscape(itemID) + "/status"
	if err := s.send(ctx, svcOrders, http.MethodPut, u, token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAllOrders is the admin view over every order.
func (s *ServiceClient) ListAllOrders(ctx context.Context, token string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.get(ctx, svcOrders, s.cfg.OrderServiceURL+"/admin/orders", token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *ServiceClient) PaymentPublicKey(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.get(ctx, svcOrders, s.cfg.OrderServiceURL+"/payments/public-key", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ServiceClient) CreatePaymentIntent(ctx context.Context, token string, req models.PaymentIntentRequest) (models.PaymentIntent, error) {
	if req.Currency == "" {
		req.Currency = "usd"
	}
	var out models.PaymentIntent
	u := s.cfg.OrderServiceURL + "/payments/create-intent"
	if err := s.send(ctx, svcOrders, http.MethodPost, u, token, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ServiceClient) ConfirmPayment(ctx context.Context, token string, req models.PaymentConfirmRequest) (json.RawMessage, error) {
	var out json.RawMessage
	u := s.cfg.OrderServiceURL + "/payments/confirm"
	if err := s.send(ctx, svcOrders, http.MethodPost, u, token, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
