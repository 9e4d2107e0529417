package demo

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shopnest-bff/internal/models"
)

var platformFeeRate = decimal.RequireFromString("0.10")

func (b *Backend) createOrder(w http.ResponseWriter, r *http.Request, user models.User) {
	var req models.OrderCreate
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		detail(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// validate everything before touching stock
	for _, item := range req.Items {
		p, ok := b.products[item.ProductID]
		if !ok || !p.IsActive {
			detail(w, http.StatusBadRequest, fmt.Sprintf("Product %s is not available", item.ProductID))
			return
		}
		if item.Quantity < 1 {
			detail(w, http.StatusBadRequest, "Quantity must be at least 1")
			return
		}
		if !p.IsDigital && p.Quantity < item.Quantity {
			detail(w, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", p.Name))
			return
		}
	}

	now := b.now().UTC()
	o := &order{
		Order: models.Order{
			ID:              newID(),
			OrderNumber:     fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), len(b.orders)+1),
			Status:          models.OrderPending,
			PaymentStatus:   "pending",
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: addressMap(req.ShippingAddress),
			BillingAddress:  addressMap(req.BillingAddress),
			CreatedAt:       now,
		},
		userID: user.ID,
		email:  user.Email,
	}
	if req.Notes != "" {
		o.Notes = &req.Notes
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		p := b.products[item.ProductID]
		if !p.IsDigital {
			p.Quantity -= item.Quantity
		}
		p.SalesCount += item.Quantity

		// the catalog price wins over what the client sent
		line := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fee := line.Mul(platformFeeRate).Round(2)
		earning := line.Sub(fee)
		subtotal = subtotal.Add(line)
		o.Items = append(o.Items, models.OrderItem{
			ID:            newID(),
			ProductID:     p.ID,
			ProductName:   p.Name,
			Quantity:      item.Quantity,
			Price:         p.Price,
			Subtotal:      line,
			Status:        models.OrderPending,
			PlatformFee:   &fee,
			SellerEarning: &earning,
		})
	}
	o.Subtotal = subtotal
	o.ShippingCost = req.ShippingCost
	o.Tax = req.Tax
	o.Total = subtotal.Add(req.ShippingCost).Add(req.Tax)

	b.orders[o.ID] = o
	writeJSON(w, http.StatusCreated, o.Order)
}

func addressMap(a models.Address) map[string]any {
	return map[string]any{
		"full_name":     strings.TrimSpace(a.FullName + " " + strings.TrimSpace(a.FirstName+" "+a.LastName)),
		"email":         a.Email,
		"phone":         a.Phone,
		"address_line1": a.AddressLine1,
		"address_line2": a.AddressLine2,
		"city":          a.City,
		"state":         a.State,
		"postal_code":   a.PostalCode,
		"country":       a.Country,
	}
}

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request, user models.User) {
	b.mu.RLock()
	out := []models.Order{}
	for _, o := range b.orders {
		if o.userID == user.ID {
			out = append(out, o.Order)
		}
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getOrder(w http.ResponseWriter, r *http.Request, user models.User) {
	b.mu.RLock()
	o, ok := b.orders[r.PathValue("id")]
	b.mu.RUnlock()

	if !ok || (o.userID != user.ID && user.Role != models.RoleAdmin) {
		detail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, o.Order)
}

func (b *Backend) cancelOrder(w http.ResponseWriter, r *http.Request, user models.User) {
	var req models.CancelOrderRequest
	if !decode(w, r, &req) {
		return
	}
	if n := len(strings.TrimSpace(req.Reason)); n < 10 || n > 500 {
		detail(w, http.StatusUnprocessableEntity, "Cancellation reason must be between 10 and 500 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orders[r.PathValue("id")]
	if !ok || o.userID != user.ID {
		detail(w, http.StatusNotFound, "Order not found")
		return
	}
	if !o.Status.Cancellable() {
		detail(w, http.StatusBadRequest, fmt.Sprintf("Cannot cancel order with status '%s'", o.Status))
		return
	}

	now := b.now().UTC()
	o.Status = models.OrderCancelled
	o.CancelledAt = &now
	o.CancelledReason = &req.Reason
	for i := range o.Items {
		o.Items[i].Status = models.OrderCancelled
		if p, ok := b.products[o.Items[i].ProductID]; ok && !p.IsDigital {
			p.Quantity += o.Items[i].Quantity
		}
	}

	writeJSON(w, http.StatusOK, models.CancelOrderResponse{
		Message:     "Order cancelled successfully",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
	})
}

// trackOrder matches the buyer's account email or the shipping email.
func (b *Backend) trackOrder(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("order_number")
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.orders {
		if o.OrderNumber != number {
			continue
		}
		shipping, _ := o.ShippingAddress["email"].(string)
		if email != "" && (email == o.email || email == strings.ToLower(shipping)) {
			writeJSON(w, http.StatusOK, o.Order)
			return
		}
	}
	detail(w, http.StatusNotFound, "Order not found")
}
