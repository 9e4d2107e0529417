package demo

import (
	"github.com/shopspring/decimal"

	"shopnest-bff/internal/models"
)

// Demo accounts, all with the password DemoPassword.
const (
	AdminEmail   = "admin@shopnest.dev"
	SellerEmail  = "seller@shopnest.dev"
	BuyerEmail   = "buyer@shopnest.dev"
	DemoPassword = "password123"
)

func (b *Backend) seed() {
	now := b.now().UTC()

	addUser := func(email, first, last string, role models.Role) models.User {
		u := models.User{
			ID:        newID(),
			Email:     email,
			FirstName: first,
			LastName:  last,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
		}
		b.accounts[email] = &account{user: u, passwordHash: hashPassword(DemoPassword)}
		return u
	}
	addUser(AdminEmail, "Ada", "Admin", models.RoleAdmin)
	seller := addUser(SellerEmail, "Kofi", "Boateng", models.RoleSeller)
	addUser(BuyerEmail, "Ama", "Mensah", models.RoleBuyer)

	store := &models.SellerProfile{
		ID:                  newID(),
		UserID:              seller.ID,
		BusinessName:        "Boateng Crafts",
		BusinessDescription: "Handmade goods from Kumasi",
		ApprovalStatus:      models.ApprovalApproved,
		CommissionRate:      defaultCommission,
		CreatedAt:           now,
	}
	b.sellers[store.ID] = store

	categories := []models.Category{
		{ID: "cat-electronics", Name: "Electronics", Slug: "electronics", IsActive: true, CreatedAt: now},
		{ID: "cat-home", Name: "Home & Kitchen", Slug: "home-kitchen", IsActive: true, CreatedAt: now},
		{ID: "cat-fashion", Name: "Fashion", Slug: "fashion", IsActive: true, CreatedAt: now},
		{ID: "cat-books", Name: "Books", Slug: "books", IsActive: true, CreatedAt: now},
		{ID: "cat-archive", Name: "Archive", Slug: "archive", IsActive: false, CreatedAt: now},
	}
	b.categories = categories

	products := []struct {
		id, name, category, price string
		stock, sales, views       int
		digital, featured         bool
	}{
		{"prod-headphones", "Wireless Headphones", "cat-electronics", "89.99", 25, 140, 900, false, true},
		{"prod-speaker", "Bluetooth Speaker", "cat-electronics", "45.50", 40, 95, 1200, false, false},
		{"prod-kettle", "Electric Kettle", "cat-home", "32.00", 15, 60, 300, false, false},
		{"prod-pot", "Clay Cooking Pot", "cat-home", "24.75", 8, 30, 150, false, true},
		{"prod-kente", "Kente Scarf", "cat-fashion", "55.00", 12, 210, 700, false, true},
		{"prod-sandals", "Leather Sandals", "cat-fashion", "38.00", 0, 75, 420, false, false},
		{"prod-ebook", "Go in Practice (e-book)", "cat-books", "19.99", 0, 50, 260, true, false},
	}
	for _, p := range products {
		product := &models.Product{
			ID:            p.id,
			SellerID:      store.ID,
			CategoryID:    p.category,
			Name:          p.name,
			Slug:          p.id[len("prod-"):],
			Description:   p.name + " from " + store.BusinessName,
			Price:         decimal.RequireFromString(p.price),
			Quantity:      p.stock,
			IsDigital:     p.digital,
			IsActive:      true,
			IsFeatured:    p.featured,
			SalesCount:    p.sales,
			ViewsCount:    p.views,
			RatingAverage: decimal.Zero,
			CreatedAt:     now,
			Images: []models.ProductImage{
				{ID: newID(), ProductID: p.id, ImageURL: "/images/" + p.id + ".jpg", IsPrimary: true, CreatedAt: now},
			},
		}
		b.products[product.ID] = product
		b.productIDs = append(b.productIDs, product.ID)
	}
}
