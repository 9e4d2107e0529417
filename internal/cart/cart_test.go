package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopnest-bff/internal/models"
)

func item(id, price string) Item {
	return Item{ProductID: id, Name: "Product " + id, Price: decimal.RequireFromString(price), Stock: 100}
}

func TestCart_AddNewAndExisting(t *testing.T) {
	var c Cart

	require.NoError(t, c.Add(item("p1", "10.00"), 1))
	require.NoError(t, c.Add(item("p2", "4.50"), 2))
	require.NoError(t, c.Add(item("p1", "10.00"), 3))

	require.Len(t, c.Items, 2)
	assert.Equal(t, "p1", c.Items[0].ProductID, "existing line keeps its position")
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, 2, c.Items[1].Quantity)
}

func TestCart_AddRefreshesSnapshot(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("p1", "10.00"), 1))
	added := c.Items[0].AddedAt

	require.NoError(t, c.Add(item("p1", "8.00"), 1))

	assert.True(t, decimal.RequireFromString("8.00").Equal(c.Items[0].Price))
	assert.Equal(t, added, c.Items[0].AddedAt)
}

func TestCart_AddRejectsNonPositive(t *testing.T) {
	var c Cart
	assert.ErrorIs(t, c.Add(item("p1", "1"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(item("p1", "1"), -2), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestCart_SetQuantity(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("p1", "10"), 1))
	require.NoError(t, c.Add(item("p2", "5"), 1))

	require.NoError(t, c.SetQuantity("p1", 7))
	got, ok := c.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 7, got.Quantity)

	require.NoError(t, c.SetQuantity("p1", 0))
	_, ok = c.Find("p1")
	assert.False(t, ok)

	require.NoError(t, c.SetQuantity("p2", -1))
	assert.True(t, c.IsEmpty())

	assert.ErrorIs(t, c.SetQuantity("missing", 2), ErrItemNotFound)
	assert.NoError(t, c.SetQuantity("missing", 0), "removing an absent line is a no-op")
}

func TestCart_RemoveIsIdempotent(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("p1", "10"), 1))

	assert.True(t, c.Remove("p1"))
	assert.False(t, c.Remove("p1"))
	assert.True(t, c.IsEmpty())
}

func TestCart_TotalsAndCount(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("p1", "19.99"), 3))
	require.NoError(t, c.Add(item("p2", "0.10"), 2))

	assert.Equal(t, "60.17", c.Total().StringFixed(2))
	assert.Equal(t, 5, c.Count())

	c.Clear()
	assert.True(t, c.Total().IsZero())
	assert.Equal(t, 0, c.Count())
}

func TestCart_ViewOfEmptyCart(t *testing.T) {
	var c Cart
	v := c.View()
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.UpdatedAt)
	assert.True(t, v.Total.IsZero())
}

func TestSnapshot(t *testing.T) {
	p := &models.Product{
		ID:       "p1",
		SellerID: "s1",
		Name:     "Kente scarf",
		Slug:     "kente-scarf",
		Price:    decimal.RequireFromString("25.00"),
		Quantity: 4,
		Images:   []models.ProductImage{{ImageURL: "scarf.jpg", IsPrimary: true}},
	}

	got := Snapshot(p)
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, "s1", got.SellerID)
	assert.Equal(t, "scarf.jpg", got.Image)
	assert.Equal(t, 4, got.Stock)
	assert.Zero(t, got.Quantity)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cart:user:u1", Key(models.Owner{UserID: "u1", GuestID: "g1"}))
	assert.Equal(t, "cart:guest:g1", Key(models.Owner{GuestID: "g1"}))
}
