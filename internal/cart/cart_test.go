package cart

import (
	"errors"
	"testing"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAvailability map[int64]int

func (f fixedAvailability) Available(productID int64) int { return f[productID] }

var (
	croissant = models.Product{ID: 1, Name: "Croissant", Unit: "pcs", Price: decimal.RequireFromString("12.50")}
	baguette  = models.Product{ID: 2, Name: "Baguette", Unit: "pcs", Price: decimal.NewFromInt(8)}
)

func TestAddItemAccumulates(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 10}

	require.NoError(t, c.AddItem(croissant, 4, avail))
	require.NoError(t, c.AddItem(croissant, 6, avail))

	l, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 10, l.Quantity)
	assert.Equal(t, "Croissant", l.ProductName)
}

func TestAddItemRejectsOverAvailable(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 10}
	require.NoError(t, c.AddItem(croissant, 8, avail))

	err := c.AddItem(croissant, 3, avail)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "Only 10 left of Croissant")

	var exceeded *StockExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 11, exceeded.Requested)
	assert.Equal(t, 10, exceeded.Available)

	l, _ := c.Line(1)
	assert.Equal(t, 8, l.Quantity, "rejected mutation leaves the cart unchanged")
}

func TestAddItemIgnoresNonPositive(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(croissant, 0, fixedAvailability{}))
	require.NoError(t, c.AddItem(croissant, -2, fixedAvailability{}))
	assert.True(t, c.IsEmpty())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 5, 2: 5}

	require.NoError(t, c.SetQuantity(croissant, 3, avail))
	require.NoError(t, c.SetQuantity(baguette, 2, avail))
	require.NoError(t, c.SetQuantity(croissant, 5, avail))
	assert.Equal(t, 7, c.TotalItems())

	require.Error(t, c.SetQuantity(baguette, 6, avail))

	require.NoError(t, c.SetQuantity(croissant, 0, avail))
	_, ok := c.Line(1)
	assert.False(t, ok)
	assert.Equal(t, []int64{2}, productIDs(c))
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 5}
	require.NoError(t, c.AddItem(croissant, 2, avail))

	require.NoError(t, c.UpdateQuantity(1, 4, avail))
	l, _ := c.Line(1)
	assert.Equal(t, 4, l.Quantity)

	err := c.UpdateQuantity(2, 1, avail)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, c.UpdateQuantity(1, 0, avail))
	assert.True(t, c.IsEmpty())
}

func TestTotalsUsePriceSnapshot(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 10, 2: 10}
	require.NoError(t, c.AddItem(croissant, 2, avail))
	require.NoError(t, c.AddItem(baguette, 3, avail))

	repriced := croissant
	repriced.Price = decimal.NewFromInt(99)
	require.NoError(t, c.AddItem(repriced, 1, avail))

	assert.Equal(t, 6, c.TotalItems())
	assert.True(t, decimal.RequireFromString("61.50").Equal(c.TotalPrice()), c.TotalPrice().String())
}

func TestValidateKeepsCart(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(croissant, 4, fixedAvailability{1: 10}))
	require.NoError(t, c.AddItem(baguette, 2, fixedAvailability{2: 10}))

	err := c.Validate(fixedAvailability{1: 3, 2: 10})
	require.Error(t, err)
	assert.Contains(t, apperr.MessageOf(err), "Croissant")
	assert.Len(t, c.Lines, 2)

	assert.NoError(t, c.Validate(fixedAvailability{1: 4, 2: 2}))
}

func TestOrderLinesKeepInsertionOrder(t *testing.T) {
	c := New()
	avail := fixedAvailability{1: 10, 2: 10}
	require.NoError(t, c.AddItem(baguette, 1, avail))
	require.NoError(t, c.AddItem(croissant, 2, avail))

	lines := c.OrderLines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].ProductID)
	assert.Equal(t, 2, lines[1].Quantity)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.OrderLines())
}

func productIDs(c *Cart) []int64 {
	var ids []int64
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
