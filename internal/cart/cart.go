// Package cart holds the store staff's pending order. Every mutation that can
// raise a quantity is checked against available-to-promise at that moment.
package cart

import (
	"fmt"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/shopspring/decimal"
)

// Availability answers the current available-to-promise of a product.
// *stock.Snapshot implements it.
type Availability interface {
	Available(productID int64) int
}

// Line is one product in the cart. UnitPrice is the catalog price when the
// line was first added.
type Line struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal is quantity times unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order. The zero value is an empty cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

func New() *Cart {
	return &Cart{}
}

// StockExceededError is the cause attached to a rejected mutation.
type StockExceededError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("product %d: requested %d, only %d available", e.ProductID, e.Requested, e.Available)
}

func exceeded(productID int64, name string, requested, available int) error {
	label := name
	if label == "" {
		label = fmt.Sprintf("product #%d", productID)
	}
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Field:   "quantity",
		Message: fmt.Sprintf("Only %d left of %s.", available, label),
		Err:     &StockExceededError{ProductID: productID, ProductName: name, Requested: requested, Available: available},
	}
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Line returns the line for productID.
func (c *Cart) Line(productID int64) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// AddItem adds qty more of product. qty <= 0 is a no-op. The resulting
// quantity must not exceed avail; if it does the cart is left unchanged.
func (c *Cart) AddItem(product models.Product, qty int, avail Availability) error {
	if qty <= 0 {
		return nil
	}
	current := 0
	if l, ok := c.Line(product.ID); ok {
		current = l.Quantity
	}
	return c.put(product, current+qty, avail)
}

// SetQuantity sets the line of product to qty, creating it if needed.
// qty <= 0 removes the line.
func (c *Cart) SetQuantity(product models.Product, qty int, avail Availability) error {
	if qty <= 0 {
		c.RemoveItem(product.ID)
		return nil
	}
	return c.put(product, qty, avail)
}

// UpdateQuantity changes an existing line. qty < 1 removes it.
func (c *Cart) UpdateQuantity(productID int64, qty int, avail Availability) error {
	if qty < 1 {
		c.RemoveItem(productID)
		return nil
	}
	i := c.index(productID)
	if i < 0 {
		return apperr.Validation("product_id", "This product is not in the cart.")
	}
	l := c.Lines[i]
	if available := avail.Available(productID); qty > available {
		return exceeded(productID, l.ProductName, qty, available)
	}
	c.Lines[i].Quantity = qty
	return nil
}

func (c *Cart) put(product models.Product, qty int, avail Availability) error {
	if available := avail.Available(product.ID); qty > available {
		return exceeded(product.ID, product.Name, qty, available)
	}
	if i := c.index(product.ID); i >= 0 {
		c.Lines[i].Quantity = qty
		return nil
	}
	c.Lines = append(c.Lines, Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    qty,
		UnitPrice:   product.Price,
	})
	return nil
}

// RemoveItem drops the line of productID. Absent products are ignored.
func (c *Cart) RemoveItem(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalItems sums line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums quantity times unit price snapshot.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Validate re-checks every line against avail and reports the first line
// that no longer fits. The cart is never truncated.
func (c *Cart) Validate(avail Availability) error {
	for _, l := range c.Lines {
		if available := avail.Available(l.ProductID); l.Quantity > available {
			return exceeded(l.ProductID, l.ProductName, l.Quantity, available)
		}
	}
	return nil
}

// OrderLines converts the cart into order lines.
func (c *Cart) OrderLines() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, models.OrderLine{ProductID: l.ProductID, ProductName: l.ProductName, Unit: l.Unit, Quantity: l.Quantity})
	}
	return out
}
