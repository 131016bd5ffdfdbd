// Package dispatch turns a delivery's demand into inventory deductions,
// consuming batches first-expired-first-out.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"kitchen_control/internal/models"
	"kitchen_control/internal/stock"
)

// AwaitingDispatch reports whether an order's lines still need to leave the
// kitchen. A delivery may mix dispatched and undispatched orders.
func AwaitingDispatch(o models.Order) bool {
	return o.Status == models.OrderWaiting
}

// DemandLine is the aggregated need for one product.
type DemandLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// AggregateDemand sums line quantities per product over the delivery's
// orders that are awaiting dispatch.
func AggregateDemand(d models.Delivery) map[int64]int {
	demand := make(map[int64]int)
	for _, o := range d.Orders {
		if !AwaitingDispatch(o) {
			continue
		}
		for _, l := range o.Lines {
			if l.Quantity > 0 {
				demand[l.ProductID] += l.Quantity
			}
		}
	}
	return demand
}

// DemandLines is AggregateDemand as a list sorted by product id, carrying
// product names for display.
func DemandLines(d models.Delivery) []DemandLine {
	demand := AggregateDemand(d)
	names := make(map[int64]string)
	for _, o := range d.Orders {
		for _, l := range o.Lines {
			if l.ProductName != "" {
				names[l.ProductID] = l.ProductName
			}
		}
	}
	lines := make([]DemandLine, 0, len(demand))
	for id, qty := range demand {
		lines = append(lines, DemandLine{ProductID: id, ProductName: names[id], Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// Batches returns the product's batches with stock, earliest expiry first.
// Batches without an expiry date go last. Ties are broken by batch id so the
// order is the same on every run.
func Batches(productID int64, records []models.InventoryRecord) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0)
	for _, r := range records {
		if r.ProductID == productID && r.Quantity > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return stock.ExpiresSooner(out[i].ExpiryDate, out[j].ExpiryDate)
		}
		if out[i].BatchID != out[j].BatchID {
			return lessBatchID(out[i].BatchID, out[j].BatchID)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// lessBatchID compares numerically when both ids are integers, otherwise
// lexically, so "9" sorts before "10".
func lessBatchID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// Deduction is one planned export from one batch.
type Deduction struct {
	ProductID   int64     `json:"product_id"`
	InventoryID int64     `json:"inventory_id"`
	BatchID     string    `json:"batch_id"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	// Remaining is the batch quantity left after this deduction.
	Remaining int `json:"remaining"`
}

// InsufficientStockError names the product that cannot be covered.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Needed      int
	Available   int
}

// Shortfall is how much is missing.
func (e *InsufficientStockError) Shortfall() int {
	return e.Needed - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: need %d, have %d", e.ProductID, e.Needed, e.Available)
}

// PlanProduct walks the product's batches FEFO and returns the deductions
// that cover need. Nothing is planned when the batches cannot cover it all.
func PlanProduct(productID int64, need int, records []models.InventoryRecord) ([]Deduction, error) {
	batches := Batches(productID, records)

	total := 0
	for _, b := range batches {
		total += b.Quantity
	}
	if total < need {
		return nil, &InsufficientStockError{ProductID: productID, Needed: need, Available: total}
	}

	remaining := need
	var out []Deduction
	for _, b := range batches {
		if remaining <= 0 {
			break
		}
		take := b.Quantity
		if remaining < take {
			take = remaining
		}
		out = append(out, Deduction{
			ProductID:   productID,
			InventoryID: b.ID,
			BatchID:     b.BatchID,
			ExpiryDate:  b.ExpiryDate,
			Quantity:    take,
			Remaining:   b.Quantity - take,
		})
		remaining -= take
	}
	return out, nil
}

// ProductPlan is the preview of one product's deductions.
type ProductPlan struct {
	Demand     DemandLine  `json:"demand"`
	Deductions []Deduction `json:"deductions"`
	Available  int         `json:"available"`
	Shortfall  int         `json:"shortfall"`
}

// Preview plans every product of the delivery without stopping at the first
// shortfall, for the outbound screen.
func Preview(d models.Delivery, records []models.InventoryRecord) []ProductPlan {
	lines := DemandLines(d)
	out := make([]ProductPlan, 0, len(lines))
	for _, line := range lines {
		plan := ProductPlan{Demand: line}
		deductions, err := PlanProduct(line.ProductID, line.Quantity, records)
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			plan.Available = insufficient.Available
			plan.Shortfall = insufficient.Shortfall()
		} else {
			plan.Deductions = deductions
			plan.Available = totalQuantity(Batches(line.ProductID, records))
		}
		out = append(out, plan)
	}
	return out
}

func totalQuantity(batches []models.InventoryRecord) int {
	total := 0
	for _, b := range batches {
		total += b.Quantity
	}
	return total
}
