// Package stock computes available-to-promise quantities from independently
// fetched inventory and order snapshots. The figures are advisory: the
// backend performs the authoritative check when an order is submitted.
package stock

import "kitchen_control/internal/models"

// Reserves reports whether an order in status s holds stock. Only orders that
// have not yet left the kitchen reserve; Delivering orders are treated as
// already fulfilled against inventory.
func Reserves(s models.OrderStatus) bool {
	return s == models.OrderWaiting || s == models.OrderProcessing
}

// PhysicalStock sums the batch quantities of productID. Negative quantities
// from a misbehaving server count as zero.
func PhysicalStock(productID int64, records []models.InventoryRecord) int {
	total := 0
	for _, r := range records {
		if r.ProductID == productID && r.Quantity > 0 {
			total += r.Quantity
		}
	}
	return total
}

// ReservedStock sums the line quantities of productID across reserving orders.
func ReservedStock(productID int64, orders []models.Order) int {
	total := 0
	for _, o := range orders {
		if !Reserves(o.Status) {
			continue
		}
		for _, l := range o.Lines {
			if l.ProductID == productID && l.Quantity > 0 {
				total += l.Quantity
			}
		}
	}
	return total
}

// AvailableToPromise is max(0, physical - reserved).
func AvailableToPromise(productID int64, records []models.InventoryRecord, orders []models.Order) int {
	atp := PhysicalStock(productID, records) - ReservedStock(productID, orders)
	if atp < 0 {
		return 0
	}
	return atp
}

// Snapshot holds one request's view of inventory and orders. It is built from
// fresh fetches and must not outlive the request that built it.
type Snapshot struct {
	physical map[int64]int
	reserved map[int64]int
}

// NewSnapshot indexes records and orders for repeated lookups.
func NewSnapshot(records []models.InventoryRecord, orders []models.Order) *Snapshot {
	s := &Snapshot{
		physical: make(map[int64]int),
		reserved: make(map[int64]int),
	}
	for _, r := range records {
		if r.Quantity > 0 {
			s.physical[r.ProductID] += r.Quantity
		}
	}
	for _, o := range orders {
		if !Reserves(o.Status) {
			continue
		}
		for _, l := range o.Lines {
			if l.Quantity > 0 {
				s.reserved[l.ProductID] += l.Quantity
			}
		}
	}
	return s
}

func (s *Snapshot) Physical(productID int64) int { return s.physical[productID] }

func (s *Snapshot) Reserved(productID int64) int { return s.reserved[productID] }

// Available returns the available-to-promise quantity of productID.
func (s *Snapshot) Available(productID int64) int {
	atp := s.physical[productID] - s.reserved[productID]
	if atp < 0 {
		return 0
	}
	return atp
}
