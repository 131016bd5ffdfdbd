package models

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a store order.
type OrderStatus string

const (
	OrderWaiting    OrderStatus = "WAITING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderDelivering OrderStatus = "DELIVERING"
	OrderDone       OrderStatus = "DONE"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderDamaged    OrderStatus = "DAMAGED"
)

// orderTransitions is the order state machine. Terminal states have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderWaiting:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderDelivering},
	OrderDelivering: {OrderDone, OrderDamaged},
}

// ParseOrderStatus accepts both the canonical spellings and the backend's
// historical ones (WAITTING, CANCLED).
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WAITING", "WAITTING":
		return OrderWaiting, true
	case "PROCESSING":
		return OrderProcessing, true
	case "DELIVERING":
		return OrderDelivering, true
	case "DONE", "DELIVERED", "COMPLETED":
		return OrderDone, true
	case "CANCELLED", "CANCELED", "CANCLED":
		return OrderCancelled, true
	case "DAMAGED":
		return OrderDamaged, true
	}
	return "", false
}

// Wire returns the spelling the backend expects on status updates.
func (s OrderStatus) Wire() string {
	switch s {
	case OrderWaiting:
		return "WAITTING"
	case OrderCancelled:
		return "CANCLED"
	default:
		return string(s)
	}
}

// IsTerminal reports whether the order accepts no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDone || s == OrderCancelled || s == OrderDamaged
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// OrderLine is one product line of an order.
type OrderLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Order placed by a store.
type Order struct {
	ID         int64       `json:"order_id"`
	StoreID    int64       `json:"store_id"`
	StoreName  string      `json:"store_name,omitempty"`
	Status     OrderStatus `json:"status"`
	OrderDate  time.Time   `json:"order_date"`
	DeliveryID *int64      `json:"delivery_id,omitempty"`
	Lines      []OrderLine `json:"lines"`
	Comment    string      `json:"comment,omitempty"`
	Feedback   *Feedback   `json:"feedback,omitempty"`
}

// TotalQuantity sums all line quantities.
func (o Order) TotalQuantity() int {
	total := 0
	for _, l := range o.Lines {
		total += l.Quantity
	}
	return total
}

// OrderCreate is what the store submits on checkout.
type OrderCreate struct {
	StoreID int64       `json:"store_id"`
	Comment string      `json:"comment,omitempty"`
	Lines   []OrderLine `json:"lines"`
}

// DeliveryStatus is the lifecycle state of a delivery trip.
type DeliveryStatus string

const (
	DeliveryWaiting    DeliveryStatus = "WAITING"
	DeliveryProcessing DeliveryStatus = "PROCESSING"
	DeliveryDone       DeliveryStatus = "DONE"
)

// ParseDeliveryStatus accepts canonical and historical spellings.
func ParseDeliveryStatus(s string) (DeliveryStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WAITING", "WAITTING", "PENDING":
		return DeliveryWaiting, true
	case "PROCESSING", "DELIVERING", "IN_PROGRESS":
		return DeliveryProcessing, true
	case "DONE", "COMPLETED", "DELIVERED":
		return DeliveryDone, true
	}
	return "", false
}

// Delivery is a trip aggregating orders. Its order set is fixed once it
// leaves Waiting.
type Delivery struct {
	ID          int64          `json:"delivery_id"`
	Date        time.Time      `json:"delivery_date"`
	ShipperID   *int64         `json:"shipper_id,omitempty"`
	ShipperName string         `json:"shipper_name,omitempty"`
	Status      DeliveryStatus `json:"status"`
	Orders      []Order        `json:"orders"`
}

// OrdersEditable reports whether the delivery still accepts re-aggregation.
func (d Delivery) OrdersEditable() bool {
	return d.Status == DeliveryWaiting
}

// DeliveryCreate is the coordinator's aggregation request.
type DeliveryCreate struct {
	ShipperID    int64     `json:"shipper_id" binding:"required,gt=0"`
	DeliveryDate time.Time `json:"delivery_date" binding:"required"`
	OrderIDs     []int64   `json:"order_ids" binding:"required,min=1"`
}
