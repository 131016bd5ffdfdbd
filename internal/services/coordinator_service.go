package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/pkg/utils"
)

// StoreOrders groups aggregation candidates by store.
type StoreOrders struct {
	StoreID   int64          `json:"store_id"`
	StoreName string         `json:"store_name"`
	Orders    []models.Order `json:"orders"`
}

// CoordinatorDashboard is the supply coordinator landing view.
type CoordinatorDashboard struct {
	UnassignedOrders    int `json:"unassigned_orders"`
	WaitingDeliveries   int `json:"waiting_deliveries"`
	ActiveDeliveries    int `json:"active_deliveries"`
	CompletedDeliveries int `json:"completed_deliveries"`
	Shippers            int `json:"shippers"`
}

// AggregationView lists what can be put on a new delivery.
type AggregationView struct {
	Candidates []StoreOrders `json:"candidates"`
	Shippers   []models.User `json:"shippers"`
}

// CoordinatorService defines the delivery aggregation views and actions.
type CoordinatorService interface {
	Dashboard(ctx context.Context) (*CoordinatorDashboard, error)
	Candidates(ctx context.Context) (*AggregationView, error)
	CreateDelivery(ctx context.Context, req models.DeliveryCreate) (*models.Delivery, error)
	Deliveries(ctx context.Context) ([]models.Delivery, error)
	AssignShipper(ctx context.Context, deliveryID, shipperID int64) error
}

type coordinatorService struct {
	orders     repositories.OrderRepository
	deliveries repositories.DeliveryRepository
	users      repositories.UserRepository
	now        func() time.Time
}

// NewCoordinatorService creates a new instance of CoordinatorService.
func NewCoordinatorService(orders repositories.OrderRepository, deliveries repositories.DeliveryRepository, users repositories.UserRepository) CoordinatorService {
	return &coordinatorService{orders: orders, deliveries: deliveries, users: users, now: time.Now}
}

// unassigned returns waiting orders that are not on any delivery yet. The
// order payload does not always carry its delivery, so membership is also
// taken from the deliveries themselves.
func unassigned(orders []models.Order, deliveries []models.Delivery) []models.Order {
	onDelivery := make(map[int64]struct{})
	for _, d := range deliveries {
		for _, o := range d.Orders {
			onDelivery[o.ID] = struct{}{}
		}
	}
	out := make([]models.Order, 0)
	for _, o := range orders {
		if o.Status != models.OrderWaiting || o.DeliveryID != nil {
			continue
		}
		if _, ok := onDelivery[o.ID]; ok {
			continue
		}
		out = append(out, o)
	}
	return out
}

func groupByStore(orders []models.Order) []StoreOrders {
	index := make(map[int64]int)
	var groups []StoreOrders
	for _, o := range orders {
		i, ok := index[o.StoreID]
		if !ok {
			i = len(groups)
			index[o.StoreID] = i
			groups = append(groups, StoreOrders{StoreID: o.StoreID, StoreName: o.StoreName})
		}
		if groups[i].StoreName == "" {
			groups[i].StoreName = o.StoreName
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].StoreID < groups[j].StoreID })
	for _, g := range groups {
		sort.SliceStable(g.Orders, func(i, j int) bool { return g.Orders[i].OrderDate.Before(g.Orders[j].OrderDate) })
	}
	if groups == nil {
		groups = []StoreOrders{}
	}
	return groups
}

func (s *coordinatorService) listShippers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.FilterByRole(users, models.RoleShipper), nil
}

func (s *coordinatorService) Dashboard(ctx context.Context) (*CoordinatorDashboard, error) {
	var orders []models.Order
	var deliveries []models.Delivery
	var shippers []models.User
	reads := newViewReads(ctx, "coordinator.dashboard")
	load(reads, "orders", &orders, s.orders.List)
	load(reads, "deliveries", &deliveries, s.deliveries.List)
	load(reads, "shippers", &shippers, s.listShippers)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	view := &CoordinatorDashboard{
		UnassignedOrders: len(unassigned(orders, deliveries)),
		Shippers:         len(shippers),
	}
	for _, d := range deliveries {
		switch d.Status {
		case models.DeliveryWaiting:
			view.WaitingDeliveries++
		case models.DeliveryProcessing:
			view.ActiveDeliveries++
		case models.DeliveryDone:
			view.CompletedDeliveries++
		}
	}
	return view, nil
}

func (s *coordinatorService) Candidates(ctx context.Context) (*AggregationView, error) {
	var orders []models.Order
	var deliveries []models.Delivery
	var shippers []models.User
	reads := newViewReads(ctx, "coordinator.candidates")
	load(reads, "orders", &orders, s.orders.List)
	load(reads, "deliveries", &deliveries, s.deliveries.List)
	load(reads, "shippers", &shippers, s.listShippers)
	if err := reads.wait(); err != nil {
		return nil, err
	}
	return &AggregationView{Candidates: groupByStore(unassigned(orders, deliveries)), Shippers: shippers}, nil
}

// CreateDelivery aggregates the selected waiting orders into one trip. Every
// selected order must still be waiting and unassigned at submission time.
func (s *coordinatorService) CreateDelivery(ctx context.Context, req models.DeliveryCreate) (*models.Delivery, error) {
	if len(req.OrderIDs) == 0 {
		return nil, apperr.Validation("order_ids", "Select at least one order.")
	}
	if req.ShipperID <= 0 {
		return nil, apperr.Validation("shipper_id", "Select a shipper.")
	}
	if req.DeliveryDate.IsZero() {
		return nil, apperr.Validation("delivery_date", "Pick a delivery date.")
	}
	today := truncateDay(s.now())
	if truncateDay(req.DeliveryDate).Before(today) {
		return nil, apperr.Validation("delivery_date", "The delivery date cannot be in the past.")
	}

	shippers, err := s.listShippers(ctx)
	if err != nil {
		return nil, err
	}
	if !containsUser(shippers, req.ShipperID) {
		return nil, apperr.Validation("shipper_id", "The selected user is not a shipper.")
	}

	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, err
	}
	open := make(map[int64]struct{})
	for _, o := range unassigned(orders, deliveries) {
		open[o.ID] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(req.OrderIDs))
	ids := make([]int64, 0, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := open[id]; !ok {
			return nil, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Order #%d is no longer available for a delivery.", id))
		}
		ids = append(ids, id)
	}
	req.OrderIDs = ids

	created, err := s.deliveries.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Delivery created", map[string]interface{}{"delivery_id": created.ID, "orders": len(ids), "shipper_id": req.ShipperID})
	return created, nil
}

func (s *coordinatorService) Deliveries(ctx context.Context) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	reads := newViewReads(ctx, "coordinator.deliveries")
	load(reads, "deliveries", &deliveries, s.deliveries.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(deliveries, func(i, j int) bool {
		if !deliveries[i].Date.Equal(deliveries[j].Date) {
			return deliveries[i].Date.After(deliveries[j].Date)
		}
		return deliveries[i].ID > deliveries[j].ID
	})
	return deliveries, nil
}

// AssignShipper changes the shipper of a delivery that has not started.
func (s *coordinatorService) AssignShipper(ctx context.Context, deliveryID, shipperID int64) error {
	if shipperID <= 0 {
		return apperr.Validation("shipper_id", "Select a shipper.")
	}
	deliveries, err := s.deliveries.List(ctx)
	if err != nil {
		return err
	}
	d, ok := findDelivery(deliveries, deliveryID)
	if !ok {
		return apperr.New(apperr.KindNotFound, fmt.Sprintf("Delivery #%d was not found.", deliveryID))
	}
	if !d.OrdersEditable() {
		return apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Delivery #%d has already started.", deliveryID))
	}
	shippers, err := s.listShippers(ctx)
	if err != nil {
		return err
	}
	if !containsUser(shippers, shipperID) {
		return apperr.Validation("shipper_id", "The selected user is not a shipper.")
	}
	return s.deliveries.AssignShipper(ctx, deliveryID, shipperID)
}

func findDelivery(deliveries []models.Delivery, id int64) (models.Delivery, bool) {
	for _, d := range deliveries {
		if d.ID == id {
			return d, true
		}
	}
	return models.Delivery{}, false
}

func containsUser(users []models.User, id int64) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
