package services

import (
	"context"
	"fmt"
	"sort"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"
)

// TripsView groups the shipper's deliveries by status.
type TripsView struct {
	Waiting    []models.Delivery `json:"waiting"`
	InProgress []models.Delivery `json:"in_progress"`
	Done       []models.Delivery `json:"done"`
}

// CompleteOrderRequest closes one order of a running trip.
type CompleteOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// ShipperService defines the shipper views and actions.
type ShipperService interface {
	Trips(ctx context.Context, rec *session.Record) (*TripsView, error)
	StartTrip(ctx context.Context, rec *session.Record, deliveryID int64) (*models.Delivery, error)
	CompleteOrder(ctx context.Context, rec *session.Record, deliveryID, orderID int64, req CompleteOrderRequest) error
}

type shipperService struct {
	deliveries repositories.DeliveryRepository
	orders     repositories.OrderRepository
}

// NewShipperService creates a new instance of ShipperService.
func NewShipperService(deliveries repositories.DeliveryRepository, orders repositories.OrderRepository) ShipperService {
	return &shipperService{deliveries: deliveries, orders: orders}
}

func (s *shipperService) Trips(ctx context.Context, rec *session.Record) (*TripsView, error) {
	var deliveries []models.Delivery
	reads := newViewReads(ctx, "shipper.trips")
	load(reads, "deliveries", &deliveries, func(ctx context.Context) ([]models.Delivery, error) {
		return s.deliveries.ListByShipper(ctx, rec.Principal.ID)
	})
	if err := reads.wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(deliveries, func(i, j int) bool {
		if !deliveries[i].Date.Equal(deliveries[j].Date) {
			return deliveries[i].Date.Before(deliveries[j].Date)
		}
		return deliveries[i].ID < deliveries[j].ID
	})
	view := &TripsView{Waiting: []models.Delivery{}, InProgress: []models.Delivery{}, Done: []models.Delivery{}}
	for _, d := range deliveries {
		switch d.Status {
		case models.DeliveryProcessing:
			view.InProgress = append(view.InProgress, d)
		case models.DeliveryDone:
			view.Done = append(view.Done, d)
		default:
			view.Waiting = append(view.Waiting, d)
		}
	}
	return view, nil
}

// ownDelivery returns a delivery assigned to the signed-in shipper.
func (s *shipperService) ownDelivery(ctx context.Context, rec *session.Record, deliveryID int64) (*models.Delivery, error) {
	deliveries, err := s.deliveries.ListByShipper(ctx, rec.Principal.ID)
	if err != nil {
		return nil, err
	}
	d, ok := findDelivery(deliveries, deliveryID)
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("Delivery #%d is not assigned to you.", deliveryID))
	}
	return &d, nil
}

// StartTrip puts every open order of the delivery on the road. All of them
// must have been dispatched by the kitchen first.
func (s *shipperService) StartTrip(ctx context.Context, rec *session.Record, deliveryID int64) (*models.Delivery, error) {
	d, err := s.ownDelivery(ctx, rec, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.Status == models.DeliveryDone {
		return nil, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Delivery #%d is already completed.", deliveryID))
	}

	var toStart []int64
	for _, o := range d.Orders {
		switch {
		case o.Status.IsTerminal(), o.Status == models.OrderDelivering:
			continue
		case o.Status != models.OrderProcessing:
			return nil, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Order #%d has not been dispatched by the kitchen yet.", o.ID))
		}
		toStart = append(toStart, o.ID)
	}
	if len(toStart) == 0 {
		return nil, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Delivery #%d has no orders left to deliver.", deliveryID))
	}

	for _, id := range toStart {
		if err := s.orders.UpdateStatus(ctx, id, models.OrderDelivering); err != nil {
			return nil, err
		}
		for i := range d.Orders {
			if d.Orders[i].ID == id {
				d.Orders[i].Status = models.OrderDelivering
			}
		}
	}
	d.Status = models.DeliveryProcessing
	utils.LogInfo("Trip started", map[string]interface{}{"delivery_id": deliveryID, "orders": len(toStart), "shipper_id": rec.Principal.ID})
	return d, nil
}

// CompleteOrder marks a delivering order as delivered or damaged.
func (s *shipperService) CompleteOrder(ctx context.Context, rec *session.Record, deliveryID, orderID int64, req CompleteOrderRequest) error {
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok || (status != models.OrderDone && status != models.OrderDamaged) {
		return apperr.Validation("status", "Choose delivered or damaged.")
	}
	d, err := s.ownDelivery(ctx, rec, deliveryID)
	if err != nil {
		return err
	}
	var order *models.Order
	for i := range d.Orders {
		if d.Orders[i].ID == orderID {
			order = &d.Orders[i]
			break
		}
	}
	if order == nil {
		return apperr.New(apperr.KindNotFound, fmt.Sprintf("Order #%d is not part of delivery #%d.", orderID, deliveryID))
	}
	if !order.Status.CanTransitionTo(status) {
		return apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Order #%d is not out for delivery.", orderID))
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	utils.LogInfo("Order delivery completed", map[string]interface{}{"order_id": orderID, "delivery_id": deliveryID, "status": string(status)})
	return nil
}
