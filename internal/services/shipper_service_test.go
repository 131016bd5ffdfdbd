package services

import (
	"context"
	"testing"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShipperFixture() (*fakeDeliveries, *fakeOrders, ShipperService) {
	deliveries := &fakeDeliveries{deliveries: []models.Delivery{
		{ID: 60, Date: day(2025, 3, 6), ShipperID: id64(6), Status: models.DeliveryWaiting, Orders: []models.Order{
			{ID: 1, Status: models.OrderProcessing},
			{ID: 2, Status: models.OrderCancelled},
			{ID: 3, Status: models.OrderDelivering},
		}},
		{ID: 61, Date: day(2025, 3, 5), ShipperID: id64(6), Status: models.DeliveryWaiting, Orders: []models.Order{
			{ID: 4, Status: models.OrderWaiting},
		}},
		{ID: 62, Date: day(2025, 3, 1), ShipperID: id64(6), Status: models.DeliveryDone},
		{ID: 63, Date: day(2025, 3, 6), ShipperID: id64(7), Status: models.DeliveryWaiting},
		{ID: 64, Date: day(2025, 3, 7), ShipperID: id64(6), Status: models.DeliveryProcessing, Orders: []models.Order{
			{ID: 5, Status: models.OrderDelivering},
			{ID: 6, Status: models.OrderDone},
		}},
	}}
	orders := &fakeOrders{}
	return deliveries, orders, NewShipperService(deliveries, orders)
}

func TestTripsGroupedByStatus(t *testing.T) {
	_, _, svc := newShipperFixture()

	view, err := svc.Trips(context.Background(), shipperRecord(6))
	require.NoError(t, err)
	require.Len(t, view.Waiting, 2)
	assert.Equal(t, int64(61), view.Waiting[0].ID, "earliest trip first")
	require.Len(t, view.InProgress, 1)
	assert.Equal(t, int64(64), view.InProgress[0].ID)
	require.Len(t, view.Done, 1)
}

func TestStartTripMovesDispatchedOrders(t *testing.T) {
	_, orders, svc := newShipperFixture()

	d, err := svc.StartTrip(context.Background(), shipperRecord(6), 60)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryProcessing, d.Status)
	assert.Equal(t, map[int64]models.OrderStatus{1: models.OrderDelivering}, orders.updates)
	assert.Equal(t, models.OrderDelivering, d.Orders[0].Status)
	assert.Equal(t, models.OrderCancelled, d.Orders[1].Status)
}

func TestStartTripRejections(t *testing.T) {
	cases := map[int64]apperr.Kind{
		61: apperr.KindBusinessRule, // kitchen has not dispatched yet
		62: apperr.KindBusinessRule, // already completed
		63: apperr.KindNotFound,     // someone else's trip
		64: apperr.KindBusinessRule, // nothing left to start
	}
	for id, kind := range cases {
		_, orders, svc := newShipperFixture()
		_, err := svc.StartTrip(context.Background(), shipperRecord(6), id)
		assert.Equal(t, kind, apperr.KindOf(err), "delivery %d", id)
		assert.Empty(t, orders.updates, "delivery %d", id)
	}
}

func TestCompleteOrder(t *testing.T) {
	_, orders, svc := newShipperFixture()
	ctx := context.Background()
	rec := shipperRecord(6)

	require.NoError(t, svc.CompleteOrder(ctx, rec, 64, 5, CompleteOrderRequest{Status: "delivered"}))
	assert.Equal(t, models.OrderDone, orders.updates[5])

	require.NoError(t, svc.CompleteOrder(ctx, rec, 60, 3, CompleteOrderRequest{Status: "DAMAGED"}))
	assert.Equal(t, models.OrderDamaged, orders.updates[3])

	err := svc.CompleteOrder(ctx, rec, 60, 3, CompleteOrderRequest{Status: "cancelled"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.CompleteOrder(ctx, rec, 60, 1, CompleteOrderRequest{Status: "done"})
	assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err), "not out for delivery yet")

	err = svc.CompleteOrder(ctx, rec, 60, 99, CompleteOrderRequest{Status: "done"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
