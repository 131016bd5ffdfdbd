package services

import (
	"context"
	"testing"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordinatorFixture struct {
	orders     *fakeOrders
	deliveries *fakeDeliveries
	users      *fakeUsers
	svc        *coordinatorService
}

func newCoordinatorFixture() *coordinatorFixture {
	f := &coordinatorFixture{
		orders: &fakeOrders{orders: []models.Order{
			{ID: 1, StoreID: 3, StoreName: "Riverside", Status: models.OrderWaiting, OrderDate: day(2025, 3, 4)},
			{ID: 2, StoreID: 1, StoreName: "Old Quarter", Status: models.OrderWaiting, OrderDate: day(2025, 3, 3)},
			{ID: 3, StoreID: 3, Status: models.OrderWaiting, DeliveryID: id64(50)},
			{ID: 4, StoreID: 1, Status: models.OrderWaiting},
			{ID: 5, StoreID: 1, Status: models.OrderProcessing},
			{ID: 6, StoreID: 3, StoreName: "Riverside", Status: models.OrderWaiting, OrderDate: day(2025, 3, 1)},
		}},
		deliveries: &fakeDeliveries{deliveries: []models.Delivery{
			{ID: 50, Date: day(2025, 3, 6), ShipperID: id64(6), Status: models.DeliveryWaiting, Orders: []models.Order{{ID: 4}}},
			{ID: 51, Date: day(2025, 3, 5), ShipperID: id64(6), Status: models.DeliveryProcessing},
			{ID: 52, Date: day(2025, 3, 1), Status: models.DeliveryDone},
		}},
		users: &fakeUsers{users: []models.User{
			{ID: 6, Role: models.RoleShipper},
			{ID: 7, Role: models.RoleShipper},
			{ID: 8, Role: models.RoleAdmin},
		}},
	}
	f.svc = NewCoordinatorService(f.orders, f.deliveries, f.users).(*coordinatorService)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC) }
	return f
}

func TestCoordinatorDashboard(t *testing.T) {
	f := newCoordinatorFixture()

	view, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CoordinatorDashboard{
		UnassignedOrders:    3,
		WaitingDeliveries:   1,
		ActiveDeliveries:    1,
		CompletedDeliveries: 1,
		Shippers:            2,
	}, *view)
}

func TestCandidatesGroupedByStore(t *testing.T) {
	f := newCoordinatorFixture()

	view, err := f.svc.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Candidates, 2)
	assert.Equal(t, int64(1), view.Candidates[0].StoreID)
	assert.Equal(t, "Old Quarter", view.Candidates[0].StoreName)
	require.Len(t, view.Candidates[1].Orders, 2)
	assert.Equal(t, int64(6), view.Candidates[1].Orders[0].ID, "oldest order first")
	assert.Len(t, view.Shippers, 2)
}

func TestCreateDeliveryValidation(t *testing.T) {
	today := day(2025, 3, 5)
	cases := []struct {
		name  string
		req   models.DeliveryCreate
		kind  apperr.Kind
		field string
	}{
		{"no orders", models.DeliveryCreate{ShipperID: 6, DeliveryDate: today}, apperr.KindValidation, "order_ids"},
		{"no shipper", models.DeliveryCreate{OrderIDs: []int64{1}, DeliveryDate: today}, apperr.KindValidation, "shipper_id"},
		{"no date", models.DeliveryCreate{OrderIDs: []int64{1}, ShipperID: 6}, apperr.KindValidation, "delivery_date"},
		{"past date", models.DeliveryCreate{OrderIDs: []int64{1}, ShipperID: 6, DeliveryDate: day(2025, 3, 4)}, apperr.KindValidation, "delivery_date"},
		{"not a shipper", models.DeliveryCreate{OrderIDs: []int64{1}, ShipperID: 8, DeliveryDate: today}, apperr.KindValidation, "shipper_id"},
		{"already assigned", models.DeliveryCreate{OrderIDs: []int64{1, 3}, ShipperID: 6, DeliveryDate: today}, apperr.KindBusinessRule, ""},
		{"on a delivery list", models.DeliveryCreate{OrderIDs: []int64{4}, ShipperID: 6, DeliveryDate: today}, apperr.KindBusinessRule, ""},
		{"not waiting", models.DeliveryCreate{OrderIDs: []int64{5}, ShipperID: 6, DeliveryDate: today}, apperr.KindBusinessRule, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCoordinatorFixture()
			_, err := f.svc.CreateDelivery(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			assert.Equal(t, tc.field, apperr.FieldOf(err))
			assert.Empty(t, f.deliveries.created)
		})
	}
}

func TestCreateDeliveryDeduplicatesOrders(t *testing.T) {
	f := newCoordinatorFixture()

	d, err := f.svc.CreateDelivery(context.Background(), models.DeliveryCreate{
		OrderIDs:     []int64{1, 2, 1},
		ShipperID:    7,
		DeliveryDate: day(2025, 3, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryWaiting, d.Status)
	require.Len(t, f.deliveries.created, 1)
	assert.Equal(t, []int64{1, 2}, f.deliveries.created[0].OrderIDs)
}

func TestCreateDeliveryNeedsFreshReads(t *testing.T) {
	f := newCoordinatorFixture()
	f.orders.listErr = errOffline

	_, err := f.svc.CreateDelivery(context.Background(), models.DeliveryCreate{
		OrderIDs:     []int64{1},
		ShipperID:    6,
		DeliveryDate: day(2025, 3, 6),
	})
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestDeliveriesNewestFirst(t *testing.T) {
	f := newCoordinatorFixture()

	list, err := f.svc.Deliveries(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{50, 51, 52}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestAssignShipper(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.AssignShipper(ctx, 50, 7))
	assert.Equal(t, int64(7), f.deliveries.assigned[50])

	err := f.svc.AssignShipper(ctx, 51, 7)
	assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))

	err = f.svc.AssignShipper(ctx, 99, 7)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = f.svc.AssignShipper(ctx, 50, 8)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = f.svc.AssignShipper(ctx, 50, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
