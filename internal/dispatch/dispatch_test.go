package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func batch(id, productID int64, batchID string, qty, expiresInDays int) models.InventoryRecord {
	return models.InventoryRecord{
		ID:         id,
		ProductID:  productID,
		BatchID:    batchID,
		Quantity:   qty,
		ExpiryDate: today.AddDate(0, 0, expiresInDays),
	}
}

func TestBatchesFEFOOrder(t *testing.T) {
	records := []models.InventoryRecord{
		batch(1, 7, "B3", 5, 10),
		batch(2, 7, "10", 5, 2),
		batch(3, 7, "9", 5, 2),
		batch(4, 7, "B0", 0, 1),
		batch(5, 8, "B1", 5, 0),
	}
	got := Batches(7, records)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"9", "10", "B3"}, []string{got[0].BatchID, got[1].BatchID, got[2].BatchID})
}

func TestBatchesWithoutExpiryGoLast(t *testing.T) {
	undated := batch(1, 7, "1", 5, 0)
	undated.ExpiryDate = time.Time{}
	records := []models.InventoryRecord{
		undated,
		batch(2, 7, "2", 5, 30),
		batch(3, 7, "3", 5, 1),
	}
	got := Batches(7, records)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{got[0].BatchID, got[1].BatchID, got[2].BatchID})

	deductions, err := PlanProduct(7, 8, records)
	require.NoError(t, err)
	require.Len(t, deductions, 2)
	assert.Equal(t, "3", deductions[0].BatchID)
	assert.Equal(t, "2", deductions[1].BatchID)
}

func TestPlanProductSpansBatches(t *testing.T) {
	records := []models.InventoryRecord{
		batch(1, 7, "late", 10, 9),
		batch(2, 7, "early", 4, 1),
		batch(3, 7, "mid", 6, 5),
	}
	deductions, err := PlanProduct(7, 12, records)
	require.NoError(t, err)
	require.Len(t, deductions, 3)

	assert.Equal(t, "early", deductions[0].BatchID)
	assert.Equal(t, 4, deductions[0].Quantity)
	assert.Equal(t, 0, deductions[0].Remaining)
	assert.Equal(t, "mid", deductions[1].BatchID)
	assert.Equal(t, 6, deductions[1].Quantity)
	assert.Equal(t, "late", deductions[2].BatchID)
	assert.Equal(t, 2, deductions[2].Quantity)
	assert.Equal(t, 8, deductions[2].Remaining)
}

func TestPlanProductInsufficient(t *testing.T) {
	records := []models.InventoryRecord{batch(1, 7, "a", 3, 1), batch(2, 7, "b", 2, 2)}
	deductions, err := PlanProduct(7, 6, records)
	assert.Nil(t, deductions)

	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 1, insufficient.Shortfall())
}

func delivery(status models.DeliveryStatus, orders ...models.Order) models.Delivery {
	return models.Delivery{ID: 42, Status: status, Orders: orders}
}

func storeOrder(id int64, status models.OrderStatus, lines ...models.OrderLine) models.Order {
	return models.Order{ID: id, Status: status, Lines: lines}
}

func TestAggregateDemandSkipsDispatchedOrders(t *testing.T) {
	d := delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderWaiting, models.OrderLine{ProductID: 7, ProductName: "Bread", Quantity: 3}),
		storeOrder(2, models.OrderWaiting, models.OrderLine{ProductID: 7, Quantity: 2}, models.OrderLine{ProductID: 5, Quantity: 1}),
		storeOrder(3, models.OrderProcessing, models.OrderLine{ProductID: 7, Quantity: 50}),
	)
	assert.Equal(t, map[int64]int{7: 5, 5: 1}, AggregateDemand(d))

	lines := DemandLines(d)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(5), lines[0].ProductID)
	assert.Equal(t, DemandLine{ProductID: 7, ProductName: "Bread", Quantity: 5}, lines[1])
}

func TestPreviewReportsShortfallWithoutStopping(t *testing.T) {
	d := delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderWaiting, models.OrderLine{ProductID: 1, Quantity: 10}, models.OrderLine{ProductID: 2, Quantity: 2}),
	)
	records := []models.InventoryRecord{batch(1, 1, "a", 4, 1), batch(2, 2, "b", 5, 1)}

	plans := Preview(d, records)
	require.Len(t, plans, 2)
	assert.Equal(t, 6, plans[0].Shortfall)
	assert.Empty(t, plans[0].Deductions)
	assert.Equal(t, 0, plans[1].Shortfall)
	assert.Equal(t, 5, plans[1].Available)
	assert.Len(t, plans[1].Deductions, 1)
}

type fakeLedger struct {
	created []models.InventoryTransaction
	failAt  int
}

func (f *fakeLedger) Create(_ context.Context, tx models.InventoryTransaction) (*models.InventoryTransaction, error) {
	if f.failAt > 0 && len(f.created)+1 == f.failAt {
		return nil, apperr.New(apperr.KindNetwork, apperr.MsgCannotReachServer)
	}
	tx.ID = int64(len(f.created) + 1)
	f.created = append(f.created, tx)
	return &tx, nil
}

type fakeOrders struct {
	updated map[int64]models.OrderStatus
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID int64, status models.OrderStatus) error {
	if f.updated == nil {
		f.updated = make(map[int64]models.OrderStatus)
	}
	f.updated[orderID] = status
	return nil
}

func TestDispatchDeductsAndAdvancesOrders(t *testing.T) {
	ledger := &fakeLedger{}
	orders := &fakeOrders{}
	d := delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderWaiting, models.OrderLine{ProductID: 1, Quantity: 6}),
		storeOrder(2, models.OrderWaiting, models.OrderLine{ProductID: 2, Quantity: 1}),
		storeOrder(3, models.OrderProcessing, models.OrderLine{ProductID: 1, Quantity: 99}),
	)
	records := []models.InventoryRecord{
		batch(10, 1, "late", 10, 5),
		batch(11, 1, "early", 4, 1),
		batch(12, 2, "only", 3, 3),
	}

	res, err := NewDispatcher(ledger, orders).WithClock(func() time.Time { return today }).Dispatch(context.Background(), d, records)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	require.Len(t, res.Issued, 3)

	assert.Equal(t, int64(11), res.Issued[0].InventoryID)
	assert.Equal(t, 4, res.Issued[0].Quantity)
	assert.Equal(t, int64(10), res.Issued[1].InventoryID)
	assert.Equal(t, 2, res.Issued[1].Quantity)
	for _, tx := range res.Issued {
		assert.Equal(t, models.TransactionExport, tx.Type)
		assert.Equal(t, "Delivery #42", tx.Note)
		assert.Equal(t, models.ReasonDispatch, tx.Reason)
		assert.Equal(t, today, tx.CreatedAt)
	}

	assert.Equal(t, []int64{1, 2}, res.Dispatched)
	assert.Equal(t, map[int64]models.OrderStatus{1: models.OrderProcessing, 2: models.OrderProcessing}, orders.updated)
}

func TestDispatchShortfallKeepsEarlierProducts(t *testing.T) {
	ledger := &fakeLedger{}
	orders := &fakeOrders{}
	d := delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderWaiting,
			models.OrderLine{ProductID: 1, Quantity: 2},
			models.OrderLine{ProductID: 2, ProductName: "Butter", Quantity: 9},
		),
	)
	records := []models.InventoryRecord{batch(10, 1, "a", 5, 1), batch(12, 2, "b", 3, 3)}

	res, err := NewDispatcher(ledger, orders).Dispatch(context.Background(), d, records)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "Not enough stock for Butter: need 9, have 3 (short by 6).")
	assert.Contains(t, apperr.MessageOf(err), "1 export transaction(s) already recorded")

	assert.False(t, res.Complete)
	assert.Len(t, res.Issued, 1)
	assert.Len(t, ledger.created, 1)
	assert.Empty(t, orders.updated)
}

func TestDispatchTransportFailureMidway(t *testing.T) {
	ledger := &fakeLedger{failAt: 2}
	d := delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderWaiting, models.OrderLine{ProductID: 1, Quantity: 8}),
	)
	records := []models.InventoryRecord{batch(10, 1, "a", 5, 1), batch(11, 1, "b", 5, 2)}

	res, err := NewDispatcher(ledger, &fakeOrders{}).Dispatch(context.Background(), d, records)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
	assert.Len(t, res.Issued, 1)
}

func TestDispatchRejectsDoneOrEmptyDeliveries(t *testing.T) {
	dispatcher := NewDispatcher(&fakeLedger{}, &fakeOrders{})

	_, err := dispatcher.Dispatch(context.Background(), delivery(models.DeliveryDone), nil)
	assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))

	_, err = dispatcher.Dispatch(context.Background(), delivery(models.DeliveryWaiting,
		storeOrder(1, models.OrderProcessing, models.OrderLine{ProductID: 1, Quantity: 1}),
	), nil)
	assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "no orders awaiting dispatch")
}
