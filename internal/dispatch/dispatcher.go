package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// TransactionRecorder appends one ledger entry.
type TransactionRecorder interface {
	Create(ctx context.Context, tx models.InventoryTransaction) (*models.InventoryTransaction, error)
}

// OrderStatusUpdater moves an order along its state machine.
type OrderStatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

// Result reports what a dispatch run did, including on failure.
type Result struct {
	DeliveryID int64                         `json:"delivery_id"`
	Demand     []DemandLine                  `json:"demand"`
	Issued     []models.InventoryTransaction `json:"issued"`
	Dispatched []int64                       `json:"dispatched_orders"`
	Complete   bool                          `json:"complete"`
}

// Dispatcher executes FEFO deductions against the remote ledger. Transactions
// are issued one at a time in a fixed order; there is no rollback, so a
// failure part-way leaves earlier products deducted.
type Dispatcher struct {
	transactions TransactionRecorder
	orders       OrderStatusUpdater
	now          func() time.Time
}

func NewDispatcher(transactions TransactionRecorder, orders OrderStatusUpdater) *Dispatcher {
	return &Dispatcher{transactions: transactions, orders: orders, now: time.Now}
}

// WithClock replaces the timestamp source, for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Note is the ledger note written for every export of a delivery.
func Note(deliveryID int64) string {
	return fmt.Sprintf("Delivery #%d", deliveryID)
}

// Dispatch deducts the delivery's demand from records, product by product in
// ascending id. A product whose batches cannot cover its demand aborts the
// run before any of its batches is touched; products already processed keep
// their transactions. On success every order awaiting dispatch is moved to
// Processing.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery models.Delivery, records []models.InventoryRecord) (*Result, error) {
	res := &Result{DeliveryID: delivery.ID}

	if delivery.Status == models.DeliveryDone {
		return res, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Delivery #%d is already completed.", delivery.ID))
	}

	res.Demand = DemandLines(delivery)
	if len(res.Demand) == 0 {
		return res, apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Delivery #%d has no orders awaiting dispatch.", delivery.ID))
	}

	for _, line := range res.Demand {
		deductions, err := PlanProduct(line.ProductID, line.Quantity, records)
		if err != nil {
			var insufficient *InsufficientStockError
			if errors.As(err, &insufficient) {
				insufficient.ProductName = line.ProductName
			}
			return res, d.abort(res, err)
		}

		for _, ded := range deductions {
			tx := models.InventoryTransaction{
				InventoryID: ded.InventoryID,
				ProductID:   ded.ProductID,
				ProductName: line.ProductName,
				BatchID:     ded.BatchID,
				Type:        models.TransactionExport,
				Quantity:    ded.Quantity,
				Note:        Note(delivery.ID),
				Reason:      models.ReasonDispatch,
				CreatedAt:   d.now(),
			}
			created, err := d.transactions.Create(ctx, tx)
			if err != nil {
				return res, d.abort(res, err)
			}
			if created == nil {
				created = &tx
			}
			res.Issued = append(res.Issued, *created)
		}
	}

	for _, o := range delivery.Orders {
		if !AwaitingDispatch(o) {
			continue
		}
		if err := d.orders.UpdateStatus(ctx, o.ID, models.OrderProcessing); err != nil {
			utils.LogError(err, fmt.Sprintf("Dispatch: stock deducted but order #%d could not be marked processing", o.ID))
			return res, d.abort(res, err)
		}
		res.Dispatched = append(res.Dispatched, o.ID)
	}

	res.Complete = true
	utils.LogInfo("Delivery dispatched", map[string]interface{}{
		"delivery_id":  delivery.ID,
		"transactions": len(res.Issued),
		"orders":       len(res.Dispatched),
	})
	return res, nil
}

// abort converts err into the operator-facing error, stating when earlier
// transactions were kept and need manual reconciliation.
func (d *Dispatcher) abort(res *Result, err error) error {
	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)

	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		kind = apperr.KindBusinessRule
		name := insufficient.ProductName
		if name == "" {
			name = fmt.Sprintf("product #%d", insufficient.ProductID)
		}
		msg = fmt.Sprintf("Not enough stock for %s: need %d, have %d (short by %d).",
			name, insufficient.Needed, insufficient.Available, insufficient.Shortfall())
	}

	if len(res.Issued) > 0 {
		msg += fmt.Sprintf(" %d export transaction(s) already recorded for delivery #%d were kept and must be reconciled manually.",
			len(res.Issued), res.DeliveryID)
		utils.LogWarn(err, "Dispatch aborted after partial deduction", map[string]interface{}{
			"delivery_id": res.DeliveryID,
			"issued":      len(res.Issued),
		})
	}
	return &apperr.Error{Kind: kind, Message: msg, Err: err}
}
