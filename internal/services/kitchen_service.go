package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/config"
	"kitchen_control/internal/dispatch"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/stock"
	"kitchen_control/pkg/utils"
)

// ProductStock is the physical stock of one product.
type ProductStock struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Unit        string `json:"unit,omitempty"`
	Quantity    int    `json:"quantity"`
}

// InventoryRow is one batch with its expiry classification.
type InventoryRow struct {
	models.InventoryRecord
	State    stock.ExpiryState `json:"expiry_state"`
	DaysLeft int               `json:"days_left"`
}

// KitchenDashboard is the kitchen manager landing view.
type KitchenDashboard struct {
	TotalStock        int            `json:"total_stock"`
	LowStock          []ProductStock `json:"low_stock"`
	Expiring          []InventoryRow `json:"expiring"`
	PendingDeliveries int            `json:"pending_deliveries"`
}

// OutboundDelivery is a delivery with a dry-run of its FEFO deductions.
type OutboundDelivery struct {
	models.Delivery
	Plan  []dispatch.ProductPlan `json:"plan"`
	Ready bool                   `json:"ready"`
}

// ProcurementRequest records goods received from a supplier.
type ProcurementRequest struct {
	ProductID  int64     `json:"product_id" binding:"required,gt=0"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
	BatchID    string    `json:"batch"`
	ExpiryDate time.Time `json:"expiry_date" binding:"required"`
	Note       string    `json:"note"`
	// Confirm acknowledges a near-expiry warning.
	Confirm bool `json:"confirm"`
}

// ProcurementResult carries either the recorded import or a warning that
// must be confirmed before anything is recorded.
type ProcurementResult struct {
	Transaction       *models.InventoryTransaction `json:"transaction,omitempty"`
	NeedsConfirmation bool                         `json:"needs_confirmation"`
	Warning           string                       `json:"warning,omitempty"`
}

// StockCardView is the ledger of one product.
type StockCardView struct {
	ProductStock
	Batches      []InventoryRow                `json:"batches"`
	Transactions []models.InventoryTransaction `json:"transactions"`
}

// KitchenService defines the kitchen manager views and actions.
type KitchenService interface {
	Dashboard(ctx context.Context) (*KitchenDashboard, error)
	Inventory(ctx context.Context) ([]InventoryRow, error)
	Outbound(ctx context.Context) ([]OutboundDelivery, error)
	Dispatch(ctx context.Context, deliveryID int64) (*dispatch.Result, error)
	Procure(ctx context.Context, req ProcurementRequest) (*ProcurementResult, error)
	Waste(ctx context.Context) ([]InventoryRow, error)
	Dispose(ctx context.Context, inventoryID int64) (*models.InventoryTransaction, error)
	StockCard(ctx context.Context, productID int64) (*StockCardView, error)
	Plans(ctx context.Context) ([]models.ProductionPlan, error)
}

type kitchenService struct {
	products     repositories.ProductRepository
	inventory    repositories.InventoryRepository
	transactions repositories.TransactionRepository
	orders       repositories.OrderRepository
	deliveries   repositories.DeliveryRepository
	plans        repositories.PlanRepository
	dispatcher   *dispatch.Dispatcher
	thresholds   config.InventoryConfig
	now          func() time.Time
}

// NewKitchenService creates a new instance of KitchenService.
func NewKitchenService(
	products repositories.ProductRepository,
	inventory repositories.InventoryRepository,
	transactions repositories.TransactionRepository,
	orders repositories.OrderRepository,
	deliveries repositories.DeliveryRepository,
	plans repositories.PlanRepository,
	thresholds config.InventoryConfig,
) KitchenService {
	return &kitchenService{
		products:     products,
		inventory:    inventory,
		transactions: transactions,
		orders:       orders,
		deliveries:   deliveries,
		plans:        plans,
		dispatcher:   dispatch.NewDispatcher(transactions, orders),
		thresholds:   thresholds,
		now:          time.Now,
	}
}

func (s *kitchenService) rows(records []models.InventoryRecord) []InventoryRow {
	now := s.now()
	out := make([]InventoryRow, 0, len(records))
	for _, r := range records {
		out = append(out, InventoryRow{
			InventoryRecord: r,
			State:           stock.Classify(r.ExpiryDate, now, s.thresholds.ExpiryWarningDays),
			DaysLeft:        stock.DaysUntil(r.ExpiryDate, now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return stock.ExpiresSooner(out[i].ExpiryDate, out[j].ExpiryDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// stockByProduct sums physical stock for every catalog product, including
// products without any batch.
func stockByProduct(products []models.Product, records []models.InventoryRecord) []ProductStock {
	out := make([]ProductStock, 0, len(products))
	known := make(map[int64]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
		out = append(out, ProductStock{
			ProductID:   p.ID,
			ProductName: p.Name,
			Unit:        p.Unit,
			Quantity:    stock.PhysicalStock(p.ID, records),
		})
	}
	// Batches of products missing from the catalog response still count.
	extra := make(map[int64]*ProductStock)
	for _, r := range records {
		if _, ok := known[r.ProductID]; ok {
			continue
		}
		ps, ok := extra[r.ProductID]
		if !ok {
			ps = &ProductStock{ProductID: r.ProductID, ProductName: r.ProductName}
			extra[r.ProductID] = ps
		}
		if r.Quantity > 0 {
			ps.Quantity += r.Quantity
		}
	}
	for _, ps := range extra {
		out = append(out, *ps)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func lowStock(levels []ProductStock, threshold int) []ProductStock {
	out := make([]ProductStock, 0)
	for _, l := range levels {
		if l.Quantity < threshold {
			out = append(out, l)
		}
	}
	return out
}

// awaitingDispatch reports whether any order of d still needs stock.
func awaitingDispatch(d models.Delivery) bool {
	for _, o := range d.Orders {
		if dispatch.AwaitingDispatch(o) {
			return true
		}
	}
	return false
}

func (s *kitchenService) Dashboard(ctx context.Context) (*KitchenDashboard, error) {
	var products []models.Product
	var records []models.InventoryRecord
	var deliveries []models.Delivery
	reads := newViewReads(ctx, "kitchen.dashboard")
	load(reads, "products", &products, s.products.List)
	load(reads, "inventories", &records, s.inventory.List)
	load(reads, "deliveries", &deliveries, s.deliveries.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	levels := stockByProduct(products, records)
	view := &KitchenDashboard{
		LowStock: lowStock(levels, s.thresholds.LowStockKitchen),
		Expiring: s.rows(stock.Expiring(records, s.now(), s.thresholds.ExpiryWarningDays)),
	}
	for _, l := range levels {
		view.TotalStock += l.Quantity
	}
	for _, d := range deliveries {
		if d.Status != models.DeliveryDone && awaitingDispatch(d) {
			view.PendingDeliveries++
		}
	}
	return view, nil
}

func (s *kitchenService) Inventory(ctx context.Context) ([]InventoryRow, error) {
	var records []models.InventoryRecord
	reads := newViewReads(ctx, "kitchen.inventory")
	load(reads, "inventories", &records, s.inventory.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}
	return s.rows(records), nil
}

// Outbound lists deliveries with orders still to leave the kitchen, each with
// a preview of the batches dispatch would consume.
func (s *kitchenService) Outbound(ctx context.Context) ([]OutboundDelivery, error) {
	var records []models.InventoryRecord
	var deliveries []models.Delivery
	reads := newViewReads(ctx, "kitchen.outbound")
	load(reads, "inventories", &records, s.inventory.List)
	load(reads, "deliveries", &deliveries, s.deliveries.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	out := make([]OutboundDelivery, 0)
	for _, d := range deliveries {
		if d.Status == models.DeliveryDone || !awaitingDispatch(d) {
			continue
		}
		plan := dispatch.Preview(d, records)
		ready := true
		for _, p := range plan {
			if p.Shortfall > 0 {
				ready = false
				break
			}
		}
		out = append(out, OutboundDelivery{Delivery: d, Plan: plan, Ready: ready})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Dispatch runs FEFO deduction for one delivery against a fresh inventory
// read. It runs detached from the request context: once the first export is
// issued, a client disconnect must not stop the run half-way.
func (s *kitchenService) Dispatch(ctx context.Context, deliveryID int64) (*dispatch.Result, error) {
	deliveries, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := findDelivery(deliveries, deliveryID)
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("Delivery #%d was not found.", deliveryID))
	}
	records, err := s.inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.Dispatch(context.WithoutCancel(ctx), d, records)
}

// Procure records a supplier delivery as an import transaction. Goods that
// expire within the warning window are only recorded once confirmed.
func (s *kitchenService) Procure(ctx context.Context, req ProcurementRequest) (*ProcurementResult, error) {
	if req.ProductID <= 0 {
		return nil, apperr.Validation("product_id", "Select a product.")
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity", "Quantity must be greater than zero.")
	}
	if req.ExpiryDate.IsZero() {
		return nil, apperr.Validation("expiry_date", "Enter the expiry date.")
	}
	now := s.now()
	days := stock.DaysUntil(req.ExpiryDate, now)
	if days < 0 {
		return nil, apperr.Validation("expiry_date", "These goods are already expired.")
	}
	if days < s.thresholds.ExpiryWarningDays && !req.Confirm {
		return &ProcurementResult{
			NeedsConfirmation: true,
			Warning:           fmt.Sprintf("These goods expire in %d day(s). Confirm to record them anyway.", days),
		}, nil
	}

	batch := strings.TrimSpace(req.BatchID)
	if batch == "" {
		batch = fmt.Sprintf("B%s-%d", now.Format("20060102"), req.ProductID)
	}
	expiry := req.ExpiryDate
	created, err := s.transactions.Create(ctx, models.InventoryTransaction{
		ProductID:  req.ProductID,
		BatchID:    batch,
		Type:       models.TransactionImport,
		Quantity:   req.Quantity,
		Note:       utils.FirstNonEmpty(strings.TrimSpace(req.Note), "Supplier delivery"),
		Reason:     models.ReasonPurchase,
		ExpiryDate: &expiry,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Procurement recorded", map[string]interface{}{"product_id": req.ProductID, "quantity": req.Quantity, "batch": batch})
	return &ProcurementResult{Transaction: created}, nil
}

// Waste lists expired batches that still hold stock.
func (s *kitchenService) Waste(ctx context.Context) ([]InventoryRow, error) {
	var records []models.InventoryRecord
	reads := newViewReads(ctx, "kitchen.waste")
	load(reads, "inventories", &records, s.inventory.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}
	return s.rows(stock.Expired(records, s.now())), nil
}

// Dispose writes off the whole remaining quantity of an expired batch.
func (s *kitchenService) Dispose(ctx context.Context, inventoryID int64) (*models.InventoryTransaction, error) {
	rec, err := s.inventory.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if rec.Quantity <= 0 {
		return nil, apperr.New(apperr.KindBusinessRule, "This batch is already empty.")
	}
	if stock.Classify(rec.ExpiryDate, s.now(), 0) != stock.ExpiryExpired {
		return nil, apperr.New(apperr.KindBusinessRule, "Only expired batches can be disposed of.")
	}
	created, err := s.transactions.Create(ctx, models.InventoryTransaction{
		InventoryID: rec.ID,
		ProductID:   rec.ProductID,
		ProductName: rec.ProductName,
		BatchID:     rec.BatchID,
		Type:        models.TransactionExport,
		Quantity:    rec.Quantity,
		Note:        "Expired stock disposal",
		Reason:      models.ReasonWasteExpired,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Expired batch disposed", map[string]interface{}{"inventory_id": rec.ID, "batch": rec.BatchID, "quantity": rec.Quantity})
	return created, nil
}

// StockCard shows a product's batches and its ledger, newest entry first.
func (s *kitchenService) StockCard(ctx context.Context, productID int64) (*StockCardView, error) {
	var records []models.InventoryRecord
	var txs []models.InventoryTransaction
	var products []models.Product
	reads := newViewReads(ctx, "kitchen.stock_card")
	load(reads, "inventories", &records, s.inventory.List)
	load(reads, "transactions", &txs, func(ctx context.Context) ([]models.InventoryTransaction, error) {
		return s.transactions.ListByProduct(ctx, productID)
	})
	load(reads, "products", &products, s.products.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	view := &StockCardView{
		ProductStock: ProductStock{ProductID: productID, Quantity: stock.PhysicalStock(productID, records)},
		Transactions: txs,
	}
	if p, ok := findProduct(products, productID); ok {
		view.ProductName = p.Name
		view.Unit = p.Unit
	}
	batches := make([]models.InventoryRecord, 0)
	for _, r := range records {
		if r.ProductID == productID {
			batches = append(batches, r)
			if view.ProductName == "" {
				view.ProductName = r.ProductName
			}
		}
	}
	view.Batches = s.rows(batches)
	sort.SliceStable(view.Transactions, func(i, j int) bool {
		return view.Transactions[i].CreatedAt.After(view.Transactions[j].CreatedAt)
	})
	return view, nil
}

// Plans lists production plans. A backend without plan support yields a
// feature-pending error rather than an empty list.
func (s *kitchenService) Plans(ctx context.Context) ([]models.ProductionPlan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotImplemented) || apperr.Is(err, apperr.KindAuthentication) {
			return nil, err
		}
		utils.LogWarn(err, "View read failed, rendering empty", map[string]interface{}{"view": "kitchen.plans"})
		return []models.ProductionPlan{}, nil
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].StartDate.After(plans[j].StartDate) })
	return plans, nil
}
