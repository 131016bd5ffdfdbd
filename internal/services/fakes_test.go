package services

import (
	"context"
	"sync"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/cart"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/session"
)

var (
	errOffline = apperr.New(apperr.KindNetwork, apperr.MsgCannotReachServer)
	errExpired = apperr.New(apperr.KindAuthentication, apperr.MsgSessionExpired)
	errPending = apperr.New(apperr.KindNotImplemented, apperr.MsgFeaturePending)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func id64(v int64) *int64 { return &v }

type fakeProducts struct {
	items []models.Product
	err   error
}

func (f *fakeProducts) List(ctx context.Context) ([]models.Product, error) {
	return f.items, f.err
}

func (f *fakeProducts) ListByType(ctx context.Context, t models.ProductType) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.items {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeProducts) Create(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	p := models.Product{ID: int64(len(f.items) + 1), Name: payload.Name, Type: payload.Type, Price: payload.Price}
	f.items = append(f.items, p)
	return &p, f.err
}

func (f *fakeProducts) Update(ctx context.Context, id int64, payload models.ProductPayload) (*models.Product, error) {
	return &models.Product{ID: id, Name: payload.Name, Type: payload.Type}, f.err
}

type fakeInventory struct {
	records []models.InventoryRecord
	err     error
}

func (f *fakeInventory) List(ctx context.Context) ([]models.InventoryRecord, error) {
	return f.records, f.err
}

func (f *fakeInventory) GetByID(ctx context.Context, id int64) (*models.InventoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			r := f.records[i]
			return &r, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "Inventory not found.")
}

type fakeTransactions struct {
	mu      sync.Mutex
	created []models.InventoryTransaction
	history []models.InventoryTransaction
	err     error
}

func (f *fakeTransactions) List(ctx context.Context) ([]models.InventoryTransaction, error) {
	return f.history, f.err
}

func (f *fakeTransactions) ListByProduct(ctx context.Context, productID int64) ([]models.InventoryTransaction, error) {
	var out []models.InventoryTransaction
	for _, tx := range f.history {
		if tx.ProductID == productID {
			out = append(out, tx)
		}
	}
	return out, f.err
}

func (f *fakeTransactions) ListByBatch(ctx context.Context, batchID string) ([]models.InventoryTransaction, error) {
	return nil, f.err
}

func (f *fakeTransactions) Create(ctx context.Context, tx models.InventoryTransaction) (*models.InventoryTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	tx.ID = int64(len(f.created) + 100)
	f.created = append(f.created, tx)
	return &tx, nil
}

type fakeOrders struct {
	mu        sync.Mutex
	orders    []models.Order
	listErr   error
	storeErr  error
	createErr error
	updateErr error
	submitted []models.OrderCreate
	updates   map[int64]models.OrderStatus
}

func (f *fakeOrders) List(ctx context.Context) ([]models.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orders, nil
}

func (f *fakeOrders) ListByStore(ctx context.Context, storeID int64) ([]models.Order, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	var out []models.Order
	for _, o := range f.orders {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Create(ctx context.Context, order models.OrderCreate) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.submitted = append(f.submitted, order)
	return &models.Order{ID: int64(500 + len(f.submitted)), StoreID: order.StoreID, Status: models.OrderWaiting, Lines: order.Lines}, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = make(map[int64]models.OrderStatus)
	}
	f.updates[orderID] = status
	return nil
}

type fakeDeliveries struct {
	deliveries []models.Delivery
	err        error
	created    []models.DeliveryCreate
	assigned   map[int64]int64
}

func (f *fakeDeliveries) List(ctx context.Context) ([]models.Delivery, error) {
	return f.deliveries, f.err
}

func (f *fakeDeliveries) ListByShipper(ctx context.Context, shipperID int64) ([]models.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Delivery
	for _, d := range f.deliveries {
		if d.ShipperID != nil && *d.ShipperID == shipperID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeliveries) Create(ctx context.Context, d models.DeliveryCreate) (*models.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, d)
	return &models.Delivery{ID: int64(900 + len(f.created)), Date: d.DeliveryDate, ShipperID: id64(d.ShipperID), Status: models.DeliveryWaiting}, nil
}

func (f *fakeDeliveries) AssignShipper(ctx context.Context, deliveryID, shipperID int64) error {
	if f.assigned == nil {
		f.assigned = make(map[int64]int64)
	}
	f.assigned[deliveryID] = shipperID
	return f.err
}

type fakeFeedback struct {
	items   []models.Feedback
	err     error
	created []models.FeedbackPayload
}

func (f *fakeFeedback) List(ctx context.Context) ([]models.Feedback, error) {
	return f.items, f.err
}

func (f *fakeFeedback) Create(ctx context.Context, orderID int64, payload models.FeedbackPayload) (*models.Feedback, error) {
	f.created = append(f.created, payload)
	return &models.Feedback{ID: 1, OrderID: orderID, Rating: payload.Rating, Comment: payload.Comment}, nil
}

type fakeUsers struct {
	users   []models.User
	err     error
	deleted []int64
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "User not found.")
}

func (f *fakeUsers) Create(ctx context.Context, payload models.UserPayload) (*models.User, error) {
	u := models.User{ID: int64(len(f.users) + 1), Username: payload.Username, Role: payload.RoleID, StoreID: payload.StoreID}
	f.users = append(f.users, u)
	return &u, f.err
}

func (f *fakeUsers) Update(ctx context.Context, id int64, payload models.UserPayload) (*models.User, error) {
	return &models.User{ID: id, Username: payload.Username, Role: payload.RoleID}, f.err
}

func (f *fakeUsers) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeStores struct {
	stores []models.Store
	err    error
}

func (f *fakeStores) List(ctx context.Context) ([]models.Store, error) { return f.stores, f.err }

func (f *fakeStores) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	return &models.Store{ID: id}, f.err
}

func (f *fakeStores) Create(ctx context.Context, payload models.StorePayload) (*models.Store, error) {
	return &models.Store{ID: 1, Name: payload.Name}, f.err
}

func (f *fakeStores) Update(ctx context.Context, id int64, payload models.StorePayload) (*models.Store, error) {
	return &models.Store{ID: id, Name: payload.Name}, f.err
}

func (f *fakeStores) Delete(ctx context.Context, id int64) error { return f.err }

type fakeRecipes struct {
	recipes  []models.Recipe
	err      error
	searched string
}

func (f *fakeRecipes) List(ctx context.Context) ([]models.Recipe, error) { return f.recipes, f.err }

func (f *fakeRecipes) Search(ctx context.Context, keyword string) ([]models.Recipe, error) {
	f.searched = keyword
	return f.recipes, f.err
}

type fakePlans struct {
	plans    []models.ProductionPlan
	err      error
	planDate time.Time
}

func (f *fakePlans) List(ctx context.Context) ([]models.ProductionPlan, error) { return f.plans, f.err }

func (f *fakePlans) GetByID(ctx context.Context, id int64) (*models.ProductionPlan, error) {
	return &models.ProductionPlan{ID: id}, f.err
}

func (f *fakePlans) Create(ctx context.Context, payload models.ProductionPlanPayload, planDate time.Time) (*models.ProductionPlan, error) {
	f.planDate = planDate
	return &models.ProductionPlan{ID: 1, PlanDate: planDate, StartDate: payload.StartDate, EndDate: payload.EndDate, Details: payload.Details}, f.err
}

type fakeAuth struct {
	result *repositories.LoginResult
	err    error
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (*repositories.LoginResult, error) {
	return f.result, f.err
}

type fakeSaver struct {
	saves int
	err   error
}

// Update works on a copy of rec the way the session manager works on the
// stored copy: rec only changes when fn and the save both succeed.
func (f *fakeSaver) Update(ctx context.Context, rec *session.Record, fn func(fresh *session.Record) error) error {
	fresh := *rec
	if rec.Cart != nil {
		fresh.Cart = &cart.Cart{Lines: append([]cart.Line(nil), rec.Cart.Lines...)}
	}
	if err := fn(&fresh); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.saves++
	*rec = fresh
	return nil
}

func staffRecord(storeID int64) *session.Record {
	return &session.Record{
		ID:        "sess-staff",
		Principal: models.Principal{ID: 21, Username: "lan", Role: models.RoleStoreStaff, StoreID: id64(storeID)},
		Cart:      cart.New(),
	}
}

func shipperRecord(id int64) *session.Record {
	return &session.Record{ID: "sess-shipper", Principal: models.Principal{ID: id, Role: models.RoleShipper}}
}
