package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/cart"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/session"
	"kitchen_control/internal/stock"
	"kitchen_control/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	errNoStore   = apperr.New(apperr.KindBusinessRule, "Your account is not linked to a store.")
	errEmptyCart = apperr.Validation("cart", "Your cart is empty.")
)

// RecordUpdater changes a session record against its latest stored state.
// *session.Manager implements it.
type RecordUpdater interface {
	Update(ctx context.Context, rec *session.Record, fn func(fresh *session.Record) error) error
}

// CatalogItem is one product card of the store catalog.
type CatalogItem struct {
	models.Product
	Available int `json:"available"`
	InCart    int `json:"in_cart"`
}

// CartView is the rendered cart with live availability per line.
type CartView struct {
	Lines      []CartLineView  `json:"lines"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartLineView is a cart line plus its current limit.
type CartLineView struct {
	cart.Line
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available int             `json:"available"`
	Exceeds   bool            `json:"exceeds"`
}

// CatalogView is the store staff landing view.
type CatalogView struct {
	Products []CatalogItem `json:"products"`
	Cart     CartView      `json:"cart"`
}

// CartItemRequest is the body of the add/set cart actions.
type CartItemRequest struct {
	ProductID int64 `json:"product_id" form:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

// CheckoutRequest is the body of the checkout action.
type CheckoutRequest struct {
	Comment string `json:"comment" form:"comment"`
}

// StoreService defines the store staff views and actions.
type StoreService interface {
	Catalog(ctx context.Context, rec *session.Record) (*CatalogView, error)
	Cart(ctx context.Context, rec *session.Record) (*CartView, error)
	AddToCart(ctx context.Context, rec *session.Record, req CartItemRequest) (*CartView, error)
	SetCartQuantity(ctx context.Context, rec *session.Record, req CartItemRequest) (*CartView, error)
	RemoveFromCart(ctx context.Context, rec *session.Record, productID int64) (*CartView, error)
	ClearCart(ctx context.Context, rec *session.Record) (*CartView, error)
	Checkout(ctx context.Context, rec *session.Record, req CheckoutRequest) (*models.Order, error)
	Orders(ctx context.Context, rec *session.Record) ([]models.Order, error)
	CancelOrder(ctx context.Context, rec *session.Record, orderID int64) error
	SubmitFeedback(ctx context.Context, rec *session.Record, orderID int64, payload models.FeedbackPayload) (*models.Feedback, error)
}

type storeService struct {
	products  repositories.ProductRepository
	inventory repositories.InventoryRepository
	orders    repositories.OrderRepository
	feedback  repositories.FeedbackRepository
	sessions  RecordUpdater
}

// NewStoreService creates a new instance of StoreService.
func NewStoreService(
	products repositories.ProductRepository,
	inventory repositories.InventoryRepository,
	orders repositories.OrderRepository,
	feedback repositories.FeedbackRepository,
	sessions RecordUpdater,
) StoreService {
	return &storeService{
		products:  products,
		inventory: inventory,
		orders:    orders,
		feedback:  feedback,
		sessions:  sessions,
	}
}

func storeOf(rec *session.Record) (int64, error) {
	if rec.Principal.StoreID == nil || *rec.Principal.StoreID == 0 {
		return 0, errNoStore
	}
	return *rec.Principal.StoreID, nil
}

func cartOf(rec *session.Record) *cart.Cart {
	if rec.Cart == nil {
		rec.Cart = cart.New()
	}
	return rec.Cart
}

// reservationOrders returns the orders that may hold stock. All stores'
// orders reserve; when the global list is unavailable the store's own orders
// are the best remaining estimate.
func reservationOrders(ctx context.Context, orders repositories.OrderRepository, storeID int64) ([]models.Order, error) {
	all, err := orders.List(ctx)
	if err == nil {
		return all, nil
	}
	if apperr.Is(err, apperr.KindAuthentication) || storeID == 0 {
		return nil, err
	}
	utils.LogWarn(err, "Global order list unavailable, reserving from store orders only", map[string]interface{}{"store_id": storeID})
	return orders.ListByStore(ctx, storeID)
}

type stockInputs struct {
	products []models.Product
	records  []models.InventoryRecord
	orders   []models.Order
}

// loadStock reads the ATP inputs for a view, collapsing failures to empty.
func (s *storeService) loadStock(ctx context.Context, rec *session.Record, view string) (*stockInputs, error) {
	storeID, _ := storeOf(rec)
	in := &stockInputs{}
	reads := newViewReads(ctx, view)
	load(reads, "products", &in.products, s.products.List)
	load(reads, "inventories", &in.records, s.inventory.List)
	load(reads, "orders", &in.orders, func(ctx context.Context) ([]models.Order, error) {
		return reservationOrders(ctx, s.orders, storeID)
	})
	if err := reads.wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// loadStockStrict reads the ATP inputs and fails on any error; used where an
// empty read would wrongly admit or reject a mutation.
func (s *storeService) loadStockStrict(ctx context.Context, rec *session.Record) (*stockInputs, error) {
	storeID, _ := storeOf(rec)
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := reservationOrders(ctx, s.orders, storeID)
	if err != nil {
		return nil, err
	}
	return &stockInputs{products: products, records: records, orders: orders}, nil
}

func findProduct(products []models.Product, id int64) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func buildCartView(c *cart.Cart, snap *stock.Snapshot) *CartView {
	view := &CartView{Lines: []CartLineView{}, TotalPrice: decimal.Zero}
	if c == nil {
		return view
	}
	for _, l := range c.Lines {
		available := snap.Available(l.ProductID)
		view.Lines = append(view.Lines, CartLineView{
			Line:      l,
			Subtotal:  l.Subtotal(),
			Available: available,
			Exceeds:   l.Quantity > available,
		})
	}
	view.TotalItems = c.TotalItems()
	view.TotalPrice = c.TotalPrice()
	return view
}

func (s *storeService) Catalog(ctx context.Context, rec *session.Record) (*CatalogView, error) {
	in, err := s.loadStock(ctx, rec, "store.catalog")
	if err != nil {
		return nil, err
	}
	snap := stock.NewSnapshot(in.records, in.orders)
	c := cartOf(rec)

	items := make([]CatalogItem, 0, len(in.products))
	for _, p := range in.products {
		inCart := 0
		if l, ok := c.Line(p.ID); ok {
			inCart = l.Quantity
		}
		items = append(items, CatalogItem{Product: p, Available: snap.Available(p.ID), InCart: inCart})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &CatalogView{Products: items, Cart: *buildCartView(c, snap)}, nil
}

func (s *storeService) Cart(ctx context.Context, rec *session.Record) (*CartView, error) {
	in, err := s.loadStock(ctx, rec, "store.cart")
	if err != nil {
		return nil, err
	}
	return buildCartView(cartOf(rec), stock.NewSnapshot(in.records, in.orders)), nil
}

// mutate applies fn to the latest stored cart against fresh availability and
// persists it when fn succeeded. A rejected mutation leaves the stored cart
// untouched.
func (s *storeService) mutate(ctx context.Context, rec *session.Record, fn func(c *cart.Cart, in *stockInputs, snap *stock.Snapshot) error) (*CartView, error) {
	in, err := s.loadStockStrict(ctx, rec)
	if err != nil {
		return nil, err
	}
	snap := stock.NewSnapshot(in.records, in.orders)

	var working *cart.Cart
	err = s.sessions.Update(ctx, rec, func(fresh *session.Record) error {
		working = &cart.Cart{Lines: append([]cart.Line(nil), cartOf(fresh).Lines...)}
		if err := fn(working, in, snap); err != nil {
			return err
		}
		fresh.Cart = working
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildCartView(working, snap), nil
}

func (s *storeService) AddToCart(ctx context.Context, rec *session.Record, req CartItemRequest) (*CartView, error) {
	return s.mutate(ctx, rec, func(c *cart.Cart, in *stockInputs, snap *stock.Snapshot) error {
		product, ok := findProduct(in.products, req.ProductID)
		if !ok {
			return apperr.Validation("product_id", "This product is no longer in the catalog.")
		}
		return c.AddItem(product, req.Quantity, snap)
	})
}

func (s *storeService) SetCartQuantity(ctx context.Context, rec *session.Record, req CartItemRequest) (*CartView, error) {
	return s.mutate(ctx, rec, func(c *cart.Cart, in *stockInputs, snap *stock.Snapshot) error {
		if _, ok := c.Line(req.ProductID); ok {
			return c.UpdateQuantity(req.ProductID, req.Quantity, snap)
		}
		product, ok := findProduct(in.products, req.ProductID)
		if !ok {
			return apperr.Validation("product_id", "This product is no longer in the catalog.")
		}
		return c.SetQuantity(product, req.Quantity, snap)
	})
}

func (s *storeService) RemoveFromCart(ctx context.Context, rec *session.Record, productID int64) (*CartView, error) {
	err := s.sessions.Update(ctx, rec, func(fresh *session.Record) error {
		c := cartOf(fresh)
		c.Lines = append([]cart.Line(nil), c.Lines...)
		c.RemoveItem(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Cart(ctx, rec)
}

func (s *storeService) ClearCart(ctx context.Context, rec *session.Record) (*CartView, error) {
	err := s.sessions.Update(ctx, rec, func(fresh *session.Record) error {
		fresh.Cart = cart.New()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: []CartLineView{}, TotalPrice: decimal.Zero}, nil
}

// Checkout revalidates the latest stored cart against fresh availability,
// submits it as one order and clears it only once the order was accepted.
// The session stays locked meanwhile, so no cart change can slip in between
// the submitted lines and the clear.
func (s *storeService) Checkout(ctx context.Context, rec *session.Record, req CheckoutRequest) (*models.Order, error) {
	storeID, err := storeOf(rec)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.sessions.Update(ctx, rec, func(fresh *session.Record) error {
		c := cartOf(fresh)
		if c.IsEmpty() {
			return errEmptyCart
		}
		in, err := s.loadStockStrict(ctx, fresh)
		if err != nil {
			return err
		}
		if err := c.Validate(stock.NewSnapshot(in.records, in.orders)); err != nil {
			return err
		}
		order, err = s.orders.Create(ctx, models.OrderCreate{
			StoreID: storeID,
			Comment: strings.TrimSpace(req.Comment),
			Lines:   c.OrderLines(),
		})
		if err != nil {
			return err
		}
		fresh.Cart = cart.New()
		return nil
	})
	if err != nil {
		if order == nil {
			return nil, err
		}
		// The order exists; a stale cart is the lesser problem.
		utils.LogError(err, fmt.Sprintf("Checkout: order #%d placed but cart could not be cleared", order.ID))
	}
	utils.LogInfo("Order placed", map[string]interface{}{"order_id": order.ID, "store_id": storeID, "lines": len(order.Lines)})
	return order, nil
}

// Orders lists the store's orders newest first, with feedback attached.
func (s *storeService) Orders(ctx context.Context, rec *session.Record) ([]models.Order, error) {
	storeID, err := storeOf(rec)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	var feedback []models.Feedback
	reads := newViewReads(ctx, "store.orders")
	load(reads, "orders", &orders, func(ctx context.Context) ([]models.Order, error) {
		return s.orders.ListByStore(ctx, storeID)
	})
	load(reads, "feedback", &feedback, s.feedback.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	byOrder := make(map[int64]models.Feedback, len(feedback))
	for _, f := range feedback {
		byOrder[f.OrderID] = f
	}
	for i := range orders {
		if f, ok := byOrder[orders[i].ID]; ok && orders[i].Feedback == nil {
			f := f
			orders[i].Feedback = &f
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
}

// storeOrder fetches one of the store's own orders.
func (s *storeService) storeOrder(ctx context.Context, rec *session.Record, orderID int64) (*models.Order, error) {
	storeID, err := storeOf(rec)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("Order #%d was not found.", orderID))
}

// CancelOrder cancels an order that has not been picked up by the kitchen.
func (s *storeService) CancelOrder(ctx context.Context, rec *session.Record, orderID int64) error {
	order, err := s.storeOrder(ctx, rec, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(models.OrderCancelled) {
		return apperr.New(apperr.KindBusinessRule, fmt.Sprintf("Order #%d can no longer be cancelled.", orderID))
	}
	if err := s.orders.UpdateStatus(ctx, orderID, models.OrderCancelled); err != nil {
		return err
	}
	utils.LogInfo("Order cancelled", map[string]interface{}{"order_id": orderID})
	return nil
}

// SubmitFeedback rates a delivered order once.
func (s *storeService) SubmitFeedback(ctx context.Context, rec *session.Record, orderID int64, payload models.FeedbackPayload) (*models.Feedback, error) {
	if payload.Rating < 1 || payload.Rating > 5 {
		return nil, apperr.Validation("rating", "Rating must be between 1 and 5.")
	}
	order, err := s.storeOrder(ctx, rec, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderDone {
		return nil, apperr.New(apperr.KindBusinessRule, "Feedback can only be left on completed orders.")
	}
	if order.Feedback == nil {
		if existing, err := s.feedback.List(ctx); err == nil {
			for _, f := range existing {
				if f.OrderID == orderID {
					order.Feedback = &f
					break
				}
			}
		}
	}
	if order.Feedback != nil {
		return nil, apperr.New(apperr.KindConflict, "Feedback was already submitted for this order.")
	}
	payload.Comment = strings.TrimSpace(payload.Comment)
	return s.feedback.Create(ctx, orderID, payload)
}
