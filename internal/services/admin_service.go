package services

import (
	"context"
	"math"
	"strings"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/pkg/utils"
)

// AdminDashboard is the admin landing view.
type AdminDashboard struct {
	Users           int            `json:"users"`
	UsersByRole     map[string]int `json:"users_by_role"`
	Stores          int            `json:"stores"`
	Products        int            `json:"products"`
	Orders          int            `json:"orders"`
	CompletedOrders int            `json:"completed_orders"`
	// CompletionRate is the percentage of orders that reached Done, one decimal.
	CompletionRate float64 `json:"completion_rate"`
}

// AdminService defines the master data views and actions.
type AdminService interface {
	Dashboard(ctx context.Context) (*AdminDashboard, error)

	Products(ctx context.Context, productType string) ([]models.Product, error)
	CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload models.ProductPayload) (*models.Product, error)

	Users(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, payload models.UserPayload) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, payload models.UserPayload) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error

	Stores(ctx context.Context) ([]models.Store, error)
	CreateStore(ctx context.Context, payload models.StorePayload) (*models.Store, error)
	UpdateStore(ctx context.Context, id int64, payload models.StorePayload) (*models.Store, error)
	DeleteStore(ctx context.Context, id int64) error

	Recipes(ctx context.Context, keyword string) ([]models.Recipe, error)
	Plans(ctx context.Context) ([]models.ProductionPlan, error)
	CreatePlan(ctx context.Context, payload models.ProductionPlanPayload) (*models.ProductionPlan, error)
}

type adminService struct {
	users    repositories.UserRepository
	stores   repositories.StoreRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	recipes  repositories.RecipeRepository
	plans    repositories.PlanRepository
	now      func() time.Time
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	users repositories.UserRepository,
	stores repositories.StoreRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	recipes repositories.RecipeRepository,
	plans repositories.PlanRepository,
) AdminService {
	return &adminService{
		users:    users,
		stores:   stores,
		products: products,
		orders:   orders,
		recipes:  recipes,
		plans:    plans,
		now:      time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	var users []models.User
	var stores []models.Store
	var products []models.Product
	var orders []models.Order
	reads := newViewReads(ctx, "admin.dashboard")
	load(reads, "users", &users, s.users.List)
	load(reads, "stores", &stores, s.stores.List)
	load(reads, "products", &products, s.products.List)
	load(reads, "orders", &orders, s.orders.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	view := &AdminDashboard{
		Users:       len(users),
		UsersByRole: make(map[string]int),
		Stores:      len(stores),
		Products:    len(products),
		Orders:      len(orders),
	}
	for _, u := range users {
		view.UsersByRole[u.Role.String()]++
	}
	for _, o := range orders {
		if o.Status == models.OrderDone {
			view.CompletedOrders++
		}
	}
	view.CompletionRate = completionRate(view.CompletedOrders, view.Orders)
	return view, nil
}

func completionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)*1000/float64(total)) / 10
}

func (s *adminService) Products(ctx context.Context, productType string) ([]models.Product, error) {
	if strings.TrimSpace(productType) == "" {
		return s.products.List(ctx)
	}
	pt, ok := models.ParseProductType(productType)
	if !ok {
		return nil, apperr.Validation("type", "Unknown product type.")
	}
	return s.products.ListByType(ctx, pt)
}

func validateProduct(payload models.ProductPayload) error {
	if utils.IsEmpty(payload.Name) {
		return apperr.Validation("product_name", "Product name is required.")
	}
	if _, ok := models.ParseProductType(string(payload.Type)); !ok {
		return apperr.Validation("product_type", "Unknown product type.")
	}
	if payload.Price.IsNegative() {
		return apperr.Validation("price", "Price cannot be negative.")
	}
	if payload.ShelfLifeDays < 0 {
		return apperr.Validation("shelf_life_days", "Shelf life cannot be negative.")
	}
	return nil
}

func (s *adminService) CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	if err := validateProduct(payload); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, payload)
}

func (s *adminService) UpdateProduct(ctx context.Context, id int64, payload models.ProductPayload) (*models.Product, error) {
	if err := validateProduct(payload); err != nil {
		return nil, err
	}
	return s.products.Update(ctx, id, payload)
}

func (s *adminService) Users(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func validateUser(payload models.UserPayload, creating bool) error {
	if utils.IsEmpty(payload.Username) {
		return apperr.Validation("username", "Username is required.")
	}
	if creating && payload.Password == "" {
		return apperr.Validation("password", "Password is required.")
	}
	if !payload.RoleID.Valid() {
		return apperr.Validation("role_id", "Select a role.")
	}
	if payload.RoleID == models.RoleStoreStaff && (payload.StoreID == nil || *payload.StoreID <= 0) {
		return apperr.Validation("store_id", "Store staff must be assigned to a store.")
	}
	return nil
}

func (s *adminService) CreateUser(ctx context.Context, payload models.UserPayload) (*models.User, error) {
	if err := validateUser(payload, true); err != nil {
		return nil, err
	}
	return s.users.Create(ctx, payload)
}

func (s *adminService) UpdateUser(ctx context.Context, id int64, payload models.UserPayload) (*models.User, error) {
	if err := validateUser(payload, false); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, id, payload)
}

// DeleteUser refuses to delete the signed-in admin's own account.
func (s *adminService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperr.New(apperr.KindBusinessRule, "You cannot delete your own account.")
	}
	return s.users.Delete(ctx, id)
}

func (s *adminService) Stores(ctx context.Context) ([]models.Store, error) {
	return s.stores.List(ctx)
}

func (s *adminService) CreateStore(ctx context.Context, payload models.StorePayload) (*models.Store, error) {
	if utils.IsEmpty(payload.Name) {
		return nil, apperr.Validation("store_name", "Store name is required.")
	}
	return s.stores.Create(ctx, payload)
}

func (s *adminService) UpdateStore(ctx context.Context, id int64, payload models.StorePayload) (*models.Store, error) {
	if utils.IsEmpty(payload.Name) {
		return nil, apperr.Validation("store_name", "Store name is required.")
	}
	return s.stores.Update(ctx, id, payload)
}

func (s *adminService) DeleteStore(ctx context.Context, id int64) error {
	return s.stores.Delete(ctx, id)
}

func (s *adminService) Recipes(ctx context.Context, keyword string) ([]models.Recipe, error) {
	if k := strings.TrimSpace(keyword); k != "" {
		return s.recipes.Search(ctx, k)
	}
	return s.recipes.List(ctx)
}

func (s *adminService) Plans(ctx context.Context) ([]models.ProductionPlan, error) {
	return s.plans.List(ctx)
}

// CreatePlan schedules production. The window must not start in the past and
// must not end before it starts.
func (s *adminService) CreatePlan(ctx context.Context, payload models.ProductionPlanPayload) (*models.ProductionPlan, error) {
	if payload.StartDate.IsZero() || payload.EndDate.IsZero() {
		return nil, apperr.Validation("start_date", "Enter the start and end dates.")
	}
	today := truncateDay(s.now())
	if truncateDay(payload.StartDate).Before(today) {
		return nil, apperr.Validation("start_date", "The plan cannot start in the past.")
	}
	if payload.EndDate.Before(payload.StartDate) {
		return nil, apperr.Validation("end_date", "The end date must be on or after the start date.")
	}
	if len(payload.Details) == 0 {
		return nil, apperr.Validation("details", "Add at least one product to the plan.")
	}
	for _, d := range payload.Details {
		if d.ProductID <= 0 || d.Quantity <= 0 {
			return nil, apperr.Validation("details", "Every plan line needs a product and a positive quantity.")
		}
	}
	return s.plans.Create(ctx, payload, today)
}
