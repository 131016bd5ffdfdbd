package services

import (
	"context"
	"sort"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/config"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/stock"
	"kitchen_control/pkg/utils"
)

// ManagerDashboard is the franchise manager landing view.
type ManagerDashboard struct {
	PendingOrders  []models.Order `json:"pending_orders"`
	LowStock       []ProductStock `json:"low_stock"`
	ExpiredInStock []InventoryRow `json:"expired_in_stock"`
	FinishedStock  []ProductStock `json:"finished_stock"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
}

// PlanningView lists production plans alongside the recipes they draw on.
type PlanningView struct {
	Plans          []models.ProductionPlan `json:"plans"`
	Recipes        []models.Recipe         `json:"recipes"`
	PlansPending   bool                    `json:"plans_pending,omitempty"`
	RecipesPending bool                    `json:"recipes_pending,omitempty"`
}

// ManagerService defines the manager views.
type ManagerService interface {
	Dashboard(ctx context.Context) (*ManagerDashboard, error)
	Planning(ctx context.Context) (*PlanningView, error)
}

type managerService struct {
	products   repositories.ProductRepository
	inventory  repositories.InventoryRepository
	orders     repositories.OrderRepository
	plans      repositories.PlanRepository
	recipes    repositories.RecipeRepository
	thresholds config.InventoryConfig
	now        func() time.Time
}

// NewManagerService creates a new instance of ManagerService.
func NewManagerService(
	products repositories.ProductRepository,
	inventory repositories.InventoryRepository,
	orders repositories.OrderRepository,
	plans repositories.PlanRepository,
	recipes repositories.RecipeRepository,
	thresholds config.InventoryConfig,
) ManagerService {
	return &managerService{
		products:   products,
		inventory:  inventory,
		orders:     orders,
		plans:      plans,
		recipes:    recipes,
		thresholds: thresholds,
		now:        time.Now,
	}
}

func (s *managerService) Dashboard(ctx context.Context) (*ManagerDashboard, error) {
	var products []models.Product
	var records []models.InventoryRecord
	var orders []models.Order
	reads := newViewReads(ctx, "manager.dashboard")
	load(reads, "products", &products, s.products.List)
	load(reads, "inventories", &records, s.inventory.List)
	load(reads, "orders", &orders, s.orders.List)
	if err := reads.wait(); err != nil {
		return nil, err
	}

	levels := stockByProduct(products, records)
	view := &ManagerDashboard{
		PendingOrders:  make([]models.Order, 0),
		LowStock:       lowStock(levels, s.thresholds.LowStockManager),
		FinishedStock:  make([]ProductStock, 0),
		OrdersByStatus: make(map[string]int),
	}

	now := s.now()
	for _, r := range stock.Expired(records, now) {
		view.ExpiredInStock = append(view.ExpiredInStock, InventoryRow{
			InventoryRecord: r,
			State:           stock.ExpiryExpired,
			DaysLeft:        stock.DaysUntil(r.ExpiryDate, now),
		})
	}
	if view.ExpiredInStock == nil {
		view.ExpiredInStock = []InventoryRow{}
	}

	for _, o := range orders {
		view.OrdersByStatus[string(o.Status)]++
		if o.Status == models.OrderWaiting {
			view.PendingOrders = append(view.PendingOrders, o)
		}
	}
	sort.SliceStable(view.PendingOrders, func(i, j int) bool {
		return view.PendingOrders[i].OrderDate.Before(view.PendingOrders[j].OrderDate)
	})

	finished := make(map[int64]struct{})
	for _, p := range products {
		if p.Type == models.ProductFinished {
			finished[p.ID] = struct{}{}
		}
	}
	for _, l := range levels {
		if _, ok := finished[l.ProductID]; ok {
			view.FinishedStock = append(view.FinishedStock, l)
		}
	}
	return view, nil
}

// Planning tolerates a backend without plan or recipe support; the missing
// half is flagged as pending instead of failing the view.
func (s *managerService) Planning(ctx context.Context) (*PlanningView, error) {
	view := &PlanningView{Plans: []models.ProductionPlan{}, Recipes: []models.Recipe{}}

	plans, err := s.plans.List(ctx)
	switch {
	case err == nil:
		view.Plans = plans
	case apperr.Is(err, apperr.KindAuthentication):
		return nil, err
	case apperr.Is(err, apperr.KindNotImplemented):
		view.PlansPending = true
	default:
		utils.LogWarn(err, "View read failed, rendering empty", map[string]interface{}{"view": "manager.planning", "source": "plans"})
	}

	recipes, err := s.recipes.List(ctx)
	switch {
	case err == nil:
		view.Recipes = recipes
	case apperr.Is(err, apperr.KindAuthentication):
		return nil, err
	case apperr.Is(err, apperr.KindNotImplemented):
		view.RecipesPending = true
	default:
		utils.LogWarn(err, "View read failed, rendering empty", map[string]interface{}{"view": "manager.planning", "source": "recipes"})
	}

	sort.SliceStable(view.Plans, func(i, j int) bool { return view.Plans[i].StartDate.After(view.Plans[j].StartDate) })
	return view, nil
}
