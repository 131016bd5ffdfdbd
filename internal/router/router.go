package router

import (
	"kitchen_control/internal/auth"
	"kitchen_control/internal/config"
	"kitchen_control/internal/handlers"
	"kitchen_control/internal/middleware"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/services"
	"kitchen_control/internal/session"

	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived objects the routes are built from.
type Dependencies struct {
	Config   *config.Config
	API      *repositories.APIClient
	Sessions *session.Manager
}

// Setup initializes the routing for the application and returns the route
// table the guard consults.
func Setup(engine *gin.Engine, deps Dependencies) *auth.RouteTable {
	cfg := deps.Config

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(deps.API)
	userRepo := repositories.NewUserRepository(deps.API)
	storeRepo := repositories.NewStoreRepository(deps.API)
	productRepo := repositories.NewProductRepository(deps.API)
	inventoryRepo := repositories.NewInventoryRepository(deps.API)
	transactionRepo := repositories.NewTransactionRepository(deps.API)
	orderRepo := repositories.NewOrderRepository(deps.API)
	deliveryRepo := repositories.NewDeliveryRepository(deps.API)
	feedbackRepo := repositories.NewFeedbackRepository(deps.API)
	recipeRepo := repositories.NewRecipeRepository(deps.API)
	planRepo := repositories.NewPlanRepository(deps.API)

	// Initialize Services
	authService := services.NewAuthService(authRepo, userRepo, deps.Sessions)
	storeService := services.NewStoreService(productRepo, inventoryRepo, orderRepo, feedbackRepo, deps.Sessions)
	coordinatorService := services.NewCoordinatorService(orderRepo, deliveryRepo, userRepo)
	kitchenService := services.NewKitchenService(productRepo, inventoryRepo, transactionRepo, orderRepo, deliveryRepo, planRepo, cfg.Inventory)
	managerService := services.NewManagerService(productRepo, inventoryRepo, orderRepo, planRepo, recipeRepo, cfg.Inventory)
	shipperService := services.NewShipperService(deliveryRepo, orderRepo)
	adminService := services.NewAdminService(userRepo, storeRepo, productRepo, orderRepo, recipeRepo, planRepo)

	cookie := middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}
	base := &handlers.Base{Sessions: deps.Sessions, Cookie: cookie, InFlight: services.NewInFlight()}
	table := auth.NewRouteTable()

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(base, authService, table)
	storeHandler := handlers.NewStoreHandler(base, storeService)
	coordinatorHandler := handlers.NewCoordinatorHandler(base, coordinatorService)
	kitchenHandler := handlers.NewKitchenHandler(base, kitchenService)
	managerHandler := handlers.NewManagerHandler(base, managerService)
	shipperHandler := handlers.NewShipperHandler(base, shipperService)
	adminHandler := handlers.NewAdminHandler(base, adminService)

	engine.Use(middleware.SessionMiddleware(deps.Sessions, cookie))

	SetupPublicRoutes(engine.Group(""), authHandler)

	guarded := engine.Group("")
	guarded.Use(middleware.RoleAuthMiddleware(deps.Sessions, table))
	{
		SetupStoreRoutes(guarded, table, storeHandler)
		SetupCoordinatorRoutes(guarded, table, coordinatorHandler)
		SetupKitchenRoutes(guarded, table, kitchenHandler)
		SetupManagerRoutes(guarded, table, managerHandler)
		SetupShipperRoutes(guarded, table, shipperHandler)
		SetupAdminRoutes(guarded, table, adminHandler)
	}
	return table
}
