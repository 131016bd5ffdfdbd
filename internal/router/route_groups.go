package router

import (
	"kitchen_control/internal/auth"
	"kitchen_control/internal/handlers"
	"kitchen_control/internal/models"

	"github.com/gin-gonic/gin"
)

// roleGroup registers prefix in the route table with the given roles and
// returns the matching router group. The guard reads the roles back from
// the table, so a route cannot exist without a declared role set.
func roleGroup(parent *gin.RouterGroup, table *auth.RouteTable, prefix string, roles ...models.RoleID) *gin.RouterGroup {
	table.Register(prefix, auth.Roles(roles...))
	return parent.Group(prefix)
}

// SetupPublicRoutes sets up the routes reachable without a session.
func SetupPublicRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/", authHandler.Root)
	group.GET(auth.LoginPath, authHandler.LoginPage)
	group.POST(auth.LoginPath, authHandler.Login)
	group.POST("/logout", authHandler.Logout)
	group.GET("/session", authHandler.Session)
	group.POST("/session/activity", authHandler.Activity)
}

// SetupStoreRoutes sets up the store staff routes.
func SetupStoreRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.StoreHandler) {
	storeRoutes := roleGroup(guarded, table, "/store", models.RoleStoreStaff)
	{
		storeRoutes.GET("", h.Catalog)
		storeRoutes.GET("/cart", h.Cart)
		storeRoutes.POST("/cart/items", h.AddToCart)
		storeRoutes.PUT("/cart/items", h.SetCartQuantity)
		storeRoutes.DELETE("/cart/items/:productId", h.RemoveFromCart)
		storeRoutes.DELETE("/cart", h.ClearCart)
		storeRoutes.POST("/cart/checkout", h.Checkout)
		storeRoutes.GET("/orders", h.Orders)
		storeRoutes.POST("/orders/:id/cancel", h.CancelOrder)
		storeRoutes.POST("/orders/:id/feedback", h.SubmitFeedback)
	}
}

// SetupCoordinatorRoutes sets up the supply coordinator routes.
func SetupCoordinatorRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.CoordinatorHandler) {
	coordinatorRoutes := roleGroup(guarded, table, "/coordinator", models.RoleSupplyCoordinator)
	{
		coordinatorRoutes.GET("", h.Dashboard)
		coordinatorRoutes.GET("/orders", h.Candidates)
		coordinatorRoutes.GET("/deliveries", h.Deliveries)
		coordinatorRoutes.POST("/deliveries", h.CreateDelivery)
		coordinatorRoutes.PATCH("/deliveries/:id/shipper", h.AssignShipper)
	}
}

// SetupKitchenRoutes sets up the kitchen manager routes.
func SetupKitchenRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.KitchenHandler) {
	kitchenRoutes := roleGroup(guarded, table, "/kitchen", models.RoleKitchenManager)
	{
		kitchenRoutes.GET("", h.Dashboard)
		kitchenRoutes.GET("/inventory", h.Inventory)
		kitchenRoutes.GET("/inventory/products/:productId", h.StockCard)
		kitchenRoutes.GET("/outbound", h.Outbound)
		kitchenRoutes.POST("/outbound/:id/dispatch", h.Dispatch)
		kitchenRoutes.POST("/procurement", h.Procure)
		kitchenRoutes.GET("/waste", h.Waste)
		kitchenRoutes.POST("/waste/:id/dispose", h.Dispose)
		kitchenRoutes.GET("/plans", h.Plans)
	}
}

// SetupManagerRoutes sets up the manager routes.
func SetupManagerRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.ManagerHandler) {
	managerRoutes := roleGroup(guarded, table, "/manager", models.RoleManager)
	{
		managerRoutes.GET("", h.Dashboard)
		managerRoutes.GET("/planning", h.Planning)
	}
}

// SetupShipperRoutes sets up the shipper routes.
func SetupShipperRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.ShipperHandler) {
	shipperRoutes := roleGroup(guarded, table, "/shipper", models.RoleShipper)
	{
		shipperRoutes.GET("", h.Trips)
		shipperRoutes.POST("/deliveries/:id/start", h.StartTrip)
		shipperRoutes.POST("/deliveries/:id/orders/:orderId/complete", h.CompleteOrder)
	}
}

// SetupAdminRoutes sets up the admin routes.
func SetupAdminRoutes(guarded *gin.RouterGroup, table *auth.RouteTable, h *handlers.AdminHandler) {
	adminRoutes := roleGroup(guarded, table, "/admin", models.RoleAdmin)
	{
		adminRoutes.GET("", h.Dashboard)

		adminRoutes.GET("/products", h.Products)
		adminRoutes.POST("/products", h.CreateProduct)
		adminRoutes.PUT("/products/:id", h.UpdateProduct)

		adminRoutes.GET("/users", h.Users)
		adminRoutes.POST("/users", h.CreateUser)
		adminRoutes.PUT("/users/:id", h.UpdateUser)
		adminRoutes.DELETE("/users/:id", h.DeleteUser)

		adminRoutes.GET("/stores", h.Stores)
		adminRoutes.POST("/stores", h.CreateStore)
		adminRoutes.PUT("/stores/:id", h.UpdateStore)
		adminRoutes.DELETE("/stores/:id", h.DeleteStore)

		adminRoutes.GET("/recipes", h.Recipes)
		adminRoutes.GET("/plans", h.Plans)
		adminRoutes.POST("/plans", h.CreatePlan)
	}
}
