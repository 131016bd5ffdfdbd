package handlers

import (
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves master data management.
type AdminHandler struct {
	*Base
	adminService services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(base *Base, as services.AdminService) *AdminHandler {
	return &AdminHandler{Base: base, adminService: as}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.adminService.Dashboard(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "AdminDashboard: Error from adminService.Dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- Products ---

func (h *AdminHandler) Products(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	products, err := h.adminService.Products(requestContext(c, rec), c.Query("type"))
	if err != nil {
		h.respond(c, err, "Products: Error from adminService.Products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "total": len(products)})
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var payload models.ProductPayload
	if !bindJSON(c, &payload, "CreateProduct") {
		return
	}
	product, err := h.adminService.CreateProduct(requestContext(c, rec), payload)
	if err != nil {
		h.respond(c, err, "CreateProduct: Error from adminService.CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.ProductPayload
	if !bindJSON(c, &payload, "UpdateProduct") {
		return
	}
	product, err := h.adminService.UpdateProduct(requestContext(c, rec), id, payload)
	if err != nil {
		h.respond(c, err, "UpdateProduct: Error from adminService.UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- Users ---

func (h *AdminHandler) Users(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	users, err := h.adminService.Users(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Users: Error from adminService.Users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": len(users)})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var payload models.UserPayload
	if !bindJSON(c, &payload, "CreateUser") {
		return
	}
	user, err := h.adminService.CreateUser(requestContext(c, rec), payload)
	if err != nil {
		h.respond(c, err, "CreateUser: Error from adminService.CreateUser")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.UserPayload
	if !bindJSON(c, &payload, "UpdateUser") {
		return
	}
	user, err := h.adminService.UpdateUser(requestContext(c, rec), id, payload)
	if err != nil {
		h.respond(c, err, "UpdateUser: Error from adminService.UpdateUser")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(requestContext(c, rec), rec.Principal.ID, id); err != nil {
		h.respond(c, err, "DeleteUser: Error from adminService.DeleteUser")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// --- Stores ---

func (h *AdminHandler) Stores(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	stores, err := h.adminService.Stores(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Stores: Error from adminService.Stores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stores, "total": len(stores)})
}

func (h *AdminHandler) CreateStore(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var payload models.StorePayload
	if !bindJSON(c, &payload, "CreateStore") {
		return
	}
	store, err := h.adminService.CreateStore(requestContext(c, rec), payload)
	if err != nil {
		h.respond(c, err, "CreateStore: Error from adminService.CreateStore")
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *AdminHandler) UpdateStore(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.StorePayload
	if !bindJSON(c, &payload, "UpdateStore") {
		return
	}
	store, err := h.adminService.UpdateStore(requestContext(c, rec), id, payload)
	if err != nil {
		h.respond(c, err, "UpdateStore: Error from adminService.UpdateStore")
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *AdminHandler) DeleteStore(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.adminService.DeleteStore(requestContext(c, rec), id); err != nil {
		h.respond(c, err, "DeleteStore: Error from adminService.DeleteStore")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}

// --- Production ---

func (h *AdminHandler) Recipes(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	recipes, err := h.adminService.Recipes(requestContext(c, rec), c.Query("q"))
	if err != nil {
		h.respond(c, err, "Recipes: Error from adminService.Recipes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recipes, "total": len(recipes)})
}

func (h *AdminHandler) Plans(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	plans, err := h.adminService.Plans(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Plans: Error from adminService.Plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans, "total": len(plans)})
}

func (h *AdminHandler) CreatePlan(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var payload models.ProductionPlanPayload
	if !bindJSON(c, &payload, "CreatePlan") {
		return
	}
	plan, err := h.adminService.CreatePlan(requestContext(c, rec), payload)
	if err != nil {
		h.respond(c, err, "CreatePlan: Error from adminService.CreatePlan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}
