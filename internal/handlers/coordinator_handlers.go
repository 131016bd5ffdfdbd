package handlers

import (
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/internal/services"

	"github.com/gin-gonic/gin"
)

// CoordinatorHandler serves the supply coordinator views.
type CoordinatorHandler struct {
	*Base
	coordinatorService services.CoordinatorService
}

// NewCoordinatorHandler creates a new CoordinatorHandler.
func NewCoordinatorHandler(base *Base, cs services.CoordinatorService) *CoordinatorHandler {
	return &CoordinatorHandler{Base: base, coordinatorService: cs}
}

func (h *CoordinatorHandler) Dashboard(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.coordinatorService.Dashboard(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "CoordinatorDashboard: Error from coordinatorService.Dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Candidates lists waiting orders that are not on a delivery, by store.
func (h *CoordinatorHandler) Candidates(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.coordinatorService.Candidates(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Candidates: Error from coordinatorService.Candidates")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CoordinatorHandler) CreateDelivery(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var req models.DeliveryCreate
	if !bindJSON(c, &req, "CreateDelivery") {
		return
	}
	release, ok := h.guard(c, rec, services.ActionCreateDelivery)
	if !ok {
		return
	}
	defer release()

	delivery, err := h.coordinatorService.CreateDelivery(requestContext(c, rec), req)
	if err != nil {
		h.respond(c, err, "CreateDelivery: Error from coordinatorService.CreateDelivery")
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (h *CoordinatorHandler) Deliveries(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveries, err := h.coordinatorService.Deliveries(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Deliveries: Error from coordinatorService.Deliveries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deliveries, "total": len(deliveries)})
}

type assignShipperRequest struct {
	ShipperID int64 `json:"shipper_id" binding:"required,gt=0"`
}

func (h *CoordinatorHandler) AssignShipper(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignShipperRequest
	if !bindJSON(c, &req, "AssignShipper") {
		return
	}
	if err := h.coordinatorService.AssignShipper(requestContext(c, rec), deliveryID, req.ShipperID); err != nil {
		h.respond(c, err, "AssignShipper: Error from coordinatorService.AssignShipper")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipper assigned successfully"})
}
