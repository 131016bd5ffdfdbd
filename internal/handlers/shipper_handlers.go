package handlers

import (
	"net/http"

	"kitchen_control/internal/services"

	"github.com/gin-gonic/gin"
)

// ShipperHandler serves the shipper views.
type ShipperHandler struct {
	*Base
	shipperService services.ShipperService
}

// NewShipperHandler creates a new ShipperHandler.
func NewShipperHandler(base *Base, ss services.ShipperService) *ShipperHandler {
	return &ShipperHandler{Base: base, shipperService: ss}
}

// Trips lists the shipper's own deliveries grouped by status.
func (h *ShipperHandler) Trips(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.shipperService.Trips(requestContext(c, rec), rec)
	if err != nil {
		h.respond(c, err, "Trips: Error from shipperService.Trips")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ShipperHandler) StartTrip(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	release, ok := h.guard(c, rec, services.ActionStartTrip)
	if !ok {
		return
	}
	defer release()

	delivery, err := h.shipperService.StartTrip(requestContext(c, rec), rec, deliveryID)
	if err != nil {
		h.respond(c, err, "StartTrip: Error from shipperService.StartTrip")
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *ShipperHandler) CompleteOrder(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	var req services.CompleteOrderRequest
	if !bindJSON(c, &req, "CompleteOrder") {
		return
	}
	release, ok := h.guard(c, rec, services.ActionCompleteOrder)
	if !ok {
		return
	}
	defer release()

	if err := h.shipperService.CompleteOrder(requestContext(c, rec), rec, deliveryID, orderID, req); err != nil {
		h.respond(c, err, "CompleteOrder: Error from shipperService.CompleteOrder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully"})
}
