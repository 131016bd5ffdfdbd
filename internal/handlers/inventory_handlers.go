package handlers

import (
	"net/http"

	"kitchen_control/internal/services"
	"kitchen_control/pkg/utils"

	"github.com/gin-gonic/gin"
)

// KitchenHandler serves the kitchen manager views: inventory, outbound
// dispatch, procurement, waste and production plans.
type KitchenHandler struct {
	*Base
	kitchenService services.KitchenService
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(base *Base, ks services.KitchenService) *KitchenHandler {
	return &KitchenHandler{Base: base, kitchenService: ks}
}

func (h *KitchenHandler) Dashboard(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.kitchenService.Dashboard(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "KitchenDashboard: Error from kitchenService.Dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Inventory lists batches with their expiry state.
func (h *KitchenHandler) Inventory(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	rows, err := h.kitchenService.Inventory(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Inventory: Error from kitchenService.Inventory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
}

// Outbound lists deliveries awaiting dispatch with their FEFO preview.
func (h *KitchenHandler) Outbound(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveries, err := h.kitchenService.Outbound(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Outbound: Error from kitchenService.Outbound")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deliveries, "total": len(deliveries)})
}

// Dispatch deducts a delivery's demand from inventory. On a failure part-way
// the response still lists the transactions that were recorded.
func (h *KitchenHandler) Dispatch(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	deliveryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	release, ok := h.guard(c, rec, services.ActionDispatch)
	if !ok {
		return
	}
	defer release()

	result, err := h.kitchenService.Dispatch(requestContext(c, rec), deliveryID)
	if err != nil {
		if result != nil && len(result.Issued) > 0 {
			apiErr := utils.APIErrorFromApp(err)
			utils.LogError(err, "Dispatch: aborted after partial deduction for delivery "+utils.Int64ToStr(deliveryID))
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr, "result": result})
			return
		}
		h.respond(c, err, "Dispatch: Error from kitchenService.Dispatch")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Procure records goods received from a supplier.
func (h *KitchenHandler) Procure(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var req services.ProcurementRequest
	if !bindJSON(c, &req, "Procure") {
		return
	}
	release, ok := h.guard(c, rec, services.ActionProcure)
	if !ok {
		return
	}
	defer release()

	result, err := h.kitchenService.Procure(requestContext(c, rec), req)
	if err != nil {
		h.respond(c, err, "Procure: Error from kitchenService.Procure")
		return
	}
	if result.NeedsConfirmation {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Waste lists expired batches still holding stock.
func (h *KitchenHandler) Waste(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	rows, err := h.kitchenService.Waste(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Waste: Error from kitchenService.Waste")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
}

func (h *KitchenHandler) Dispose(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	inventoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	release, ok := h.guard(c, rec, services.ActionDispose)
	if !ok {
		return
	}
	defer release()

	tx, err := h.kitchenService.Dispose(requestContext(c, rec), inventoryID)
	if err != nil {
		h.respond(c, err, "Dispose: Error from kitchenService.Dispose")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// StockCard shows one product's batches and ledger.
func (h *KitchenHandler) StockCard(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	view, err := h.kitchenService.StockCard(requestContext(c, rec), productID)
	if err != nil {
		h.respond(c, err, "StockCard: Error from kitchenService.StockCard")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *KitchenHandler) Plans(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	plans, err := h.kitchenService.Plans(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Plans: Error from kitchenService.Plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans, "total": len(plans)})
}
