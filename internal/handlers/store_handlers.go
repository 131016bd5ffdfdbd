package handlers

import (
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/internal/services"

	"github.com/gin-gonic/gin"
)

// StoreHandler serves the store staff views.
type StoreHandler struct {
	*Base
	storeService services.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(base *Base, ss services.StoreService) *StoreHandler {
	return &StoreHandler{Base: base, storeService: ss}
}

// Catalog renders products with live availability and the cart.
func (h *StoreHandler) Catalog(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.storeService.Catalog(requestContext(c, rec), rec)
	if err != nil {
		h.respond(c, err, "Catalog: Error from storeService.Catalog")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *StoreHandler) Cart(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.storeService.Cart(requestContext(c, rec), rec)
	if err != nil {
		h.respond(c, err, "Cart: Error from storeService.Cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart adds quantity more of a product.
func (h *StoreHandler) AddToCart(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var req services.CartItemRequest
	if !bindJSON(c, &req, "AddToCart") {
		return
	}
	view, err := h.storeService.AddToCart(requestContext(c, rec), rec, req)
	if err != nil {
		h.respond(c, err, "AddToCart: Error from storeService.AddToCart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetCartQuantity sets a line to an absolute quantity; zero removes it.
func (h *StoreHandler) SetCartQuantity(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var req services.CartItemRequest
	if !bindJSON(c, &req, "SetCartQuantity") {
		return
	}
	view, err := h.storeService.SetCartQuantity(requestContext(c, rec), rec, req)
	if err != nil {
		h.respond(c, err, "SetCartQuantity: Error from storeService.SetCartQuantity")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *StoreHandler) RemoveFromCart(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	view, err := h.storeService.RemoveFromCart(requestContext(c, rec), rec, productID)
	if err != nil {
		h.respond(c, err, "RemoveFromCart: Error from storeService.RemoveFromCart")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *StoreHandler) ClearCart(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.storeService.ClearCart(requestContext(c, rec), rec)
	if err != nil {
		h.respond(c, err, "ClearCart: Error from storeService.ClearCart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Checkout submits the cart as an order.
func (h *StoreHandler) Checkout(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	var req services.CheckoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "Checkout") {
		return
	}
	release, ok := h.guard(c, rec, services.ActionCheckout)
	if !ok {
		return
	}
	defer release()

	order, err := h.storeService.Checkout(requestContext(c, rec), rec, req)
	if err != nil {
		h.respond(c, err, "Checkout: Error from storeService.Checkout")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Orders lists the store's orders, newest first.
func (h *StoreHandler) Orders(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	orders, err := h.storeService.Orders(requestContext(c, rec), rec)
	if err != nil {
		h.respond(c, err, "Orders: Error from storeService.Orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": len(orders)})
}

func (h *StoreHandler) CancelOrder(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storeService.CancelOrder(requestContext(c, rec), rec, orderID); err != nil {
		h.respond(c, err, "CancelOrder: Error from storeService.CancelOrder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}

func (h *StoreHandler) SubmitFeedback(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.FeedbackPayload
	if !bindJSON(c, &payload, "SubmitFeedback") {
		return
	}
	feedback, err := h.storeService.SubmitFeedback(requestContext(c, rec), rec, orderID, payload)
	if err != nil {
		h.respond(c, err, "SubmitFeedback: Error from storeService.SubmitFeedback")
		return
	}
	c.JSON(http.StatusCreated, feedback)
}
