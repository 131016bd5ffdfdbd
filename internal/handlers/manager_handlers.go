package handlers

import (
	"net/http"

	"kitchen_control/internal/services"

	"github.com/gin-gonic/gin"
)

// ManagerHandler serves the manager views.
type ManagerHandler struct {
	*Base
	managerService services.ManagerService
}

// NewManagerHandler creates a new ManagerHandler.
func NewManagerHandler(base *Base, ms services.ManagerService) *ManagerHandler {
	return &ManagerHandler{Base: base, managerService: ms}
}

func (h *ManagerHandler) Dashboard(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.managerService.Dashboard(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "ManagerDashboard: Error from managerService.Dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ManagerHandler) Planning(c *gin.Context) {
	rec, ok := h.mustSession(c)
	if !ok {
		return
	}
	view, err := h.managerService.Planning(requestContext(c, rec))
	if err != nil {
		h.respond(c, err, "Planning: Error from managerService.Planning")
		return
	}
	c.JSON(http.StatusOK, view)
}
