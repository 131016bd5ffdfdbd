package handlers

import (
	"net/http"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/auth"
	"kitchen_control/internal/middleware"
	"kitchen_control/internal/models"
	"kitchen_control/internal/services"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	*Base
	authService services.AuthService
	routes      *auth.RouteTable
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(base *Base, as services.AuthService, routes *auth.RouteTable) *AuthHandler {
	return &AuthHandler{Base: base, authService: as, routes: routes}
}

// Root sends the visitor to their home view, or to login.
func (h *AuthHandler) Root(c *gin.Context) {
	if rec, ok := middleware.CurrentSession(c); ok {
		middleware.Redirect(c, auth.HomePath(rec.Principal.Role))
		return
	}
	middleware.Redirect(c, auth.LoginPath)
}

// LoginPage renders the login view. A signed-in user is sent home.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if rec, ok := middleware.CurrentSession(c); ok {
		middleware.Redirect(c, auth.SafeReturnPath(c.Query("from"), rec.Principal.Role))
		return
	}
	view := gin.H{"view": "login", "from": c.Query("from")}
	if middleware.SessionExpired(c) {
		view["message"] = apperr.MsgSessionExpired
	}
	c.JSON(http.StatusOK, view)
}

// Login handles the login form.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		utils.LogDebug("Login: Failed to bind credentials", map[string]interface{}{"error": err.Error()})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Username and password are required.", ""))
		return
	}

	// A previous session in this browser ends here.
	if rec, ok := middleware.CurrentSession(c); ok {
		_ = h.authService.Logout(c.Request.Context(), rec)
	}

	from := utils.FirstNonEmpty(c.Query("from"), c.PostForm("from"))
	resp, err := h.authService.Login(c.Request.Context(), creds, from)
	if err != nil {
		utils.RespondWithAppError(c, err, "Login: Error from authService.Login")
		return
	}

	h.Cookie.Set(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Logout ends the session and returns to the login view.
func (h *AuthHandler) Logout(c *gin.Context) {
	if rec, ok := middleware.CurrentSession(c); ok {
		if err := h.authService.Logout(c.Request.Context(), rec); err != nil {
			utils.LogError(err, "Logout: Error from authService.Logout")
		}
	}
	h.Cookie.Clear(c)
	middleware.Redirect(c, auth.LoginPath)
}

// Session describes the current session for the client shell.
func (h *AuthHandler) Session(c *gin.Context) {
	rec, ok := middleware.CurrentSession(c)
	if !ok {
		view := gin.H{"authenticated": false}
		if middleware.SessionExpired(c) {
			view["expired"] = true
			view["message"] = apperr.MsgSessionExpired
		}
		c.JSON(http.StatusOK, view)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated":        true,
		"principal":            rec.Principal,
		"role":                 rec.Principal.Role.String(),
		"home":                 auth.HomePath(rec.Principal.Role),
		"navigation":           h.routes.AllowedPrefixes(rec.Principal.Role),
		"idle_timeout_seconds": int(h.Sessions.IdleTimeout().Seconds()),
	})
}

type activityRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// Activity is the client heartbeat for pointer, keyboard, scroll and touch
// input. It keeps the session from idling out.
func (h *AuthHandler) Activity(c *gin.Context) {
	rec, ok := middleware.CurrentSession(c)
	if !ok {
		view := gin.H{"error": utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, apperr.MsgSessionExpired, ""), "redirect": auth.LoginPath}
		c.AbortWithStatusJSON(http.StatusUnauthorized, view)
		return
	}

	var req activityRequest
	if !bindJSON(c, &req, "Activity") {
		return
	}
	kind, valid := session.ParseActivityKind(req.Kind)
	if !valid {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown activity kind.", req.Kind))
		return
	}
	if err := h.Sessions.Touch(c.Request.Context(), rec, kind); err != nil {
		h.respond(c, err, "Activity: failed to touch session")
		return
	}
	c.Status(http.StatusNoContent)
}
