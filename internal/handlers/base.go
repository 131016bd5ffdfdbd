package handlers

import (
	"context"
	"net/http"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/auth"
	"kitchen_control/internal/middleware"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/services"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Base carries what every view handler needs: the session manager for
// forced sign-outs, the cookie to clear, and the duplicate-submission lock.
type Base struct {
	Sessions *session.Manager
	Cookie   middleware.SessionCookie
	InFlight *services.InFlight
}

// requestContext attaches the remote API token of the signed-in user.
func requestContext(c *gin.Context, rec *session.Record) context.Context {
	ctx := c.Request.Context()
	if rec != nil {
		ctx = repositories.ContextWithToken(ctx, rec.Principal.SessionToken)
	}
	return ctx
}

// mustSession returns the session the guard admitted. Routes behind
// RoleAuthMiddleware always have one.
func (b *Base) mustSession(c *gin.Context) (*session.Record, bool) {
	rec, ok := middleware.CurrentSession(c)
	if !ok {
		middleware.Redirect(c, auth.LoginRedirect(c.Request.URL.RequestURI()))
		return nil, false
	}
	return rec, true
}

// respond renders err. An authentication failure means the remote token is
// no longer accepted: the session is ended and the client sent to login.
// A feature the backend does not offer yet renders as a pending view.
func (b *Base) respond(c *gin.Context, err error, logMessage string) {
	switch apperr.KindOf(err) {
	case apperr.KindAuthentication:
		if rec, ok := middleware.CurrentSession(c); ok {
			if derr := b.Sessions.Destroy(c.Request.Context(), rec.ID); derr != nil {
				utils.LogError(derr, logMessage+": failed to destroy session")
			}
			b.Cookie.Clear(c)
		}
		apiErr := utils.APIErrorFromApp(err)
		utils.LogDebug(logMessage, map[string]interface{}{"error": err.Error()})
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr, "redirect": auth.LoginPath})
		c.Abort()
	case apperr.KindNotImplemented:
		c.JSON(http.StatusOK, gin.H{"feature_pending": true, "message": apperr.MsgFeaturePending})
	default:
		utils.RespondWithAppError(c, err, logMessage)
	}
}

// guard takes the in-flight lock for action. It renders the conflict itself
// and returns ok=false when the action is already running.
func (b *Base) guard(c *gin.Context, rec *session.Record, action string) (func(), bool) {
	release, err := b.InFlight.Acquire(rec.ID, action)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeRequestInFlight, apperr.MsgInFlight, action))
		return nil, false
	}
	return release, true
}

// pathID parses a positive id path parameter, rendering the validation error.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, ok := utils.ParsePositiveID(c.Param(name))
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body, rendering the validation error.
func bindJSON(c *gin.Context, obj interface{}, logPrefix string) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.LogDebug(logPrefix+": Failed to bind JSON", map[string]interface{}{"error": err.Error()})
		utils.RespondValidationFailed(c, err.Error())
		return false
	}
	return true
}
