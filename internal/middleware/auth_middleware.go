package middleware

import (
	"errors"
	"net/http"

	"kitchen_control/internal/auth"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by SessionMiddleware.
const (
	ContextSessionKey = "session"
	ContextExpiredKey = "sessionExpired"
)

// SessionCookie describes the browser cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Set writes the cookie. MaxAge 0 keeps it a browser-session cookie; the
// server-side idle timeout decides its real lifetime.
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, 0, "/", "", sc.Secure, true)
}

// Clear removes the cookie from the browser.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// SessionMiddleware resolves the session cookie into a record on the context.
// It never aborts: public routes run with or without a session. A cookie
// that does not resolve is cleared.
func SessionMiddleware(sessions *session.Manager, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		rec, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrSessionExpired) {
				c.Set(ContextExpiredKey, true)
			} else if !errors.Is(err, session.ErrNoSession) {
				utils.LogError(err, "SessionMiddleware: failed to resolve session")
			}
			cookie.Clear(c)
			c.Next()
			return
		}

		c.Set(ContextSessionKey, rec)
		c.Next()
	}
}

// CurrentSession returns the record resolved for this request.
func CurrentSession(c *gin.Context) (*session.Record, bool) {
	v, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	rec, ok := v.(*session.Record)
	return rec, ok && rec != nil
}

// SessionExpired reports whether the request carried an idle-expired session.
func SessionExpired(c *gin.Context) bool {
	return c.GetBool(ContextExpiredKey)
}

// Redirect sends a 302 for safe methods and a 303 otherwise, so a redirected
// form submission is followed with GET.
func Redirect(c *gin.Context, location string) {
	status := http.StatusSeeOther
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		status = http.StatusFound
	}
	c.Redirect(status, location)
	c.Abort()
}

// RoleAuthMiddleware guards the role view tree. The allowed roles come from
// the route table; a path with no registered prefix admits any signed-in
// user. Unauthenticated requests go to the login view with a return path;
// signed-in users without the role go to their own home. Every admitted
// request counts as activity for the inactivity monitor.
func RoleAuthMiddleware(sessions *session.Manager, table *auth.RouteTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, _ := CurrentSession(c)
		required, _ := table.Lookup(c.Request.URL.Path)

		var decision auth.Decision
		if rec == nil {
			decision = auth.Authorize(nil, c.Request.URL.RequestURI(), required)
		} else {
			decision = auth.Authorize(&rec.Principal, c.Request.URL.RequestURI(), required)
		}

		switch decision.Outcome {
		case auth.RedirectToLogin:
			Redirect(c, decision.Location)
			return
		case auth.Redirect:
			utils.LogDebug("Role redirect", map[string]interface{}{
				"path":     c.Request.URL.Path,
				"role":     rec.Principal.Role.String(),
				"location": decision.Location,
			})
			Redirect(c, decision.Location)
			return
		}

		if err := sessions.Touch(c.Request.Context(), rec, session.ActivityNavigation); err != nil {
			utils.LogError(err, "RoleAuthMiddleware: failed to record activity")
		}
		c.Next()
	}
}
