package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kitchen_control/internal/auth"
	"kitchen_control/internal/models"
	"kitchen_control/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookie = SessionCookie{Name: "kc_session"}

func newGuardedEngine(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager(session.NewMemoryStore(), session.SystemClock{}, session.ManagerConfig{Secret: []byte("mw-test"), IdleTimeout: time.Hour})
	t.Cleanup(sessions.Close)

	table := auth.NewRouteTable()
	table.Register("/kitchen", auth.Roles(models.RoleKitchenManager))
	table.Register("/reports", auth.Roles(models.RoleManager, models.RoleAdmin))

	engine := gin.New()
	engine.Use(SessionMiddleware(sessions, testCookie))
	guarded := engine.Group("")
	guarded.Use(RoleAuthMiddleware(sessions, table))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	guarded.GET("/kitchen", ok)
	guarded.POST("/kitchen/dispatch", ok)
	guarded.HEAD("/kitchen", ok)
	guarded.GET("/reports/daily", ok)
	guarded.GET("/profile", ok)
	return engine, sessions
}

func serve(engine *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: token})
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	engine, _ := newGuardedEngine(t)

	w := serve(engine, http.MethodGet, "/kitchen?tab=waste", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, auth.LoginRedirect("/kitchen?tab=waste"), w.Header().Get("Location"))

	w = serve(engine, http.MethodHead, "/kitchen", "")
	assert.Equal(t, http.StatusFound, w.Code)

	w = serve(engine, http.MethodPost, "/kitchen/dispatch", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = serve(engine, http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusFound, w.Code, "unregistered paths still need a session")
}

func TestGuardRoles(t *testing.T) {
	engine, sessions := newGuardedEngine(t)
	_, token, err := sessions.Create(context.Background(), models.Principal{ID: 2, Role: models.RoleManager})
	require.NoError(t, err)

	w := serve(engine, http.MethodGet, "/reports/daily", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/profile", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/kitchen", token)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, auth.HomePath(models.RoleManager), w.Header().Get("Location"))

	w = serve(engine, http.MethodPost, "/kitchen/dispatch", token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestGuardCountsActivity(t *testing.T) {
	engine, sessions := newGuardedEngine(t)
	rec, token, err := sessions.Create(context.Background(), models.Principal{ID: 3, Role: models.RoleKitchenManager})
	require.NoError(t, err)
	before := rec.LastSeen

	time.Sleep(5 * time.Millisecond)
	w := serve(engine, http.MethodGet, "/kitchen", token)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, got.LastSeen.After(before))
}

func TestSessionMiddlewareClearsUnknownCookie(t *testing.T) {
	engine, _ := newGuardedEngine(t)

	w := serve(engine, http.MethodGet, "/kitchen", "garbage")
	assert.Equal(t, http.StatusFound, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie.Name && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
