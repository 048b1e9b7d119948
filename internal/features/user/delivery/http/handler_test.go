package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/common/validation"
	"kc-mini-app-backend/internal/features/state/repository/memory"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	"kc-mini-app-backend/internal/features/user/service"
)

const adminID int64 = 1

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	store := stateservice.NewStore(memory.NewRepository(), time.Now)
	svc := service.NewService(store, nil, []int64{adminID})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.HandleErrors())
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw == "admin" {
			c.Set(middleware.UserIDKey, adminID)
			c.Set(middleware.TelegramUserKey, initdata.User{ID: adminID, FirstName: "Admin"})
		} else {
			c.Set(middleware.UserIDKey, int64(2))
			c.Set(middleware.TelegramUserKey, initdata.User{ID: 2, FirstName: "John", Username: "john_doe"})
		}
		c.Next()
	})
	NewUserHandler(svc, []int64{adminID}).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path, body, as string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		req.Header.Set("X-Test-User", as)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMe(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/api/v1/me", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"john_doe"`)
	assert.Contains(t, w.Body.String(), `"plan_type":"free"`)
	assert.NotContains(t, w.Body.String(), `"mnemonic"`)

	w = do(r, http.MethodPatch, "/api/v1/me", `{"username":"new_name"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"new_name"`)

	w = do(r, http.MethodPatch, "/api/v1/me", `{"username":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/plan", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"active"`)
}

func TestWallet(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/me", "", "").Code)

	w := do(r, http.MethodPut, "/api/v1/me/wallet/mnemonic", `{"mnemonic":"one two three"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/me/wallet", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"none"`)
}

func TestClearData(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/me", "", "").Code)

	w := do(r, http.MethodDelete, "/api/v1/me/data", "", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/plan", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/me", "", "").Code)

	w := do(r, http.MethodGet, "/api/v1/admin/users", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPatch, "/api/v1/admin/users/2", `{"balance":12.5,"plan_type":"basic"}`, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":12.5`)
	assert.Contains(t, w.Body.String(), `"plan_type":"basic"`)

	w = do(r, http.MethodPatch, "/api/v1/admin/users/2", `{"plan_type":"gold"}`, "admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/admin/users", "", "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
