package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/simulation/models"
	"kc-mini-app-backend/internal/features/simulation/service"
	"kc-mini-app-backend/internal/features/state/repository/memory"
	stateservice "kc-mini-app-backend/internal/features/state/service"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := stateservice.NewStore(memory.NewRepository(), time.Now)
	gen := service.NewGenerator(store, service.Config{
		WindowSize: 100,
		MaxBatch:   100,
		Params:     models.DefaultParams(),
		NewSource:  func() service.Source { return service.NewSource(1, 2) },
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.HandleErrors())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, int64(99))
		c.Next()
	})
	NewSimulationHandler(gen).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetBotData(t *testing.T) {
	r := newRouter()

	w := get(r, "/api/v1/bot-data?type=scalper&count=5")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ProfileScalper, resp.Type)
	assert.Len(t, resp.Points, 5)
	assert.Nil(t, resp.Balance)

	w = get(r, "/api/v1/bot-data/window")
	require.Equal(t, http.StatusOK, w.Code)
	var window models.WindowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &window))
	assert.Len(t, window.Points, 5)
	assert.Equal(t, 100, window.Size)
}

func TestGetBotData_BadCount(t *testing.T) {
	w := get(newRouter(), "/api/v1/bot-data?count=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestGetMultiplier_NoUser(t *testing.T) {
	w := get(newRouter(), "/api/v1/multiplier")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"plan":0.001,"time":1,"booster":1,"total":0.001}`, w.Body.String())
}
