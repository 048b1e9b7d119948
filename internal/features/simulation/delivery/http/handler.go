package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/simulation/models"
	"kc-mini-app-backend/internal/features/simulation/service"
)

type SimulationHandler struct {
	generator *service.Generator
}

func NewSimulationHandler(generator *service.Generator) *SimulationHandler {
	return &SimulationHandler{generator: generator}
}

func (h *SimulationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/bot-data", h.getBotData)
	router.GET("/bot-data/window", h.getWindow)
	router.GET("/multiplier", h.getMultiplier)
}

// @Summary Generate bot data
// @Description Generates simulated profit/loss points for the given bot type. Every point is credited to the balance.
// @Tags simulation
// @Produce json
// @Security TelegramInitData
// @Param type query string false "Bot type" Enums(random, mev, scalper)
// @Param count query int false "Number of points" default(10)
// @Success 200 {object} models.SimulationResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /bot-data [get]
func (h *SimulationHandler) getBotData(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(errors.NewValidationError("count", "must be a positive integer"))
			return
		}
		count = n
	}

	resp, err := h.generator.Simulated(c.Request.Context(), userID, models.ParseProfile(c.Query("type")), count)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Rolling chart window
// @Description Returns the most recent generated points, oldest first
// @Tags simulation
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.WindowResponse
// @Router /bot-data/window [get]
func (h *SimulationHandler) getWindow(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	c.JSON(http.StatusOK, models.WindowResponse{
		Points: h.generator.Window(userID),
		Size:   h.generator.WindowSize(),
	})
}

// @Summary Current multiplier
// @Description Plan, account age and booster factors of the current multiplier
// @Tags simulation
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} multiplier.Breakdown
// @Router /multiplier [get]
func (h *SimulationHandler) getMultiplier(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	breakdown, err := h.generator.Multiplier(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
