package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/booster/models"
	"kc-mini-app-backend/internal/features/booster/service"
)

type BoosterHandler struct {
	lifecycle *service.Lifecycle
}

func NewBoosterHandler(lifecycle *service.Lifecycle) *BoosterHandler {
	return &BoosterHandler{lifecycle: lifecycle}
}

func (h *BoosterHandler) RegisterRoutes(router *gin.RouterGroup) {
	boosters := router.Group("/boosters")
	{
		boosters.GET("", h.catalog)
		boosters.GET("/active", h.active)
		boosters.POST("/purchase", h.purchase)
	}
}

// @Summary Booster catalog
// @Tags boosters
// @Produce json
// @Security TelegramInitData
// @Success 200 {array} models.BoosterResponse
// @Router /boosters [get]
func (h *BoosterHandler) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.lifecycle.Catalog())
}

// @Summary Active boosters
// @Description Boosters of the current user that have not expired
// @Tags boosters
// @Produce json
// @Security TelegramInitData
// @Success 200 {array} models.ActiveBooster
// @Router /boosters/active [get]
func (h *BoosterHandler) active(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	boosters, err := h.lifecycle.Active(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, boosters)
}

// @Summary Purchase booster
// @Description Buys a booster with the balance or a linked wallet
// @Tags boosters
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.PurchaseRequest true "Purchase"
// @Success 200 {object} models.PurchaseResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 402 {object} middleware.ErrorResponse "Insufficient balance"
// @Failure 404 {object} middleware.ErrorResponse "Unknown booster"
// @Failure 409 {object} middleware.ErrorResponse "No wallet linked"
// @Failure 502 {object} middleware.ErrorResponse "Payment failed"
// @Router /boosters/purchase [post]
func (h *BoosterHandler) purchase(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.lifecycle.Purchase(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
