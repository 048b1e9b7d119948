package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/ledger/models"
	"kc-mini-app-backend/internal/features/ledger/service"
)

type LedgerHandler struct {
	service *service.Service
}

func NewLedgerHandler(service *service.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/transactions", h.list)
}

// @Summary Transaction history
// @Description Booster purchases, withdrawal fees and withdrawals of the current user, newest first
// @Tags transactions
// @Produce json
// @Security TelegramInitData
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.TransactionsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /transactions [get]
func (h *LedgerHandler) list(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.service.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionsResponse{
		Transactions: entries,
		Limit:        limit,
		Offset:       offset,
	})
}
