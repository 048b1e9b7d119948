package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/withdrawal/models"
	"kc-mini-app-backend/internal/features/withdrawal/service"
)

type WithdrawalHandler struct {
	service *service.Service
}

func NewWithdrawalHandler(service *service.Service) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

func (h *WithdrawalHandler) RegisterRoutes(router *gin.RouterGroup) {
	withdrawals := router.Group("/withdrawals")
	{
		withdrawals.GET("/limits", h.limits)
		withdrawals.POST("", h.start)
		withdrawals.GET("/:id", h.get)
		withdrawals.POST("/:id/fee", h.payFee)
		withdrawals.POST("/:id/confirm", h.confirm)
	}
}

// @Summary Withdrawal limits
// @Description Minimum, plan maximum, fee percent and one-time rule for the current user
// @Tags withdrawals
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.LimitsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /withdrawals/limits [get]
func (h *WithdrawalHandler) limits(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	limits, err := h.service.Limits(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, limits)
}

// @Summary Start withdrawal
// @Tags withdrawals
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.StartRequest true "Amount"
// @Success 201 {object} models.Session
// @Failure 400 {object} middleware.ErrorResponse "Below minimum, above maximum or one-time limit used"
// @Failure 402 {object} middleware.ErrorResponse "Insufficient balance"
// @Router /withdrawals [post]
func (h *WithdrawalHandler) start(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("amount", err.Error()))
		return
	}

	session, err := h.service.Start(c.Request.Context(), userID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary Get withdrawal
// @Tags withdrawals
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} middleware.ErrorResponse
// @Router /withdrawals/{id} [get]
func (h *WithdrawalHandler) get(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	session, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary Pay withdrawal fee
// @Description Pays the fee from the linked wallet. TON Connect wallets pass the hash of the transfer they signed.
// @Tags withdrawals
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Session ID"
// @Param input body models.PayFeeRequest false "Transfer hash"
// @Success 200 {object} models.Session
// @Failure 409 {object} middleware.ErrorResponse "No wallet linked or fee payment in progress"
// @Failure 502 {object} middleware.ErrorResponse "Payment failed"
// @Router /withdrawals/{id}/fee [post]
func (h *WithdrawalHandler) payFee(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.PayFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	session, err := h.service.PayFee(c.Request.Context(), userID, c.Param("id"), req.TxHash)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary Confirm withdrawal
// @Description Debits the balance once the fee is paid. Repeated calls return the completed session.
// @Tags withdrawals
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 400 {object} middleware.ErrorResponse "Fee not paid"
// @Failure 402 {object} middleware.ErrorResponse "Insufficient balance"
// @Router /withdrawals/{id}/confirm [post]
func (h *WithdrawalHandler) confirm(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	session, err := h.service.Confirm(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, session)
}
