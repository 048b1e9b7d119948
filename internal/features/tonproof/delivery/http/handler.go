package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/tonproof/models"
	"kc-mini-app-backend/internal/features/tonproof/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	tonproof := router.Group("/tonproof")
	{
		tonproof.GET("/payload", h.payload)
		tonproof.POST("/verify", h.verify)
		tonproof.GET("/status", h.status)
	}
}

// @Summary TON Proof payload
// @Description One-time payload to pass to TON Connect as tonProof
// @Tags tonproof
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.PayloadResponse
// @Router /tonproof/payload [get]
func (h *Handler) payload(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	resp, err := h.service.GeneratePayload(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Verify TON Proof
// @Description Verify TON Proof and link the wallet to the user
// @Tags tonproof
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param proof body models.VerifyRequest true "TON Proof data"
// @Success 200 {object} models.VerifyResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid proof"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /tonproof/verify [post]
func (h *Handler) verify(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Check TON Proof status
// @Tags tonproof
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.StatusResponse
// @Router /tonproof/status [get]
func (h *Handler) status(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	resp, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
