package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/features/user/models"
	"kc-mini-app-backend/internal/features/user/service"
)

type UserHandler struct {
	service  *service.Service
	adminIDs []int64
}

func NewUserHandler(service *service.Service, adminIDs []int64) *UserHandler {
	return &UserHandler{
		service:  service,
		adminIDs: adminIDs,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	{
		me.GET("", h.getMe)
		me.PATCH("", h.updateMe)
		me.GET("/wallet", h.getWallet)
		me.PUT("/wallet/mnemonic", h.linkMnemonic)
		me.DELETE("/wallet", h.unlinkWallet)
		me.DELETE("/data", h.clearData)
	}
	router.GET("/plan", h.getPlan)

	// Админские маршруты
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.adminIDs, h.service))
	{
		admin.GET("/users", h.listUsers)
		admin.PATCH("/users/:id", h.updateUser)
	}
}

// @Summary Get current user
// @Description Get or create current user based on Telegram init data. If user exists, updates their information if changed.
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UserResponse "User data"
// @Failure 401 {object} models.ErrorResponse "Missing init data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	tgUser, ok := middleware.TelegramUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	user, err := h.service.GetOrCreate(c.Request.Context(), tgUser)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /me [patch]
func (h *UserHandler) updateMe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var input models.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Linked wallet
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.WalletResponse
// @Router /me/wallet [get]
func (h *UserHandler) getWallet(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	wallet, err := h.service.Wallet(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// @Summary Link local wallet
// @Description Stores a 24 word TON mnemonic and returns the derived wallet address
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.MnemonicUpdate true "Mnemonic"
// @Success 200 {object} models.WalletResponse
// @Failure 400 {object} models.ErrorResponse "Invalid mnemonic"
// @Router /me/wallet/mnemonic [put]
func (h *UserHandler) linkMnemonic(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var input models.MnemonicUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("mnemonic", "expected 24 lowercase words"))
		return
	}

	wallet, err := h.service.LinkMnemonic(c.Request.Context(), userID, input.Mnemonic)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// @Summary Unlink wallet
// @Tags users
// @Security TelegramInitData
// @Success 204
// @Router /me/wallet [delete]
func (h *UserHandler) unlinkWallet(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := h.service.UnlinkWallet(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Clear session data
// @Description Removes the stored user and boosters. The next request recreates an empty user.
// @Tags users
// @Security TelegramInitData
// @Success 204
// @Router /me/data [delete]
func (h *UserHandler) clearData(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := h.service.ClearData(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Current plan
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.Plan
// @Router /plan [get]
func (h *UserHandler) getPlan(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	plan, err := h.service.Plan(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// @Summary List users
// @Description All stored users (admin only)
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UsersResponse
// @Failure 403 {object} models.ErrorResponse "Forbidden - not an admin"
// @Router /admin/users [get]
func (h *UserHandler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary Update user
// @Description Update role, balance, plan or ban (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path int true "User ID"
// @Param input body models.AdminUserUpdate true "Fields to change"
// @Success 200 {object} models.UserResponse "Updated user data"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 403 {object} models.ErrorResponse "Forbidden - not an admin"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /admin/users/{id} [patch]
func (h *UserHandler) updateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.Error(errors.NewValidationError("id", "invalid user ID format"))
		return
	}

	var input models.AdminUserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.service.AdminUpdate(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}
