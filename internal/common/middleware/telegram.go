package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
)

// Context keys set by TelegramInitDataMiddleware.
const (
	UserIDKey       = "user_id"
	TelegramUserKey = "telegram_user"
)

// TelegramInitDataMiddleware validates Telegram Mini Apps init-data. The raw
// string is read from "Authorization: tma <init-data>" first, then from the
// "init_data" header.
func TelegramInitDataMiddleware(botToken string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractInitData(c)
		if raw == "" {
			abortWithError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if botToken == "" {
			abortWithError(c, errors.New(errors.ErrCodeInternal, "Server configuration error"))
			return
		}

		if err := initdata.Validate(raw, botToken, expIn); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			abortWithError(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			abortWithError(c, errors.New(errors.ErrCodeBadRequest, "Failed to parse init data"))
			return
		}
		if parsed.User.ID == 0 {
			abortWithError(c, errors.NewUnauthorizedError("init data has no user"))
			return
		}

		c.Set(TelegramUserKey, parsed.User)
		c.Set(UserIDKey, parsed.User.ID)
		c.Next()
	}
}

func extractInitData(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if raw, ok := strings.CutPrefix(auth, "tma "); ok {
			return strings.TrimSpace(raw)
		}
	}
	return c.GetHeader("init_data")
}

// TelegramUser returns the identity stored by TelegramInitDataMiddleware.
func TelegramUser(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(TelegramUserKey)
	if !ok {
		return initdata.User{}, false
	}
	u, ok := v.(initdata.User)
	return u, ok
}

// UserID returns the authenticated telegram user id.
func UserID(c *gin.Context) (int64, bool) {
	id := c.GetInt64(UserIDKey)
	return id, id != 0
}

func abortWithError(c *gin.Context, appErr *errors.AppError) {
	sendErrorResponse(c, appErr)
	c.Abort()
}
