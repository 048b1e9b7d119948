package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
)

// UserProvisioner creates the session user on first contact and refreshes
// profile fields taken from the host platform.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, tgUser initdata.User) error
}

func AutoCreateUser(provisioner UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		tgUser, ok := TelegramUser(c)
		if !ok {
			c.Next()
			return
		}

		if err := provisioner.EnsureUser(c.Request.Context(), tgUser); err != nil {
			logger.Error().Err(err).Int64("user_id", tgUser.ID).Msg("Failed to auto-create user")
			abortWithError(c, errors.Wrap(err, errors.ErrCodeInternal, "Failed to create/update user"))
			return
		}

		c.Next()
	}
}
