package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"kc-mini-app-backend/internal/common/errors"
)

// RoleResolver reports whether a user holds the admin role.
type RoleResolver interface {
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}

// BanChecker returns the ban state of a user. A nil expires means the ban is permanent.
type BanChecker interface {
	BanStatus(ctx context.Context, telegramID int64) (banned bool, reason string, expires *time.Time, err error)
}

// RequireAdmin allows users listed in ADMIN_IDS or holding the admin role.
func RequireAdmin(adminIDs []int64, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abortWithError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		for _, id := range adminIDs {
			if id == userID {
				c.Next()
				return
			}
		}

		if roles != nil {
			isAdmin, err := roles.IsAdmin(c.Request.Context(), userID)
			if err != nil {
				abortWithError(c, errors.Wrap(err, errors.ErrCodeInternal, "Failed to resolve role"))
				return
			}
			if isAdmin {
				c.Next()
				return
			}
		}

		abortWithError(c, errors.NewForbiddenError("admin access required"))
	}
}

// CheckBanned rejects banned users. Expired bans are ignored; admins listed
// in ADMIN_IDS are never blocked.
func CheckBanned(adminIDs []int64, checker BanChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		for _, id := range adminIDs {
			if id == userID {
				c.Next()
				return
			}
		}

		banned, reason, expires, err := checker.BanStatus(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, errors.Wrap(err, errors.ErrCodeInternal, "Failed to check ban status"))
			return
		}
		if banned && (expires == nil || expires.After(time.Now())) {
			abortWithError(c, errors.NewUserBannedError(reason, expires))
			return
		}

		c.Next()
	}
}
