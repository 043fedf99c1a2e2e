package middleware

import (
	"context"
	"errors"
	"net/http"

	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/utils/token"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// SessionResolver maps a session token to its user, or models.Anonymous.
type SessionResolver interface {
	CurrentUser(ctx context.Context, tokenString string) (uint, error)
}

// SessionMiddleware resolves the caller of every request. Requests without a live
// session carry models.Anonymous.
func SessionMiddleware(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := models.Anonymous

		tokenString, err := token.ExtractToken(c, cookieName)
		if err == nil {
			userID, err = sessions.CurrentUser(c.Request.Context(), tokenString)
			if err != nil {
				applog.Get().Error().Err(err).Msg("session lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
		} else if errors.Is(err, token.ErrInvalidAuthFormat) {
			applog.Get().Debug().Str("path", c.Request.URL.Path).Msg("malformed authorization header")
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == models.Anonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the user resolved by SessionMiddleware.
func CurrentUserID(c *gin.Context) uint {
	v, exists := c.Get(userIDKey)
	if !exists {
		return models.Anonymous
	}
	userID, ok := v.(uint)
	if !ok {
		return models.Anonymous
	}
	return userID
}
