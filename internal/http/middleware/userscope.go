package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulse.app/engine/common/logger"
)

type contextKey string

const (
	userHeaderName               = "X-User-ID"
	userContextKey    contextKey = "user_id"
)

// RequireUser scopes a request to one user via the X-User-ID header.
// Auth proper is out of scope for this service; the header is trusted to
// come from the gateway in front of it.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userHeaderName)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userHeaderName + " header"})
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + userHeaderName + " header"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userContextKey, userID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(userID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID returns the scoped user, 0 when RequireUser did not run.
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(userContextKey).(int64)
	return userID
}
