package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "stocktrack/internal/core/context"
	"stocktrack/internal/core/security"
)

// HeaderUserID carries the acting user's identifier. Authentication is
// handled by the surrounding platform; this service only records attribution.
const HeaderUserID = "X-User-ID"

// Actor extracts the acting user from request headers and adds it to the
// request context. Movement log entries and documents record this actor
// via security.GetUserID(ctx).
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID != "" {
			ctx := security.WithUserID(c.Request.Context(), userID)
			ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: userID})
			c.Request = c.Request.WithContext(ctx)

			c.Set("user_id", userID)
		}
		c.Next()
	}
}
