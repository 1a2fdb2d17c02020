package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
	"github.com/clinic-saas-api/internal/utils"
)

const userContextKey = "currentUser"

// AuthMiddleware validates the bearer access token and stores the live
// user in the request context. Every failure returns the same generic
// 401 so callers cannot probe token state.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			c.Abort()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		user, err := tokens.Validate(c.Request.Context(), raw, utils.TokenKindAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthMiddleware
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
