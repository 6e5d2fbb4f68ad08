package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estateflow/crm/internal/auth"
	"estateflow/crm/internal/models"
	"estateflow/crm/internal/services"
)

const (
	// ContextKeyUser holds the authenticated user record in Gin context.
	ContextKeyUser = "currentUser"
)

// AuthMiddleware creates a Gin middleware for JWT authentication. A valid
// token is resolved to a live user record on every request, so tokens for
// unknown subjects are rejected the same way invalid tokens are.
func AuthMiddleware(jwtSecret string, userService services.IUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := userService.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireAction creates a Gin middleware enforcing the role capability table.
// Assumes AuthMiddleware runs first.
func RequireAction(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !auth.Can(user.Role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
