package auth

import (
	"net/http"

	"courtside/backend/internal/database"
	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a gin middleware that allows only the given roles.
// It must be used AFTER the standard AuthMiddleware.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			// This should not happen if AuthMiddleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Authenticated user not found"})
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

// AdminMiddleware restricts a route to administrators.
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin)
}

// StaffMiddleware restricts a route to administrators and managers.
func StaffMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin, models.RoleManager)
}
