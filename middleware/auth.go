package middleware

import (
	"net/http"
	"strings"

	userRepo "rentx/database/repository/user"
	"rentx/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware authenticates the request from a Bearer token and
// puts the acting user's id into the gin context under "userID".
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// The subject must still be a known user.
		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		c.Set("userID", u.ID)
		c.Next()
	}
}
