package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library

	"savings_system/internal/domain" // Importing domain models
	"savings_system/internal/utils"  // JWT utility functions
)

// Context keys set for downstream handlers
const (
	ContextUserID   = "userID"   // Authenticated user ID
	ContextRole     = "role"     // Role claim from the token
	ContextDeviceID = "deviceID" // Device record ID from the token, zero when absent
)

// JWTAuthMiddleware validates bearer tokens and re-checks the user's
// active flag against storage on every request, since an admin may
// deactivate a user after the token was issued
func JWTAuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// The token alone is not trusted for liveness: deactivated users
		// are rejected even with a valid signature
		var user domain.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account inactive. Please contact support."})
			return
		}
		c.Set(ContextUserID, claims.UserID)     // Store userID in context
		c.Set(ContextRole, claims.Role)         // Store role in context
		c.Set(ContextDeviceID, claims.DeviceID) // Store device record ID in context
		c.Next()                                // Proceed to the next handler
	}
}
