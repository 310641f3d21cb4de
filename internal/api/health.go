package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamp for the health payload

	"github.com/gin-gonic/gin" // Gin web framework
)

// HealthHandler reports service liveness
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",                            // Liveness marker
			"timestamp": time.Now().Format(time.RFC3339), // Current server time
			"service":   "Savings Management Backend",    // Service name
		})
	}
}
