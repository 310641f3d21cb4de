package api

import (
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"savings_system/internal/service" // Business-rule sentinels
)

// writeServiceError maps a service failure to the nearest HTTP status.
// Business-rule violations keep their message; anything unrecognized is a
// storage or programming fault and becomes a generic 500 so internals
// never leak to clients.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrDeviceNotVerified),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateDevice):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		// Unexpected failure: log the detail, return a generic message
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Failing route
			"error": err.Error(),  // Error message, diagnostic only
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
