package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework

	"savings_system/internal/service" // Business services
)

// RegisterRequest is the registration body
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`      // Email must be a valid address
	Password  string `json:"password" binding:"required,min=6"`   // Password must be at least 6 characters
	FirstName string `json:"firstName" binding:"required"`        // First name must be provided
	LastName  string `json:"lastName" binding:"required"`         // Last name must be provided
}

// LoginRequest is the login body. The device identifier is optional and
// only meaningful for admins, whose devices are registered on the fly.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`    // Email must be provided
	Password string `json:"password" binding:"required,min=6"` // Password must be provided
	DeviceID string `json:"deviceId"`                          // Optional client device identifier
}

// ResetRequest is the password-reset body
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"` // Email must be provided
}

// RegisterHandler creates a user with an unverified device and an empty
// account. The device must be verified by an admin before the user can
// log in.
func RegisterHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Lowercase emails so uniqueness is case-insensitive
		result, err := auth.Register(strings.ToLower(req.Email), req.Password, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		// Return the created rows; password is excluded by the model
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful. Please wait for device verification.",
			"user":    result.User,   // Created user
			"device":  result.Device, // Auto-generated unverified device
		})
	}
}

// LoginHandler authenticates a user and returns a bearer token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		result, err := auth.Login(strings.ToLower(req.Email), req.Password, req.DeviceID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		resp := gin.H{
			"token": result.Token, // Signed bearer token
			"user":  result.User,  // Authenticated user
		}
		// Include the device only when one was involved in this login
		if result.Device != nil {
			resp["device"] = result.Device
		}
		c.JSON(http.StatusOK, resp)
	}
}

// VerifyTokenHandler validates the bearer token and returns the user and
// device it references
func VerifyTokenHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		claims, err := auth.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		// Load the referenced user; a deleted or deactivated user
		// invalidates the token, matching the protected-route checks
		user, err := auth.GetUser(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		resp := gin.H{"user": user}
		// The device claim is optional: admin logins may carry none
		if claims.DeviceID != 0 {
			if device, err := auth.GetDevice(claims.DeviceID); err == nil {
				resp["device"] = device
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RequestPasswordResetHandler issues a temporary password. The response
// is identical whether or not the email exists.
func RequestPasswordResetHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		result, err := auth.RequestPasswordReset(strings.ToLower(req.Email))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		resp := gin.H{"message": result.Message}
		// Demo convenience outside production only
		if result.TempPassword != "" {
			resp["tempPassword"] = result.TempPassword
		}
		c.JSON(http.StatusOK, resp)
	}
}
