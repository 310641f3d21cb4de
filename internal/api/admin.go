package api

import (
	"net/http" // HTTP status codes
	"strconv"  // URL and query parameter conversion

	"github.com/gin-gonic/gin" // Gin web framework

	"savings_system/internal/service" // Business services
)

// AccessRequest toggles a user's active flag
type AccessRequest struct {
	IsActive *bool `json:"isActive" binding:"required"` // Pointer so false binds as provided
}

// AssignDeviceRequest attaches a device to a user
type AssignDeviceRequest struct {
	DeviceID   string `json:"deviceId"`   // Optional, generated when empty
	IsVerified bool   `json:"isVerified"` // Whether the device starts verified
}

// pathUserID parses the :id path parameter
func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}

// AdminListUsersHandler lists users with pagination
func AdminListUsersHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))  // Page size
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0")) // Page offset
		users, total, err := admin.ListUsers(limit, offset)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total": total, // Total user count
			"users": users, // Requested page, passwords excluded by the model
		})
	}
}

// AdminGetUserHandler returns a single user
func AdminGetUserHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		user, err := admin.GetUser(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// AdminUserDetailsHandler returns a user with account, devices and
// recent transactions
func AdminUserDetailsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		details, err := admin.GetUserDetails(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

// AdminSetAccessHandler toggles a user's active flag
func AdminSetAccessHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		var req AccessRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := admin.SetUserAccess(id, *req.IsActive)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// AdminDeleteUserHandler removes a user and everything the user owns
func AdminDeleteUserHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		if err := admin.DeleteUser(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// AdminAssignDeviceHandler attaches a device to a user, generating an
// identifier when the body omits one
func AdminAssignDeviceHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		var req AssignDeviceRequest // Bind JSON request to struct
		// An empty body is fine: everything in it is optional
		_ = c.ShouldBindJSON(&req)
		device, err := admin.AssignDevice(id, req.DeviceID, req.IsVerified)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, device)
	}
}

// AdminListDevicesHandler lists devices, optionally filtered by owner
func AdminListDevicesHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if raw := c.Query("userId"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
				return
			}
			userID = uint(v) // Filter by owner
		}
		devices, err := admin.ListDevices(userID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"devices": devices})
	}
}

// AdminVerifyDeviceHandler marks a device as verified so its owner can
// log in
func AdminVerifyDeviceHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		device, err := admin.VerifyDevice(c.Param("deviceId"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, device)
	}
}

// AdminDeleteDeviceHandler removes a device
func AdminDeleteDeviceHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := admin.DeleteDevice(c.Param("deviceId")); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Device deleted"})
	}
}

// AdminListAccountsHandler lists all accounts with their owner's email
func AdminListAccountsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := admin.ListAccounts()
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accounts": accounts})
	}
}

// AdminListTransactionsHandler lists transactions with optional type,
// status and user filters
func AdminListTransactionsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := service.TransactionFilter{
			Type:   c.Query("type"),   // DEPOSIT or WITHDRAWAL
			Status: c.Query("status"), // PENDING, COMPLETED or FAILED
		}
		filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))  // Page size
		filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0")) // Page offset
		if raw := c.Query("userId"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
				return
			}
			filter.UserID = uint(v) // Restrict to one user's account
		}
		transactions, total, err := admin.ListTransactions(filter)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": transactions, // Requested page
			"total":        total,        // Total matches
		})
	}
}

// AdminStatsHandler returns the dashboard aggregates
func AdminStatsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := admin.GetStats()
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
