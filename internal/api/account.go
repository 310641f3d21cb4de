package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parameter conversion

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money

	"savings_system/internal/middleware" // Context keys
	"savings_system/internal/service"    // Business services
)

// TransactionRequest is the deposit/withdraw body
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"` // Operation amount, must be positive
	Description string          `json:"description"`               // Optional description
}

// authedUserID pulls the authenticated user's ID out of the gin context
func authedUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return 0, false
	}
	return v.(uint), true
}

// BalanceHandler returns the authenticated user's account, creating it
// on first access
func BalanceHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c) // Get userID from context
		if !ok {
			return
		}
		account, err := ledger.GetOrCreateAccount(userID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, account) // Return the account
	}
}

// DepositHandler adds funds to the authenticated user's account
func DepositHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		record, err := ledger.Deposit(userID, req.Amount, req.Description)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, record) // Return the ledger entry
	}
}

// WithdrawHandler removes funds from the authenticated user's account
func WithdrawHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		record, err := ledger.Withdraw(userID, req.Amount, req.Description)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, record) // Return the ledger entry
	}
}

// TransactionsHandler returns a newest-first page of the authenticated
// user's ledger entries and the total count
func TransactionsHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c) // Get userID from context
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))   // Page size
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))  // Page offset
		transactions, total, err := ledger.GetHistory(userID, limit, offset)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": transactions, // Requested page
			"total":        total,        // Total entries for the account
		})
	}
}
