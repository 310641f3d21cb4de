package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Transaction types
const (
	TxTypeDeposit    = "DEPOSIT"    // Funds added to an account
	TxTypeWithdrawal = "WITHDRAWAL" // Funds removed from an account
)

// Transaction statuses
const (
	TxStatusPending   = "PENDING"   // Not yet applied
	TxStatusCompleted = "COMPLETED" // Applied to the account balance
	TxStatusFailed    = "FAILED"    // Rejected, no balance change
)

// Transaction Model
// Append-only ledger entry. BalanceAfter = BalanceBefore +/- Amount and
// matches the owning account's balance at commit time. Rows are immutable
// once written.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	AccountID     uint            `gorm:"index;not null" json:"accountId"`              // Foreign key to Account
	Type          string          `gorm:"not null" json:"type"`                         // DEPOSIT or WITHDRAWAL
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`    // Always positive
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balanceBefore"` // Balance prior to the operation
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balanceAfter"`  // Balance after the operation
	Description   string          `json:"description"`                                  // Free-text description
	Status        string          `gorm:"default:COMPLETED" json:"status"`              // PENDING, COMPLETED or FAILED
	CreatedAt     time.Time       `json:"createdAt"`                                    // Creation timestamp
}
