package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Account Model
// One account per user. The balance is mutated only through the ledger
// service's deposit/withdraw operations and never goes negative.
type Account struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                            // Primary key
	UserID    uint            `gorm:"uniqueIndex;not null" json:"userId"`              // Foreign key to User, one account per user
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance"`      // Current balance, non-negative
	Currency  string          `gorm:"size:3;not null;default:USD" json:"currency"`     // ISO currency code
	CreatedAt time.Time       `json:"createdAt"`                                       // Creation timestamp
	UpdatedAt time.Time       `json:"updatedAt"`                                       // Last update timestamp
}
