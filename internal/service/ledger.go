package service

import (
	"errors" // Sentinel error checks
	"time"   // Timestamps for audit logs

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library

	"savings_system/internal/domain" // Importing domain models
)

// History page sizing
const (
	defaultHistoryLimit = 50  // Page size when the client sends none
	maxHistoryLimit     = 100 // Upper bound on page size
)

// LedgerService maintains one account per user and its append-only
// transaction history. It is stateless: all state lives in the database
// handle it is constructed with.
type LedgerService struct {
	db *gorm.DB // Database handle
}

// NewLedgerService constructs a ledger service on the given database
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// GetOrCreateAccount returns the user's account, creating a zero-balance
// USD account on first access. The unique index on user_id guarantees the
// account is never created twice; a conflicting concurrent create surfaces
// as a retry via the follow-up lookup.
func (s *LedgerService) GetOrCreateAccount(userID uint) (*domain.Account, error) {
	var account domain.Account
	err := s.db.Where("user_id = ?", userID).First(&account).Error
	if err == nil {
		return &account, nil // Account already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err // Storage failure
	}
	// Create the account lazily with a zero balance
	account = domain.Account{UserID: userID, Balance: decimal.Zero, Currency: "USD"}
	if err := s.db.Create(&account).Error; err != nil {
		// A concurrent request may have created it first; re-read
		if lookupErr := s.db.Where("user_id = ?", userID).First(&account).Error; lookupErr == nil {
			return &account, nil
		}
		return nil, err
	}
	return &account, nil
}

// Deposit atomically adds amount to the user's balance and records a
// COMPLETED DEPOSIT transaction carrying the before/after balances. The
// balance update and the ledger insert commit together or not at all.
func (s *LedgerService) Deposit(userID uint, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	// Reject non-positive amounts before touching storage
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Deposit" // Default description
	}
	account, err := s.GetOrCreateAccount(userID)
	if err != nil {
		return nil, err // Storage failure
	}

	var record domain.Transaction
	// Atomic balance update plus ledger insert
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Increment the balance in a single statement so concurrent
		// deposits never observe a stale value
		if err := tx.Model(&domain.Account{}).
			Where("id = ?", account.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}
		// Re-read the committed balance inside the same transaction
		var updated domain.Account
		if err := tx.First(&updated, account.ID).Error; err != nil {
			return err // Return error to rollback
		}
		record = domain.Transaction{
			AccountID:     account.ID,                       // Owning account
			Type:          domain.TxTypeDeposit,             // Transaction type
			Amount:        amount,                           // Deposit amount
			BalanceBefore: updated.Balance.Sub(amount),      // Balance prior to this deposit
			BalanceAfter:  updated.Balance,                  // Balance after this deposit
			Description:   description,                      // Caller-supplied description
			Status:        domain.TxStatusCompleted,         // Applied
		}
		// Save transaction
		if err := tx.Create(&record).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	// Handle transaction result
	if err != nil {
		// Log the error with context
		logrus.WithFields(logrus.Fields{
			"user_id": userID,          // User ID
			"amount":  amount.String(), // Deposit amount
			"error":   err.Error(),     // Error message
		}).Error("Deposit failed")
		return nil, err
	}
	// Log successful deposit
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,                          // User ID
		"amount":    amount.String(),                 // Deposit amount
		"type":      domain.TxTypeDeposit,            // Transaction type
		"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Deposit transaction")
	return &record, nil
}

// Withdraw atomically subtracts amount from the user's balance and records
// a COMPLETED WITHDRAWAL transaction. The conditional update below only
// matches when the balance covers the amount, so two concurrent withdrawals
// can never both drain the same funds: the storage layer serializes the row
// and the losing update affects zero rows.
func (s *LedgerService) Withdraw(userID uint, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	// Reject non-positive amounts before touching storage
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Withdrawal" // Default description
	}
	account, err := s.GetOrCreateAccount(userID)
	if err != nil {
		return nil, err // Storage failure
	}

	var record domain.Transaction
	// Atomic balance update plus ledger insert
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Guarded decrement: only succeeds when the balance covers the
		// amount, which is the overdraft-race prevention in one statement
		res := tx.Model(&domain.Account{}).
			Where("id = ? AND balance >= ?", account.ID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds // Balance did not cover the amount
		}
		// Re-read the committed balance inside the same transaction
		var updated domain.Account
		if err := tx.First(&updated, account.ID).Error; err != nil {
			return err // Return error to rollback
		}
		record = domain.Transaction{
			AccountID:     account.ID,                  // Owning account
			Type:          domain.TxTypeWithdrawal,     // Transaction type
			Amount:        amount,                      // Withdrawal amount
			BalanceBefore: updated.Balance.Add(amount), // Balance prior to this withdrawal
			BalanceAfter:  updated.Balance,             // Balance after this withdrawal
			Description:   description,                 // Caller-supplied description
			Status:        domain.TxStatusCompleted,    // Applied
		}
		// Save transaction
		if err := tx.Create(&record).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	// Handle transaction result
	if err != nil {
		if !errors.Is(err, ErrInsufficientFunds) {
			// Log unexpected failures; insufficient funds is a normal outcome
			logrus.WithFields(logrus.Fields{
				"user_id": userID,          // User ID
				"amount":  amount.String(), // Withdrawal amount
				"error":   err.Error(),     // Error message
			}).Error("Withdrawal failed")
		}
		return nil, err
	}
	// Log successful withdrawal
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,                          // User ID
		"amount":    amount.String(),                 // Withdrawal amount
		"type":      domain.TxTypeWithdrawal,         // Transaction type
		"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Withdrawal transaction")
	return &record, nil
}

// GetHistory returns a newest-first page of the user's transactions along
// with the total count
func (s *LedgerService) GetHistory(userID uint, limit, offset int) ([]domain.Transaction, int64, error) {
	// Clamp pagination parameters
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	account, err := s.GetOrCreateAccount(userID)
	if err != nil {
		return nil, 0, err // Storage failure
	}
	var total int64
	// Count total transactions for pagination
	if err := s.db.Model(&domain.Transaction{}).
		Where("account_id = ?", account.ID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	transactions := make([]domain.Transaction, 0, limit)
	// Fetch the requested page, newest first
	if err := s.db.Where("account_id = ?", account.ID).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}
