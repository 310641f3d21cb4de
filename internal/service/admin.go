package service

import (
	"errors" // Sentinel error checks

	"github.com/shopspring/decimal" // Balance aggregation
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library

	"savings_system/internal/domain" // Importing domain models
	"savings_system/internal/utils"  // Device-ID generation
)

// AdminService provides the admin-only management operations: user
// listing and deactivation, device verification and the dashboard
// aggregates. All role checks happen in the middleware layer.
type AdminService struct {
	db *gorm.DB // Database handle
}

// NewAdminService constructs an admin service on the given database
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// ListUsers returns a newest-first page of users and the total count
func (s *AdminService) ListUsers(limit, offset int) ([]domain.User, int64, error) {
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
	var total int64
	if err := s.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := make([]domain.User, 0, limit)
	if err := s.db.Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUser returns a single user by ID
func (s *AdminService) GetUser(userID uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserDetails bundles a user with everything the user owns
type UserDetails struct {
	User         domain.User          `json:"user"`         // The user record
	Account      *domain.Account      `json:"account"`      // Account, nil when never created
	Devices      []domain.Device      `json:"devices"`      // All devices
	Transactions []domain.Transaction `json:"transactions"` // Recent transactions, newest first
}

// GetUserDetails returns a user together with account, devices and the
// most recent transactions
func (s *AdminService) GetUserDetails(userID uint) (*UserDetails, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	details := UserDetails{User: *user, Devices: []domain.Device{}, Transactions: []domain.Transaction{}}
	// Account may not exist yet for users who never touched the ledger
	var account domain.Account
	err = s.db.Where("user_id = ?", userID).First(&account).Error
	switch {
	case err == nil:
		details.Account = &account
		// Recent transactions for the account
		if err := s.db.Where("account_id = ?", account.ID).
			Order("created_at desc, id desc").
			Limit(defaultHistoryLimit).
			Find(&details.Transactions).Error; err != nil {
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if err := s.db.Where("user_id = ?", userID).Find(&details.Devices).Error; err != nil {
		return nil, err
	}
	return &details, nil
}

// SetUserAccess toggles a user's isActive flag. Deactivated users fail
// login and every authenticated request from then on.
func (s *AdminService) SetUserAccess(userID uint, isActive bool) (*domain.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	user.IsActive = isActive
	// Log the access change
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,   // Affected user
		"is_active": isActive, // New state
	}).Info("User access updated")
	return user, nil
}

// DeleteUser removes a user and everything the user owns in one
// transaction: ledger entries first, then account, devices and finally
// the user row
func (s *AdminService) DeleteUser(userID uint) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Delete transactions through the owning account
		var account domain.Account
		err := tx.Where("user_id = ?", userID).First(&account).Error
		switch {
		case err == nil:
			if err := tx.Where("account_id = ?", account.ID).Delete(&domain.Transaction{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Delete(&account).Error; err != nil {
				return err // Return error to rollback
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Device{}).Error; err != nil {
			return err // Return error to rollback
		}
		if err := tx.Delete(user).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Affected user
			"error":   err.Error(), // Error message
		}).Error("User deletion failed")
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID}).Info("User deleted")
	return nil
}

// ListDevices returns devices, optionally filtered by owner
func (s *AdminService) ListDevices(userID uint) ([]domain.Device, error) {
	query := s.db.Order("created_at desc, id desc")
	if userID != 0 {
		query = query.Where("user_id = ?", userID) // Filter by owner
	}
	devices := make([]domain.Device, 0)
	if err := query.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// VerifyDevice marks the device with the given client identifier as
// verified, enabling its owner to log in
func (s *AdminService) VerifyDevice(deviceID string) (*domain.Device, error) {
	var device domain.Device
	if err := s.db.Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&device).Update("is_verified", true).Error; err != nil {
		return nil, err
	}
	device.IsVerified = true
	// Log the verification
	logrus.WithFields(logrus.Fields{
		"user_id":   device.UserID,   // Owner
		"device_id": device.DeviceID, // Client identifier
	}).Info("Device verified")
	return &device, nil
}

// DeleteDevice removes the device with the given client identifier
func (s *AdminService) DeleteDevice(deviceID string) error {
	res := s.db.Where("device_id = ?", deviceID).Delete(&domain.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignDevice attaches a device to a user. When deviceID is empty a
// fresh identifier is generated server-side.
func (s *AdminService) AssignDevice(userID uint, deviceID string, isVerified bool) (*domain.Device, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	if deviceID == "" {
		generated, err := utils.GenerateDeviceID(s.db)
		if err != nil {
			return nil, err
		}
		deviceID = generated
	} else {
		// Reject identifiers the user already owns before hitting the
		// unique index, mirroring the duplicate-email check on register
		var count int64
		if err := s.db.Model(&domain.Device{}).
			Where("user_id = ? AND device_id = ?", userID, deviceID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateDevice
		}
	}
	device := domain.Device{UserID: userID, DeviceID: deviceID, IsVerified: isVerified}
	if err := s.db.Create(&device).Error; err != nil {
		return nil, err // Unique index still rejects a racing duplicate
	}
	return &device, nil
}

// AccountWithOwner is an account joined with its owner's email for the
// admin accounts listing
type AccountWithOwner struct {
	domain.Account        // Embedded account fields
	Email          string `json:"email"` // Owner email
}

// ListAccounts returns all accounts with their owner's email
func (s *AdminService) ListAccounts() ([]AccountWithOwner, error) {
	accounts := make([]AccountWithOwner, 0)
	// Repository-level join instead of model associations
	if err := s.db.Model(&domain.Account{}).
		Select("accounts.*, users.email").
		Joins("JOIN users ON users.id = accounts.user_id").
		Order("accounts.created_at desc").
		Scan(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// TransactionFilter narrows the admin transaction listing
type TransactionFilter struct {
	Type   string // DEPOSIT or WITHDRAWAL, empty for all
	Status string // PENDING, COMPLETED or FAILED, empty for all
	UserID uint   // Restrict to one user's account, zero for all
	Limit  int    // Page size
	Offset int    // Page offset
}

// ListTransactions returns a filtered, newest-first page of transactions
// and the total count of matches
func (s *AdminService) ListTransactions(filter TransactionFilter) ([]domain.Transaction, int64, error) {
	// Clamp pagination parameters
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	query := s.db.Model(&domain.Transaction{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type) // Filter by transaction type
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status) // Filter by status
	}
	if filter.UserID != 0 {
		// Restrict to the user's account via a join-free subquery
		query = query.Where("account_id IN (?)",
			s.db.Model(&domain.Account{}).Select("id").Where("user_id = ?", filter.UserID))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	transactions := make([]domain.Transaction, 0, filter.Limit)
	if err := query.Order("created_at desc, id desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// Stats bundles the dashboard aggregates
type Stats struct {
	TotalUsers      int64           `json:"totalUsers"`      // All users
	ActiveUsers     int64           `json:"activeUsers"`     // Users with isActive=true
	VerifiedDevices int64           `json:"verifiedDevices"` // Devices with isVerified=true
	PendingDevices  int64           `json:"pendingDevices"`  // Devices awaiting verification
	TotalAccounts   int64           `json:"totalAccounts"`   // All accounts
	TotalBalance    decimal.Decimal `json:"totalBalance"`    // Sum of all balances
	TotalTxCount    int64           `json:"totalTransactions"` // All ledger entries
}

// GetStats computes the dashboard aggregates with simple counts and a sum
func (s *AdminService) GetStats() (*Stats, error) {
	var stats Stats
	if err := s.db.Model(&domain.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Device{}).Where("is_verified = ?", true).Count(&stats.VerifiedDevices).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Device{}).Where("is_verified = ?", false).Count(&stats.PendingDevices).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&domain.Account{}).Count(&stats.TotalAccounts).Error; err != nil {
		return nil, err
	}
	// COALESCE so an empty table sums to zero instead of NULL
	var balance struct {
		Total decimal.Decimal
	}
	if err := s.db.Model(&domain.Account{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Scan(&balance).Error; err != nil {
		return nil, err
	}
	stats.TotalBalance = balance.Total
	if err := s.db.Model(&domain.Transaction{}).Count(&stats.TotalTxCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
