package service

import (
	"errors" // Sentinel error checks
	"time"   // Token lifetime and timestamps

	"github.com/shopspring/decimal" // Zero balance for new accounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library

	"savings_system/internal/domain" // Importing domain models
	"savings_system/internal/utils"  // JWT, password and device-ID helpers
)

// AuthService verifies credentials, manages device trust and issues
// bearer tokens. It is stateless: configuration is captured at
// construction and all state lives in the database.
type AuthService struct {
	db        *gorm.DB      // Database handle
	jwtSecret string        // JWT signing secret
	jwtTTL    time.Duration // Token lifetime
	isProd    bool          // Controls temp-password exposure in reset responses
}

// NewAuthService constructs an auth service on the given database
func NewAuthService(db *gorm.DB, jwtSecret string, jwtTTL time.Duration, isProd bool) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret, jwtTTL: jwtTTL, isProd: isProd}
}

// RegisterResult carries the rows created by a successful registration
type RegisterResult struct {
	User   domain.User   // Created user
	Device domain.Device // Auto-generated unverified device
}

// Register creates a user with a hashed password, a server-generated
// unverified device and a zero-balance account, all in one transaction.
// If any of the three inserts fails, none persist.
func (s *AuthService) Register(email, password, firstName, lastName string) (*RegisterResult, error) {
	// Reject duplicate emails up front for a friendlier error
	var count int64
	if err := s.db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}
	// Hash the password before opening the transaction
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	// Server-generated device identifier, unique across the device table
	deviceID, err := utils.GenerateDeviceID(s.db)
	if err != nil {
		return nil, err
	}

	var result RegisterResult
	// Atomic creation of user, device and account
	err = s.db.Transaction(func(tx *gorm.DB) error {
		user := domain.User{
			Email:     email,           // Unique email
			Password:  hash,            // Hashed password
			FirstName: firstName,       // First name
			LastName:  lastName,        // Last name
			Role:      domain.RoleUser, // New registrations are regular users
			IsActive:  true,            // Active until an admin deactivates
		}
		if err := tx.Create(&user).Error; err != nil {
			return err // Return error to rollback; covers unique-index races
		}
		device := domain.Device{
			UserID:     user.ID,  // Owner
			DeviceID:   deviceID, // Server-generated identifier
			IsVerified: false,    // Awaits admin verification
		}
		if err := tx.Create(&device).Error; err != nil {
			return err // Return error to rollback
		}
		account := domain.Account{
			UserID:   user.ID,      // Owner, one account per user
			Balance:  decimal.Zero, // Accounts start empty
			Currency: "USD",        // Default currency
		}
		if err := tx.Create(&account).Error; err != nil {
			return err // Return error to rollback
		}
		result = RegisterResult{User: user, Device: device}
		return nil // Commit transaction
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,       // Attempted email
			"error": err.Error(), // Error message
		}).Error("Registration failed")
		return nil, err
	}
	// Log successful registration
	logrus.WithFields(logrus.Fields{
		"user_id":   result.User.ID,   // Created user ID
		"device_id": result.Device.ID, // Created device record ID
	}).Info("User registered")
	return &result, nil
}

// LoginResult carries the issued token plus the authenticated user and,
// when a device identifier was involved, its device row
type LoginResult struct {
	Token  string         // Signed bearer token
	User   domain.User    // Authenticated user
	Device *domain.Device // Device used for this login, nil when none
}

// Login authenticates a user and enforces the device-trust policy:
//   - unknown email, inactive user and wrong password all yield the same
//     ErrInvalidCredentials, so callers cannot probe which emails exist
//   - a regular user needs at least one verified device
//   - an admin bypasses device checks; an unknown or unverified device
//     identifier supplied by an admin is auto-created and auto-verified
func (s *AuthService) Login(email, password, deviceID string) (*LoginResult, error) {
	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials // Same error as a wrong password
		}
		return nil, err
	}
	// Inactive users are rejected with the same message as bad credentials
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	// Compare provided password with stored hash
	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	var device *domain.Device
	if user.Role == domain.RoleAdmin {
		// Admins bypass verification; register their device on the fly
		if deviceID != "" {
			var d domain.Device
			err := s.db.Where("user_id = ? AND device_id = ?", user.ID, deviceID).First(&d).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				d = domain.Device{UserID: user.ID, DeviceID: deviceID, IsVerified: true}
				if err := s.db.Create(&d).Error; err != nil {
					return nil, err
				}
			case err != nil:
				return nil, err
			case !d.IsVerified:
				if err := s.db.Model(&d).Update("is_verified", true).Error; err != nil {
					return nil, err
				}
				d.IsVerified = true
			}
			device = &d
		}
	} else {
		// Regular users need at least one verified device
		var d domain.Device
		err := s.db.Where("user_id = ? AND is_verified = ?", user.ID, true).First(&d).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotVerified
		}
		if err != nil {
			return nil, err
		}
		device = &d
	}

	// Issue the bearer token; the device record ID is zero when no device
	// was involved (admin login without an identifier)
	var deviceRecordID uint
	if device != nil {
		deviceRecordID = device.ID
	}
	token, err := utils.GenerateJWT(user.ID, user.Role, deviceRecordID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	// Log successful login
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,   // User ID
		"role":    user.Role, // Role, diagnostic only
	}).Info("User logged in")
	return &LoginResult{Token: token, User: user, Device: device}, nil
}

// VerifyToken validates a bearer token and returns its claims
func (s *AuthService) VerifyToken(token string) (*utils.Claims, error) {
	claims, err := utils.ParseJWT(token, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResetResult carries the outcome of a password-reset request
type ResetResult struct {
	Message      string // Generic message, identical whether the email exists
	TempPassword string // Only populated outside production, for demos
}

// Generic reset acknowledgement, deliberately identical for known and
// unknown emails
const resetMessage = "If the email exists, a temporary password has been sent."

// RequestPasswordReset generates a random temporary password for the user
// and persists its hash immediately, replacing the old credential. The
// response never reveals whether the email exists. Delivery is simulated
// by logging the temporary password.
func (s *AuthService) RequestPasswordReset(email string) (*ResetResult, error) {
	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown email gets the same acknowledgement
			return &ResetResult{Message: resetMessage}, nil
		}
		return nil, err
	}
	tempPassword := utils.GenerateTempPassword()
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}
	// The new password is live the moment it is stored
	if err := s.db.Model(&user).Update("password", hash).Error; err != nil {
		return nil, err
	}
	// Simulated email delivery
	logrus.WithFields(logrus.Fields{
		"user_id":       user.ID,      // User ID
		"temp_password": tempPassword, // Diagnostic log stands in for email delivery
	}).Info("Password reset issued")

	result := &ResetResult{Message: resetMessage}
	if !s.isProd {
		result.TempPassword = tempPassword // Exposed for demo setups only
	}
	return result, nil
}

// GetUser loads a user by primary key
func (s *AuthService) GetUser(userID uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetDevice loads a device by primary key
func (s *AuthService) GetDevice(deviceRecordID uint) (*domain.Device, error) {
	var device domain.Device
	if err := s.db.First(&device, deviceRecordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}
