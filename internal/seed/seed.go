package seed

import (
	"errors" // Sentinel error checks

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library

	"savings_system/internal/config" // Configuration
	"savings_system/internal/domain" // Importing domain models
	"savings_system/internal/utils"  // Password hashing
)

// AdminUser ensures an admin user with a verified device exists, using
// the ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_DEVICE_ID settings. Safe to
// run on every startup: an existing admin is left untouched apart from
// making sure the seed device is present and verified.
func AdminUser(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logrus.Info("Admin seed skipped, no credentials configured")
		return nil
	}

	var admin domain.User
	err := db.Where("email = ? AND role = ?", cfg.AdminEmail, domain.RoleAdmin).First(&admin).Error
	switch {
	case err == nil:
		// Admin exists; only reconcile the seed device
		logrus.WithFields(logrus.Fields{"email": cfg.AdminEmail}).Info("Admin already exists")
		return ensureAdminDevice(db, admin.ID, cfg.AdminDeviceID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	// Create the admin together with its verified device, both or neither
	err = db.Transaction(func(tx *gorm.DB) error {
		admin = domain.User{
			Email:     cfg.AdminEmail,   // Seed email
			Password:  hash,             // Hashed seed password
			FirstName: "Admin",          // Placeholder name
			LastName:  "User",           // Placeholder name
			Role:      domain.RoleAdmin, // Administrator
			IsActive:  true,             // Active from the start
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err // Return error to rollback
		}
		if cfg.AdminDeviceID != "" {
			device := domain.Device{
				UserID:     admin.ID,          // Owner
				DeviceID:   cfg.AdminDeviceID, // Seed device identifier
				IsVerified: true,              // Admin devices start verified
			}
			if err := tx.Create(&device).Error; err != nil {
				return err // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Admin seed failed")
		return err
	}
	logrus.WithFields(logrus.Fields{"email": cfg.AdminEmail}).Info("Admin user seeded")
	return nil
}

// ensureAdminDevice creates or verifies the configured seed device for
// an existing admin
func ensureAdminDevice(db *gorm.DB, adminID uint, deviceID string) error {
	if deviceID == "" {
		return nil // No seed device configured
	}
	var device domain.Device
	err := db.Where("user_id = ? AND device_id = ?", adminID, deviceID).First(&device).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = domain.Device{UserID: adminID, DeviceID: deviceID, IsVerified: true}
		if err := db.Create(&device).Error; err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"device_id": deviceID}).Info("Admin device seeded")
	case err != nil:
		return err
	case !device.IsVerified:
		if err := db.Model(&device).Update("is_verified", true).Error; err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"device_id": deviceID}).Info("Admin device verified")
	}
	return nil
}
