package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"savings_system/internal/domain"
	"savings_system/internal/utils"
)

// newTestDB opens a private in-memory SQLite database with the full
// schema migrated. cache=shared keeps the database alive across the
// connection pool; the busy timeout lets concurrent transactions wait
// instead of failing immediately.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=10000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Device{}, &domain.Account{}, &domain.Transaction{}))
	return db
}

// testTTL is the token lifetime used across the auth tests
const testTTL = time.Hour

// newTestAuth builds an auth service with test settings on the given DB
func newTestAuth(db *gorm.DB) *AuthService {
	return NewAuthService(db, "test-secret", testTTL, false)
}

// createUser inserts a user directly, bypassing registration
func createUser(t *testing.T, db *gorm.DB, email, password, role string, active bool) domain.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := domain.User{
		Email:     email,
		Password:  hash,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createVerifiedDevice attaches a verified device to a user
func createVerifiedDevice(t *testing.T, db *gorm.DB, userID uint) domain.Device {
	t.Helper()
	device := domain.Device{UserID: userID, DeviceID: fmt.Sprintf("dev-%d", userID), IsVerified: true}
	require.NoError(t, db.Create(&device).Error)
	return device
}
