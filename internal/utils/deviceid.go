package utils

import (
	"crypto/rand"  // Random bytes for the fallback identifier
	"encoding/hex" // Hex encoding of random bytes
	"fmt"          // Composing the fallback identifier
	"time"         // Timestamp component of the fallback

	"github.com/google/uuid" // Random device identifiers
	"gorm.io/gorm"           // GORM ORM library

	"savings_system/internal/domain" // Importing domain models
)

// deviceIDAttempts bounds the collision retry loop before falling back
const deviceIDAttempts = 3

// GenerateDeviceID returns a device identifier not yet present in the device
// table. UUIDs make collisions practically impossible, but the uniqueness
// check retries a few times and then falls back to a timestamp+random
// composite so the caller always gets a usable identifier.
func GenerateDeviceID(db *gorm.DB) (string, error) {
	for i := 0; i < deviceIDAttempts; i++ {
		candidate := uuid.NewString() // Random identifier
		var count int64
		if err := db.Model(&domain.Device{}).Where("device_id = ?", candidate).Count(&count).Error; err != nil {
			return "", err // Storage failure
		}
		if count == 0 {
			return candidate, nil // Identifier is free
		}
	}
	// Fallback: timestamp plus random chunk, unique for all practical purposes
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("dev_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf)), nil
}
