package domain

import "time"

// Device Model
// A device is a trust token bound to a user. Non-admin users must own at
// least one verified device before they can log in.
type Device struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                                // Primary key
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_device" json:"userId"`  // Foreign key to User
	DeviceID   string    `gorm:"not null;uniqueIndex:idx_user_device" json:"deviceId"` // Client device identifier, unique per user
	IsVerified bool      `gorm:"default:false" json:"isVerified"`                     // Verified by admin action
	CreatedAt  time.Time `json:"createdAt"`                                           // Creation timestamp
	UpdatedAt  time.Time `json:"updatedAt"`                                           // Last update timestamp
}
