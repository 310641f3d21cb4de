package domain

import "time"

// User roles
const (
	RoleUser  = "user"  // Regular user
	RoleAdmin = "admin" // Administrator
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	Email     string    `gorm:"uniqueIndex;not null" json:"email"` // Unique email address
	Password  string    `gorm:"not null" json:"-"`                 // Hashed password, never serialized
	FirstName string    `gorm:"not null" json:"firstName"`         // First name
	LastName  string    `gorm:"not null" json:"lastName"`          // Last name
	Role      string    `gorm:"default:user" json:"role"`          // Role: user or admin
	IsActive  bool      `gorm:"not null" json:"isActive"`          // Whether the user may authenticate; no column default, every writer sets it explicitly
	CreatedAt time.Time `json:"createdAt"`                         // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt"`                         // Last update timestamp
}
