package service

import "errors"

// Business-rule failures raised by the services. The API layer maps each
// sentinel to an HTTP status with errors.Is; anything unrecognized becomes
// a generic 500 so storage internals never leak to clients.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")      // Deposit/withdraw with amount <= 0
	ErrInsufficientFunds  = errors.New("insufficient funds")           // Withdrawal larger than the balance
	ErrDuplicateEmail     = errors.New("user already exists")          // Registration with a taken email
	ErrDuplicateDevice    = errors.New("device already assigned")      // Assigning an identifier the user already owns
	ErrInvalidCredentials = errors.New("invalid credentials")          // Unknown email, inactive user or wrong password
	ErrDeviceNotVerified  = errors.New("device verification required") // Login without a verified device
	ErrInvalidToken       = errors.New("invalid or expired token")     // Bad signature or expired JWT
	ErrNotFound           = errors.New("record not found")             // Missing user/device/account
)
