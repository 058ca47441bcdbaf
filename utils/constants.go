package utils

// Application constants
const (
	// Application name
	AppName = "InfuseDesk"

	// Page size of a listing when ?limit= is absent, and its ceiling
	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100

	// Minimum password length
	MinPasswordLength = 8

	// Minimum name length
	MinNameLength = 2

	// Maximum name length
	MaxNameLength = 50
)

// Error messages
const (
	// Authentication errors
	ErrInvalidCredentials = "Invalid username or password"
	ErrUserInactive       = "Your account has been deactivated"
	ErrUnauthorized       = "Please login for access"
	ErrForbidden          = "Admin access required"

	// Validation errors
	ErrInvalidID = "Invalid ID"

	// Server errors
	ErrInternalServer = "Internal server error"
)

// Success messages
const (
	MsgLoginSuccess  = "Login successful"
	MsgLogoutSuccess = "Logged out successfully"

	MsgCreateSuccess = "Created successfully"
	MsgUpdateSuccess = "Updated successfully"
	MsgFetchSuccess  = "Fetched successfully"
)
