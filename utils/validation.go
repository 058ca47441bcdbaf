package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	nameRegex     = regexp.MustCompile(`[0-9!@#$%^&*(),.?":{}|<>]`)

	hasLower  = regexp.MustCompile(`[a-z]`)
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// SanitizeString escapes HTML and strips tags from free text
func SanitizeString(input string) string {
	sanitized := html.EscapeString(input)
	return htmlTagRegex.ReplaceAllString(sanitized, "")
}

// ValidateUsername checks if the username meets the requirements
func ValidateUsername(username string) (bool, string) {
	if len(username) < 3 {
		return false, "Username must be at least 3 characters long"
	}
	if len(username) > 20 {
		return false, "Username must not exceed 20 characters"
	}
	if !usernameRegex.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// ValidateEmail checks if the email is valid. Empty is allowed.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return true, ""
	}
	if !emailRegex.MatchString(email) {
		return false, "Invalid email format. Please enter a valid email address"
	}
	return true, ""
}

// ValidatePassword checks if the password meets the requirements
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength)
	}
	if !hasLower.MatchString(password) {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasUpper.MatchString(password) {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasNumber.MatchString(password) {
		return false, "Password must contain at least one number"
	}
	return true, ""
}

// FormatPhoneNumber normalises a phone number to digits separated the way
// it was entered, e.g. "010-1234-5678". Spaces and dots become hyphens.
func FormatPhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	digits := 0
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		default:
			return "", fmt.Errorf("phone number contains invalid character %q", r)
		}
	}
	if digits < 9 || digits > 15 {
		return "", fmt.Errorf("phone number must have between 9 and 15 digits")
	}
	return strings.TrimSuffix(b.String(), "-"), nil
}

// ValidatePhone checks if the phone number is valid and returns it formatted
func ValidatePhone(phone string) (bool, string) {
	if phone == "" {
		return false, "Phone number is required"
	}
	formatted, err := FormatPhoneNumber(phone)
	if err != nil {
		return false, err.Error()
	}
	return true, formatted
}

// ValidateName checks if the name is valid
func ValidateName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return false, fmt.Sprintf("Name must be at least %d characters long", MinNameLength)
	}
	if len(name) > MaxNameLength {
		return false, fmt.Sprintf("Name must not exceed %d characters", MaxNameLength)
	}
	if nameRegex.MatchString(name) {
		return false, "Name cannot contain numbers or special characters"
	}
	return true, ""
}

// ValidateStringLength validates string length
func ValidateStringLength(str string, min, max int) error {
	length := len(strings.TrimSpace(str))
	if length < min {
		return fmt.Errorf("must be at least %d characters long", min)
	}
	if length > max {
		return fmt.Errorf("must not exceed %d characters", max)
	}
	return nil
}
