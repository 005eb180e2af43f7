package validation

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores or rejects input past 72 bytes
	MaxPasswordLength = 72
)

var (
	ErrEmailInvalid     = errors.New("Valid email is required")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes")
	ErrPasswordRequired = errors.New("Password is required")
	ErrNameRequired     = errors.New("Name is required")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

func ValidateEmail(email string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateRegistration checks fields in the order the API reports them.
func ValidateRegistration(email, password, name string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	return ValidateName(name)
}

func ValidateLogin(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
