package validation

import (
	"errors"
)

const (
	PasswordMinLength = 6
	// bcrypt ignores everything past 72 bytes. Both limits count bytes, not characters.
	PasswordMaxLength = 72
)

func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 6 bytes")
	}

	if len(password) > PasswordMaxLength {
		return errors.New("password must not exceed 72 bytes")
	}

	return nil
}
