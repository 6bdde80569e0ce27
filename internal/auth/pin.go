package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrPINMismatch = errors.New("pin mismatch")

func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", errors.New("empty pin")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePIN checks supplied against the stored value, which is either a
// bcrypt hash or a legacy plain PIN.
func ComparePIN(stored, supplied string) error {
	if stored == "" || supplied == "" {
		return ErrPINMismatch
	}
	if isBcryptHash(stored) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)); err != nil {
			return ErrPINMismatch
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return ErrPINMismatch
	}
	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
