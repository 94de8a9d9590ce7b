package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashing wraps every bcrypt failure other than a mismatch.
var ErrHashing = errors.New("password hashing failure")

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

// hashCost is lowered by tests to keep them fast.
var hashCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of password. A fresh salt is
// drawn on every call, so hashing the same password twice yields different
// strings. Any error wraps ErrHashing.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash. A mismatch is
// (false, nil); an error (wrapping ErrHashing) means hash is not a bcrypt hash.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrHashing, err)
	}
}
