package models

import "time"

// User is the stored account a bearer token resolves to. PasswordHash is a
// bcrypt hash; the plaintext is never stored.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
