package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the identity domain
// Passwords are stored as bcrypt hashes in PasswordHash
//
// NormalizedUserName and NormalizedEmail back the uniqueness constraints
// and every lookup; UserName and Email keep the casing the user registered with.
type User struct {
	ID                 string
	UserName           string
	NormalizedUserName string
	Email              string
	NormalizedEmail    string
	FirstName          string
	LastName           string
	PasswordHash       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Normalize upper-cases a user name, email or role name for comparison.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
