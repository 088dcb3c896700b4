package domain

import "strings"

// Role represents the user's permission level.
type Role string

// RoleUser is the role every registered account starts with.
const RoleUser Role = "user"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser
}

// User is a registered account. Username and email are unique, compared
// case-insensitively.
type User struct {
	Document
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	Role         Role   `json:"role"`
}

// NormalizeEmail returns the canonical form used for uniqueness checks and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername returns the canonical form used for uniqueness checks.
// The stored Username keeps the casing the user registered with.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Identity is the verified content of an identity token: who is acting.
type Identity struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
}
