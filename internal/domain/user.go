package domain

import "time"

// AuthProvider identifies how an account was established.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the durable identity record. PasswordHash is present only for
// locally-registered accounts and is never serialized to callers.
type User struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Email        string       `json:"email" db:"email"`
	Age          int          `json:"age" db:"age"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	Provider     AuthProvider `json:"provider" db:"provider"`
	ProviderID   *string      `json:"provider_id,omitempty" db:"provider_id"`
	Role         Role         `json:"role" db:"role"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
