package types

import "time"

// User represents a student account in the hub.
// It contains identity, profile, and role metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// StudentID is the unique university student number used to log in.
	StudentID string `json:"student_id" db:"student_id"`

	// Name is the user's real name.
	Name string `json:"name" db:"name"`

	// Nickname is the unique display name shown on boards.
	Nickname string `json:"nickname" db:"nickname"`

	// Email is the verified school email address, unique per account.
	Email string `json:"email" db:"email"`

	// IsAdmin marks administrator accounts. Defaults to false.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// Birthdate is optional profile data.
	Birthdate *time.Time `json:"birthdate,omitempty" db:"birthdate"`

	// Status is optional profile data (e.g. enrolled, on leave).
	Status string `json:"status,omitempty" db:"status"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
