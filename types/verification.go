package types

import "time"

// EmailVerification is a pending, single-use proof that a school email
// address is reachable. It is created when signup begins and deleted
// exactly once when the matching account is created.
type EmailVerification struct {
	// ID is the unique identifier of the verification record.
	ID int `json:"id" db:"id"`

	// Email is the address the verification link was sent to.
	Email string `json:"email" db:"email"`

	// Token is the opaque single-use token embedded in the link.
	Token string `json:"token" db:"token"`

	// CreatedAt is the timestamp when the verification was requested.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ExpiresAt is the timestamp after which the token is rejected.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (v EmailVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
