package models

import (
	"time"
)

// Token purposes. A token issued for one purpose cannot redeem the other.
const (
	TokenPurposeEmailVerification = "email_verification"
	TokenPurposePasswordReset     = "password_reset"
)

// VerificationToken is a single-use proof of inbox possession, used for both
// email verification and password reset. Only the SHA-256 digest of the token
// value is stored; the plain value travels in the emailed link.
type VerificationToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the token has expired
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
