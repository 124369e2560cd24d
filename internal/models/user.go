package models

import (
	"time"
)

// ProfilePhoto points at the account's avatar in object storage. Key is kept
// so the object can be removed when the photo is replaced or the profile
// deleted.
type ProfilePhoto struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string // never serialized; response DTOs exclude it
	Bio           string
	EmailVerified bool
	IsAdmin       bool
	ProfilePhoto  ProfilePhoto
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
