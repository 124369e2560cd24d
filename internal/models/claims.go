package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims embedded in the signed bearer credential.
type SessionClaims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
