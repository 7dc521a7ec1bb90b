package auth

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const RoleAdmin = "admin"

type AccessClaims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}
