package entity

import "time"

type User struct {
	Id           uint
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PasswordResetToken struct {
	Id        uint
	UserId    uint
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// TokenClaims is the identity carried by a verified bearer token.
type TokenClaims struct {
	UserId   uint
	Username string
}
