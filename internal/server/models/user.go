package models

import "time"

// User is a row of the credential store.
type User struct {
	ID           string
	UserName     string
	Email        string
	Nombre       string
	PasswordHash string
	Protegido    bool
	CreatedAt    time.Time
}

// UserClaim is a custom key/value claim attached to a user.
type UserClaim struct {
	Type  string
	Value string
}
