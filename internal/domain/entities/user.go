package entities

import (
	"time"
)

// User represents an account that owns markers
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// UserSummary is the public part of a user returned with a token
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthSession is returned by register and login
type AuthSession struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Principal is the authenticated caller, decoded from a bearer token
type Principal struct {
	UserID   int64
	Username string
}
