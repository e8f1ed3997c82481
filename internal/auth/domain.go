// Package auth authenticates API clients with bearer tokens.
package auth

import "time"

// APIToken is a named bearer credential. Only the bcrypt hash is stored.
type APIToken struct {
	ID         int64
	Name       string
	TokenHash  string
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
