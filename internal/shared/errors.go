package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidToken indicates a rejected API token.
	ErrInvalidToken = errors.New("invalid api token")
)
