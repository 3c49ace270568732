package domain

import "time"

// IssuedToken is a signed access token together with its session identifier.
type IssuedToken struct {
	Token     string
	TokenID   string
	UserID    int64
	ExpiresAt time.Time
}

// SessionKey is the cache key under which a live session marker is stored.
func SessionKey(tokenID string) string {
	return "session:" + tokenID
}
