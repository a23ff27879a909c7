package model

import "time"

// Session is a DB-backed login session keyed by an opaque token.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
