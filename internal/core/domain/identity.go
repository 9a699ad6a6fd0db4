package domain

import "time"

// Identity is the caller resolved from a session token.
type Identity struct {
	User      *User
	TokenID   string
	ExpiresAt time.Time
}

// UserID returns the id of the authenticated user.
func (i Identity) UserID() string {
	if i.User == nil {
		return ""
	}
	return i.User.ID
}
