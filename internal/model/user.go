package model

import "time"

// User is an account record backing a player's login.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Name         string
	Roles        []string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// HasRole reports whether the user holds the given role (e.g. "admin", "gm").
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Ban is an active or historical restriction on a user's login.
type Ban struct {
	ID             int64
	BannedUserID   int64
	BannedByUserID int64
	Reason         string
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	Active         bool
}

// Expired reports whether the ban has a past expiry and should no longer apply.
func (b *Ban) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}
