package models

import (
	"strings"
	"time"
)

// User represents a registered player with a balance
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Balance   int64     `db:"balance" json:"balance"`
	IsCaptain bool      `db:"is_captain" json:"isCaptain"`
	CaptainID *int64    `db:"captain_id" json:"captainId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NormalizeName produces the canonical lookup key for a user name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HasCaptain reports whether the user belongs to a captain's family
func (u *User) HasCaptain() bool {
	return u.CaptainID != nil
}
