// file: model/token.go

package model

import "time"

// RefreshToken holds one outstanding refresh credential. Each user has at
// most one live record; rotation replaces the token value in place.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // opaque random value, never exposed in listings
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the record can still mint access tokens at the
// given instant.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
