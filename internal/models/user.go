package models

import "time"

// User is the authenticated identity as returned by the server.
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email,omitempty"`
	AvatarRef  string     `json:"avatar_url,omitempty"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// TokenPair is what the auth endpoints return: the access token plus the
// authenticated user. The refresh endpoint may name the token field either
// "token" or "access_token"; Token() resolves whichever is set.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	AltToken    string `json:"token"`
	User        *User  `json:"user,omitempty"`
}

// Token returns the usable access token, preferring the canonical field.
func (t TokenPair) Token() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.AltToken
}
