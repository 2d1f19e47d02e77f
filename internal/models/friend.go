package models

import "time"

// Friend is an accepted contact. Owned by the entity cache; consumers treat
// it as read-only.
type Friend struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	AvatarRef           string     `json:"avatar_url,omitempty"`
	LastSeenAt          *time.Time `json:"last_seen_at,omitempty"`
	FriendshipCreatedAt *time.Time `json:"friendship_created_at,omitempty"`
}

// FriendRequest is a pending (incoming) or outgoing friendship offer.
type FriendRequest struct {
	ID        int64     `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
