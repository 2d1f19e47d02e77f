// Package presence derives a coarse online status from a last-seen timestamp.
// The derivation is pure: presence is computed from cached friend data and
// never stored.
package presence

import "time"

// Status is the coarse presence class shown next to a contact.
type Status string

const (
	Online  Status = "online"
	Away    Status = "away"
	Recent  Status = "recent"
	Offline Status = "offline"
)

const (
	onlineWindow = 2 * time.Minute
	awayWindow   = 15 * time.Minute
	recentWindow = 60 * time.Minute
)

// Derive classifies lastSeenAt relative to now. A nil timestamp means the
// user was never seen and reads as Offline.
//
// Presence has no push channel, so callers should derive against a cache
// subscription polling at 30s or faster.
func Derive(lastSeenAt *time.Time, now time.Time) Status {
	if lastSeenAt == nil {
		return Offline
	}
	age := now.Sub(*lastSeenAt)
	switch {
	case age < onlineWindow:
		return Online
	case age < awayWindow:
		return Away
	case age < recentWindow:
		return Recent
	default:
		return Offline
	}
}
