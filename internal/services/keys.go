// Package services contains the application services of the tetatet client:
// cached reads plus the optimistic mutation pipeline for state-changing calls.
package services

import "github.com/akaliniv/tetatet/internal/cache"

// Cache keys for the entity cache. Builders, not constants, so every call
// site produces structurally equal keys.
func sessionKey() cache.Key                     { return cache.NewKey("session") }
func friendsKey() cache.Key                     { return cache.NewKey("friends") }
func pendingRequestsKey() cache.Key             { return cache.NewKey("friendRequests", "pending") }
func outgoingRequestsKey() cache.Key            { return cache.NewKey("friendRequests", "outgoing") }
func conversationsKey() cache.Key               { return cache.NewKey("conversations") }
func messagesKey(conversationID int64) cache.Key {
	return cache.NewKey("directMessages", conversationID)
}
