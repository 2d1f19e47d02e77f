// Package models defines client-side data models for the tetatet messenger.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus classifies how far a message has progressed toward the server.
type DeliveryStatus string

const (
	// DeliveryPending marks a client-only optimistic placeholder that the
	// server has not confirmed yet. Pending messages always carry a local id.
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// localIDPrefix reserves an id namespace disjoint from server-assigned ids,
// so reconciliation can always tell a provisional message from a confirmed one.
const localIDPrefix = "local-"

// NewLocalID returns a fresh id in the reserved local namespace.
func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id belongs to the reserved local namespace.
// Local ids must never be sent to the server.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// Message is a single direct message as rendered by the client.
type Message struct {
	ID             string         `json:"id"`
	ConversationID int64          `json:"conversation_id"`
	SenderID       int64          `json:"sender_id"`
	ReceiverID     int64          `json:"receiver_id"`
	Content        string         `json:"content,omitempty"`
	AttachmentRef  string         `json:"attachment_url,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	TTLSeconds     int            `json:"ttl_seconds,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	DeliveryStatus DeliveryStatus `json:"-"`
}

// IsPending reports whether the message is still an optimistic placeholder.
func (m Message) IsPending() bool {
	return m.DeliveryStatus == DeliveryPending
}

// ExpiryAt resolves the instant after which the message must stop being
// displayed: an explicit ExpiresAt wins, otherwise CreatedAt+TTL. The second
// return value is false for messages that never expire.
func (m Message) ExpiryAt() (time.Time, bool) {
	if m.ExpiresAt != nil {
		return *m.ExpiresAt, true
	}
	if m.TTLSeconds > 0 && !m.CreatedAt.IsZero() {
		return m.CreatedAt.Add(time.Duration(m.TTLSeconds) * time.Second), true
	}
	return time.Time{}, false
}

// Conversation is a dialog between the current user and one peer.
type Conversation struct {
	ID          int64     `json:"id"`
	PeerID      int64     `json:"peer_id"`
	PeerName    string    `json:"peer_name"`
	LastMessage *Message  `json:"last_message,omitempty"`
	UnreadCount int       `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageDraft is the outbound payload for sending a message.
type MessageDraft struct {
	Content        string `json:"content,omitempty"`
	TTLSeconds     int    `json:"ttl_seconds,omitempty"`
	AttachmentPath string `json:"-"`
}
