// Package api speaks the tetatet REST contract. It owns the authenticated
// transport: bearer-token injection and bounded recovery from access-token
// expiry (at most one refresh-and-retry per original call).
package api

import (
	"context"

	"github.com/akaliniv/tetatet/internal/models"
)

// Client is the full REST surface consumed by the sync layer. Services depend
// on this interface; tests substitute fakes.
type Client interface {
	// Auth. Login and Register return the token pair; storing the access
	// token in the credential holder is the session service's job.
	Login(ctx context.Context, username, password string) (models.TokenPair, error)
	Register(ctx context.Context, username, email, password string) (models.TokenPair, error)
	Me(ctx context.Context) (models.User, error)

	// Friends.
	Friends(ctx context.Context) ([]models.Friend, error)
	PendingRequests(ctx context.Context) ([]models.FriendRequest, error)
	OutgoingRequests(ctx context.Context) ([]models.FriendRequest, error)
	SendFriendRequest(ctx context.Context, userID int64) error
	AcceptFriendRequest(ctx context.Context, friendshipID int64) error
	RemoveFriendship(ctx context.Context, friendshipID int64) error

	// Conversations and messages.
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID int64, page int) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID int64, draft models.MessageDraft) (models.Message, error)
	DeleteMessage(ctx context.Context, conversationID int64, messageID string) error

	// Profile.
	UploadProfilePicture(ctx context.Context, path string) (models.User, error)
	DeleteProfilePicture(ctx context.Context) error
}
