package services

import (
	"context"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/models"
)

// fakeClient implements api.Client for unit tests. Behavior is injected via
// function fields; unset methods return zero values.
type fakeClient struct {
	loginFn           func(username, password string) (models.TokenPair, error)
	registerFn        func(username, email, password string) (models.TokenPair, error)
	meFn              func() (models.User, error)
	friendsFn         func() ([]models.Friend, error)
	pendingFn         func() ([]models.FriendRequest, error)
	outgoingFn        func() ([]models.FriendRequest, error)
	sendFriendReqFn   func(userID int64) error
	acceptFriendReqFn func(friendshipID int64) error
	removeFriendFn    func(friendshipID int64) error
	conversationsFn   func() ([]models.Conversation, error)
	messagesFn        func(conversationID int64, page int) ([]models.Message, error)
	sendMessageFn     func(conversationID int64, draft models.MessageDraft) (models.Message, error)
	deleteMessageFn   func(conversationID int64, messageID string) error
	uploadPictureFn   func(path string) (models.User, error)
	deletePictureFn   func() error
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(_ context.Context, username, password string) (models.TokenPair, error) {
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return models.TokenPair{}, nil
}

func (f *fakeClient) Register(_ context.Context, username, email, password string) (models.TokenPair, error) {
	if f.registerFn != nil {
		return f.registerFn(username, email, password)
	}
	return models.TokenPair{}, nil
}

func (f *fakeClient) Me(_ context.Context) (models.User, error) {
	if f.meFn != nil {
		return f.meFn()
	}
	return models.User{}, nil
}

func (f *fakeClient) Friends(_ context.Context) ([]models.Friend, error) {
	if f.friendsFn != nil {
		return f.friendsFn()
	}
	return nil, nil
}

func (f *fakeClient) PendingRequests(_ context.Context) ([]models.FriendRequest, error) {
	if f.pendingFn != nil {
		return f.pendingFn()
	}
	return nil, nil
}

func (f *fakeClient) OutgoingRequests(_ context.Context) ([]models.FriendRequest, error) {
	if f.outgoingFn != nil {
		return f.outgoingFn()
	}
	return nil, nil
}

func (f *fakeClient) SendFriendRequest(_ context.Context, userID int64) error {
	if f.sendFriendReqFn != nil {
		return f.sendFriendReqFn(userID)
	}
	return nil
}

func (f *fakeClient) AcceptFriendRequest(_ context.Context, friendshipID int64) error {
	if f.acceptFriendReqFn != nil {
		return f.acceptFriendReqFn(friendshipID)
	}
	return nil
}

func (f *fakeClient) RemoveFriendship(_ context.Context, friendshipID int64) error {
	if f.removeFriendFn != nil {
		return f.removeFriendFn(friendshipID)
	}
	return nil
}

func (f *fakeClient) Conversations(_ context.Context) ([]models.Conversation, error) {
	if f.conversationsFn != nil {
		return f.conversationsFn()
	}
	return nil, nil
}

func (f *fakeClient) Messages(_ context.Context, conversationID int64, page int) ([]models.Message, error) {
	if f.messagesFn != nil {
		return f.messagesFn(conversationID, page)
	}
	return nil, nil
}

func (f *fakeClient) SendMessage(_ context.Context, conversationID int64, draft models.MessageDraft) (models.Message, error) {
	if f.sendMessageFn != nil {
		return f.sendMessageFn(conversationID, draft)
	}
	return models.Message{}, nil
}

func (f *fakeClient) DeleteMessage(_ context.Context, conversationID int64, messageID string) error {
	if f.deleteMessageFn != nil {
		return f.deleteMessageFn(conversationID, messageID)
	}
	return nil
}

func (f *fakeClient) UploadProfilePicture(_ context.Context, path string) (models.User, error) {
	if f.uploadPictureFn != nil {
		return f.uploadPictureFn(path)
	}
	return models.User{}, nil
}

func (f *fakeClient) DeleteProfilePicture(_ context.Context) error {
	if f.deletePictureFn != nil {
		return f.deletePictureFn()
	}
	return nil
}
