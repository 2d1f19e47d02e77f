package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

func newProfileService(fc *fakeClient) (*ProfileService, *cache.Cache) {
	c := cache.New(logging.NewNop())
	svc := NewProfileService(fc, c, logging.NewNop())
	return svc, c
}

func TestUploadPictureInvalidatesSessionAndFriends(t *testing.T) {
	fc := &fakeClient{
		uploadPictureFn: func(path string) (models.User, error) {
			return models.User{ID: 1, AvatarRef: "/files/pic.png"}, nil
		},
		meFn: func() (models.User, error) {
			return models.User{ID: 1, AvatarRef: "/files/pic.png"}, nil
		},
		friendsFn: func() ([]models.Friend, error) { return []models.Friend{}, nil },
	}

	svc, c := newProfileService(fc)
	c.Write(sessionKey(), models.User{ID: 1})
	c.Write(friendsKey(), []models.Friend{{ID: 2, AvatarRef: "stale"}})

	require.NoError(t, svc.UploadPicture(context.Background(), "/tmp/pic.png"))

	// both keys reconcile on next read: profile data is embedded in friend records
	got, err := c.Read(context.Background(), sessionKey(), func(ctx context.Context) (any, error) {
		return fc.meFn()
	}, cache.Options{})
	require.NoError(t, err)
	assert.Equal(t, "/files/pic.png", got.(models.User).AvatarRef)

	gotFriends, err := c.Read(context.Background(), friendsKey(), func(ctx context.Context) (any, error) {
		return fc.friendsFn()
	}, cache.Options{})
	require.NoError(t, err)
	assert.Empty(t, gotFriends.([]models.Friend))
}

func TestUploadPictureRollback(t *testing.T) {
	fc := &fakeClient{
		uploadPictureFn: func(string) (models.User, error) {
			return models.User{}, errors.New("file too large")
		},
	}

	svc, c := newProfileService(fc)
	before := models.User{ID: 1, AvatarRef: "/files/old.png"}
	c.Write(sessionKey(), before)

	require.Error(t, svc.UploadPicture(context.Background(), "/tmp/huge.png"))

	got, ok := cache.ValueOf[models.User](c, sessionKey())
	require.True(t, ok)
	assert.Equal(t, before, got)
}

func TestDeletePictureClearsAvatarOptimistically(t *testing.T) {
	deleted := make(chan struct{})
	release := make(chan struct{})
	fc := &fakeClient{
		deletePictureFn: func() error {
			close(deleted)
			<-release
			return nil
		},
	}

	svc, c := newProfileService(fc)
	c.Write(sessionKey(), models.User{ID: 1, AvatarRef: "/files/pic.png"})

	done := make(chan error, 1)
	go func() { done <- svc.DeletePicture(context.Background()) }()

	<-deleted
	got, _ := cache.ValueOf[models.User](c, sessionKey())
	assert.Empty(t, got.AvatarRef)

	close(release)
	require.NoError(t, <-done)
}
