package services

import (
	"context"
	"fmt"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

// ProfileService mutates the profile picture. Profile data is embedded in
// friend records on the server side, so both the session key and the friends
// key reconcile after a successful change.
type ProfileService struct {
	client api.Client
	cache  *cache.Cache
	log    logging.Logger
}

func NewProfileService(client api.Client, c *cache.Cache, log logging.Logger) *ProfileService {
	return &ProfileService{client: client, cache: c, log: log}
}

// UploadPicture sets the avatar. The session record provisionally shows the
// local file path as the avatar ref until the server's URL reconciles.
func (s *ProfileService) UploadPicture(ctx context.Context, path string) error {
	restore := applyOptimistic(s.cache, sessionKey(), func(current any, _ bool) any {
		user, _ := current.(models.User)
		user.AvatarRef = path
		return user
	})

	if _, err := s.client.UploadProfilePicture(ctx, path); err != nil {
		restore()
		s.log.Warn(ctx, "picture upload rolled back", "error", err)
		return fmt.Errorf("upload profile picture: %w", err)
	}

	s.cache.Invalidate(sessionKey())
	s.cache.Invalidate(friendsKey())
	return nil
}

// DeletePicture clears the avatar.
func (s *ProfileService) DeletePicture(ctx context.Context) error {
	restore := applyOptimistic(s.cache, sessionKey(), func(current any, _ bool) any {
		user, _ := current.(models.User)
		user.AvatarRef = ""
		return user
	})

	if err := s.client.DeleteProfilePicture(ctx); err != nil {
		restore()
		s.log.Warn(ctx, "picture delete rolled back", "error", err)
		return fmt.Errorf("delete profile picture: %w", err)
	}

	s.cache.Invalidate(sessionKey())
	s.cache.Invalidate(friendsKey())
	return nil
}
