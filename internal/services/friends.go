package services

import (
	"context"
	"fmt"
	"time"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

// FriendService serves the friends list and friend-request collections and
// mutates them optimistically. The friends list and both request lists have
// no push channel, so consumers subscribe with a polling interval.
type FriendService struct {
	client       api.Client
	cache        *cache.Cache
	log          logging.Logger
	staleAfter   time.Duration
	refetchEvery time.Duration
}

func NewFriendService(client api.Client, c *cache.Cache, log logging.Logger, staleAfter, refetchEvery time.Duration) *FriendService {
	return &FriendService{
		client:       client,
		cache:        c,
		log:          log,
		staleAfter:   staleAfter,
		refetchEvery: refetchEvery,
	}
}

// Friends lists accepted contacts through the cache.
func (s *FriendService) Friends(ctx context.Context) ([]models.Friend, error) {
	v, err := s.cache.Read(ctx, friendsKey(), s.fetchFriends, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	return v.([]models.Friend), nil
}

// SubscribeFriends keeps the friends list passively fresh; presence is
// derived from its LastSeenAt values, so the interval doubles as the
// presence poll.
func (s *FriendService) SubscribeFriends(ctx context.Context) *cache.Subscription {
	return s.cache.Subscribe(ctx, friendsKey(), s.fetchFriends, cache.Options{
		StaleAfter:   s.staleAfter,
		RefetchEvery: s.refetchEvery,
	})
}

func (s *FriendService) fetchFriends(ctx context.Context) (any, error) {
	return s.client.Friends(ctx)
}

// Pending lists incoming friend requests.
func (s *FriendService) Pending(ctx context.Context) ([]models.FriendRequest, error) {
	v, err := s.cache.Read(ctx, pendingRequestsKey(), func(ctx context.Context) (any, error) {
		return s.client.PendingRequests(ctx)
	}, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return nil, fmt.Errorf("load pending requests: %w", err)
	}
	return v.([]models.FriendRequest), nil
}

// Outgoing lists friend requests the user has sent.
func (s *FriendService) Outgoing(ctx context.Context) ([]models.FriendRequest, error) {
	v, err := s.cache.Read(ctx, outgoingRequestsKey(), func(ctx context.Context) (any, error) {
		return s.client.OutgoingRequests(ctx)
	}, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return nil, fmt.Errorf("load outgoing requests: %w", err)
	}
	return v.([]models.FriendRequest), nil
}

// SendRequest offers friendship to userID. The outgoing list gains a
// provisional entry; the server-assigned request id arrives with the
// reconciling refetch.
func (s *FriendService) SendRequest(ctx context.Context, userID int64) error {
	restore := applyOptimistic(s.cache, outgoingRequestsKey(), func(current any, _ bool) any {
		reqs, _ := current.([]models.FriendRequest)
		next := make([]models.FriendRequest, 0, len(reqs)+1)
		next = append(next, reqs...)
		return append(next, models.FriendRequest{User: models.User{ID: userID}})
	})

	if err := s.client.SendFriendRequest(ctx, userID); err != nil {
		restore()
		s.log.Warn(ctx, "friend request rolled back", "user", userID, "error", err)
		return fmt.Errorf("send friend request: %w", err)
	}

	s.cache.Invalidate(outgoingRequestsKey())
	return nil
}

// Accept confirms an incoming request: it provisionally leaves the pending
// list and its sender joins the friends list.
func (s *FriendService) Accept(ctx context.Context, friendshipID int64) error {
	var accepted *models.FriendRequest

	restorePending := applyOptimistic(s.cache, pendingRequestsKey(), func(current any, _ bool) any {
		reqs, _ := current.([]models.FriendRequest)
		next := make([]models.FriendRequest, 0, len(reqs))
		for _, r := range reqs {
			if r.ID == friendshipID {
				req := r
				accepted = &req
				continue
			}
			next = append(next, r)
		}
		return next
	})

	restoreFriends := applyOptimistic(s.cache, friendsKey(), func(current any, _ bool) any {
		friends, _ := current.([]models.Friend)
		if accepted == nil {
			return friends
		}
		next := make([]models.Friend, 0, len(friends)+1)
		next = append(next, friends...)
		return append(next, models.Friend{
			ID:         accepted.User.ID,
			Username:   accepted.User.Username,
			LastSeenAt: accepted.User.LastSeenAt,
		})
	})

	if err := s.client.AcceptFriendRequest(ctx, friendshipID); err != nil {
		restoreFriends()
		restorePending()
		s.log.Warn(ctx, "accept rolled back", "friendship", friendshipID, "error", err)
		return fmt.Errorf("accept friend request: %w", err)
	}

	s.invalidateFriendKeys()
	return nil
}

// Reject declines an incoming request.
func (s *FriendService) Reject(ctx context.Context, friendshipID int64) error {
	restore := applyOptimistic(s.cache, pendingRequestsKey(), func(current any, _ bool) any {
		reqs, _ := current.([]models.FriendRequest)
		next := make([]models.FriendRequest, 0, len(reqs))
		for _, r := range reqs {
			if r.ID == friendshipID {
				continue
			}
			next = append(next, r)
		}
		return next
	})

	if err := s.client.RemoveFriendship(ctx, friendshipID); err != nil {
		restore()
		s.log.Warn(ctx, "reject rolled back", "friendship", friendshipID, "error", err)
		return fmt.Errorf("reject friend request: %w", err)
	}

	s.invalidateFriendKeys()
	return nil
}

// Remove unfriends by friendship id. The contact provisionally leaves the
// friends list.
func (s *FriendService) Remove(ctx context.Context, friendshipID int64, friendID int64) error {
	restore := applyOptimistic(s.cache, friendsKey(), func(current any, _ bool) any {
		friends, _ := current.([]models.Friend)
		next := make([]models.Friend, 0, len(friends))
		for _, f := range friends {
			if f.ID == friendID {
				continue
			}
			next = append(next, f)
		}
		return next
	})

	if err := s.client.RemoveFriendship(ctx, friendshipID); err != nil {
		restore()
		s.log.Warn(ctx, "unfriend rolled back", "friendship", friendshipID, "error", err)
		return fmt.Errorf("remove friend: %w", err)
	}

	s.invalidateFriendKeys()
	return nil
}

func (s *FriendService) invalidateFriendKeys() {
	s.cache.Invalidate(friendsKey())
	s.cache.Invalidate(pendingRequestsKey())
	s.cache.Invalidate(outgoingRequestsKey())
}
