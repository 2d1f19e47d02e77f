package services

import (
	"context"
	"fmt"
	"time"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/expiry"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

// MessageService serves conversation listings and runs the optimistic
// mutation pipeline for sends and deletes.
type MessageService struct {
	client     api.Client
	cache      *cache.Cache
	expiry     *expiry.Scheduler
	log        logging.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewMessageService(client api.Client, c *cache.Cache, sched *expiry.Scheduler, log logging.Logger, staleAfter time.Duration) *MessageService {
	return &MessageService{
		client:     client,
		cache:      c,
		expiry:     sched,
		log:        log,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Conversations lists the user's dialogs through the cache.
func (s *MessageService) Conversations(ctx context.Context) ([]models.Conversation, error) {
	v, err := s.cache.Read(ctx, conversationsKey(), func(ctx context.Context) (any, error) {
		return s.client.Conversations(ctx)
	}, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	return v.([]models.Conversation), nil
}

// Messages returns one conversation's messages through the cache and arms
// expiry countdowns for any ephemeral ones.
func (s *MessageService) Messages(ctx context.Context, conversationID int64, page int) ([]models.Message, error) {
	v, err := s.cache.Read(ctx, messagesKey(conversationID), func(ctx context.Context) (any, error) {
		return s.client.Messages(ctx, conversationID, page)
	}, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	msgs := v.([]models.Message)
	s.trackExpiries(msgs)
	return msgs, nil
}

// Visible filters out messages whose countdown elapsed. Expired messages stay
// in the cached collection; a later refetch drops them once the server stops
// returning them.
func (s *MessageService) Visible(msgs []models.Message) []models.Message {
	visible := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if s.expiry.Expired(m.ID) {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// Send applies the optimistic pipeline: a Pending placeholder with a local id
// lands in the cache immediately; on success the key is invalidated so the
// next read reconciles with server truth; on failure the pre-mutation state
// is restored exactly and the error is returned for display.
func (s *MessageService) Send(ctx context.Context, conversationID int64, draft models.MessageDraft) error {
	key := messagesKey(conversationID)

	me, _ := cache.ValueOf[models.User](s.cache, sessionKey())
	placeholder := models.Message{
		ID:             models.NewLocalID(),
		ConversationID: conversationID,
		SenderID:       me.ID,
		Content:        draft.Content,
		TTLSeconds:     draft.TTLSeconds,
		CreatedAt:      s.now(),
		DeliveryStatus: models.DeliveryPending,
	}

	restore := applyOptimistic(s.cache, key, func(current any, _ bool) any {
		msgs, _ := current.([]models.Message)
		next := make([]models.Message, 0, len(msgs)+1)
		next = append(next, msgs...)
		return append(next, placeholder)
	})

	if _, err := s.client.SendMessage(ctx, conversationID, draft); err != nil {
		restore()
		s.log.Warn(ctx, "send rolled back", "conversation", conversationID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}

	s.cache.Invalidate(key)
	s.cache.Invalidate(conversationsKey())
	return nil
}

// Delete removes a message optimistically, then confirms with the server.
func (s *MessageService) Delete(ctx context.Context, conversationID int64, messageID string) error {
	key := messagesKey(conversationID)

	restore := applyOptimistic(s.cache, key, func(current any, _ bool) any {
		msgs, _ := current.([]models.Message)
		next := make([]models.Message, 0, len(msgs))
		for _, m := range msgs {
			if m.ID == messageID {
				continue
			}
			next = append(next, m)
		}
		return next
	})

	if err := s.client.DeleteMessage(ctx, conversationID, messageID); err != nil {
		restore()
		s.log.Warn(ctx, "delete rolled back", "conversation", conversationID, "message", messageID, "error", err)
		return fmt.Errorf("delete message: %w", err)
	}

	s.expiry.Forget(messageID)
	s.cache.Invalidate(key)
	s.cache.Invalidate(conversationsKey())
	return nil
}

func (s *MessageService) trackExpiries(msgs []models.Message) {
	for _, m := range msgs {
		if m.IsPending() {
			continue
		}
		if at, ok := m.ExpiryAt(); ok {
			s.expiry.Track(m.ID, at)
		}
	}
}
