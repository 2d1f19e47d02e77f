package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/models"
)

func (a *App) Conversations(ctx context.Context) error {
	convs, err := a.messages.Conversations(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load conversations: %s\n", api.UserMessage(err))
		return err
	}
	if len(convs) == 0 {
		fmt.Fprintln(a.out, "No conversations yet.")
		return nil
	}
	for _, c := range convs {
		fmt.Fprintf(a.out, "#%d with %s", c.ID, c.PeerName)
		if c.UnreadCount > 0 {
			fmt.Fprintf(a.out, " (%d unread)", c.UnreadCount)
		}
		if c.LastMessage != nil {
			fmt.Fprintf(a.out, " | %s", c.LastMessage.Content)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *App) Messages(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: msgs <convId> [page]")
		return nil
	}
	conversationID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: msgs <convId> [page]")
		return nil
	}
	page := 1
	if len(args) == 2 {
		page, err = strconv.Atoi(args[1])
		if err != nil || page < 1 {
			fmt.Fprintln(a.out, "Usage: msgs <convId> [page]")
			return nil
		}
	}

	msgs, err := a.messages.Messages(ctx, conversationID, page)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load messages: %s\n", api.UserMessage(err))
		return err
	}

	visible := a.messages.Visible(msgs)
	if len(visible) == 0 {
		fmt.Fprintln(a.out, "No messages.")
		return nil
	}
	for _, m := range visible {
		fmt.Fprintln(a.out, formatMessage(m))
	}
	return nil
}

func formatMessage(m models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] #%s from %d: %s", m.CreatedAt.Format(time.DateTime), m.ID, m.SenderID, m.Content)
	if m.AttachmentRef != "" {
		fmt.Fprintf(&b, " (attachment: %s)", m.AttachmentRef)
	}
	if m.TTLSeconds > 0 {
		fmt.Fprintf(&b, " (expires in %ds)", m.TTLSeconds)
	}
	switch m.DeliveryStatus {
	case models.DeliveryPending:
		b.WriteString(" [sending...]")
	case models.DeliveryFailed:
		b.WriteString(" [failed]")
	}
	return b.String()
}

// Send parses "send <convId> [ttl=<sec>] [file=<path>] <text>". Options may
// appear in any order before the text; the first token that is not an option
// starts the message body.
func (a *App) Send(ctx context.Context, args []string) error {
	usage := "Usage: send <convId> [ttl=<sec>] [file=<path>] <text>"
	if len(args) < 2 {
		fmt.Fprintln(a.out, usage)
		return nil
	}
	conversationID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, usage)
		return nil
	}

	var draft models.MessageDraft
	rest := args[1:]
	for len(rest) > 0 {
		if strings.HasPrefix(rest[0], "ttl=") {
			ttl, err := strconv.Atoi(strings.TrimPrefix(rest[0], "ttl="))
			if err != nil || ttl < 0 {
				fmt.Fprintln(a.out, usage)
				return nil
			}
			draft.TTLSeconds = ttl
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest[0], "file=") {
			draft.AttachmentPath = strings.TrimPrefix(rest[0], "file=")
			rest = rest[1:]
			continue
		}
		draft.Content = strings.Join(rest, " ")
		break
	}

	if draft.Content == "" && draft.AttachmentPath == "" {
		fmt.Fprintln(a.out, usage)
		return nil
	}

	if err := a.messages.Send(ctx, conversationID, draft); err != nil {
		fmt.Fprintf(a.out, "Send failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Sent.")
	return nil
}

func (a *App) DeleteMessage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: delmsg <convId> <msgId>")
		return nil
	}
	conversationID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: delmsg <convId> <msgId>")
		return nil
	}

	if err := a.messages.Delete(ctx, conversationID, args[1]); err != nil {
		fmt.Fprintf(a.out, "Delete failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}
