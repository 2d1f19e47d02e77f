package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/presence"
)

func (a *App) Friends(ctx context.Context) error {
	friends, err := a.friends.Friends(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load friends: %s\n", api.UserMessage(err))
		return err
	}
	if len(friends) == 0 {
		fmt.Fprintln(a.out, "No friends yet.")
		return nil
	}

	now := time.Now()
	for _, f := range friends {
		status := presence.Derive(f.LastSeenAt, now)
		fmt.Fprintf(a.out, "#%d %-20s [%s]\n", f.ID, f.Username, status)
	}
	return nil
}

func (a *App) Pending(ctx context.Context) error {
	reqs, err := a.friends.Pending(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load pending requests: %s\n", api.UserMessage(err))
		return err
	}
	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "No pending requests.")
		return nil
	}
	for _, r := range reqs {
		fmt.Fprintf(a.out, "#%d from %s (%s)\n", r.ID, r.User.Username, r.CreatedAt.Format(time.DateTime))
	}
	return nil
}

func (a *App) Outgoing(ctx context.Context) error {
	reqs, err := a.friends.Outgoing(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load outgoing requests: %s\n", api.UserMessage(err))
		return err
	}
	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "No outgoing requests.")
		return nil
	}
	for _, r := range reqs {
		fmt.Fprintf(a.out, "#%d to %s\n", r.ID, r.User.Username)
	}
	return nil
}

func (a *App) AddFriend(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: addfriend <userId>")
		return nil
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: addfriend <userId>")
		return nil
	}

	if err := a.friends.SendRequest(ctx, userID); err != nil {
		fmt.Fprintf(a.out, "Request failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Friend request sent.")
	return nil
}

func (a *App) Accept(ctx context.Context, args []string) error {
	id, ok := a.parseID(args, "Usage: accept <requestId>")
	if !ok {
		return nil
	}
	if err := a.friends.Accept(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Accept failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Accepted.")
	return nil
}

func (a *App) Reject(ctx context.Context, args []string) error {
	id, ok := a.parseID(args, "Usage: reject <requestId>")
	if !ok {
		return nil
	}
	if err := a.friends.Reject(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Reject failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Rejected.")
	return nil
}

func (a *App) Unfriend(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: unfriend <friendshipId> <userId>")
		return nil
	}
	friendshipID, err1 := strconv.ParseInt(args[0], 10, 64)
	userID, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(a.out, "Usage: unfriend <friendshipId> <userId>")
		return nil
	}

	if err := a.friends.Remove(ctx, friendshipID, userID); err != nil {
		fmt.Fprintf(a.out, "Unfriend failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Removed.")
	return nil
}

func (a *App) parseID(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, usage)
		return 0, false
	}
	return id, true
}
