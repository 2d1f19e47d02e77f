package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Friends(ctx context.Context) error
	Pending(ctx context.Context) error
	Outgoing(ctx context.Context) error
	AddFriend(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Reject(ctx context.Context, args []string) error
	Unfriend(ctx context.Context, args []string) error
	Conversations(ctx context.Context) error
	Messages(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	DeleteMessage(ctx context.Context, args []string) error
	SetPicture(ctx context.Context, args []string) error
	DeletePicture(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and dispatches
// to methods on 'a'. The loop exits on scanner EOF or "exit"/"quit".
//
// Errors returned by handlers are ignored here; handlers print their own
// user-facing messages. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("tetatet (type 'help' for commands)")

	for {
		printlnFn(fmt.Sprintf("tt %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, friends, pending, outgoing, addfriend <userId>,")
				printlnFn("  accept <id>, reject <id>, unfriend <id> <userId>, convs,")
				printlnFn("  msgs <convId>, send <convId> [ttl=<sec>] <text>, delmsg <convId> <msgId>,")
				printlnFn("  setpic <path>, delpic, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "f", "friends":
			_ = a.Friends(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "outgoing":
			_ = a.Outgoing(ctx)

		case "addfriend":
			_ = a.AddFriend(ctx, args)

		case "accept":
			_ = a.Accept(ctx, args)

		case "reject":
			_ = a.Reject(ctx, args)

		case "unfriend":
			_ = a.Unfriend(ctx, args)

		case "convs":
			_ = a.Conversations(ctx)

		case "msgs":
			_ = a.Messages(ctx, args)

		case "send":
			_ = a.Send(ctx, args)

		case "delmsg":
			_ = a.DeleteMessage(ctx, args)

		case "setpic":
			_ = a.SetPicture(ctx, args)

		case "delpic":
			_ = a.DeletePicture(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
