package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/auth"
	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/config"
	"github.com/akaliniv/tetatet/internal/expiry"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/services"
)

// App wires the sync layer together and dispatches REPL commands to it.
// It is the composition root: the cache, credential holder, and expiry
// scheduler are created here and injected everywhere else.
type App struct {
	config *config.Config
	log    logging.Logger

	session  *services.SessionService
	messages *services.MessageService
	friends  *services.FriendService
	profile  *services.ProfileService

	sched      *expiry.Scheduler
	friendsSub *cache.Subscription

	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(cfg *config.Config, log logging.Logger) *App {
	creds := auth.NewCredentials()
	store := cache.New(log)
	client := api.New(cfg.ServerBaseURL, cfg.RequestTimeout, creds, log)
	sched := expiry.NewScheduler(nil, log)

	return &App{
		config:   cfg,
		log:      log,
		session:  services.NewSessionService(client, store, creds, cfg.StaleAfter),
		messages: services.NewMessageService(client, store, sched, log, cfg.StaleAfter),
		friends:  services.NewFriendService(client, store, log, cfg.StaleAfter, cfg.FriendsRefetchInterval),
		profile:  services.NewProfileService(client, store, log),
		sched:    sched,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

// startWatchers begins the passive friends refresh that keeps presence
// current while logged in.
func (a *App) startWatchers(ctx context.Context) {
	if a.friendsSub != nil {
		return
	}
	a.friendsSub = a.friends.SubscribeFriends(ctx)
}

func (a *App) stopWatchers() {
	if a.friendsSub != nil {
		a.friendsSub.Stop()
		a.friendsSub = nil
	}
}

// Run enters the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.sched.Close()
	defer a.stopWatchers()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) status() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}
