package cli

import (
	"context"
	"fmt"

	"github.com/akaliniv/tetatet/internal/api"
)

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, userName, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", api.UserMessage(err))
		return err
	}

	a.userName = user.Username
	a.startWatchers(ctx)
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.session.Register(ctx, userName, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", api.UserMessage(err))
		return err
	}

	a.userName = user.Username
	a.startWatchers(ctx)
	fmt.Fprintln(a.out, "Registered and logged in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.stopWatchers()
	a.session.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	user, err := a.session.Me(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load profile: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintf(a.out, "#%d %s <%s>\n", user.ID, user.Username, user.Email)
	if user.AvatarRef != "" {
		fmt.Fprintf(a.out, "  picture: %s\n", user.AvatarRef)
	}
	return nil
}
