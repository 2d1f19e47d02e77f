package cli

import (
	"context"
	"fmt"

	"github.com/akaliniv/tetatet/internal/api"
)

func (a *App) SetPicture(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: setpic <path>")
		return nil
	}

	if err := a.profile.UploadPicture(ctx, args[0]); err != nil {
		fmt.Fprintf(a.out, "Upload failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Picture updated.")
	return nil
}

func (a *App) DeletePicture(ctx context.Context) error {
	if err := a.profile.DeletePicture(ctx); err != nil {
		fmt.Fprintf(a.out, "Delete failed: %s\n", api.UserMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "Picture removed.")
	return nil
}
