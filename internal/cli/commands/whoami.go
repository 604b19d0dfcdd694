package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ErrNotLoggedIn = errors.New("not logged in. Please run 'travelease login' first")

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", runWhoami)
		},
	}
}

func runWhoami(ctx context.Context, d *Deps) error {
	d.Manager.Start(ctx)

	snap := d.Manager.Snapshot()
	if !snap.Authenticated() {
		return ErrNotLoggedIn
	}

	fmt.Fprintf(d.Out, "%s (%s)\n", snap.User.Name, snap.User.Email)
	fmt.Fprintf(d.Out, "  ID:   %s\n", snap.User.ID)
	fmt.Fprintf(d.Out, "  Role: %s\n", snap.User.Role)
	return nil
}
