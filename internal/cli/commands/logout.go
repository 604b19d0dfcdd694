package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				d.Manager.Logout(ctx)
				fmt.Fprintln(d.Out, "✓ Logged out")
				return nil
			})
		},
	}
}
