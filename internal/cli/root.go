package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. opts are passed to every subcommand.
func NewRootCmd(opts ...commands.Option) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "travelease",
		Short: "TravelEase - plan trips from the terminal",
		Long: `TravelEase CLI - sign in, browse places and check which views your
session can open.

The session token is kept in the system keychain by default; set
TRAVELEASE_SESSION_BACKEND to file, sqlite or memory to change that.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "travelease version %s\n", version)
		},
	})

	opts = append([]commands.Option{commands.WithVersion(version)}, opts...)

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(opts...))
	rootCmd.AddCommand(commands.NewRegisterCmd(opts...))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts...))
	rootCmd.AddCommand(commands.NewWhoamiCmd(opts...))
	rootCmd.AddCommand(commands.NewOpenCmd(opts...))
	rootCmd.AddCommand(commands.NewPlacesCmd(opts...))
	rootCmd.AddCommand(commands.NewRouteCmd(opts...))
	rootCmd.AddCommand(commands.NewServeCmd(opts...))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
