package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/forms"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...Option) *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to TravelEase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				return runLogin(ctx, d, email, password, remember)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set TRAVELEASE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TRAVELEASE_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Ask the backend for a longer-lived session")

	return cmd
}

func runLogin(ctx context.Context, d *Deps, email, password string, remember bool) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("TRAVELEASE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("TRAVELEASE_PASSWORD")
	}

	if email == "" {
		if !d.Prompt.Interactive() {
			return fmt.Errorf("email is required (use --email flag or TRAVELEASE_EMAIL env var)")
		}
		var err error
		if email, err = d.Prompt.Input("Email", requiredInput); err != nil {
			return err
		}
	}

	if password == "" {
		if !d.Prompt.Interactive() {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or TRAVELEASE_PASSWORD env var)")
		}
		var err error
		if password, err = d.Prompt.Password("Password"); err != nil {
			return err
		}
	}

	form := forms.Login{Email: email, Password: password, RememberMe: remember}
	if err := form.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(d.Out, "Logging in to %s...\n", d.Client.BaseURL())

	user, err := d.Manager.Login(ctx, form.Email, form.Password, form.RememberMe)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(d.Out, "✓ Login successful!")
	fmt.Fprintf(d.Out, "  User: %s (%s)\n", user.Name, user.Email)
	if user.IsAdmin() {
		fmt.Fprintln(d.Out, "  Role: Admin")
	}
	return nil
}

func requiredInput(s string) error {
	if s == "" {
		return errors.New("value is required")
	}
	return nil
}
