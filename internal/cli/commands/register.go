package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/forms"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts ...Option) *cobra.Command {
	var form forms.Register

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a TravelEase account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				return runRegister(ctx, d, form)
			})
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address (or set TRAVELEASE_EMAIL)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (or set TRAVELEASE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, d *Deps, form forms.Register) error {
	if form.Email == "" {
		form.Email = os.Getenv("TRAVELEASE_EMAIL")
	}
	if form.Password == "" {
		form.Password = os.Getenv("TRAVELEASE_PASSWORD")
	}
	// Flags and env vars are typed once; only prompted passwords are confirmed
	form.ConfirmPassword = form.Password

	interactive := d.Prompt.Interactive()
	var err error
	if form.Name == "" && interactive {
		if form.Name, err = d.Prompt.Input("Name", requiredInput); err != nil {
			return err
		}
	}
	if form.Email == "" && interactive {
		if form.Email, err = d.Prompt.Input("Email", requiredInput); err != nil {
			return err
		}
	}
	if form.Password == "" && interactive {
		if form.Password, err = d.Prompt.Password("Password"); err != nil {
			return err
		}
		if form.ConfirmPassword, err = d.Prompt.Password("Confirm password"); err != nil {
			return err
		}
	}

	if err := form.Validate(); err != nil {
		return err
	}

	resp, err := d.Manager.Register(ctx, form.Request())
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintln(d.Out, "✓ Account created!")
	if resp.Message != "" {
		fmt.Fprintf(d.Out, "  %s\n", resp.Message)
	}
	fmt.Fprintf(d.Out, "  User: %s (%s)\n", resp.User.Name, resp.User.Email)
	return nil
}
