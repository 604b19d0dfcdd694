package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/forms"
	"github.com/travelease-dev/travelease/internal/guard"
	"github.com/travelease-dev/travelease/internal/nav"
)

// NewRouteCmd creates the route command
func NewRouteCmd(opts ...Option) *cobra.Command {
	var (
		form     forms.RouteSearch
		estimate bool
	)

	cmd := &cobra.Command{
		Use:   "route [origin] [destination]",
		Short: "Find a route between two places",
		Long: `Find a route between two places and show its distance, duration and
estimated cost. Requires a signed-in session.

Missing places are prompted for on a terminal.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				form.Origin = args[0]
			}
			if len(args) > 1 {
				form.Destination = args[1]
			}
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				return runRoute(ctx, d, form, estimate)
			})
		},
	}

	cmd.Flags().StringVarP(&form.Mode, "mode", "m", "", "Travel mode (driving, walking, cycling or transit)")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "Only estimate the cost")

	return cmd
}

func runRoute(ctx context.Context, d *Deps, form forms.RouteSearch, estimate bool) error {
	d.Manager.Start(ctx)
	if decision := guard.RequireAuth(d.Manager)(nav.Location{Path: "/routes"}); decision.Outcome != guard.Allow {
		return ErrNotLoggedIn
	}

	if d.Prompt.Interactive() {
		var err error
		if strings.TrimSpace(form.Origin) == "" {
			if form.Origin, err = d.Prompt.Input("Origin", requiredInput); err != nil {
				return err
			}
		}
		if strings.TrimSpace(form.Destination) == "" {
			if form.Destination, err = d.Prompt.Input("Destination", requiredInput); err != nil {
				return err
			}
		}
	}

	if err := form.Validate(); err != nil {
		return err
	}

	if estimate {
		est, err := d.Client.EstimateCost(ctx, form.Request())
		if err != nil {
			return routeError("failed to estimate cost", err)
		}
		fmt.Fprintf(d.Out, "%s → %s (%s)\n", form.Origin, form.Destination, form.Mode)
		fmt.Fprintf(d.Out, "  Estimated cost: %s\n", costLabel(est.Cost, est.Currency))
		return nil
	}

	route, err := d.Client.FindRoute(ctx, form.Request())
	if err != nil {
		return routeError("failed to find route", err)
	}

	fmt.Fprintf(d.Out, "%s → %s (%s)\n", route.Origin, route.Destination, route.Mode)
	fmt.Fprintf(d.Out, "  Distance:       %.1f km\n", route.Distance)
	fmt.Fprintf(d.Out, "  Duration:       %d min\n", route.Duration)
	fmt.Fprintf(d.Out, "  Estimated cost: %s\n", costLabel(route.Cost, ""))
	if len(route.Points) > 0 {
		fmt.Fprintln(d.Out, "\nWaypoints:")
		for i, p := range route.Points {
			name := p.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			fmt.Fprintf(d.Out, "  %-12s %.4f, %.4f\n", name, p.Lat, p.Lng)
		}
	}
	return nil
}

// routeError prefers the backend's own message
func routeError(prefix string, err error) error {
	var statusErr *apiclient.HTTPStatusError
	if errors.As(err, &statusErr) {
		if msg := statusErr.Message(); msg != "" {
			return fmt.Errorf("%s: %s", prefix, msg)
		}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func costLabel(cost float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", cost)
	}
	return fmt.Sprintf("%.2f %s", cost, currency)
}
