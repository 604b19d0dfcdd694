package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/guard"
	"github.com/travelease-dev/travelease/internal/routes"
)

// NewOpenCmd creates the open command, which shows where navigating to a
// path ends up for the current session
func NewOpenCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Resolve an app path through the route guards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return runOpen(ctx, d, path)
			})
		},
	}
}

func runOpen(ctx context.Context, d *Deps, path string) error {
	router := routes.New(d.Manager, routes.WithLogger(d.Logger))

	if path == "" {
		if !d.Prompt.Interactive() {
			return fmt.Errorf("path is required in non-interactive mode")
		}
		var err error
		if path, err = selectRoute(d, router.Routes()); err != nil {
			return err
		}
	}

	d.Manager.Start(ctx)

	res, err := router.Open(d.History, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.Out, "View:     %s\n", res.Route.View)
	fmt.Fprintf(d.Out, "Location: %s\n", res.Location)
	if res.Location.From != nil {
		fmt.Fprintf(d.Out, "From:     %s\n", res.Location.From)
	}
	for name, value := range res.Params {
		fmt.Fprintf(d.Out, "Param:    %s=%s\n", name, value)
	}
	if res.Decision.Outcome == guard.Pending {
		fmt.Fprintln(d.Out, "Session is still loading")
	}
	return nil
}

func selectRoute(d *Deps, table []routes.Route) (string, error) {
	var items []string
	var paths []string
	for _, r := range table {
		if r.Pattern == routes.NotFoundPath || strings.Contains(r.Pattern, ":") {
			continue
		}
		items = append(items, fmt.Sprintf("%-14s %s (%s)", r.Pattern, r.View, r.Access))
		paths = append(paths, r.Pattern)
	}

	index, err := d.Prompt.Select("Open", items)
	if err != nil {
		return "", err
	}
	return paths[index], nil
}
