package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/places"
)

// NewPlacesCmd creates the places command
func NewPlacesCmd(opts ...Option) *cobra.Command {
	q := places.DefaultQuery()

	cmd := &cobra.Command{
		Use:     "places [id]",
		Aliases: []string{"ls"},
		Short:   "List places, or show one place",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "warn", func(ctx context.Context, d *Deps) error {
				if len(args) == 1 {
					return runPlace(ctx, d, args[0])
				}
				return runPlaces(ctx, d, q)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.Search, "search", "s", "", "Search name, location, description and tags")
	f.StringVar(&q.Category, "category", q.Category, "Category (attractions, hotels, restaurants, nature, shopping or all)")
	f.Float64Var(&q.MinRating, "min-rating", 0, "Minimum rating")
	f.IntVar(&q.MinPrice, "min-price", q.MinPrice, "Minimum price level (0-5)")
	f.IntVar(&q.MaxPrice, "max-price", q.MaxPrice, "Maximum price level (0-5)")
	f.StringVar(&q.Status, "status", q.Status, "Status (active, pending, inactive or all)")
	f.StringVar(&q.SortBy, "sort", q.SortBy, "Sort by name, rating, category, location, priceLevel or status")
	f.BoolVar(&q.Desc, "desc", false, "Sort descending")
	f.IntVar(&q.Page, "page", q.Page, "Page number")
	f.IntVar(&q.PageSize, "page-size", 0, "Places per page (0 for all)")

	return cmd
}

func runPlaces(ctx context.Context, d *Deps, q places.Query) error {
	list, err := d.Client.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to list places: %w", err)
	}

	page, err := places.Apply(list, q)
	if err != nil {
		return err
	}

	if len(page.Items) == 0 {
		fmt.Fprintln(d.Out, "No places found.")
		return nil
	}

	w := tabwriter.NewWriter(d.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tCATEGORY\tRATING\tPRICE")
	fmt.Fprintln(w, "──\t────\t────────\t────────\t──────\t─────")
	for _, p := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%s\n",
			p.ID, p.Name, p.Location, p.Category, p.Rating, priceLabel(p.PriceLevel))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if page.Pages > 1 {
		fmt.Fprintf(d.Out, "\nPage %d of %d (%d places)\n", page.Page, page.Pages, page.Total)
	}
	return nil
}

func runPlace(ctx context.Context, d *Deps, id string) error {
	p, err := d.Client.GetPlace(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get place: %w", err)
	}
	printPlace(d, p)
	return nil
}

func printPlace(d *Deps, p *models.Place) {
	fmt.Fprintf(d.Out, "%s\n", p.Name)
	fmt.Fprintf(d.Out, "  Location: %s\n", p.Location)
	fmt.Fprintf(d.Out, "  Category: %s\n", p.Category)
	fmt.Fprintf(d.Out, "  Rating:   %.1f\n", p.Rating)
	fmt.Fprintf(d.Out, "  Price:    %s\n", priceLabel(p.PriceLevel))
	if len(p.Tags) > 0 {
		fmt.Fprintf(d.Out, "  Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(d.Out, "\n%s\n", p.Description)
	}
}

func priceLabel(level int) string {
	if level <= 0 {
		return "Free"
	}
	return strings.Repeat("$", level)
}
