package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrEthical07/goCinema/browse"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through popular movies, or search, the way the home screen does",
	Long: `Drive the browse coordinator: load popular movies page by page, or commit a
debounced search query and show its first page.

Examples:
  gocinema browse --pages 3
  gocinema browse --query "blade runner"`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().Int("pages", 1, "number of popular pages to accumulate")
	browseCmd.Flags().String("query", "", "search query (switches to search mode)")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	pages, _ := cmd.Flags().GetInt("pages")
	query, _ := cmd.Flags().GetString("query")
	query = strings.TrimSpace(query)

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	br := a.engine.NewBrowser()
	defer br.Close()

	br.Start(ctx)
	v, err := waitForView(ctx, br, func(v browse.View) bool { return !v.Loading })
	if err != nil {
		return err
	}

	if query != "" {
		br.SetQuery(query)
		v, err = waitForView(ctx, br, func(v browse.View) bool {
			return v.DebouncedQuery == query && !v.Loading
		})
		if err != nil {
			return err
		}
	} else {
		for v.Err == nil && v.CurrentPage < pages && br.LoadMore() {
			v, err = waitForView(ctx, br, func(v browse.View) bool { return !v.Loading })
			if err != nil {
				return err
			}
		}
	}

	if v.Err != nil {
		return describeCatalogError(v.Err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"mode":         v.Mode.String(),
			"query":        v.DebouncedQuery,
			"current_page": v.CurrentPage,
			"total_pages":  v.TotalPages,
			"has_more":     v.HasMorePages,
			"movies":       v.Movies,
		})
	}

	if err := printMovies(v.Movies); err != nil {
		return err
	}
	if v.Mode == browse.ModeSearch {
		fmt.Printf("\nSearch %q: %d results\n", v.DebouncedQuery, len(v.Movies))
		return nil
	}
	fmt.Printf("\nLoaded %d of %d pages (%d movies)\n", v.CurrentPage, v.TotalPages, len(v.Movies))
	return nil
}

// waitForView blocks until the coordinator publishes a view satisfying done.
// Notifications only wake the waiter; the view is always re-read so a
// coalesced wake-up cannot miss the final state.
func waitForView(ctx context.Context, br *browse.Coordinator, done func(browse.View) bool) (browse.View, error) {
	wake := make(chan struct{}, 1)
	unsubscribe := br.Subscribe(func(browse.View) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		if v := br.View(); done(v) {
			return v, nil
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return br.View(), ctx.Err()
		}
	}
}
