package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/catalog"
	"github.com/spf13/cobra"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List movies from the catalog",
	Long: `List catalog pages and movie details.

Examples:
  gocinema movies popular --page 2
  gocinema movies top-rated
  gocinema movies details 550`,
}

var movieDetailsCmd = &cobra.Command{
	Use:   "details <movie-id>",
	Short: "Show a single movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runMovieDetails,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search movies by title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// listCommands maps subcommand names to catalog listings.
var listCommands = []struct {
	use   string
	short string
	kind  catalog.ListKind
}{
	{"popular", "Popular movies", catalog.ListPopular},
	{"top-rated", "Top rated movies", catalog.ListTopRated},
	{"now-playing", "Movies now in theaters", catalog.ListNowPlaying},
	{"upcoming", "Upcoming releases", catalog.ListUpcoming},
}

func init() {
	for _, lc := range listCommands {
		kind := lc.kind
		c := &cobra.Command{
			Use:   lc.use,
			Short: lc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runList(cmd, kind)
			},
		}
		c.Flags().Int("page", 1, "page number (1-based)")
		moviesCmd.AddCommand(c)
	}

	searchCmd.Flags().Int("page", 1, "page number (1-based)")

	moviesCmd.AddCommand(movieDetailsCmd)
	rootCmd.AddCommand(moviesCmd)
	rootCmd.AddCommand(searchCmd)
}

func runList(cmd *cobra.Command, kind catalog.ListKind) error {
	page, _ := cmd.Flags().GetInt("page")

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.Catalog().List(ctx, kind, page)
	if err != nil {
		return describeCatalogError(err)
	}
	return printPage(res)
}

func runSearch(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("search query is empty")
	}

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.Catalog().Search(ctx, query, page)
	if err != nil {
		return describeCatalogError(err)
	}
	return printPage(res)
}

func runMovieDetails(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.engine.Catalog().Details(ctx, id)
	if err != nil {
		return describeCatalogError(err)
	}

	if jsonOut {
		return printJSON(m)
	}

	w := newTable()
	fmt.Fprintf(w, "Title:\t%s\n", m.Title)
	if m.Tagline != "" {
		fmt.Fprintf(w, "Tagline:\t%s\n", m.Tagline)
	}
	fmt.Fprintf(w, "Released:\t%s\n", orDash(m.ReleaseDate))
	if m.Runtime > 0 {
		fmt.Fprintf(w, "Runtime:\t%d min\n", m.Runtime)
	}
	fmt.Fprintf(w, "Rating:\t%.1f (%d votes)\n", m.VoteAverage, m.VoteCount)
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		fmt.Fprintf(w, "Genres:\t%s\n", strings.Join(names, ", "))
	}
	if m.Status != "" {
		fmt.Fprintf(w, "Status:\t%s\n", m.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if m.Overview != "" {
		fmt.Printf("\n%s\n", m.Overview)
	}
	return nil
}

func printPage(p *catalog.Page) error {
	if jsonOut {
		return printJSON(p)
	}
	if err := printMovies(p.Results); err != nil {
		return err
	}
	fmt.Printf("\nPage %d of %d (%d results)\n", p.Page, p.TotalPages, p.TotalResults)
	return nil
}

func printMovies(movies []catalog.Movie) error {
	if len(movies) == 0 {
		fmt.Println("No movies found.")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tTITLE\tRELEASED\tRATING")
	for _, m := range movies {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\n", m.ID, m.Title, orDash(m.ReleaseDate), m.VoteAverage)
	}
	return w.Flush()
}

func describeCatalogError(err error) error {
	var cerr *goCinema.CatalogError
	if errors.As(err, &cerr) && cerr.StatusCode == 401 {
		return errors.New("catalog rejected the API key (check catalog.api_key)")
	}
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
