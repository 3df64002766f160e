package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// ListKind names a paginated movie listing.
type ListKind string

const (
	ListPopular    ListKind = "popular"
	ListTopRated   ListKind = "top_rated"
	ListNowPlaying ListKind = "now_playing"
	ListUpcoming   ListKind = "upcoming"
)

// Valid reports whether k is a known listing.
func (k ListKind) Valid() bool {
	switch k {
	case ListPopular, ListTopRated, ListNowPlaying, ListUpcoming:
		return true
	}
	return false
}

// ListPath returns the endpoint path, which is also the cache key, for a
// listing page.
func ListPath(kind ListKind, page int) string {
	return "/movie/" + string(kind) + "?page=" + strconv.Itoa(normalizePage(page))
}

// SearchPath returns the endpoint path for a search page. The query is
// escaped the way encodeURIComponent does for spaces.
func SearchPath(query string, page int) string {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return "/search/movie?query=" + q + "&page=" + strconv.Itoa(normalizePage(page))
}

// DetailsPath returns the endpoint path for a single movie.
func DetailsPath(id int64) string {
	return "/movie/" + strconv.FormatInt(id, 10)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// List fetches one page of a listing.
func (c *Client) List(ctx context.Context, kind ListKind, page int) (*Page, error) {
	var p Page
	if err := c.Fetch(ctx, ListPath(kind, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Popular fetches one page of /movie/popular.
func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	return c.List(ctx, ListPopular, page)
}

// TopRated fetches one page of /movie/top_rated.
func (c *Client) TopRated(ctx context.Context, page int) (*Page, error) {
	return c.List(ctx, ListTopRated, page)
}

// NowPlaying fetches one page of /movie/now_playing.
func (c *Client) NowPlaying(ctx context.Context, page int) (*Page, error) {
	return c.List(ctx, ListNowPlaying, page)
}

// Upcoming fetches one page of /movie/upcoming.
func (c *Client) Upcoming(ctx context.Context, page int) (*Page, error) {
	return c.List(ctx, ListUpcoming, page)
}

// Details fetches the detail record for a movie.
func (c *Client) Details(ctx context.Context, id int64) (*MovieDetails, error) {
	var d MovieDetails
	if err := c.Fetch(ctx, DetailsPath(id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Search fetches one page of search results for query.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	var p Page
	if err := c.Fetch(ctx, SearchPath(query, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
