package catalog

// Movie is one entry of a listing or search page.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	GenreIDs     []int64 `json:"genre_ids"`
}

// Page is a paginated listing or search response.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMore reports whether a page after p exists.
func (p *Page) HasMore() bool {
	return p != nil && p.Page < p.TotalPages
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the detail endpoint payload.
type MovieDetails struct {
	Movie
	Runtime  int     `json:"runtime"`
	Tagline  string  `json:"tagline"`
	Genres   []Genre `json:"genres"`
	Status   string  `json:"status"`
	Homepage string  `json:"homepage"`
}
