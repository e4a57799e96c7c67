package catalog

// Movie is one entry in a TMDB search, discover, or recommendation result.
// TV results carry "name" instead of "title"; DisplayTitle folds that in.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name,omitempty"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	GenreIDs    []int64 `json:"genre_ids,omitempty"`
}

// DisplayTitle returns the title, falling back to the TV-style name field
func (m Movie) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// SearchResponse is the paged envelope TMDB wraps list results in
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetail is the full record for a single movie
type MovieDetail struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Runtime      int     `json:"runtime"`
	Tagline      string  `json:"tagline"`
	Genres       []Genre `json:"genres"`
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds cast and crew for a movie
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// VideoList holds trailers and clips for a movie
type VideoList struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// DiscoverParams describes a /discover/movie query. Zero-valued fields
// are omitted from the request.
type DiscoverParams struct {
	SortBy             string
	VoteCountGTE       int
	Page               int
	PrimaryReleaseYear int
	WithGenres         []int64
	WithOriginCountry  string
}
