package models

// ShowStatus is the airing status reported by the site
type ShowStatus string

const (
	ShowStatusUnknown   ShowStatus = "unknown"
	ShowStatusOngoing   ShowStatus = "ongoing"
	ShowStatusCompleted ShowStatus = "completed"
)

// EpisodeRef points at the player page of one episode
type EpisodeRef struct {
	URL           string `json:"url"`
	Label         string `json:"label"`
	EpisodeNumber *int   `json:"episodeNumber,omitempty"`
}

// DetailRecord is the parsed detail page of a show or movie
type DetailRecord struct {
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	Provider  string       `json:"provider"`
	PosterURL string       `json:"posterUrl,omitempty"`
	Synopsis  string       `json:"synopsis,omitempty"`
	Genres    []string     `json:"genres"`
	Status    ShowStatus   `json:"status"`
	Year      *int         `json:"year,omitempty"`
	MediaType MediaType    `json:"mediaType"`
	Episodes  []EpisodeRef `json:"episodes"`
	// MovieURL is the playback page of a movie, empty for series
	MovieURL string `json:"movieUrl,omitempty"`
}
