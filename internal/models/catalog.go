package models

// MediaType classifies a catalog entry or detail record
type MediaType string

const (
	MediaTypeSeries MediaType = "series"
	MediaTypeMovie  MediaType = "movie"
	MediaTypeOVA    MediaType = "ova"
)

// DubStatus tells whether a title is offered with original audio or dubbed
type DubStatus string

const (
	DubStatusSubbed DubStatus = "subbed"
	DubStatusDubbed DubStatus = "dubbed"
)

// CatalogEntry is one item of a listing, search result or shelf
type CatalogEntry struct {
	Title           string      `json:"title"`
	URL             string      `json:"url"`
	Provider        string      `json:"provider"`
	PosterURL       string      `json:"posterUrl,omitempty"`
	MediaType       MediaType   `json:"mediaType"`
	DubStatus       []DubStatus `json:"dubStatus"`
	SubEpisodeCount *int        `json:"subEpisodeCount,omitempty"`
	DubEpisodeCount *int        `json:"dubEpisodeCount,omitempty"`
}

// IsDubbed reports whether the entry carries the dubbed status
func (e CatalogEntry) IsDubbed() bool {
	for _, s := range e.DubStatus {
		if s == DubStatusDubbed {
			return true
		}
	}
	return false
}

// CatalogShelf is a labelled group of entries shown on a provider home page
type CatalogShelf struct {
	Label   string         `json:"label"`
	Entries []CatalogEntry `json:"entries"`
}

// ProviderInfo describes a registered provider
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang"`
}
