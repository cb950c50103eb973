package models

// StreamCandidate is one playable video link emitted from a player page
type StreamCandidate struct {
	ProviderLabel string  `json:"providerLabel"`
	DisplayName   string  `json:"displayName"`
	StreamURL     string  `json:"streamUrl"`
	Referer       string  `json:"referer,omitempty"`
	IsPlaylist    bool    `json:"isPlaylist"`
	Quality       Quality `json:"quality"`
}

// SubtitleRef is an external subtitle track attached to a stream
type SubtitleRef struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// LinkSummary counts what happened while resolving the links of one page
type LinkSummary struct {
	Candidates int `json:"candidates"`
	Emitted    int `json:"emitted"`
	Failed     int `json:"failed"`
}

// Links is the collected result of a link resolution
type Links struct {
	Streams   []StreamCandidate `json:"streams"`
	Subtitles []SubtitleRef     `json:"subtitles"`
	Summary   LinkSummary       `json:"summary"`
}
