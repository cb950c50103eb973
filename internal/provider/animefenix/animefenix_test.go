package animefenix

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/provider"
	"github.com/Belphemur/AnimeProviders/internal/testutil"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{ClientTimeout: "5s"}
	return New(provider.Options{
		Fetcher: client.NewClient(cfg),
		BaseURL: server.URL,
	}), server
}

func TestProvider_Identity(t *testing.T) {
	p := New(provider.Options{})
	if p.ID() != "animefenix" || p.Name() != "Animefenix" || p.Lang() != "es" {
		t.Errorf("unexpected identity %q %q %q", p.ID(), p.Name(), p.Lang())
	}
	if p.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", p.BaseURL(), DefaultBaseURL)
	}
}

func TestProvider_MainPage(t *testing.T) {
	var base string
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(testutil.GenerateFenixHomeHTML(
				[]testutil.FenixLatestOptions{
					{Title: "One Piece", Href: base + "/ver/one-piece-1080", Poster: "/img/op.jpg", EpisodeText: "Episodio 1080"},
					{Title: "Dr. Stone Latino", Href: base + "/ver/dr-stone-latino-12.5", Poster: "/img/ds.jpg", EpisodeText: "Episodio 12"},
				},
				[]testutil.ListingItemOptions{
					{Title: "Bleach", Href: base + "/bleach", Poster: "/img/bleach.jpg"},
				},
			)))
		case r.URL.Path == "/animes" && r.URL.Query().Get("type[]") == "movie":
			_, _ = w.Write([]byte(testutil.GenerateFenixListingHTML([]testutil.ListingItemOptions{
				{Title: "Suzume", Href: base + "/suzume", Poster: "/img/suzume.jpg"},
			})))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	base = server.URL

	shelves, err := p.MainPage(context.Background())
	if err != nil {
		t.Fatalf("MainPage failed: %v", err)
	}
	if len(shelves) != 4 {
		t.Fatalf("expected 4 shelves, got %d", len(shelves))
	}

	labels := []string{"Últimos episodios", "Animes", "Peliculas", "OVA's"}
	for i, l := range labels {
		if shelves[i].Label != l {
			t.Errorf("shelf %d label = %q, want %q", i, shelves[i].Label, l)
		}
	}

	latest := shelves[0].Entries
	if len(latest) != 2 {
		t.Fatalf("expected 2 latest entries, got %d", len(latest))
	}
	if latest[0].URL != base+"/one-piece" {
		t.Errorf("latest URL = %q, want %q", latest[0].URL, base+"/one-piece")
	}
	if latest[1].URL != base+"/dr-stone-latino" {
		t.Errorf("decimal episode suffix not stripped: %q", latest[1].URL)
	}
	if latest[0].SubEpisodeCount == nil || *latest[0].SubEpisodeCount != 1080 {
		t.Errorf("episode count = %v, want 1080", latest[0].SubEpisodeCount)
	}
	if latest[0].PosterURL != base+"/img/op.jpg" {
		t.Errorf("poster = %q", latest[0].PosterURL)
	}
	if latest[0].IsDubbed() || !latest[1].IsDubbed() {
		t.Errorf("dub detection wrong: %v / %v", latest[0].DubStatus, latest[1].DubStatus)
	}

	if len(shelves[1].Entries) != 1 || shelves[1].Entries[0].Title != "Bleach" {
		t.Errorf("Animes shelf = %+v", shelves[1].Entries)
	}
	if len(shelves[2].Entries) != 1 || shelves[2].Entries[0].MediaType != models.MediaTypeMovie {
		t.Errorf("Peliculas shelf = %+v", shelves[2].Entries)
	}
	if shelves[3].Entries == nil || len(shelves[3].Entries) != 0 {
		t.Errorf("failing OVA shelf should be kept empty, got %+v", shelves[3].Entries)
	}
}

func TestProvider_MainPage_EmptyCatalog(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	})

	_, err := p.MainPage(context.Background())
	if !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestProvider_Search(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/animes" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("q") != "shingeki no" {
			_, _ = w.Write([]byte(testutil.GenerateFenixListingHTML(nil)))
			return
		}
		_, _ = w.Write([]byte(testutil.GenerateFenixListingHTML([]testutil.ListingItemOptions{
			{Title: "Shingeki no Kyojin", Href: "/shingeki-no-kyojin", Poster: "//cdn.example/snk.jpg"},
			{Title: "Shingeki no Kyojin Castellano", Href: "/shingeki-no-kyojin-castellano", Poster: "/snk.jpg"},
		})))
	})

	results, err := p.Search(context.Background(), "shingeki no")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != server.URL+"/shingeki-no-kyojin" {
		t.Errorf("URL = %q", results[0].URL)
	}
	if results[0].PosterURL != "https://cdn.example/snk.jpg" {
		t.Errorf("protocol-relative poster not resolved: %q", results[0].PosterURL)
	}
	if results[0].Provider != ID {
		t.Errorf("Provider = %q", results[0].Provider)
	}
	if !results[1].IsDubbed() {
		t.Error("Castellano title should be dubbed")
	}

	none, err := p.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestProvider_Load_Series(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testutil.GenerateFenixDetailHTML(testutil.FenixDetailOptions{
			Title:    "Bleach",
			Poster:   "/img/bleach.jpg",
			Synopsis: "Ichigo obtiene poderes.",
			Genres:   []string{"Acción", "Shounen"},
			Status:   "Finalizado",
			TypeInfo: "Tipo: TV",
			Episodes: []testutil.FenixEpisodeOptions{
				{Label: "Bleach Episodio 3", Href: "/ver/bleach-3"},
				{Label: "Bleach Episodio 2", Href: "/ver/bleach-2"},
				{Label: "Bleach Episodio 1", Href: "/ver/bleach-1"},
			},
		})))
	})

	record, err := p.Load(context.Background(), server.URL+"/bleach")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if record.Title != "Bleach" || record.Synopsis != "Ichigo obtiene poderes." {
		t.Errorf("unexpected record %+v", record)
	}
	if record.Status != models.ShowStatusCompleted {
		t.Errorf("Status = %v", record.Status)
	}
	if len(record.Genres) != 2 || record.Genres[0] != "Acción" {
		t.Errorf("Genres = %v", record.Genres)
	}
	if record.MediaType != models.MediaTypeSeries || record.MovieURL != "" {
		t.Errorf("MediaType = %v, MovieURL = %q", record.MediaType, record.MovieURL)
	}
	if len(record.Episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(record.Episodes))
	}
	for i, ep := range record.Episodes {
		if ep.EpisodeNumber == nil || *ep.EpisodeNumber != i+1 {
			t.Errorf("episode %d number = %v, want ascending order", i, ep.EpisodeNumber)
		}
	}
	if record.Episodes[0].URL != server.URL+"/ver/bleach-1" {
		t.Errorf("first episode URL = %q", record.Episodes[0].URL)
	}
}

func TestProvider_Load_MediaType(t *testing.T) {
	tests := []struct {
		name     string
		info     string
		episodes int
		want     models.MediaType
	}{
		{"movie", "Tipo: Película", 1, models.MediaTypeMovie},
		{"movie marker with many episodes", "Tipo: Película", 2, models.MediaTypeSeries},
		{"single episode without marker", "Tipo: TV", 1, models.MediaTypeSeries},
		{"ova", "Tipo: OVA", 2, models.MediaTypeOVA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var eps []testutil.FenixEpisodeOptions
			for i := tt.episodes; i >= 1; i-- {
				eps = append(eps, testutil.FenixEpisodeOptions{Label: "Episodio", Href: "/ver/x-" + string(rune('0'+i))})
			}
			p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(testutil.GenerateFenixDetailHTML(testutil.FenixDetailOptions{
					Title: "X", TypeInfo: tt.info, Episodes: eps,
				})))
			})

			record, err := p.Load(context.Background(), server.URL+"/x")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if record.MediaType != tt.want {
				t.Errorf("MediaType = %v, want %v", record.MediaType, tt.want)
			}
			if tt.want == models.MediaTypeMovie && record.MovieURL != server.URL+"/ver/x-1" {
				t.Errorf("MovieURL = %q", record.MovieURL)
			}
			if record.Status != models.ShowStatusUnknown {
				t.Errorf("missing status should be unknown, got %v", record.Status)
			}
		})
	}
}

func TestProvider_Load_MissingTitle(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testutil.GenerateFenixDetailHTML(testutil.FenixDetailOptions{Synopsis: "orphan"})))
	})

	_, err := p.Load(context.Background(), server.URL+"/broken")
	var pe *apperrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Element != "h1.title.has-text-orange" {
		t.Errorf("Element = %q", pe.Element)
	}
}

func TestProvider_Load_UpstreamError(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := p.Load(context.Background(), server.URL+"/gone"); !errors.Is(err, &apperrors.UpstreamError{}) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestParseTokens(t *testing.T) {
	script := `tabsArray['1'] = "<iframe src='../stream/play.php?player=2&amp;code=ABC&' ></iframe>";
tabsArray['2'] = "<iframe src='../stream/play.php?player=9&code=XYZ'></iframe>";
tabsArray['3'] = "<iframe src='../stream/play.php?player=22&amp;code=a_b-C.9&thumb=1'></iframe>";`

	tokens := ParseTokens(script)
	want := []Token{{2, "ABC"}, {9, "XYZ"}, {22, "a_b-C.9"}}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %+v, want %+v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestPlayerURL(t *testing.T) {
	base := "https://animefenix.com"
	tests := []struct {
		id   int
		code string
		want string
	}{
		{2, "ABC", "https://embedsito.com/v/ABC"},
		{3, "m4", "https://www.mp4upload.com/embed-m4.html"},
		{4, "sv", "https://sendvid.com/sv"},
		{6, "yu", "https://www.yourupload.com/embed/yu"},
		{9, "XYZ", base + "/stream/amz.php?v=XYZ"},
		{11, "XYZ", base + "/stream/amz.php?v=XYZ&ext=es"},
		{12, "123", "https://ok.ru/videoembed/123"},
		{22, "fl", base + "/stream/fl.php?v=fl"},
	}
	for _, tt := range tests {
		got, ok := PlayerURL(base, tt.id, tt.code)
		if !ok || got != tt.want {
			t.Errorf("PlayerURL(%d, %q) = %q, %v; want %q", tt.id, tt.code, got, ok, tt.want)
		}
	}
	if _, ok := PlayerURL(base, 99, "x"); ok {
		t.Error("unknown player id should not resolve")
	}
}

func TestProvider_LoadLinks_Fembed(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testutil.GenerateFenixPlayerHTML([]string{"player=2&amp;code=ABC&"})))
	})

	var collector testutil.StreamCollector
	summary, err := p.LoadLinks(context.Background(), server.URL+"/ver/x-1", collector.OnSubtitle, collector.OnStream)
	if err != nil {
		t.Fatalf("LoadLinks failed: %v", err)
	}

	urls := collector.URLs()
	if len(urls) != 1 || urls[0] != "https://embedsito.com/v/ABC" {
		t.Fatalf("emitted %v, want exactly https://embedsito.com/v/ABC", urls)
	}
	if collector.Streams[0].Referer != server.URL+"/ver/x-1" {
		t.Errorf("Referer = %q", collector.Streams[0].Referer)
	}
	if summary != (models.LinkSummary{Candidates: 1, Emitted: 1}) {
		t.Errorf("summary = %+v", summary)
	}
}

func TestProvider_LoadLinks_SecondaryResolution(t *testing.T) {
	var base string
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ver/x-1":
			_, _ = w.Write([]byte(testutil.GenerateFenixPlayerHTML([]string{
				"player=9&amp;code=AMZ&",
				"player=11&amp;code=AMZ&",
				"player=22&amp;code=GOOD&",
				"player=22&amp;code=BAD&",
				"player=77&amp;code=UNKNOWN&",
			})))
		case "/stream/amz.php":
			if r.Header.Get("Referer") == "" {
				t.Errorf("secondary request without referer")
			}
			label := "HD"
			if r.URL.Query().Get("ext") == "es" {
				label = "720p"
			}
			_, _ = w.Write([]byte(testutil.GenerateSourcesPageHTML("https://amazon.example/"+r.URL.Query().Get("v")+".mp4", label, "mp4")))
		case "/stream/fl.php":
			_, _ = w.Write([]byte(testutil.GenerateSourcesPageHTML(base+"/fireload/"+r.URL.Query().Get("v"), "SD", "mp4")))
		case "/fireload/GOOD":
			_, _ = w.Write([]byte("binary-video"))
		case "/fireload/BAD":
			_, _ = w.Write([]byte("error: file not found"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	base = server.URL

	var collector testutil.StreamCollector
	summary, err := p.LoadLinks(context.Background(), base+"/ver/x-1", collector.OnSubtitle, collector.OnStream)
	if err != nil {
		t.Fatalf("LoadLinks failed: %v", err)
	}

	byName := map[string]models.StreamCandidate{}
	for _, s := range collector.Streams {
		byName[s.DisplayName] = s
	}
	if len(byName) != 3 {
		t.Fatalf("expected 3 streams, got %+v", collector.Streams)
	}
	if s, ok := byName["Amazon HD"]; !ok || s.StreamURL != "https://amazon.example/AMZ.mp4" || s.Quality != models.QualityUnknown {
		t.Errorf("Amazon stream = %+v", s)
	}
	if s, ok := byName["AmazonES 720p"]; !ok || s.ProviderLabel != "AmazonES" || s.Quality != models.Quality720p {
		t.Errorf("AmazonES stream = %+v", s)
	}
	if s, ok := byName["Fireload SD"]; !ok || s.StreamURL != base+"/fireload/GOOD" {
		t.Errorf("Fireload stream = %+v", s)
	}
	for _, s := range collector.Streams {
		if strings.Contains(s.StreamURL, "BAD") {
			t.Errorf("probe-rejected stream was emitted: %+v", s)
		}
	}
	if summary.Candidates != 5 || summary.Emitted != 3 || summary.Failed != 2 {
		t.Errorf("summary = %+v, want 5 candidates / 3 emitted / 2 failed", summary)
	}
}

func TestProvider_LoadLinks_NoTabsScript(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="player-container"><script>var x = "player=2&amp;code=ABC&";</script></div></body></html>`))
	})

	var collector testutil.StreamCollector
	summary, err := p.LoadLinks(context.Background(), server.URL+"/ver/x-1", nil, collector.OnStream)
	if err != nil {
		t.Fatalf("LoadLinks failed: %v", err)
	}
	if len(collector.Streams) != 0 || summary.Candidates != 0 {
		t.Errorf("expected nothing without the tabs marker, got %+v / %+v", collector.Streams, summary)
	}
}
