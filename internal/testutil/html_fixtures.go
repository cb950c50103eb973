package testutil

import (
	"fmt"
	"strings"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// ListingItemOptions describes one card of a listing grid
type ListingItemOptions struct {
	Title  string
	Href   string
	Poster string
}

// FenixLatestOptions describes one card of the animefenix latest-episodes grid
type FenixLatestOptions struct {
	Title       string
	Href        string // e.g. "https://animefenix.com/ver/one-piece-1080"
	Poster      string
	EpisodeText string // e.g. "Episodio 1080"
}

// FenixEpisodeOptions describes one row of the animefenix episode list
type FenixEpisodeOptions struct {
	Label string
	Href  string
}

// FenixDetailOptions contains options for generating an animefenix detail page
type FenixDetailOptions struct {
	Title    string // empty omits the title element
	Poster   string
	Synopsis string
	Genres   []string
	Status   string // "Emisión", "Finalizado" or empty
	TypeInfo string // text of ul.has-text-light, e.g. "Tipo: Película"
	Episodes []FenixEpisodeOptions
}

// GenerateFenixHomeHTML generates the animefenix home page with the latest
// episodes grid and a series listing
func GenerateFenixHomeHTML(latest []FenixLatestOptions, listing []ListingItemOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<div class=\"capitulos-grid\">\n")
	for _, item := range latest {
		fmt.Fprintf(&sb, `<div class="item">
	<a href="%s"><img src="%s" alt=""></a>
	<div class="overtitle">%s</div>
	<span class="is-size-7">%s</span>
</div>
`, item.Href, item.Poster, item.Title, item.EpisodeText)
	}
	sb.WriteString("</div>\n")
	sb.WriteString(fenixListing(listing))
	sb.WriteString("</body></html>")
	return sb.String()
}

// GenerateFenixListingHTML generates an animefenix listing or search page
func GenerateFenixListingHTML(items []ListingItemOptions) string {
	return "<html><body>\n" + fenixListing(items) + "</body></html>"
}

func fenixListing(items []ListingItemOptions) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"list-series\">\n")
	for _, item := range items {
		fmt.Fprintf(&sb, `<article class="serie-card">
	<figure class="image"><a href="%s"><img src="%s" alt=""></a></figure>
	<h3 class="title"><a href="%s">%s</a></h3>
</article>
`, item.Href, item.Poster, item.Href, item.Title)
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// GenerateFenixDetailHTML generates an animefenix detail page. Episodes are
// written in the given order, which on the live site is newest first.
func GenerateFenixDetailHTML(opts FenixDetailOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<div class=\"columns\">\n")
	fmt.Fprintf(&sb, "<div class=\"column is-narrow-desktop\"><div class=\"image\"><img src=\"%s\"></div>\n", opts.Poster)
	if opts.Status != "" {
		fmt.Fprintf(&sb, "<a class=\"button is-small\">%s</a>\n", opts.Status)
	}
	sb.WriteString("</div>\n<div class=\"column\">\n")
	if opts.Title != "" {
		fmt.Fprintf(&sb, "<h1 class=\"title has-text-orange\">%s</h1>\n", opts.Title)
	}
	fmt.Fprintf(&sb, "<p class=\"has-text-light\">%s</p>\n", opts.Synopsis)
	sb.WriteString("<div class=\"genres\">")
	for _, g := range opts.Genres {
		fmt.Fprintf(&sb, "<a href=\"/animes?genero[]=%s\">%s</a>", strings.ToLower(g), g)
	}
	sb.WriteString("</div>\n")
	fmt.Fprintf(&sb, "<ul class=\"has-text-light\"><li>%s</li></ul>\n", opts.TypeInfo)
	sb.WriteString("<ul class=\"anime-page__episode-list\">\n")
	for _, ep := range opts.Episodes {
		fmt.Fprintf(&sb, "<li><a href=\"%s\"><span>%s</span></a></li>\n", ep.Href, ep.Label)
	}
	sb.WriteString("</ul>\n</div>\n</div>\n</body></html>")
	return sb.String()
}

// GenerateFenixPlayerHTML generates an animefenix player page whose tabs
// script embeds the given iframe tokens such as "player=2&amp;code=ABC&"
func GenerateFenixPlayerHTML(tokens []string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<div class=\"player-container\">\n<script>\nvar tabsArray = [];\n")
	for i, tok := range tokens {
		fmt.Fprintf(&sb, "tabsArray['%d'] = \"<iframe width='100%%' height='100%%' src='../stream/play.php?%s' frameborder='0'></iframe>\";\n", i+1, tok)
	}
	sb.WriteString("</script>\n<script>console.log('ready');</script>\n</div>\n</body></html>")
	return sb.String()
}

// GenerateSourcesPageHTML generates an intermediary player page exposing a
// jwplayer style sources array
func GenerateSourcesPageHTML(file, label, kind string) string {
	return fmt.Sprintf(`<html><body><div id="player"></div>
<script>
jwplayer("player").setup({
	sources: [{"file":"%s","label":"%s","type":"%s"}],
	autostart: false
});
</script></body></html>`, file, label, kind)
}

// TioDetailOptions contains options for generating a tioanime detail page
type TioDetailOptions struct {
	Title    string // empty omits the title element
	Poster   string
	Synopsis string
	Type     string // text of span.anime-type-peli, e.g. "Película"
	Status   string // "En emision", "Finalizado" or empty
	Genres   []string
	Year     string
	Episodes []int // site order, newest first
}

// GenerateTioEpisodesHTML generates the tioanime home page latest-episodes list
func GenerateTioEpisodesHTML(items []ListingItemOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<ul class=\"episodes\">\n")
	for _, item := range items {
		fmt.Fprintf(&sb, `<li><article class="episode">
	<a href="%s"><figure class="fa-play-circle"><img src="%s" alt=""></figure>
	<h3 class="title">%s</h3></a>
</article></li>
`, item.Href, item.Poster, item.Title)
	}
	sb.WriteString("</ul>\n</body></html>")
	return sb.String()
}

// GenerateTioAnimesHTML generates a tioanime directory page
func GenerateTioAnimesHTML(items []ListingItemOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<ul class=\"animes list-unstyled row\">\n")
	for _, item := range items {
		fmt.Fprintf(&sb, `<li class="col-6"><article class="anime">
	<a href="%s"><div class="thumb"><figure class="fa-play-circle"><img src="%s" alt=""></figure></div>
	<h3 class="title">%s</h3></a>
</article></li>
`, item.Href, item.Poster, item.Title)
	}
	sb.WriteString("</ul>\n</body></html>")
	return sb.String()
}

// GenerateTioDetailHTML generates a tioanime detail page
func GenerateTioDetailHTML(opts TioDetailOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n<article class=\"anime-single\">\n")
	fmt.Fprintf(&sb, "<div class=\"thumb\"><figure><img src=\"%s\"></figure>", opts.Poster)
	if opts.Status != "" {
		fmt.Fprintf(&sb, "<a class=\"btn btn-block status\"><i class=\"fa-tv\">%s</i></a>", opts.Status)
	}
	sb.WriteString("</div>\n")
	if opts.Title != "" {
		fmt.Fprintf(&sb, "<h1 class=\"Title\">%s</h1>\n", opts.Title)
	}
	fmt.Fprintf(&sb, "<div class=\"meta\"><span class=\"anime-type-peli\">%s</span> <span class=\"year\">%s</span></div>\n", opts.Type, opts.Year)
	sb.WriteString("<p class=\"genres\">")
	for _, g := range opts.Genres {
		fmt.Fprintf(&sb, "<span><a href=\"/directorio?genero=%s\"> %s </a></span>", strings.ToLower(g), g)
	}
	sb.WriteString("</p>\n")
	fmt.Fprintf(&sb, "<p class=\"sinopsis\">%s</p>\n", opts.Synopsis)
	sb.WriteString("</article>\n<script>\nvar anime_info = [\"1\",\"x\",\"x\"];\n")
	nums := make([]string, len(opts.Episodes))
	for i, n := range opts.Episodes {
		nums[i] = fmt.Sprintf("%d", n)
	}
	fmt.Fprintf(&sb, "var episodes = [%s];\n</script>\n</body></html>", strings.Join(nums, ","))
	return sb.String()
}

// GenerateTioPlayerHTML generates a tioanime episode page whose videos script
// lists the given server name / embed URL pairs with escaped slashes
func GenerateTioPlayerHTML(servers [][2]string) string {
	var entries []string
	for _, s := range servers {
		escaped := strings.ReplaceAll(s[1], "/", `\/`)
		entries = append(entries, fmt.Sprintf(`["%s","%s",0,0]`, s[0], escaped))
	}
	return fmt.Sprintf(`<html><body>
<div class="episode-single"></div>
<script>var anime_id = 1234; var episode_id = 55;</script>
<script>var videos = [%s];</script>
<script>console.log("ads");</script>
</body></html>`, strings.Join(entries, ","))
}
