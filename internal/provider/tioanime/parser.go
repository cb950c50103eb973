package tioanime

import (
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/parser"

	"github.com/PuerkitoBio/goquery"
)

const episodesMarker = "var episodes ="

var (
	trailingEpisodeRegex = regexp.MustCompile(`-(\d+)$`)
	trailingDigitsRegex  = regexp.MustCompile(`\d+$`)
)

// parseLatest parses the latest episodes list of the home page
func parseLatest(body io.Reader, baseURL string) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	var entries []models.CatalogEntry
	doc.Find("ul.episodes li article").Each(func(i int, article *goquery.Selection) {
		rawTitle := strings.TrimSpace(article.Find("h3.title").First().Text())
		title := strings.TrimSpace(trailingDigitsRegex.ReplaceAllString(rawTitle, ""))
		if title == "" {
			// Titles that are only a number, such as "86"
			title = rawTitle
		}
		href, _ := article.Find("a").First().Attr("href")
		if title == "" || href == "" {
			logger.Debug().Int("item", i).Msg("Skipping latest episode without title or link")
			return
		}

		showURL := strings.Replace(trailingEpisodeRegex.ReplaceAllString(href, ""), "ver/", "anime/", 1)
		poster, _ := article.Find("figure img").First().Attr("src")

		entry := models.CatalogEntry{
			Title:     title,
			URL:       parser.ResolveURL(baseURL, showURL),
			Provider:  ID,
			PosterURL: parser.ResolveURL(baseURL, poster),
			MediaType: models.MediaTypeSeries,
			DubStatus: parser.DubStatusFromTitle(title),
		}
		if m := trailingEpisodeRegex.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				entry.SubEpisodeCount = parser.IntPtr(n)
				entry.DubEpisodeCount = parser.IntPtr(n)
			}
		}
		entries = append(entries, entry)
	})

	logger.Debug().Int("entries", len(entries)).Msg("Parsed tioanime latest episodes")
	return entries, nil
}

// parseDirectory parses a directory listing page
func parseDirectory(body io.Reader, baseURL string, mediaType models.MediaType) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	var entries []models.CatalogEntry
	doc.Find("ul.animes li article").Each(func(i int, article *goquery.Selection) {
		title := strings.TrimSpace(article.Find("h3.title").First().Text())
		href, _ := article.Find("a").First().Attr("href")
		if title == "" || href == "" {
			logger.Debug().Int("article", i).Msg("Skipping directory article without title or link")
			return
		}
		poster, _ := article.Find("figure img").First().Attr("src")

		entries = append(entries, models.CatalogEntry{
			Title:     title,
			URL:       parser.ResolveURL(baseURL, href),
			Provider:  ID,
			PosterURL: parser.ResolveURL(baseURL, poster),
			MediaType: mediaType,
			DubStatus: parser.DubStatusFromTitle(title),
		})
	})

	return entries, nil
}

// parseDetail parses an anime detail page. The title is required, everything
// else degrades to empty values.
func parseDetail(body io.Reader, pageURL, baseURL string) (*models.DetailRecord, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.Title").First().Text())
	if title == "" {
		return nil, apperrors.NewParseError(ID, pageURL, "h1.Title")
	}

	poster, _ := doc.Find("div.thumb img").First().Attr("src")
	record := &models.DetailRecord{
		Title:     title,
		URL:       pageURL,
		Provider:  ID,
		PosterURL: parser.ResolveURL(baseURL, poster),
		Synopsis:  strings.TrimSpace(doc.Find("p.sinopsis").First().Text()),
		Genres:    []string{},
		Status:    parseStatus(doc.Find("div.thumb a.btn.status i").First().Text()),
		Episodes:  []models.EpisodeRef{},
	}

	doc.Find("p.genres a").Each(func(_ int, a *goquery.Selection) {
		if g := strings.TrimSpace(a.Text()); g != "" {
			record.Genres = append(record.Genres, g)
		}
	})

	if year, err := strconv.Atoi(strings.TrimSpace(doc.Find("span.year").First().Text())); err == nil {
		record.Year = parser.IntPtr(year)
	}

	episodeURLBase := strings.Replace(pageURL, "/anime/", "/ver/", 1)
	for _, script := range parser.ScriptsContaining(doc.Find("script"), episodesMarker) {
		for _, n := range episodeNumbers(script) {
			record.Episodes = append(record.Episodes, models.EpisodeRef{
				URL:           episodeURLBase + "-" + n,
				Label:         "Capítulo " + n,
				EpisodeNumber: atoiPtr(n),
			})
		}
	}
	// Newest first on the site
	slices.Reverse(record.Episodes)

	record.MediaType = parser.ClassifyMediaType(doc.Find("span.anime-type-peli").First().Text(), len(record.Episodes))
	if record.MediaType == models.MediaTypeMovie {
		record.MovieURL = record.Episodes[0].URL
	}

	logger.Debug().Str("title", title).Int("episodes", len(record.Episodes)).Str("type", string(record.MediaType)).Msg("Parsed tioanime detail page")
	return record, nil
}

// episodeNumbers reads the inline episodes array, falling back to splitting
// the raw array text when it is not valid JSON
func episodeNumbers(script string) []string {
	var values []flexString
	if err := parser.ExtractJSONAfter(script, episodesMarker, &values); err == nil {
		numbers := make([]string, 0, len(values))
		for _, v := range values {
			if s := strings.TrimSpace(string(v)); s != "" {
				numbers = append(numbers, s)
			}
		}
		return numbers
	}

	raw, ok := parser.Between(script, "var episodes = [", "];")
	if !ok {
		return nil
	}
	var numbers []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'[]`)
		if part != "" {
			numbers = append(numbers, part)
		}
	}
	return numbers
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseStatus(text string) models.ShowStatus {
	switch parser.Normalize(text) {
	case "En emision", "En emisión":
		return models.ShowStatusOngoing
	case "Finalizado":
		return models.ShowStatusCompleted
	default:
		return models.ShowStatusUnknown
	}
}
