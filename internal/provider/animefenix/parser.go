package animefenix

import (
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/parser"

	"github.com/PuerkitoBio/goquery"
)

// episodeSuffixRegex matches the "-12" or "-12.5" episode suffix of a player URL
var episodeSuffixRegex = regexp.MustCompile(`-\d+(\.\d+)?$`)

// parseLatest parses the latest episodes grid of the home page
func parseLatest(body io.Reader, baseURL string) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	var entries []models.CatalogEntry
	doc.Find(".capitulos-grid div.item").Each(func(i int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("div.overtitle").First().Text())
		href, _ := item.Find("a").First().Attr("href")
		if title == "" || href == "" {
			logger.Debug().Int("item", i).Msg("Skipping latest episode without title or link")
			return
		}

		showURL := strings.Replace(episodeSuffixRegex.ReplaceAllString(href, ""), "/ver/", "/", 1)
		poster, _ := item.Find("a img").First().Attr("src")

		entry := models.CatalogEntry{
			Title:     title,
			URL:       parser.ResolveURL(baseURL, showURL),
			Provider:  ID,
			PosterURL: parser.ResolveURL(baseURL, poster),
			MediaType: models.MediaTypeSeries,
			DubStatus: parser.DubStatusFromTitle(title),
		}
		episodeText := strings.Replace(item.Find(".is-size-7").First().Text(), "Episodio ", "", 1)
		if n, ok := parser.FirstNumber(episodeText); ok {
			entry.SubEpisodeCount = parser.IntPtr(n)
			entry.DubEpisodeCount = parser.IntPtr(n)
		}
		entries = append(entries, entry)
	})

	logger.Debug().Int("entries", len(entries)).Msg("Parsed animefenix latest episodes")
	return entries, nil
}

// parseListing parses the .list-series grid used by listing and search pages
func parseListing(body io.Reader, baseURL string, mediaType models.MediaType) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	var entries []models.CatalogEntry
	doc.Find(".list-series article").Each(func(i int, article *goquery.Selection) {
		title := strings.TrimSpace(article.Find("h3 a").First().Text())
		href, _ := article.Find("a").First().Attr("href")
		if title == "" || href == "" {
			logger.Debug().Int("article", i).Msg("Skipping listing article without title or link")
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

// parseDetail parses a show detail page. The title is required, everything
// else degrades to empty values.
func parseDetail(body io.Reader, pageURL, baseURL string) (*models.DetailRecord, error) {
	logger := config.GetLogger()
	doc, err := parser.NewDocument(body)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.title.has-text-orange").First().Text())
	if title == "" {
		return nil, apperrors.NewParseError(ID, pageURL, "h1.title.has-text-orange")
	}

	poster, _ := doc.Find(".image > img").First().Attr("src")
	record := &models.DetailRecord{
		Title:     title,
		URL:       pageURL,
		Provider:  ID,
		PosterURL: parser.ResolveURL(baseURL, poster),
		Synopsis:  strings.TrimSpace(doc.Find("p.has-text-light").First().Text()),
		Genres:    []string{},
		Status:    parseStatus(doc.Find(".is-narrow-desktop a.button").First().Text()),
		Episodes:  []models.EpisodeRef{},
	}

	doc.Find(".genres a").Each(func(_ int, a *goquery.Selection) {
		if g := strings.TrimSpace(a.Text()); g != "" {
			record.Genres = append(record.Genres, g)
		}
	})

	doc.Find(".anime-page__episode-list li").Each(func(i int, li *goquery.Selection) {
		href, _ := li.Find("a").First().Attr("href")
		if href == "" {
			logger.Debug().Int("episode", i).Str("url", pageURL).Msg("Skipping episode without link")
			return
		}
		label := strings.TrimSpace(li.Find("span").First().Text())
		episode := models.EpisodeRef{URL: parser.ResolveURL(baseURL, href), Label: label}
		if n, ok := parser.TrailingNumber(label); ok {
			episode.EpisodeNumber = parser.IntPtr(n)
		} else if n, ok := parser.TrailingNumber(href); ok {
			episode.EpisodeNumber = parser.IntPtr(n)
		}
		record.Episodes = append(record.Episodes, episode)
	})
	// Newest first on the site
	slices.Reverse(record.Episodes)

	record.MediaType = parser.ClassifyMediaType(doc.Find("ul.has-text-light").First().Text(), len(record.Episodes))
	if record.MediaType == models.MediaTypeMovie {
		record.MovieURL = record.Episodes[0].URL
	}

	logger.Debug().Str("title", title).Int("episodes", len(record.Episodes)).Str("type", string(record.MediaType)).Msg("Parsed animefenix detail page")
	return record, nil
}

func parseStatus(text string) models.ShowStatus {
	switch parser.Normalize(text) {
	case "Emisión":
		return models.ShowStatusOngoing
	case "Finalizado":
		return models.ShowStatusCompleted
	default:
		return models.ShowStatusUnknown
	}
}
