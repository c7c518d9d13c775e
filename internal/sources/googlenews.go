package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/fetch"
	"github.com/newsflowai/newsflow/internal/logger"
)

const (
	// feedEntryCap bounds how many feed entries one discovery considers.
	feedEntryCap = 30

	feedLang   = "pt-BR"
	feedRegion = "BR"
	feedCeid   = "BR:pt-419"
)

// Source discovers candidate article links for a keyword within a recency
// window.
type Source interface {
	Discover(ctx context.Context, keyword string, window time.Duration) ([]domain.CandidateLink, error)
}

// FeedFetcher fetches feed documents over HTTP. The feed path must accept
// XML content types; Google News serves its RSS as application/xml.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string) fetch.Result
}

// GoogleNews discovers links through the Google News RSS search feed.
type GoogleNews struct {
	fetcher FeedFetcher
	parser  *gofeed.Parser
	log     logger.Interface
	now     func() time.Time
}

// NewGoogleNews creates a Google News source.
func NewGoogleNews(fetcher FeedFetcher, log logger.Interface) *GoogleNews {
	return &GoogleNews{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		log:     log,
		now:     time.Now,
	}
}

// FeedURL builds the RSS search URL for a keyword. The recency window is
// encoded in the query with the `when:` operator, rounded up to whole hours.
func FeedURL(keyword string, window time.Duration) string {
	hours := int(window.Hours())
	if hours < 1 {
		hours = 1
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s when:%dh", keyword, hours))
	query.Set("hl", feedLang)
	query.Set("gl", feedRegion)
	query.Set("ceid", feedCeid)

	return "https://news.google.com/rss/search?" + query.Encode()
}

// Discover fetches and parses the keyword's feed. Entries older than the
// window are skipped; entries without a usable link are skipped silently.
func (g *GoogleNews) Discover(
	ctx context.Context,
	keyword string,
	window time.Duration,
) ([]domain.CandidateLink, error) {
	feedURL := FeedURL(keyword, window)

	result := g.fetcher.FetchFeed(ctx, feedURL)
	if result.Err != "" {
		return nil, fmt.Errorf("fetch feed for %q: %s", keyword, result.Err)
	}
	if result.StatusCode != 0 && result.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch feed for %q: status %d", keyword, result.StatusCode)
	}

	parsed, err := g.parser.ParseString(result.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed for %q: %w", keyword, err)
	}

	now := g.now().UTC()
	cutoff := now.Add(-window)

	entries := parsed.Items
	if len(entries) > feedEntryCap {
		entries = entries[:feedEntryCap]
	}

	links := make([]domain.CandidateLink, 0, len(entries))
	for _, entry := range entries {
		link := entryLink(entry)
		if link == "" {
			continue
		}

		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		title, source := splitFeedTitle(entry.Title)

		pub := published
		links = append(links, domain.CandidateLink{
			URL:           link,
			HintTitle:     title,
			HintSource:    source,
			HintPublished: &pub,
		})
	}

	g.log.Debug("feed discovery finished",
		"keyword", keyword, "entries", len(parsed.Items), "candidates", len(links))

	return links, nil
}

// entryLink returns the best available URL from a feed entry, falling back
// to the GUID when it looks like an HTTP URL.
func entryLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}

	if strings.HasPrefix(entry.GUID, "http") {
		return entry.GUID
	}

	return ""
}

// splitFeedTitle separates the publisher name Google News appends to entry
// titles ("Headline - Publisher"). Titles without the suffix pass through
// with an empty source.
func splitFeedTitle(title string) (headline, source string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return strings.TrimSpace(title), ""
	}

	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
