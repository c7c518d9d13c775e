package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/fetch"
	"github.com/newsflowai/newsflow/internal/logger"
)

// articlePathRe recognizes the slug shape of article URLs: a final path
// segment of three or more hyphenated words, optionally ending in .html.
var articlePathRe = regexp.MustCompile(`(?:^|/)[a-z0-9]+(?:-[a-z0-9%]+){2,}(?:\.html?)?/?$`)

// Listing discovers links by scraping a publisher's listing or section page.
// When an explicit link selector is configured it is used verbatim;
// otherwise anchors are matched by the article URL shape heuristic.
type Listing struct {
	listingURL   string
	linkSelector string
	log          logger.Interface
}

// NewListing creates a listing source. linkSelector may be empty.
func NewListing(listingURL, linkSelector string, log logger.Interface) *Listing {
	return &Listing{
		listingURL:   listingURL,
		linkSelector: linkSelector,
		log:          log,
	}
}

// Discover scrapes the listing page once and returns the discovered links.
// Listing pages carry no feed metadata, so candidates have no hints.
func (l *Listing) Discover(
	ctx context.Context,
	_ string,
	_ time.Duration,
) ([]domain.CandidateLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing discovery: %w", err)
	}

	base, err := url.Parse(l.listingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	collector := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent(fetch.DefaultUserAgent),
		colly.IgnoreRobotsTxt(),
	)
	collector.SetRequestTimeout(fetch.DefaultTimeout)

	selector := l.linkSelector
	heuristic := selector == ""
	if heuristic {
		selector = "a[href]"
	}

	seen := make(map[string]struct{})
	var links []domain.CandidateLink

	collector.OnHTML(selector, func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" {
			// Configured selectors may point at a wrapper element.
			href = e.ChildAttr("a[href]", "href")
		}

		abs := e.Request.AbsoluteURL(href)
		if abs == "" || abs == l.listingURL {
			return
		}

		if heuristic && !looksLikeArticleURL(abs, base.Hostname()) {
			return
		}

		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		if len(links) < feedEntryCap {
			links = append(links, domain.CandidateLink{URL: abs})
		}
	})

	if err := collector.Visit(l.listingURL); err != nil {
		return nil, fmt.Errorf("visit listing %s: %w", l.listingURL, err)
	}
	collector.Wait()

	l.log.Debug("listing discovery finished", "url", l.listingURL, "candidates", len(links))

	return links, nil
}

// looksLikeArticleURL keeps same-host links whose path ends in an article
// slug, filtering out section indexes, tag pages, and offsite links.
func looksLikeArticleURL(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if !strings.EqualFold(strings.TrimPrefix(u.Hostname(), "www."), strings.TrimPrefix(host, "www.")) {
		return false
	}

	if u.Fragment != "" {
		return false
	}

	return articlePathRe.MatchString(strings.ToLower(u.Path))
}
