package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsflowai/newsflow/internal/fetch"
	"github.com/newsflowai/newsflow/internal/logger"
)

// ampLinkSelector locates the AMP variant declared by the page.
const ampLinkSelector = "link[rel='amphtml']"

// aggregatorHosts are domains that serve redirect interstitials rather than
// article content; the cascade de-references through them.
var aggregatorHosts = []string{
	"news.google.com",
	"google.com",
}

// PageFetcher fetches follow-up pages for AMP and aggregator hops.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Extractor runs the extraction cascade over fetched pages.
type Extractor struct {
	fetcher PageFetcher
	cleaner *Cleaner
	log     logger.Interface
}

// New creates an extractor. The fetcher is used only for the optional AMP
// and aggregator follow-up fetches.
func New(fetcher PageFetcher, log logger.Interface) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		cleaner: NewCleaner(),
		log:     log,
	}
}

// Cleaner exposes the extractor's paragraph classifier.
func (e *Extractor) Cleaner() *Cleaner {
	return e.cleaner
}

// Extract runs the full cascade against a fetched page. When the page is an
// aggregator interstitial, the first outbound article link is fetched and
// extracted instead. Returns the draft and the final URL the draft belongs
// to (which differs from the input after an aggregator hop).
func (e *Extractor) Extract(
	ctx context.Context,
	page fetch.Result,
	sel *Selectors,
) (*Draft, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, page.FinalURL, fmt.Errorf("parse html: %w", err)
	}

	finalURL := page.FinalURL

	if isAggregatorURL(finalURL) {
		if hopped, hoppedURL, ok := e.dereferenceAggregator(ctx, doc); ok {
			doc = hopped
			finalURL = hoppedURL
		}
	}

	base, _ := url.Parse(finalURL)

	draft := e.cascade(doc, base, sel)

	if !draft.HasParagraphs() {
		e.tryAMP(ctx, doc, base, sel, draft)
	}

	absolutizeImage(draft, base)

	return draft, finalURL, nil
}

// cascade runs the ordered strategy list over one document, merging
// partial drafts left to right with fill-only semantics.
func (e *Extractor) cascade(doc *goquery.Document, base *url.URL, sel *Selectors) *Draft {
	draft := &Draft{}

	draft.Merge(fromJSONLD(doc, e.cleaner), StrategyJSONLD)

	if sel != nil {
		draft.Merge(fromSelectors(doc, sel, e.cleaner), StrategySelectors)
	}

	if !draft.HasParagraphs() {
		draft.Merge(fromContentRoot(doc, e.cleaner), StrategyContentRoot)
	}

	if !draft.HasParagraphs() {
		draft.Merge(fromLists(doc, e.cleaner), StrategyLists)
	}

	if !draft.HasParagraphs() {
		html, htmlErr := doc.Html()
		if htmlErr == nil {
			draft.Merge(fromReadability(html, base, e.cleaner), StrategyReadability)
		}
	}

	if !draft.HasParagraphs() {
		draft.Merge(fromDenseText(doc, e.cleaner), StrategyDenseText)
	}

	if !draft.HasParagraphs() {
		draft.Merge(fromRawText(doc, e.cleaner), StrategyRawText)
	}

	resolveTitle(doc, draft)
	resolveImage(doc, draft)

	return draft
}

// tryAMP fetches the page's declared AMP variant and merges its draft over
// the unfilled fields. At most one hop; the AMP cascade never recurses.
func (e *Extractor) tryAMP(
	ctx context.Context,
	doc *goquery.Document,
	base *url.URL,
	sel *Selectors,
	draft *Draft,
) {
	href, exists := doc.Find(ampLinkSelector).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return
	}

	ampURL := strings.TrimSpace(href)
	if base != nil {
		if ref, parseErr := url.Parse(ampURL); parseErr == nil {
			ampURL = base.ResolveReference(ref).String()
		}
	}

	result := e.fetcher.Fetch(ctx, ampURL)
	if !result.OK {
		e.log.Debug("amp fetch failed", "url", ampURL, "error", result.Err)
		return
	}

	ampDoc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if parseErr != nil {
		return
	}

	ampBase, _ := url.Parse(result.FinalURL)

	ampDraft := e.cascade(ampDoc, ampBase, sel)
	if ampDraft.HasParagraphs() {
		before := draft.HasParagraphs()
		draft.Merge(ampDraft, ampDraft.Strategy)
		if !before && draft.HasParagraphs() {
			draft.AMPUsed = true
		}
	}
}

// dereferenceAggregator locates the first outbound link that leaves the
// aggregator's domain, fetches it, and returns its parsed document as the
// article's true source.
func (e *Extractor) dereferenceAggregator(
	ctx context.Context,
	doc *goquery.Document,
) (*goquery.Document, string, bool) {
	target := ""

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") || isAggregatorURL(href) {
			return true
		}
		target = href
		return false
	})

	if target == "" {
		return nil, "", false
	}

	result := e.fetcher.Fetch(ctx, target)
	if !result.OK {
		e.log.Debug("aggregator hop failed", "url", target, "error", result.Err)
		return nil, "", false
	}

	hopped, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return nil, "", false
	}

	return hopped, result.FinalURL, true
}

// isAggregatorURL reports whether the URL's host belongs to a known
// aggregator domain.
func isAggregatorURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Host)
	for _, agg := range aggregatorHosts {
		if host == agg || strings.HasSuffix(host, "."+agg) {
			return true
		}
	}
	return false
}
