// Package pipeline processes one candidate link end to end: resolve the
// URL, fetch the page, run the extraction cascade, optionally rewrite the
// content, and persist what passes the acceptance gate.
package pipeline

import (
	"context"
	"time"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/extract"
	"github.com/newsflowai/newsflow/internal/fetch"
	"github.com/newsflowai/newsflow/internal/links"
	"github.com/newsflowai/newsflow/internal/logger"
)

// Fetcher fetches article pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Extractor turns a fetched page into a draft.
type Extractor interface {
	Extract(ctx context.Context, page fetch.Result, sel *extract.Selectors) (*extract.Draft, string, error)
}

// Rewriter reworks title and body; implementations are fail-open.
type Rewriter interface {
	Enabled() bool
	Rewrite(ctx context.Context, title string, paragraphs []string, sourceName, sourceURL string) (string, []string)
}

// Saver persists accepted articles.
type Saver interface {
	UpsertArticle(ctx context.Context, article *domain.Article) error
}

// SelectorSource supplies per-publisher selector overrides by host.
type SelectorSource interface {
	SelectorsFor(host string) *extract.Selectors
}

// Pipeline wires the per-link processing steps together.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	rewriter  Rewriter
	saver     Saver
	selectors SelectorSource
	log       logger.Interface
	now       func() time.Time
}

// New creates a pipeline. rewriter and selectors may be nil.
func New(
	fetcher Fetcher,
	extractor Extractor,
	rewriter Rewriter,
	saver Saver,
	selectors SelectorSource,
	log logger.Interface,
) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		rewriter:  rewriter,
		saver:     saver,
		selectors: selectors,
		log:       log,
		now:       time.Now,
	}
}

// Process runs one candidate through the pipeline. It never returns an
// in-band error for content problems; those surface as rejection reasons.
// debug attaches a Trace to the outcome.
func (p *Pipeline) Process(
	ctx context.Context,
	link domain.CandidateLink,
	keyword string,
	req Requirements,
	debug bool,
) Outcome {
	resolved := links.Resolve(link.URL)

	var trace *Trace
	if debug {
		trace = &Trace{URL: resolved}
	}

	page := p.fetcher.Fetch(ctx, resolved)
	if trace != nil {
		trace.FinalURL = page.FinalURL
		trace.Status = page.StatusCode
		trace.ContentType = page.ContentType
	}

	if !page.OK {
		p.log.Debug("fetch rejected", "url", resolved, "status", page.StatusCode, "error", page.Err)
		return p.reject(domain.ReasonFetchFail, trace)
	}

	sel := p.selectorsFor(page.FinalURL)

	draft, finalURL, err := p.extractor.Extract(ctx, page, sel)
	if err != nil {
		p.log.Debug("extraction failed", "url", resolved, "error", err)
		return p.reject(domain.ReasonFetchFail, trace)
	}

	if trace != nil {
		trace.FinalURL = finalURL
		trace.Strategy = draft.Strategy
		trace.AMPUsed = draft.AMPUsed
		trace.ParagraphCount = len(draft.Paragraphs)
	}

	// Feed metadata fills what the page itself could not provide.
	if draft.Title == "" {
		draft.Title = link.HintTitle
	}

	if p.rewriter != nil && p.rewriter.Enabled() && len(draft.Paragraphs) > 0 {
		draft.Title, draft.Paragraphs = p.rewriter.Rewrite(
			ctx, draft.Title, draft.Paragraphs, link.HintSource, finalURL)
		if trace != nil {
			trace.ParagraphCount = len(draft.Paragraphs)
		}
	}

	ok, reason := Gate(draft, req)
	if !ok {
		p.log.Debug("draft rejected", "url", finalURL, "reason", reason)
		return p.reject(reason, trace)
	}

	article := p.normalize(draft, link, finalURL, keyword)

	if err := p.saver.UpsertArticle(ctx, article); err != nil {
		p.log.Error("failed to persist article", "url", finalURL, "error", err)
		return Outcome{
			Reason: domain.ReasonSaveFail,
			Trace:  finishTrace(trace, domain.ReasonSaveFail),
			Err:    err,
		}
	}

	p.log.Info("article collected",
		"id", article.ID, "url", finalURL, "strategy", draft.Strategy, "keyword", article.Keyword)

	return Outcome{
		Reason:  domain.ReasonOK,
		Article: article,
		Trace:   finishTrace(trace, domain.ReasonOK),
	}
}

func (p *Pipeline) reject(reason domain.Reason, trace *Trace) Outcome {
	return Outcome{Reason: reason, Trace: finishTrace(trace, reason)}
}

func (p *Pipeline) selectorsFor(pageURL string) *extract.Selectors {
	if p.selectors == nil {
		return nil
	}
	return p.selectors.SelectorsFor(domain.Hostname(pageURL))
}

// normalize shapes an accepted draft into its persistent form. Identity is
// derived from the final URL so recrawls of the same page converge.
func (p *Pipeline) normalize(
	draft *extract.Draft,
	link domain.CandidateLink,
	finalURL, keyword string,
) *domain.Article {
	published := p.now().UTC()
	if link.HintPublished != nil {
		published = link.HintPublished.UTC()
	}

	source := link.HintSource
	if source == "" {
		source = domain.Hostname(finalURL)
	}

	return &domain.Article{
		ID:          domain.StableID(finalURL),
		URL:         finalURL,
		Title:       domain.TruncateTitle(draft.Title),
		Image:       draft.Image,
		Paragraphs:  draft.Paragraphs,
		SourceName:  source,
		PublishedAt: published,
		Keyword:     domain.Slugify(keyword),
	}
}

func finishTrace(trace *Trace, reason domain.Reason) *Trace {
	if trace == nil {
		return nil
	}
	trace.Reason = reason
	return trace
}
