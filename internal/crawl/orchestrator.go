// Package crawl fans a batch of keywords and listing pages out over the
// processing pipeline and aggregates the results into a report.
package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/logger"
	"github.com/newsflowai/newsflow/internal/pipeline"
	"github.com/newsflowai/newsflow/internal/sources"
)

const (
	// DefaultWindowHours is the recency window when a request leaves it unset.
	DefaultWindowHours = 12

	// DefaultWorkers is the processing concurrency.
	DefaultWorkers = 5

	// DefaultCandidateCap bounds candidates per keyword per run.
	DefaultCandidateCap = 30

	// generalSlug groups listing-page candidates when a run has no keywords.
	generalSlug = "geral"
)

// Processor runs one candidate through the pipeline.
type Processor interface {
	Process(
		ctx context.Context,
		link domain.CandidateLink,
		keyword string,
		req pipeline.Requirements,
		debug bool,
	) pipeline.Outcome
}

// ListingFactory builds a listing source for an ad-hoc URL.
type ListingFactory func(listingURL string) sources.Source

// Request describes one crawl run.
type Request struct {
	Keywords     []string `json:"keywords"`
	ListingURLs  []string `json:"listing_urls"`
	WindowHours  int      `json:"hours_max"`
	RequireTitle bool     `json:"strict"`
	RequireImage bool     `json:"require_image"`
	Debug        bool     `json:"debug"`
}

// Report aggregates one run. Stats has an entry per keyword slug even when
// nothing was collected; Traces is populated only for debug runs.
type Report struct {
	RunID     string                      `json:"run_id"`
	Collected map[string][]domain.Summary `json:"collected"`
	Stats     map[string]domain.Stats     `json:"stats"`
	Traces    []pipeline.Trace            `json:"traces,omitempty"`
}

// Config tunes the orchestrator.
type Config struct {
	Workers      int
	CandidateCap int
}

// Orchestrator coordinates discovery and processing for crawl runs.
type Orchestrator struct {
	feed       sources.Source
	newListing ListingFactory
	processor  Processor
	log        logger.Interface
	cfg        Config
}

// New creates an orchestrator. newListing may be nil when listing URLs are
// never used.
func New(
	feed sources.Source,
	newListing ListingFactory,
	processor Processor,
	cfg Config,
	log logger.Interface,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = DefaultCandidateCap
	}

	return &Orchestrator{
		feed:       feed,
		newListing: newListing,
		processor:  processor,
		log:        log,
		cfg:        cfg,
	}
}

type task struct {
	link domain.CandidateLink
	slug string
	term string
}

// Run executes one crawl. Discovery failures and per-URL failures are
// logged and counted; a run always returns a report.
func (o *Orchestrator) Run(ctx context.Context, req Request) Report {
	runID := uuid.NewString()
	started := time.Now()

	window := req.WindowHours
	if window <= 0 {
		window = DefaultWindowHours
	}

	o.log.Info("crawl run started",
		"run_id", runID, "keywords", len(req.Keywords), "listings", len(req.ListingURLs),
		"window_hours", window)

	report := Report{
		RunID:     runID,
		Collected: make(map[string][]domain.Summary),
		Stats:     make(map[string]domain.Stats),
	}

	tasks := o.discover(ctx, req, window, &report)

	requirements := pipeline.Requirements{
		RequireTitle: req.RequireTitle,
		RequireImage: req.RequireImage,
	}

	o.dispatch(ctx, tasks, requirements, req.Debug, &report)

	o.log.Info("crawl run finished",
		"run_id", runID, "candidates", len(tasks), "duration", time.Since(started))

	return report
}

// discover collects candidates from every source, deduplicates by exact URL
// across the whole run, and caps the per-keyword count.
func (o *Orchestrator) discover(
	ctx context.Context,
	req Request,
	window int,
	report *Report,
) []task {
	windowDur := time.Duration(window) * time.Hour

	seen := make(map[string]struct{})
	var tasks []task

	add := func(links []domain.CandidateLink, slug, term string) {
		count := 0
		for _, link := range links {
			if count >= o.cfg.CandidateCap {
				break
			}
			if _, dup := seen[link.URL]; dup {
				continue
			}
			seen[link.URL] = struct{}{}
			tasks = append(tasks, task{link: link, slug: slug, term: term})
			count++
		}
	}

	for _, keyword := range req.Keywords {
		slug := domain.Slugify(keyword)
		if slug == "" {
			continue
		}
		report.Stats[slug] = domain.NewStats()

		links, err := o.feed.Discover(ctx, keyword, windowDur)
		if err != nil {
			o.log.Warn("feed discovery failed", "keyword", keyword, "error", err)
			continue
		}
		add(links, slug, keyword)
	}

	// Listing candidates belong to the run's first keyword, or to the
	// general bucket when the run is listing-only.
	listingTerm := generalSlug
	if len(req.Keywords) > 0 {
		listingTerm = req.Keywords[0]
	}
	listingSlug := domain.Slugify(listingTerm)

	for _, listingURL := range req.ListingURLs {
		if o.newListing == nil {
			break
		}
		if _, ok := report.Stats[listingSlug]; !ok {
			report.Stats[listingSlug] = domain.NewStats()
		}

		links, err := o.newListing(listingURL).Discover(ctx, listingTerm, windowDur)
		if err != nil {
			o.log.Warn("listing discovery failed", "url", listingURL, "error", err)
			continue
		}
		add(links, listingSlug, listingTerm)
	}

	return tasks
}

// dispatch fans the tasks out over a fixed worker pool and merges outcomes
// into the report. One URL's failure never aborts the batch.
func (o *Orchestrator) dispatch(
	ctx context.Context,
	tasks []task,
	req pipeline.Requirements,
	debug bool,
	report *Report,
) {
	if len(tasks) == 0 {
		return
	}

	queue := make(chan task)

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := o.cfg.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				outcome := o.processor.Process(ctx, t.link, t.term, req, debug)

				mu.Lock()
				o.record(t.slug, outcome, report)
				mu.Unlock()
			}
		}()
	}

	for _, t := range tasks {
		queue <- t
	}
	close(queue)

	wg.Wait()
}

func (o *Orchestrator) record(slug string, outcome pipeline.Outcome, report *Report) {
	if outcome.Trace != nil {
		report.Traces = append(report.Traces, *outcome.Trace)
	}

	stats, ok := report.Stats[slug]
	if !ok {
		stats = domain.NewStats()
		report.Stats[slug] = stats
	}
	stats.Inc(outcome.Reason)

	if outcome.Reason == domain.ReasonOK && outcome.Article != nil {
		report.Collected[slug] = append(report.Collected[slug], outcome.Article.Summarize())
	}
}
