package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/extract"
	"github.com/newsflowai/newsflow/internal/fetch"
	"github.com/newsflowai/newsflow/internal/logger"
	"github.com/newsflowai/newsflow/internal/pipeline"
	"github.com/newsflowai/newsflow/internal/rewrite"
	"github.com/newsflowai/newsflow/internal/sources"
	"github.com/newsflowai/newsflow/internal/store"
)

// app holds the assembled service graph shared by the subcommands.
type app struct {
	log          logger.Interface
	store        *store.Store
	registry     *sources.Registry
	pipeline     *pipeline.Pipeline
	orchestrator *crawl.Orchestrator
}

func buildApp(cmd *cobra.Command) (*app, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dbPath := viper.GetString("db.path")
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := store.New(dbPath, log)
	if err != nil {
		return nil, err
	}

	registry, err := sources.LoadRegistry(viper.GetString("sources.path"), log)
	if err != nil {
		db.Close()
		return nil, err
	}

	fetcher := fetch.NewClient()
	extractor := extract.New(fetcher, log)

	var rewriter pipeline.Rewriter
	if viper.GetBool("rewrite.enabled") {
		rewriter = rewrite.NewClient(rewrite.Config{
			APIKey: viper.GetString("openrouter.api_key"),
			Model:  viper.GetString("openrouter.model"),
		}, log)
	}

	pipe := pipeline.New(fetcher, extractor, rewriter, db, registry, log)

	feed := sources.NewGoogleNews(fetcher, log)
	listingFactory := func(listingURL string) sources.Source {
		return sources.NewListing(listingURL, listingLinkSelector(registry, listingURL), log)
	}

	orchestrator := crawl.New(feed, listingFactory, pipe, crawl.Config{
		Workers:      viper.GetInt("crawl.workers"),
		CandidateCap: viper.GetInt("crawl.candidate_cap"),
	}, log)

	return &app{
		log:          log,
		store:        db,
		registry:     registry,
		pipeline:     pipe,
		orchestrator: orchestrator,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
}

// listingLinkSelector looks up a configured link selector for the listing
// page's host.
func listingLinkSelector(registry *sources.Registry, listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil {
		return ""
	}

	sel := registry.SelectorsFor(u.Hostname())
	if sel == nil {
		return ""
	}
	return sel.Links
}
