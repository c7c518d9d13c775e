package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/logger"
	"github.com/newsflowai/newsflow/internal/pipeline"
	"github.com/newsflowai/newsflow/internal/sources"
)

type fakeSource struct {
	links map[string][]domain.CandidateLink
	err   error
}

func (f *fakeSource) Discover(
	_ context.Context, keyword string, _ time.Duration,
) ([]domain.CandidateLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.links[keyword], nil
}

type fakeProcessor struct {
	mu       sync.Mutex
	seen     []string
	outcomes map[string]pipeline.Outcome
}

func (f *fakeProcessor) Process(
	_ context.Context,
	link domain.CandidateLink,
	keyword string,
	_ pipeline.Requirements,
	debug bool,
) pipeline.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seen = append(f.seen, link.URL)

	if outcome, ok := f.outcomes[link.URL]; ok {
		return outcome
	}

	article := &domain.Article{
		ID:      domain.StableID(link.URL),
		URL:     link.URL,
		Title:   "Título",
		Keyword: domain.Slugify(keyword),
	}

	outcome := pipeline.Outcome{Reason: domain.ReasonOK, Article: article}
	if debug {
		outcome.Trace = &pipeline.Trace{URL: link.URL, Reason: domain.ReasonOK}
	}
	return outcome
}

func link(url string) domain.CandidateLink {
	return domain.CandidateLink{URL: url}
}

func TestRun_DedupAndAggregate(t *testing.T) {
	t.Parallel()

	feed := &fakeSource{links: map[string][]domain.CandidateLink{
		"política": {
			link("https://a.com/um"),
			link("https://a.com/dois"),
			link("https://a.com/um"), // exact duplicate, processed once
		},
	}}

	processor := &fakeProcessor{outcomes: map[string]pipeline.Outcome{
		"https://a.com/dois": {Reason: domain.ReasonNoImage},
	}}

	o := New(feed, nil, processor, Config{Workers: 2}, logger.NewNop())

	report := o.Run(context.Background(), Request{Keywords: []string{"política"}})

	assert.NotEmpty(t, report.RunID)
	assert.Len(t, processor.seen, 2)

	stats := report.Stats["politica"]
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats[domain.ReasonOK])
	assert.Equal(t, 1, stats[domain.ReasonNoImage])

	require.Len(t, report.Collected["politica"], 1)
	assert.ElementsMatch(t, []string{"https://a.com/um", "https://a.com/dois"}, processor.seen)
	assert.Empty(t, report.Traces)
}

func TestRun_CandidateCap(t *testing.T) {
	t.Parallel()

	var many []domain.CandidateLink
	for i := 0; i < 50; i++ {
		many = append(many, link(fmt.Sprintf("https://a.com/artigo-%d", i)))
	}

	feed := &fakeSource{links: map[string][]domain.CandidateLink{"x": many}}
	processor := &fakeProcessor{}

	o := New(feed, nil, processor, Config{Workers: 1, CandidateCap: 10}, logger.NewNop())

	report := o.Run(context.Background(), Request{Keywords: []string{"x"}})

	assert.Len(t, processor.seen, 10)
	assert.Equal(t, 10, report.Stats["x"][domain.ReasonOK])
}

func TestRun_FeedErrorStillReports(t *testing.T) {
	t.Parallel()

	feed := &fakeSource{err: errors.New("feed unavailable")}
	processor := &fakeProcessor{}

	o := New(feed, nil, processor, Config{}, logger.NewNop())

	report := o.Run(context.Background(), Request{Keywords: []string{"política"}})

	assert.Empty(t, processor.seen)
	require.NotNil(t, report.Stats["politica"])
	assert.Equal(t, 0, report.Stats["politica"][domain.ReasonOK])
}

func TestRun_DebugCollectsTraces(t *testing.T) {
	t.Parallel()

	feed := &fakeSource{links: map[string][]domain.CandidateLink{
		"x": {link("https://a.com/um"), link("https://a.com/dois")},
	}}
	processor := &fakeProcessor{}

	o := New(feed, nil, processor, Config{Workers: 1}, logger.NewNop())

	report := o.Run(context.Background(), Request{Keywords: []string{"x"}, Debug: true})

	assert.Len(t, report.Traces, 2)
}

func TestRun_ListingOnlyUsesGeneralBucket(t *testing.T) {
	t.Parallel()

	listing := &fakeSource{links: map[string][]domain.CandidateLink{
		generalSlug: {link("https://pub.com/materia-um-dois-tres")},
	}}

	factory := func(string) sources.Source { return listing }
	processor := &fakeProcessor{}

	o := New(&fakeSource{}, factory, processor, Config{}, logger.NewNop())

	report := o.Run(context.Background(), Request{
		ListingURLs: []string{"https://pub.com/ultimas"},
	})

	assert.Len(t, processor.seen, 1)
	assert.Equal(t, 1, report.Stats[generalSlug][domain.ReasonOK])
	require.Len(t, report.Collected[generalSlug], 1)
}

func TestRun_SaveFailureCounted(t *testing.T) {
	t.Parallel()

	feed := &fakeSource{links: map[string][]domain.CandidateLink{
		"x": {link("https://a.com/um")},
	}}

	processor := &fakeProcessor{outcomes: map[string]pipeline.Outcome{
		"https://a.com/um": {Reason: domain.ReasonSaveFail, Err: errors.New("save failed")},
	}}

	o := New(feed, nil, processor, Config{}, logger.NewNop())

	report := o.Run(context.Background(), Request{Keywords: []string{"x"}})

	// The failed save produces no record but still counts.
	assert.Equal(t, 0, report.Stats["x"][domain.ReasonOK])
	assert.Equal(t, 1, report.Stats["x"][domain.ReasonSaveFail])
	assert.Empty(t, report.Collected["x"])
}
