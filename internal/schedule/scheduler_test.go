package schedule

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/logger"
)

type recordingRunner struct {
	mu       sync.Mutex
	requests []crawl.Request
}

func (r *recordingRunner) Run(_ context.Context, req crawl.Request) crawl.Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
	return crawl.Report{RunID: "run"}
}

func TestScheduler_TickUsesSnapshot(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	s := New("@every 1h", runner, Snapshot{
		Keywords:     []string{"política"},
		WindowHours:  8,
		RequireTitle: true,
	}, logger.NewNop())

	s.tick()

	require.Len(t, runner.requests, 1)
	assert.Equal(t, []string{"política"}, runner.requests[0].Keywords)
	assert.Equal(t, 8, runner.requests[0].WindowHours)
	assert.True(t, runner.requests[0].RequireTitle)
}

func TestScheduler_EmptySnapshotSkipsRun(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	s := New("@every 1h", runner, Snapshot{}, logger.NewNop())

	s.tick()

	assert.Empty(t, runner.requests)
}

func TestScheduler_ReloadSwapsSnapshot(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	s := New("@every 1h", runner, Snapshot{Keywords: []string{"antiga"}}, logger.NewNop())

	s.Reload(Snapshot{Keywords: []string{"nova"}, WindowHours: 4})
	s.tick()

	require.Len(t, runner.requests, 1)
	assert.Equal(t, []string{"nova"}, runner.requests[0].Keywords)
	assert.Equal(t, 4, runner.requests[0].WindowHours)
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := New("not a spec", &recordingRunner{}, Snapshot{}, logger.NewNop())

	assert.Error(t, s.Start())
}

func TestScheduler_StartAndStop(t *testing.T) {
	t.Parallel()

	s := New("@every 1h", &recordingRunner{}, Snapshot{}, logger.NewNop())

	require.NoError(t, s.Start())
	s.Stop()
}
