package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testArticle(url string) *domain.Article {
	return &domain.Article{
		ID:          domain.StableID(url),
		URL:         url,
		Title:       "Título de teste",
		Image:       "https://ex.com/img.jpg",
		Paragraphs:  []string{"primeiro parágrafo", "segundo parágrafo"},
		SourceName:  "ex.com",
		PublishedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Keyword:     "politica",
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	article := testArticle("https://ex.com/materia-um")
	require.NoError(t, s.UpsertArticle(ctx, article))

	got, err := s.GetArticle(ctx, article.ID)
	require.NoError(t, err)

	assert.Equal(t, article.URL, got.URL)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.Paragraphs, got.Paragraphs)
	assert.Equal(t, article.PublishedAt, got.PublishedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetArticle_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetArticle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpsertConflictKeepsIdentity(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := testArticle("https://ex.com/materia-um")
	first.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertArticle(ctx, first))

	// Same URL, recrawled: new content, different candidate id and time.
	second := testArticle("https://ex.com/materia-um")
	second.ID = "different-id"
	second.Title = "Título atualizado"
	second.CreatedAt = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertArticle(ctx, second))

	got, err := s.GetArticle(ctx, first.ID)
	require.NoError(t, err)

	assert.Equal(t, "Título atualizado", got.Title)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)

	// The conflicting id was never written.
	_, err = s.GetArticle(ctx, "different-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListByKeyword(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	old := testArticle("https://ex.com/antiga")
	old.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	recent := testArticle("https://ex.com/recente")
	recent.CreatedAt = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	other := testArticle("https://ex.com/outro-assunto")
	other.Keyword = "economia"
	other.CreatedAt = recent.CreatedAt

	for _, a := range []*domain.Article{old, recent, other} {
		require.NoError(t, s.UpsertArticle(ctx, a))
	}

	got, err := s.ListByKeyword(ctx, "politica", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, recent.URL, got[0].URL)
}

func TestStore_ListByKeyword_OrderedNewestFirst(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://ex.com/a-um", "https://ex.com/a-dois", "https://ex.com/a-tres"} {
		a := testArticle(url)
		a.CreatedAt = time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.UpsertArticle(ctx, a))
	}

	got, err := s.ListByKeyword(ctx, "politica", time.Time{})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "https://ex.com/a-tres", got[0].URL)
	assert.Equal(t, "https://ex.com/a-um", got[2].URL)
}

func TestStore_Keywords(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateKeyword(ctx, "Política Nacional", 12, true)
	require.NoError(t, err)
	assert.Equal(t, "politica-nacional", created.Slug)
	assert.Equal(t, 12, created.HoursBack)
	assert.True(t, created.Active)

	_, err = s.CreateKeyword(ctx, "economia", 0, false)
	require.NoError(t, err)

	all, err := s.ListKeywords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Zero hours falls back to the default window.
	assert.Equal(t, 8, all[1].HoursBack)

	active, err := s.ActiveKeywords(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "politica-nacional", active[0].Slug)

	// Re-registering the same term updates in place.
	updated, err := s.CreateKeyword(ctx, "Política Nacional", 24, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 24, updated.HoursBack)
	assert.False(t, updated.Active)

	require.NoError(t, s.DeleteKeyword(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteKeyword(ctx, created.ID), ErrNotFound)
}

func TestStore_CreateKeyword_Empty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.CreateKeyword(context.Background(), "   ", 8, true)
	assert.Error(t, err)
}
