package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsflowai/newsflow/internal/logger"
)

const sourcesYAML = `
sources:
  - name: diario
    hosts:
      - diario.example.com
      - www.diario.example.com
    listing_url: https://diario.example.com/ultimas
    selectors:
      title: h1.headline
      container: div.article-body
      exclude:
        - .related
      links: a.article-link
  - name: portal
    hosts:
      - portal.example.com
`

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sources.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	registry, err := LoadRegistry(writeSourcesFile(t, sourcesYAML), logger.NewNop())
	require.NoError(t, err)

	require.Len(t, registry.Configs(), 2)
	assert.Equal(t, "diario", registry.Configs()[0].Name)
	assert.Equal(t, "https://diario.example.com/ultimas", registry.Configs()[0].ListingURL)

	sel := registry.SelectorsFor("diario.example.com")
	require.NotNil(t, sel)
	assert.Equal(t, "h1.headline", sel.Title)
	assert.Equal(t, "div.article-body", sel.Container)
	assert.Equal(t, []string{".related"}, sel.Exclude)
	assert.Equal(t, "a.article-link", sel.Links)

	// www prefix and case fold to the same host.
	assert.Same(t, sel, registry.SelectorsFor("WWW.Diario.Example.Com"))

	// Configured host without selectors yields nil, as does an unknown host.
	assert.Nil(t, registry.SelectorsFor("portal.example.com"))
	assert.Nil(t, registry.SelectorsFor("elsewhere.example.com"))
}

func TestLoadRegistry_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	registry, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yml"), logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, registry.Configs())
}

func TestLoadRegistry_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("bad yaml", func(t *testing.T) {
		t.Parallel()

		_, err := LoadRegistry(writeSourcesFile(t, "sources: [\n"), logger.NewNop())
		assert.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadRegistry(writeSourcesFile(t, "sources:\n  - hosts: [x.com]\n"), logger.NewNop())
		assert.Error(t, err)
	})
}

func TestListing_Discover_Heuristic(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/politica/prefeito-anuncia-novo-plano-diretor">ok</a>
			<a href="/politica/prefeito-anuncia-novo-plano-diretor">duplicate</a>
			<a href="/economia/bolsa-fecha-em-alta-nesta-sexta.html">ok html</a>
			<a href="/politica">section index</a>
			<a href="/tag/eleicoes">tag page</a>
			<a href="https://other.example.com/materia-de-outro-site-aqui">offsite</a>
		</body></html>`))
	}))
	defer server.Close()

	listing := NewListing(server.URL+"/ultimas", "", logger.NewNop())

	links, err := listing.Discover(context.Background(), "", 12*time.Hour)
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, server.URL+"/politica/prefeito-anuncia-novo-plano-diretor", links[0].URL)
	assert.Equal(t, server.URL+"/economia/bolsa-fecha-em-alta-nesta-sexta.html", links[1].URL)
}

func TestListing_Discover_ExplicitSelector(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a class="manchete" href="/x">short path kept, selector is trusted</a>
			<a href="/politica/materia-ignorada-sem-classe-aqui">skipped</a>
		</body></html>`))
	}))
	defer server.Close()

	listing := NewListing(server.URL, "a.manchete", logger.NewNop())

	links, err := listing.Discover(context.Background(), "", 12*time.Hour)
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, server.URL+"/x", links[0].URL)
}

func TestLooksLikeArticleURL(t *testing.T) {
	t.Parallel()

	host := "news.example.com"

	assert.True(t, looksLikeArticleURL("https://news.example.com/a/prefeito-anuncia-plano-diretor", host))
	assert.True(t, looksLikeArticleURL("https://www.news.example.com/bolsa-fecha-em-alta.html", host))
	assert.False(t, looksLikeArticleURL("https://news.example.com/politica", host))
	assert.False(t, looksLikeArticleURL("https://other.example.com/prefeito-anuncia-plano-diretor", host))
	assert.False(t, looksLikeArticleURL("https://news.example.com/prefeito-anuncia-plano#comentarios", host))
}
