package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsflowai/newsflow/internal/logger"
)

func chatServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return server
}

func respondWith(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()

	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

// longParagraphs builds n paragraphs of wordsEach words.
func longParagraphs(n, wordsEach int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.TrimSpace(strings.Repeat("palavra ", wordsEach))
	}
	return out
}

func TestRewrite_DisabledWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{}, logger.NewNop())
	assert.False(t, client.Enabled())

	title, paragraphs := client.Rewrite(
		context.Background(), "Original", []string{"corpo"}, "Fonte", "https://ex.com")

	assert.Equal(t, "Original", title)
	assert.Equal(t, []string{"corpo"}, paragraphs)
}

func TestRewrite_Success(t *testing.T) {
	t.Parallel()

	rewrittenBody := longParagraphs(3, 80)

	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		content, err := json.Marshal(map[string]any{
			"title":      "Título Reescrito",
			"paragraphs": rewrittenBody,
		})
		require.NoError(t, err)
		respondWith(t, w, string(content))
	})

	client := NewClient(
		Config{APIKey: "test-key", Model: "test-model", BaseURL: server.URL},
		logger.NewNop(),
	)

	title, paragraphs := client.Rewrite(
		context.Background(), "Original", []string{"corpo original"}, "Fonte", "https://ex.com")

	assert.Equal(t, "Título Reescrito", title)
	assert.Equal(t, rewrittenBody, paragraphs)
}

func TestRewrite_ShortOutputBackfilled(t *testing.T) {
	t.Parallel()

	server := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		content, _ := json.Marshal(map[string]any{
			"title":      "Curto",
			"paragraphs": []string{"só dez palavras aqui neste parágrafo reescrito pela api mesmo"},
		})
		respondWith(t, w, string(content))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, logger.NewNop())

	originals := longParagraphs(4, 70)
	title, paragraphs := client.Rewrite(
		context.Background(), "Original", originals, "Fonte", "https://ex.com")

	assert.Equal(t, "Curto", title)
	// Backfill stops once the word floor is crossed: 10 + 70 + 70 + 70 ≥ 200.
	require.Len(t, paragraphs, 4)
	assert.Equal(t, originals[0], paragraphs[1])
}

func TestRewrite_ParagraphCap(t *testing.T) {
	t.Parallel()

	server := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		content, _ := json.Marshal(map[string]any{
			"title":      "T",
			"paragraphs": longParagraphs(15, 30),
		})
		respondWith(t, w, string(content))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, logger.NewNop())

	_, paragraphs := client.Rewrite(
		context.Background(), "Original", nil, "Fonte", "https://ex.com")

	assert.Len(t, paragraphs, maxRewrittenParagraphs)
}

func TestRewrite_FailOpen(t *testing.T) {
	t.Parallel()

	originals := []string{"parágrafo original preservado"}

	failures := map[string]func(w http.ResponseWriter, r *http.Request){
		"http error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"invalid content json": func(w http.ResponseWriter, _ *http.Request) {
			respondWith(t, w, "this is not json")
		},
		"no choices": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[]}`)
		},
	}

	for name, handler := range failures {
		handler := handler
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := chatServer(t, handler)
			client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, logger.NewNop())

			title, paragraphs := client.Rewrite(
				context.Background(), "Original", originals, "Fonte", "https://ex.com")

			assert.Equal(t, "Original", title)
			assert.Equal(t, originals, paragraphs)
		})
	}
}

func TestRewrite_EmptyTitleKeepsOriginal(t *testing.T) {
	t.Parallel()

	server := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		content, _ := json.Marshal(map[string]any{
			"title":      "  ",
			"paragraphs": longParagraphs(3, 80),
		})
		respondWith(t, w, string(content))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, logger.NewNop())

	title, _ := client.Rewrite(
		context.Background(), "Original", nil, "Fonte", "https://ex.com")

	assert.Equal(t, "Original", title)
}
