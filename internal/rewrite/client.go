// Package rewrite reworks article titles and lead paragraphs through the
// OpenRouter chat completions API. Every failure mode is fail-open: the
// caller always gets usable content back, rewritten or not.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newsflowai/newsflow/internal/logger"
)

const (
	// DefaultModel is a free-tier model; the available free options rotate.
	DefaultModel = "meta-llama/llama-3.1-8b-instruct:free"

	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds one rewrite round trip.
	DefaultTimeout = 30 * time.Second

	// minRewrittenWords is the floor below which original paragraphs are
	// appended to the rewritten body.
	minRewrittenWords = 200

	// maxRewrittenParagraphs caps the rewritten body length.
	maxRewrittenParagraphs = 10

	// maxPromptParagraphs limits how much source text goes into the prompt.
	maxPromptParagraphs = 5
)

const systemPrompt = `Você é um editor de portal de notícias brasileiro. Reescreva título e organize 1–3 parágrafos iniciais, claros e objetivos.
- mantenha fatos, remova publicidade
- português BR
- NÃO invente
- foco em SEO local quando houver toponímia
- 200 a 300 palavras no total (mínimo 200)
Retorne JSON: {"title": "...", "paragraphs": ["...", "...", "..."]}`

// Config holds the rewriter settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls OpenRouter. A client with no API key is valid and passes
// content through untouched.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        logger.Interface
}

// NewClient creates a rewrite client, filling config defaults.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Enabled reports whether rewriting will actually call the API.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type rewritten struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Rewrite reworks the title and lead paragraphs. On a missing key, timeout,
// HTTP error, or malformed response the inputs come back unchanged.
func (c *Client) Rewrite(
	ctx context.Context,
	title string,
	paragraphs []string,
	sourceName, sourceURL string,
) (string, []string) {
	if !c.Enabled() {
		return title, paragraphs
	}

	content, err := c.complete(ctx, title, paragraphs, sourceName, sourceURL)
	if err != nil {
		c.log.Warn("rewrite failed, keeping original content", "url", sourceURL, "error", err)
		return title, paragraphs
	}

	var out rewritten
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		c.log.Warn("rewrite returned invalid json, keeping original content", "url", sourceURL)
		return title, paragraphs
	}

	newTitle := strings.TrimSpace(out.Title)
	if newTitle == "" {
		newTitle = title
	}

	newParagraphs := make([]string, 0, len(out.Paragraphs))
	for _, p := range out.Paragraphs {
		if strings.TrimSpace(p) != "" {
			newParagraphs = append(newParagraphs, p)
		}
	}

	// Too short a rewrite is padded back up with the original body.
	words := wordCount(newParagraphs)
	for _, p := range paragraphs {
		if words >= minRewrittenWords {
			break
		}
		newParagraphs = append(newParagraphs, p)
		words += len(strings.Fields(p))
	}

	if len(newParagraphs) > maxRewrittenParagraphs {
		newParagraphs = newParagraphs[:maxRewrittenParagraphs]
	}

	return newTitle, newParagraphs
}

func (c *Client) complete(
	ctx context.Context,
	title string,
	paragraphs []string,
	sourceName, sourceURL string,
) (string, error) {
	excerpt := paragraphs
	if len(excerpt) > maxPromptParagraphs {
		excerpt = excerpt[:maxPromptParagraphs]
	}

	userPrompt := fmt.Sprintf(
		"Fonte: %s — %s\nTítulo original: %s\nTexto (trechos):\n%s\n",
		sourceName, sourceURL, title, strings.Join(excerpt, "\n\n"),
	)

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openrouter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

func wordCount(paragraphs []string) int {
	total := 0
	for _, p := range paragraphs {
		total += len(strings.Fields(p))
	}
	return total
}
