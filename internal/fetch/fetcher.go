// Package fetch retrieves candidate pages over HTTP with bounded timeouts
// and classifies every transport problem as a recoverable failure.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single page fetch including redirects.
	DefaultTimeout = 20 * time.Second

	// maxResponseBodyBytes limits the size of fetched page responses.
	maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

	// DefaultUserAgent mimics a desktop browser; many publishers serve
	// stripped or blocked responses to obvious bot agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	acceptHeader     = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	feedAcceptHeader = "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5"
	languageHeader   = "pt-BR,pt;q=0.9,en;q=0.5"
)

// htmlContentTypes are the content types accepted as article pages.
var htmlContentTypes = []string{"text/html", "application/xhtml", "text/plain"}

// feedContentTypes are the content types accepted as feed documents. Google
// News serves its RSS as application/xml; some publishers use text/xml or
// even text/html for theirs.
var feedContentTypes = []string{
	"application/rss", "application/atom", "application/xml",
	"text/xml", "text/html", "text/plain",
}

// Result represents one network attempt. OK implies a 2xx status, an
// HTML-family content type, and a non-empty body. FinalURL is the
// post-redirect URL and becomes the canonical identity for the page.
type Result struct {
	OK          bool
	StatusCode  int
	ContentType string
	FinalURL    string
	Body        string
	Err         string
}

// Client fetches pages with a bounded timeout and browser-like headers.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent overrides the default browser identity.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a fetch client. Redirects are followed by default.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch performs a GET against the given URL. Transport errors, non-2xx
// statuses, and non-HTML responses are reported through Result.Err rather
// than a Go error; callers treat every failure as fetch_fail.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	return c.get(ctx, rawURL, acceptHeader, htmlContentTypes)
}

// FetchFeed performs a GET for a feed document. Same failure contract as
// Fetch, but XML-family content types are accepted.
func (c *Client) FetchFeed(ctx context.Context, rawURL string) Result {
	return c.get(ctx, rawURL, feedAcceptHeader, feedContentTypes)
}

func (c *Client) get(ctx context.Context, rawURL, accept string, acceptedTypes []string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return Result{FinalURL: rawURL, Err: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", languageHeader)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return Result{FinalURL: rawURL, Err: fmt.Sprintf("http fetch: %v", doErr)}
	}
	defer resp.Body.Close()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	contentType := resp.Header.Get("Content-Type")

	result := Result{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FinalURL:    finalURL,
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		result.Err = fmt.Sprintf("http status %d", resp.StatusCode)
		return result
	}

	if !acceptsContentType(contentType, acceptedTypes) {
		result.Err = fmt.Sprintf("unsupported content type %q", contentType)
		return result
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		result.Err = fmt.Sprintf("read response body: %v", readErr)
		return result
	}

	if len(body) == 0 {
		result.Err = "empty response body"
		return result
	}

	result.OK = true
	result.Body = string(body)

	return result
}

// acceptsContentType reports whether the content type matches one of the
// accepted families.
func acceptsContentType(contentType string, accepted []string) bool {
	ct := strings.ToLower(contentType)
	for _, want := range accepted {
		if strings.Contains(ct, want) {
			return true
		}
	}
	return false
}
