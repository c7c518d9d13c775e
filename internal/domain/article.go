// Package domain provides the domain models shared across the application.
package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// TitleMaxLen is the maximum stored title length.
const TitleMaxLen = 220

// stableIDBytes is the number of hash bytes kept in a stable identifier.
const stableIDBytes = 9

// Article is the normalized, persisted article record.
type Article struct {
	// ID is the stable identifier derived from URL; never changes once written.
	ID string `json:"id" db:"id"`
	// URL is the canonical (post-redirect) article URL; unique per record.
	URL string `json:"url" db:"url"`
	// Title is the article headline, capped at TitleMaxLen.
	Title string `json:"title" db:"title"`
	// Image is the absolute URL of the lead image, empty when none was found.
	Image string `json:"image,omitempty" db:"image"`
	// Paragraphs is the cleaned article body, one entry per paragraph.
	Paragraphs []string `json:"paragraphs" db:"-"`
	// SourceName is the publisher name or hostname fallback.
	SourceName string `json:"source_name" db:"source_name"`
	// PublishedAt is the publish time in UTC.
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	// Keyword is the slug of the keyword or listing run that collected this.
	Keyword string `json:"keyword" db:"keyword"`
	// CreatedAt is the first-write timestamp; preserved across upserts.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Summary is the compact listing shape returned by crawl responses.
type Summary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Summarize returns the compact representation of the article.
func (a *Article) Summarize() Summary {
	return Summary{ID: a.ID, Title: a.Title, Source: a.SourceName}
}

// CandidateLink is a discovered article URL plus optional feed hints.
// It lives for a single pipeline invocation and is never persisted.
type CandidateLink struct {
	URL           string
	HintTitle     string
	HintSource    string
	HintPublished *time.Time
}

// StableID derives a deterministic, URL-safe identifier from a URL.
// It is the first 9 bytes of the SHA-256 digest, base64url-encoded
// without padding.
func StableID(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return base64.RawURLEncoding.EncodeToString(sum[:stableIDBytes])
}

// Slugify normalizes a keyword into its slug form.
func Slugify(keyword string) string {
	return slug.Make(keyword)
}

// Hostname extracts the host from a URL with any leading "www." stripped.
// Malformed input yields a generic source name rather than an error.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "source"
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// TruncateTitle caps a title at TitleMaxLen runes.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= TitleMaxLen {
		return title
	}
	return string(runes[:TitleMaxLen])
}
