package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/pipeline"
)

// defaultCrawlKeywords seed a crawl request that names none.
var defaultCrawlKeywords = []string{"política", "economia"}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// crawlRequest uses pointers so absent booleans keep their strict defaults.
type crawlRequest struct {
	Keywords     []string `json:"keywords"`
	ListingURLs  []string `json:"listing_urls"`
	HoursMax     int      `json:"hours_max"`
	Strict       *bool    `json:"strict"`
	RequireImage *bool    `json:"require_image"`
	Debug        bool     `json:"debug"`
}

func (s *Server) handleCrawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if len(req.Keywords) == 0 && len(req.ListingURLs) == 0 {
		req.Keywords = defaultCrawlKeywords
	}

	report := s.crawler.Run(c.Request.Context(), crawl.Request{
		Keywords:     req.Keywords,
		ListingURLs:  req.ListingURLs,
		WindowHours:  req.HoursMax,
		RequireTitle: boolOrDefault(req.Strict, true),
		RequireImage: boolOrDefault(req.RequireImage, true),
		Debug:        req.Debug,
	})

	c.JSON(http.StatusOK, report)
}

type addRequest struct {
	URL          string `json:"url" binding:"required"`
	Keyword      string `json:"keyword"`
	Strict       *bool  `json:"strict"`
	RequireImage *bool  `json:"require_image"`
}

func (s *Server) handleAdd(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if req.Keyword == "" {
		req.Keyword = "geral"
	}

	outcome := s.ingestor.Process(
		c.Request.Context(),
		domain.CandidateLink{URL: req.URL},
		req.Keyword,
		pipeline.Requirements{
			RequireTitle: boolOrDefault(req.Strict, true),
			RequireImage: boolOrDefault(req.RequireImage, true),
		},
		false,
	)

	if outcome.Reason != domain.ReasonOK || outcome.Article == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "could not extract content from this link",
			"reason": outcome.Reason,
		})
		return
	}

	article := outcome.Article
	c.JSON(http.StatusOK, gin.H{
		"id":        article.ID,
		"title":     article.Title,
		"permalink": "/item/" + article.ID,
		"keyword":   article.Keyword,
	})
}

// listItem is the list-endpoint projection; the body stays behind /item/:id.
type listItem struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	SourceName  string `json:"source_name"`
	PublishedAt string `json:"published_at"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleList(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	s.listItems(c, domain.Slugify(keyword))
}

func (s *Server) handleListBySlug(c *gin.Context) {
	s.listItems(c, c.Param("slug"))
}

func (s *Server) listItems(c *gin.Context, slug string) {
	hours := clampHours(c.Query("hours"))
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	articles, err := s.storage.ListByKeyword(c.Request.Context(), slug, since)
	if err != nil {
		s.log.Error("failed to list articles", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	items := make([]listItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, listItem{
			ID:          a.ID,
			URL:         a.URL,
			Title:       a.Title,
			Image:       a.Image,
			SourceName:  a.SourceName,
			PublishedAt: formatTime(a.PublishedAt),
			CreatedAt:   formatTime(a.CreatedAt),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// clampHours parses the hours query parameter into the 1..72 range.
func clampHours(raw string) int {
	if raw == "" {
		return defaultListHours
	}

	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 1 {
		return defaultListHours
	}
	if hours > maxListHours {
		return maxListHours
	}
	return hours
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
