// Package api implements the HTTP surface: crawl triggers, single-link
// ingestion, JSON listings, RSS feeds, HTML article views, and keyword
// management.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/logger"
	"github.com/newsflowai/newsflow/internal/pipeline"
	"github.com/newsflowai/newsflow/internal/store"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultListHours = 12
	maxListHours     = 72
)

// Crawler runs keyword crawls.
type Crawler interface {
	Run(ctx context.Context, req crawl.Request) crawl.Report
}

// Ingestor processes a single candidate link.
type Ingestor interface {
	Process(
		ctx context.Context,
		link domain.CandidateLink,
		keyword string,
		req pipeline.Requirements,
		debug bool,
	) pipeline.Outcome
}

// Storage is the persistence surface the handlers need.
type Storage interface {
	GetArticle(ctx context.Context, id string) (*domain.Article, error)
	ListByKeyword(ctx context.Context, slug string, since time.Time) ([]domain.Article, error)
	ListKeywords(ctx context.Context) ([]store.Keyword, error)
	CreateKeyword(ctx context.Context, keyword string, hoursBack int, active bool) (*store.Keyword, error)
	DeleteKeyword(ctx context.Context, id int64) error
}

// Server is the HTTP server.
type Server struct {
	addr     string
	engine   *gin.Engine
	crawler  Crawler
	ingestor Ingestor
	storage  Storage
	log      logger.Interface
}

// New creates the server and registers all routes.
func New(addr string, crawler Crawler, ingestor Ingestor, storage Storage, log logger.Interface) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(log))
	engine.Use(corsMiddleware())

	s := &Server{
		addr:     addr,
		engine:   engine,
		crawler:  crawler,
		ingestor: ingestor,
		storage:  storage,
		log:      log,
	}
	s.registerRoutes()

	return s
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server")
	return server.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	s.engine.POST("/crawl", s.handleCrawl)
	s.engine.POST("/add", s.handleAdd)

	s.engine.GET("/api/list", s.handleList)
	s.engine.GET("/api/json/:slug", s.handleListBySlug)

	s.engine.GET("/rss/:slug", s.handleRSS)
	s.engine.GET("/item/:id", s.handleItem)
	s.engine.GET("/q/:slug", s.handleKeywordPage)

	s.engine.GET("/keywords", s.handleListKeywords)
	s.engine.POST("/keywords", s.handleCreateKeyword)
	s.engine.DELETE("/keywords/:id", s.handleDeleteKeyword)
}

func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// corsMiddleware allows any origin, mirroring the open defaults of the
// public feed endpoints.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
