// Package store persists collected articles and crawl keywords in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/logger"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// itemColumns is the full column list of the items table, in insert order.
var itemColumns = []string{
	"id", "url", "title", "image", "paragraphs",
	"source_name", "published_at", "keyword", "created_at",
}

// Store wraps the SQLite database. Timestamps are stored as RFC3339 text.
type Store struct {
	db  *sqlx.DB
	log logger.Interface
	now func() time.Time
}

// New opens (or creates) the database at path and runs migrations.
func New(path string, log logger.Interface) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// modernc's driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database ready", "path", path)

	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		url TEXT UNIQUE,
		title TEXT,
		image TEXT,
		paragraphs TEXT,
		source_name TEXT,
		published_at TEXT,
		keyword TEXT,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_items_keyword ON items(keyword);
	CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at);

	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		hours_back INTEGER NOT NULL DEFAULT 8,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// itemRow is the wire shape of an items row; timestamps stay as text until
// conversion to the domain type.
type itemRow struct {
	ID          string `db:"id"`
	URL         string `db:"url"`
	Title       string `db:"title"`
	Image       string `db:"image"`
	Paragraphs  string `db:"paragraphs"`
	SourceName  string `db:"source_name"`
	PublishedAt string `db:"published_at"`
	Keyword     string `db:"keyword"`
	CreatedAt   string `db:"created_at"`
}

func (r itemRow) toDomain() (domain.Article, error) {
	var paragraphs []string
	if r.Paragraphs != "" {
		if err := json.Unmarshal([]byte(r.Paragraphs), &paragraphs); err != nil {
			return domain.Article{}, fmt.Errorf("decode paragraphs for %s: %w", r.ID, err)
		}
	}

	return domain.Article{
		ID:          r.ID,
		URL:         r.URL,
		Title:       r.Title,
		Image:       r.Image,
		Paragraphs:  paragraphs,
		SourceName:  r.SourceName,
		PublishedAt: parseTime(r.PublishedAt),
		Keyword:     r.Keyword,
		CreatedAt:   parseTime(r.CreatedAt),
	}, nil
}

// UpsertArticle inserts the article or, when the URL already exists, updates
// its content fields. The existing row's id, url, and created_at survive.
func (s *Store) UpsertArticle(ctx context.Context, article *domain.Article) error {
	paragraphs, err := json.Marshal(article.Paragraphs)
	if err != nil {
		return fmt.Errorf("encode paragraphs: %w", err)
	}

	createdAt := article.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	query, args, err := sq.Insert("items").
		Columns(itemColumns...).
		Values(
			article.ID, article.URL, article.Title, article.Image, string(paragraphs),
			article.SourceName, formatTime(article.PublishedAt), article.Keyword,
			formatTime(createdAt),
		).
		Suffix(`ON CONFLICT(url) DO UPDATE SET
			title=excluded.title,
			image=excluded.image,
			paragraphs=excluded.paragraphs,
			source_name=excluded.source_name,
			published_at=excluded.published_at,
			keyword=excluded.keyword`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", article.URL, err)
	}

	return nil
}

// GetArticle loads one article by its stable id.
func (s *Store) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	query, args, err := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row itemRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}

	article, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	return &article, nil
}

// ListByKeyword returns the articles collected for a keyword slug since the
// given time, newest first.
func (s *Store) ListByKeyword(ctx context.Context, slug string, since time.Time) ([]domain.Article, error) {
	query, args, err := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"keyword": slug}).
		Where(sq.GtOrEq{"created_at": formatTime(since)}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list articles for %s: %w", slug, err)
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		article, convErr := row.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
