package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/newsflowai/newsflow/internal/domain"
)

// Keyword is a managed crawl term. The slug doubles as the grouping key for
// collected items and the path parameter of the public feeds.
type Keyword struct {
	ID        int64     `db:"id" json:"id"`
	Keyword   string    `db:"keyword" json:"keyword"`
	Slug      string    `db:"slug" json:"slug"`
	HoursBack int       `db:"hours_back" json:"hours_back"`
	Active    bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"-" json:"created_at"`
}

type keywordRow struct {
	ID        int64  `db:"id"`
	Keyword   string `db:"keyword"`
	Slug      string `db:"slug"`
	HoursBack int    `db:"hours_back"`
	IsActive  int    `db:"is_active"`
	CreatedAt string `db:"created_at"`
}

func (r keywordRow) toKeyword() Keyword {
	return Keyword{
		ID:        r.ID,
		Keyword:   r.Keyword,
		Slug:      r.Slug,
		HoursBack: r.HoursBack,
		Active:    r.IsActive != 0,
		CreatedAt: parseTime(r.CreatedAt),
	}
}

// CreateKeyword registers a crawl term. The slug is derived from the term;
// re-registering an existing slug updates its settings in place.
func (s *Store) CreateKeyword(ctx context.Context, keyword string, hoursBack int, active bool) (*Keyword, error) {
	slug := domain.Slugify(keyword)
	if slug == "" {
		return nil, errors.New("keyword is empty")
	}
	if hoursBack <= 0 {
		hoursBack = 8
	}

	isActive := 0
	if active {
		isActive = 1
	}

	query, args, err := sq.Insert("keywords").
		Columns("keyword", "slug", "hours_back", "is_active", "created_at").
		Values(keyword, slug, hoursBack, isActive, formatTime(s.now().UTC())).
		Suffix(`ON CONFLICT(slug) DO UPDATE SET
			keyword=excluded.keyword,
			hours_back=excluded.hours_back,
			is_active=excluded.is_active`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create keyword %q: %w", keyword, err)
	}

	return s.getKeywordBySlug(ctx, slug)
}

// ListKeywords returns all registered keywords in insertion order.
func (s *Store) ListKeywords(ctx context.Context) ([]Keyword, error) {
	return s.listKeywords(ctx, sq.Select("*").From("keywords").OrderBy("id"))
}

// ActiveKeywords returns only the keywords enabled for scheduled crawls.
func (s *Store) ActiveKeywords(ctx context.Context) ([]Keyword, error) {
	return s.listKeywords(ctx,
		sq.Select("*").From("keywords").Where(sq.Eq{"is_active": 1}).OrderBy("id"))
}

// DeleteKeyword removes a keyword by id. Collected items are kept.
func (s *Store) DeleteKeyword(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("keywords").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete keyword %d: %w", id, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) listKeywords(ctx context.Context, builder sq.SelectBuilder) ([]Keyword, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []keywordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}

	keywords := make([]Keyword, 0, len(rows))
	for _, row := range rows {
		keywords = append(keywords, row.toKeyword())
	}

	return keywords, nil
}

func (s *Store) getKeywordBySlug(ctx context.Context, slug string) (*Keyword, error) {
	query, args, err := sq.Select("*").From("keywords").Where(sq.Eq{"slug": slug}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row keywordRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get keyword %s: %w", slug, err)
	}

	keyword := row.toKeyword()
	return &keyword, nil
}
