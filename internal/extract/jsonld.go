package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDSelector matches embedded structured data blocks.
const jsonLDSelector = "script[type='application/ld+json']"

// articleTypes are the schema.org @type values accepted as articles.
var articleTypes = map[string]bool{
	"NewsArticle":      true,
	"Article":          true,
	"BlogPosting":      true,
	"ScholarlyArticle": true,
	"Report":           true,
}

// fromJSONLD extracts headline, image, and body from embedded JSON-LD
// article objects. Malformed blocks are skipped silently.
func fromJSONLD(doc *goquery.Document, cleaner *Cleaner) *Draft {
	draft := &Draft{}

	doc.Find(jsonLDSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}

		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return true
		}

		for _, obj := range articleObjects(payload) {
			mergeJSONLDObject(draft, obj, cleaner)
		}

		// Stop once the block gave us everything.
		return draft.Title == "" || draft.Image == "" || !draft.HasParagraphs()
	})

	if draft.Title == "" && draft.Image == "" && !draft.HasParagraphs() {
		return nil
	}

	return draft
}

// articleObjects normalizes a decoded JSON-LD payload into the list of
// article-typed objects it contains, descending into top-level arrays and
// @graph containers.
func articleObjects(payload any) []map[string]any {
	var out []map[string]any

	var walk func(node any)
	walk = func(node any) {
		switch v := node.(type) {
		case []any:
			for _, item := range v {
				walk(item)
			}
		case map[string]any:
			if isArticleObject(v) {
				out = append(out, v)
				return
			}
			if graph, ok := v["@graph"].([]any); ok {
				walk(graph)
			}
		}
	}

	walk(payload)
	return out
}

// isArticleObject reports whether the object declares an article @type.
// The @type may be a string or a list of strings.
func isArticleObject(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return articleTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

// mergeJSONLDObject fills draft fields from one article object.
func mergeJSONLDObject(draft *Draft, obj map[string]any, cleaner *Cleaner) {
	if draft.Title == "" {
		if headline, ok := obj["headline"].(string); ok {
			draft.Title = strings.TrimSpace(headline)
		}
	}

	if draft.Image == "" {
		draft.Image = jsonLDImage(obj["image"])
	}

	if !draft.HasParagraphs() {
		if body, ok := obj["articleBody"].(string); ok {
			draft.Paragraphs = cleaner.CleanAll(SplitBlocks(body))
		}
	}
}

// jsonLDImage resolves the image field, which may be a URL string, an
// ImageObject, or a list of either.
func jsonLDImage(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	case []any:
		for _, item := range v {
			if u := jsonLDImage(item); u != "" {
				return u
			}
		}
	}
	return ""
}
