package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imageSkipFragments mark image sources that are never lead images.
var imageSkipFragments = []string{".svg", "sprite", "data:image"}

// resolveTitle fills the draft title through the fallback chain:
// social meta title, document title, first heading. Structured data and
// custom selectors have already had their chance by the time this runs.
func resolveTitle(doc *goquery.Document, draft *Draft) {
	if draft.Title != "" {
		return
	}

	metaSelectors := []string{
		"meta[property='og:title']",
		"meta[name='twitter:title']",
	}
	for _, selector := range metaSelectors {
		if content, exists := doc.Find(selector).First().Attr("content"); exists {
			if title := strings.TrimSpace(content); title != "" {
				draft.Title = title
				return
			}
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		draft.Title = title
		return
	}

	draft.Title = strings.TrimSpace(doc.Find("h1").First().Text())
}

// resolveImage fills the draft image: social meta tags first, then the
// first plausible content image, preferring one inside the content root.
func resolveImage(doc *goquery.Document, draft *Draft) {
	if draft.Image != "" {
		return
	}

	metaSelectors := []string{
		"meta[property='og:image']",
		"meta[name='twitter:image']",
	}
	for _, selector := range metaSelectors {
		if content, exists := doc.Find(selector).First().Attr("content"); exists {
			if img := strings.TrimSpace(content); img != "" {
				draft.Image = img
				return
			}
		}
	}

	if img := firstPlausibleImage(contentRoot(doc)); img != "" {
		draft.Image = img
		return
	}

	draft.Image = firstPlausibleImage(doc.Selection)
}

// firstPlausibleImage returns the first img src that is not a vector,
// sprite, or inline-data image.
func firstPlausibleImage(root *goquery.Selection) string {
	found := ""

	root.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return true
		}

		lower := strings.ToLower(src)
		for _, fragment := range imageSkipFragments {
			if strings.Contains(lower, fragment) {
				return true
			}
		}

		found = src
		return false
	})

	return found
}

// absolutizeImage resolves the draft image against the page's final URL.
// Unresolvable references are left as extracted.
func absolutizeImage(draft *Draft, base *url.URL) {
	if draft.Image == "" || base == nil {
		return
	}

	ref, err := url.Parse(draft.Image)
	if err != nil {
		return
	}

	draft.Image = base.ResolveReference(ref).String()
}
