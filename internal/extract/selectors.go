package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors are per-source CSS selector overrides, persisted alongside the
// source configuration. Empty fields fall through to the generic cascade.
type Selectors struct {
	// Title selects the headline element.
	Title string `yaml:"title" mapstructure:"title"`
	// Image selects the lead image element.
	Image string `yaml:"image" mapstructure:"image"`
	// ImageAttr is the attribute holding the image URL (default "src").
	ImageAttr string `yaml:"image_attr" mapstructure:"image_attr"`
	// Container selects the article body container.
	Container string `yaml:"container" mapstructure:"container"`
	// Paragraphs selects body paragraphs within the container.
	Paragraphs string `yaml:"paragraphs" mapstructure:"paragraphs"`
	// Exclude lists selectors removed from the container before extraction.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	// Links selects candidate article links on listing pages.
	Links string `yaml:"links" mapstructure:"links"`
}

// Empty reports whether no article selectors are configured.
func (s *Selectors) Empty() bool {
	return s == nil || (s.Title == "" && s.Image == "" && s.Container == "" && s.Paragraphs == "")
}

// fromSelectors applies caller-supplied selectors. A selector that matches
// nothing is a miss, not a failure; the next stage fills the gap.
func fromSelectors(doc *goquery.Document, sel *Selectors, cleaner *Cleaner) *Draft {
	if sel.Empty() {
		return nil
	}

	draft := &Draft{}

	if sel.Title != "" {
		draft.Title = strings.TrimSpace(doc.Find(sel.Title).First().Text())
	}

	if sel.Image != "" {
		attr := sel.ImageAttr
		if attr == "" {
			attr = "src"
		}
		if src, exists := doc.Find(sel.Image).First().Attr(attr); exists {
			draft.Image = strings.TrimSpace(src)
		}
	}

	draft.Paragraphs = selectorParagraphs(doc, sel, cleaner)

	if draft.Title == "" && draft.Image == "" && !draft.HasParagraphs() {
		return nil
	}

	return draft
}

// selectorParagraphs extracts paragraphs from the configured container,
// removing excluded elements first.
func selectorParagraphs(doc *goquery.Document, sel *Selectors, cleaner *Cleaner) []string {
	if sel.Container == "" && sel.Paragraphs == "" {
		return nil
	}

	root := doc.Selection
	if sel.Container != "" {
		container := doc.Find(sel.Container).First()
		if container.Length() == 0 {
			return nil
		}
		root = container
	}

	for _, exclude := range sel.Exclude {
		if exclude != "" {
			root.Find(exclude).Remove()
		}
	}

	paragraphSelector := sel.Paragraphs
	if paragraphSelector == "" {
		paragraphSelector = "p"
	}

	var blocks []string
	root.Find(paragraphSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})

	return cleaner.CleanAll(blocks)
}
