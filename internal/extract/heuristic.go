package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// contentRootSelectors are probed in order for the main article container.
// Semantic elements first, then the class/id conventions common across CMSes.
var contentRootSelectors = []string{
	"article",
	"main",
	"[role='article']",
	".article-content",
	".article-body",
	".post-content",
	".entry-content",
	".story-body",
	"#article-content",
	"#main-content",
	".content",
}

// nonContentAncestors marks paragraphs nested in chrome, ads, or figures
// as non-body text.
const nonContentAncestors = "nav, aside, header, footer, script, noscript, figure, form"

// contentRoot picks the most probable main-content container, falling back
// to <body> when no known pattern matches.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentRootSelectors {
		if root := doc.Find(selector).First(); root.Length() > 0 {
			return root
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}

	return doc.Selection
}

// fromContentRoot harvests paragraph elements beneath the heuristic content
// root, skipping any nested in navigation, ad, or figure containers.
func fromContentRoot(doc *goquery.Document, cleaner *Cleaner) *Draft {
	root := contentRoot(doc)

	var blocks []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(nonContentAncestors).Length() > 0 {
			return
		}
		blocks = append(blocks, s.Text())
	})

	paragraphs := cleaner.CleanAll(blocks)
	if len(paragraphs) == 0 {
		return nil
	}

	return &Draft{Paragraphs: paragraphs}
}

// fromLists accepts sufficiently long list items as paragraph-equivalents.
// FAQ and step-list articles often carry their body in <li> blocks.
func fromLists(doc *goquery.Document, cleaner *Cleaner) *Draft {
	root := contentRoot(doc)

	var blocks []string
	root.Find("li").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(nonContentAncestors).Length() > 0 {
			return
		}
		blocks = append(blocks, s.Text())
	})

	paragraphs := cleaner.CleanAll(blocks)
	if len(paragraphs) == 0 {
		return nil
	}

	return &Draft{Paragraphs: paragraphs}
}
