package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// denseBlockSelector lists the container elements scored for text density.
const denseBlockSelector = "div, section, td"

// minDenseBlockLen is the minimum text length for a block to be considered.
const minDenseBlockLen = 200

// fromDenseText is the statistical last resort for pages that defeat
// structural heuristics: it scores container elements by the amount of
// text they hold directly (total text minus text inside anchors) and
// extracts paragraphs from the densest one.
func fromDenseText(doc *goquery.Document, cleaner *Cleaner) *Draft {
	var best *goquery.Selection
	bestScore := 0

	doc.Find(denseBlockSelector).Each(func(_ int, s *goquery.Selection) {
		total := len(strings.TrimSpace(s.Text()))
		if total < minDenseBlockLen {
			return
		}

		linked := 0
		s.Find("a").Each(func(_ int, a *goquery.Selection) {
			linked += len(strings.TrimSpace(a.Text()))
		})

		score := total - 2*linked
		if score > bestScore {
			bestScore = score
			best = s
		}
	})

	if best == nil {
		return nil
	}

	var blocks []string
	best.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})

	// Containers without paragraph markup still get a chance through
	// their raw text.
	if len(blocks) == 0 {
		blocks = SplitBlocks(best.Text())
	}

	paragraphs := cleaner.CleanAll(blocks)
	if len(paragraphs) == 0 {
		return nil
	}

	return &Draft{Paragraphs: paragraphs}
}

// fromRawText splits all visible text by blank-line gaps. Only used when
// every structural method failed.
func fromRawText(doc *goquery.Document, cleaner *Cleaner) *Draft {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil
	}

	clone := body.Clone()
	clone.Find("script, style, noscript, nav, header, footer").Remove()

	paragraphs := cleaner.CleanAll(SplitBlocks(clone.Text()))
	if len(paragraphs) == 0 {
		return nil
	}

	return &Draft{Paragraphs: paragraphs}
}
