package extract

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// fromReadability re-lays the page out through a generic readability pass
// and re-splits the simplified text into paragraphs. Used when structural
// heuristics came up short. Only paragraphs are taken; title and image stay
// with the meta resolution chain.
func fromReadability(html string, base *url.URL, cleaner *Cleaner) *Draft {
	article, err := readability.FromReader(strings.NewReader(html), base)
	if err != nil {
		return nil
	}

	paragraphs := cleaner.CleanAll(SplitBlocks(article.TextContent))
	if len(paragraphs) == 0 {
		return nil
	}

	return &Draft{Paragraphs: paragraphs}
}
