package extract

import (
	"regexp"
	"strings"
)

// minParagraphLen is the minimum paragraph length in runes; shorter blocks
// are almost always captions, bylines, or navigation crumbs.
const minParagraphLen = 25

// badSnippets are call-to-action, advertising, and navigation phrases that
// mark a text block as boilerplate. Matching is case-insensitive substring.
var badSnippets = []string{
	// calls to action
	"leia mais", "leia também", "saiba mais", "veja também", "veja mais",
	"continue lendo", "continue a ler", "clique aqui", "acesse aqui",
	"inscreva-se", "assine", "assinar", "newsletter",
	// social / sharing
	"compartilhe", "siga-nos", "siga no instagram", "siga no twitter", "siga no x",
	"siga no facebook", "acompanhe nas redes",
	// advertising
	"publicidade", "anúncio", "publieditorial", "conteúdo patrocinado", "oferta",
	// site navigation
	"voltar ao topo", "voltar para o início", "cookies", "aceitar cookies",
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	bareURLRe      = regexp.MustCompile(`https?://\S+`)
	ctaPrefixRe    = regexp.MustCompile(`^(?:leia|veja|saiba|assine|clique)\b`)
	paragraphGapRe = regexp.MustCompile(`\n{2,}`)
)

// Cleaner decides whether a text block is article prose or boilerplate.
// It is pure: the same input always yields the same verdict.
type Cleaner struct {
	minLen   int
	snippets []string
}

// NewCleaner creates a cleaner with the default boilerplate rules.
func NewCleaner() *Cleaner {
	return &Cleaner{
		minLen:   minParagraphLen,
		snippets: badSnippets,
	}
}

// Clean normalizes whitespace and reports whether the block qualifies as a
// body paragraph. The returned string is only meaningful when ok is true.
func (c *Cleaner) Clean(text string) (cleaned string, ok bool) {
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if cleaned == "" {
		return "", false
	}

	lower := strings.ToLower(cleaned)
	for _, snippet := range c.snippets {
		if strings.Contains(lower, snippet) {
			return "", false
		}
	}

	if len([]rune(cleaned)) < c.minLen {
		return "", false
	}

	if bareURLRe.MatchString(cleaned) {
		return "", false
	}

	if ctaPrefixRe.MatchString(lower) {
		return "", false
	}

	return cleaned, true
}

// CleanAll filters a list of candidate blocks, keeping accepted paragraphs
// in order.
func (c *Cleaner) CleanAll(blocks []string) []string {
	var out []string
	for _, block := range blocks {
		if cleaned, ok := c.Clean(block); ok {
			out = append(out, cleaned)
		}
	}
	return out
}

// SplitBlocks splits free text into candidate paragraphs on blank-line gaps.
func SplitBlocks(text string) []string {
	return paragraphGapRe.Split(text, -1)
}
