// Package extract turns arbitrary article HTML into a draft record through
// an ordered cascade of strategies, each of which only fills fields earlier
// strategies left empty.
package extract

// Strategy names identify which cascade stage produced the body paragraphs.
const (
	StrategyJSONLD      = "jsonld"
	StrategySelectors   = "selectors"
	StrategyContentRoot = "content_root"
	StrategyLists       = "lists"
	StrategyReadability = "readability"
	StrategyDenseText   = "dense_text"
	StrategyRawText     = "raw_text"
)

// Draft accumulates extraction results as the cascade runs. Fields are
// fill-only: a populated field is never overwritten by a later stage.
type Draft struct {
	Title      string
	Image      string
	Paragraphs []string
	// Strategy records the stage that contributed the paragraphs.
	Strategy string
	// AMPUsed is set when paragraphs came from the page's AMP variant.
	AMPUsed bool
}

// Merge fills empty fields of the draft from other, attributing paragraphs
// to the given stage when they are taken. Populated fields are untouched.
func (d *Draft) Merge(other *Draft, stage string) {
	if other == nil {
		return
	}

	if d.Title == "" && other.Title != "" {
		d.Title = other.Title
	}

	if d.Image == "" && other.Image != "" {
		d.Image = other.Image
	}

	if len(d.Paragraphs) == 0 && len(other.Paragraphs) > 0 {
		d.Paragraphs = other.Paragraphs
		d.Strategy = stage
	}
}

// HasParagraphs reports whether the draft carries at least one paragraph.
func (d *Draft) HasParagraphs() bool {
	return len(d.Paragraphs) > 0
}
