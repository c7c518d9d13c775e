package domain

// Reason classifies the outcome of one per-URL pipeline invocation.
type Reason string

const (
	// ReasonOK means a record was produced and stored.
	ReasonOK Reason = "ok"
	// ReasonFetchFail covers every transport-level failure: timeout, DNS,
	// non-2xx status, and non-HTML content types.
	ReasonFetchFail Reason = "fetch_fail"
	// ReasonNoTitle means the page yielded no title and one was required.
	ReasonNoTitle Reason = "no_h1"
	// ReasonNoImage means the page yielded no image and one was required.
	ReasonNoImage Reason = "no_image"
	// ReasonNoParagraphs means no body paragraphs survived cleaning.
	ReasonNoParagraphs Reason = "no_paragraphs"
	// ReasonSaveFail means the article extracted cleanly but could not be
	// persisted.
	ReasonSaveFail Reason = "save_fail"
)

// Stats accumulates per-reason outcome counts for one crawl run.
type Stats map[Reason]int

// NewStats returns a stats map with every reason present at zero, so
// serialized output always carries the full set of counters.
func NewStats() Stats {
	return Stats{
		ReasonOK:           0,
		ReasonFetchFail:    0,
		ReasonNoTitle:      0,
		ReasonNoImage:      0,
		ReasonNoParagraphs: 0,
		ReasonSaveFail:     0,
	}
}

// Inc increments the counter for the given reason.
func (s Stats) Inc(r Reason) {
	s[r]++
}
