package pipeline

import (
	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/extract"
)

// Requirements control what the acceptance gate demands of a draft.
// A zero MinParagraphs means one.
type Requirements struct {
	RequireTitle  bool
	RequireImage  bool
	MinParagraphs int
}

// minParagraphs applies the floor of one.
func (r Requirements) minParagraphs() int {
	if r.MinParagraphs <= 0 {
		return 1
	}
	return r.MinParagraphs
}

// Gate is the single accept/reject decision for an extracted draft.
// Extraction stages never reject; only the gate does, and it checks the
// title first, then the image, then the body.
func Gate(draft *extract.Draft, req Requirements) (bool, domain.Reason) {
	if req.RequireTitle && draft.Title == "" {
		return false, domain.ReasonNoTitle
	}

	if req.RequireImage && draft.Image == "" {
		return false, domain.ReasonNoImage
	}

	if len(draft.Paragraphs) < req.minParagraphs() {
		return false, domain.ReasonNoParagraphs
	}

	return true, domain.ReasonOK
}

// Trace records what happened to one candidate for debugging. It is
// reporting only and never changes an outcome.
type Trace struct {
	URL            string        `json:"url"`
	FinalURL       string        `json:"final_url,omitempty"`
	Status         int           `json:"status,omitempty"`
	ContentType    string        `json:"content_type,omitempty"`
	Strategy       string        `json:"strategy,omitempty"`
	AMPUsed        bool          `json:"amp_used,omitempty"`
	ParagraphCount int           `json:"paragraph_count"`
	Reason         domain.Reason `json:"reason"`
}

// Outcome is the result of processing one candidate link. Article is set
// only when Reason is ok. Err carries the underlying persistence error when
// Reason is save_fail.
type Outcome struct {
	Reason  domain.Reason
	Article *domain.Article
	Trace   *Trace
	Err     error
}
