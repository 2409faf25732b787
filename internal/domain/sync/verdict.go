package sync

import "github.com/harmonie-studio/tunesync/internal/catalog"

// Verdict is the classification of a candidate for one song.
type Verdict int

const (
	// VerdictSkip discards the candidate.
	VerdictSkip Verdict = iota
	// VerdictQueueForReview stores the candidate for human judgment.
	VerdictQueueForReview
	// VerdictAutoApply writes the candidate onto the song immediately.
	VerdictAutoApply
)

// Classification thresholds. AutoApplyThreshold is deliberately not
// configurable: silently overwriting catalog data needs a stable bar. The
// caller-supplied minimum confidence tunes search early-termination only and
// never moves either bound.
const (
	AutoApplyThreshold = 85.0
	ReviewThreshold    = 20.0
)

// Classify maps a candidate to a verdict. A nil candidate (no external
// result) always skips.
func Classify(candidate *catalog.Candidate) Verdict {
	switch {
	case candidate == nil:
		return VerdictSkip
	case candidate.Confidence >= AutoApplyThreshold:
		return VerdictAutoApply
	case candidate.Confidence >= ReviewThreshold:
		return VerdictQueueForReview
	default:
		return VerdictSkip
	}
}

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictAutoApply:
		return "auto_apply"
	case VerdictQueueForReview:
		return "queue_for_review"
	default:
		return "skip"
	}
}
