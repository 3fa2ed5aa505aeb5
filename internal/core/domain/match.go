package domain

// Span is a half-open byte range [Start, End) within an artifact's text.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// MatchKind tags the variant held by a Classification.
type MatchKind int

// Classification variants.
const (
	// MatchNotFound means no unambiguous anchor was located.
	MatchNotFound MatchKind = iota

	// MatchAlreadyApplied means a marker proves the change is present.
	MatchAlreadyApplied

	// MatchAnchored means the anchor span was located.
	MatchAnchored
)

// String returns the string representation.
func (k MatchKind) String() string {
	switch k {
	case MatchAlreadyApplied:
		return "already_applied"
	case MatchAnchored:
		return "anchored"
	default:
		return "not_found"
	}
}

// Classification is the single outcome of matching a spec against text.
// Span is meaningful only for MatchAnchored.
type Classification struct {
	Kind MatchKind
	Span Span

	// Pattern is the marker or anchor that decided the outcome.
	Pattern Pattern

	// Reason explains a MatchNotFound outcome, or an already-applied one
	// that was decided from the rendered fragment rather than a marker.
	Reason string

	// Ambiguous is set when an anchor matched more than once.
	Ambiguous bool
}

// AlreadyApplied builds an already-applied classification.
func AlreadyApplied(marker Pattern) Classification {
	return Classification{Kind: MatchAlreadyApplied, Pattern: marker}
}

// Anchored builds an anchored classification.
func Anchored(span Span, anchor Pattern) Classification {
	return Classification{Kind: MatchAnchored, Span: span, Pattern: anchor}
}

// NotFound builds a not-found classification.
func NotFound(reason string) Classification {
	return Classification{Kind: MatchNotFound, Reason: reason}
}
