package services

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// SignatureMatcher classifies artifact text against a transformation.
// Matching is purely textual; no host-language parsing is done.
type SignatureMatcher struct {
	mu    sync.RWMutex
	cache map[domain.Pattern]*regexp.Regexp
}

// NewSignatureMatcher creates a matcher with an empty regex cache.
func NewSignatureMatcher() *SignatureMatcher {
	return &SignatureMatcher{
		cache: make(map[domain.Pattern]*regexp.Regexp),
	}
}

// Classify decides whether spec is already applied to text and, if not,
// where it must go. Markers are checked first; anchors are tried in order
// and the first one that matches at all decides the outcome.
func (m *SignatureMatcher) Classify(text string, spec domain.TransformationSpec) domain.Classification {
	for _, marker := range spec.Markers {
		found, err := m.contains(text, marker)
		if err != nil {
			return domain.NotFound(fmt.Sprintf("marker %s: %v", marker, err))
		}
		if found {
			return domain.AlreadyApplied(marker)
		}
	}

	switch spec.Placement {
	case domain.PlacementPrepend:
		return domain.Anchored(domain.Span{Start: 0, End: 0}, domain.Pattern{})
	case domain.PlacementAppend:
		return domain.Anchored(domain.Span{Start: len(text), End: len(text)}, domain.Pattern{})
	}

	tried := make([]string, 0, len(spec.Anchors))
	for _, anchor := range spec.Anchors {
		spans, err := m.findAll(text, anchor)
		if err != nil {
			return domain.NotFound(fmt.Sprintf("anchor %s: %v", anchor, err))
		}
		switch len(spans) {
		case 0:
			tried = append(tried, anchor.String())
			continue
		case 1:
			return domain.Anchored(spans[0], anchor)
		default:
			c := domain.NotFound(fmt.Sprintf("%s: %s matched %d times", domain.ErrAmbiguousAnchor, anchor, len(spans)))
			c.Ambiguous = true
			c.Pattern = anchor
			return c
		}
	}

	return domain.NotFound(fmt.Sprintf("%s: tried %s", domain.ErrAnchorNotFound, strings.Join(tried, ", ")))
}

// InPlace reports whether fragment already sits where an anchored
// classification would put it. This catches rewrites whose result carries
// no distinct marker, such as replacing a URL with the same URL.
func (m *SignatureMatcher) InPlace(text string, c domain.Classification, placement domain.Placement, fragment string) bool {
	if c.Kind != domain.MatchAnchored || fragment == "" {
		return false
	}
	span := c.Span
	switch placement {
	case domain.PlacementReplace:
		return text[span.Start:span.End] == fragment
	case domain.PlacementInsertAfter:
		return strings.HasPrefix(text[span.End:], fragment)
	case domain.PlacementInsertBefore:
		return strings.HasSuffix(text[:span.Start], fragment)
	case domain.PlacementPrepend:
		return strings.HasPrefix(text, fragment)
	case domain.PlacementAppend:
		return strings.HasSuffix(text, fragment)
	default:
		return false
	}
}

// Settle refines a classification once the fragment is rendered. An
// anchored fragment that already sits in place is already applied. A spec
// without markers whose anchor is gone counts as applied when the text
// holds the fragment, since a rewrite usually consumes its own anchor.
func (m *SignatureMatcher) Settle(
	text string,
	c domain.Classification,
	spec domain.TransformationSpec,
	fragment string,
) domain.Classification {
	switch {
	case m.InPlace(text, c, spec.Placement, fragment):
		settled := domain.AlreadyApplied(c.Pattern)
		settled.Reason = "fragment already in place"
		return settled
	case c.Kind == domain.MatchNotFound && implicitMarker(c, spec) &&
		fragment != "" && strings.Contains(text, fragment):
		settled := domain.AlreadyApplied(domain.Literal(fragment))
		settled.Reason = "rendered fragment already present"
		return settled
	default:
		return c
	}
}

// NeedsFragment reports whether Settle could still change a not-found
// classification, which requires rendering first.
func (m *SignatureMatcher) NeedsFragment(c domain.Classification, spec domain.TransformationSpec) bool {
	return c.Kind == domain.MatchAnchored || implicitMarker(c, spec)
}

// implicitMarker is true when the rendered fragment stands in for the
// missing markers. Ambiguous anchors never qualify.
func implicitMarker(c domain.Classification, spec domain.TransformationSpec) bool {
	return c.Kind == domain.MatchNotFound && len(spec.Markers) == 0 && !c.Ambiguous
}

// Splice returns text with fragment placed at span.
func Splice(text string, span domain.Span, placement domain.Placement, fragment string) string {
	switch placement {
	case domain.PlacementInsertAfter:
		return text[:span.End] + fragment + text[span.End:]
	case domain.PlacementInsertBefore:
		return text[:span.Start] + fragment + text[span.Start:]
	case domain.PlacementReplace:
		return text[:span.Start] + fragment + text[span.End:]
	case domain.PlacementPrepend:
		return fragment + text
	case domain.PlacementAppend:
		return text + fragment
	default:
		return text
	}
}

func (m *SignatureMatcher) contains(text string, p domain.Pattern) (bool, error) {
	if !p.Regex {
		return strings.Contains(text, p.Expr), nil
	}
	re, err := m.compile(p)
	if err != nil {
		return false, err
	}
	return re.MatchString(text), nil
}

// findAll returns the span of every match. For regexes with a capture
// group, the first group's span is used when it participated in the match.
func (m *SignatureMatcher) findAll(text string, p domain.Pattern) ([]domain.Span, error) {
	if !p.Regex {
		if p.Expr == "" {
			return nil, nil
		}
		var spans []domain.Span
		for offset := 0; offset <= len(text); {
			i := strings.Index(text[offset:], p.Expr)
			if i < 0 {
				break
			}
			start := offset + i
			spans = append(spans, domain.Span{Start: start, End: start + len(p.Expr)})
			offset = start + len(p.Expr)
		}
		return spans, nil
	}

	re, err := m.compile(p)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllStringSubmatchIndex(text, -1)
	spans := make([]domain.Span, 0, len(matches))
	for _, idx := range matches {
		if len(idx) >= 4 && idx[2] >= 0 {
			spans = append(spans, domain.Span{Start: idx[2], End: idx[3]})
			continue
		}
		spans = append(spans, domain.Span{Start: idx[0], End: idx[1]})
	}
	return spans, nil
}

func (m *SignatureMatcher) compile(p domain.Pattern) (*regexp.Regexp, error) {
	m.mu.RLock()
	re, ok := m.cache[p]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := p.Compile()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[p] = re
	m.mu.Unlock()
	return re, nil
}
