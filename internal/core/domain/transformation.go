package domain

import (
	"fmt"
	"maps"
	"regexp"
)

// Pattern is a literal substring or a regular expression over artifact text.
type Pattern struct {
	// Expr is the substring or RE2 expression.
	Expr string

	// Regex marks Expr as a regular expression.
	Regex bool
}

// Literal returns a substring pattern.
func Literal(expr string) Pattern {
	return Pattern{Expr: expr}
}

// Regexp returns a regular expression pattern.
func Regexp(expr string) Pattern {
	return Pattern{Expr: expr, Regex: true}
}

// Compile returns the compiled expression for regex patterns.
// Literal patterns are compiled as quoted expressions so callers can
// treat both kinds uniformly.
func (p Pattern) Compile() (*regexp.Regexp, error) {
	if p.Regex {
		return regexp.Compile(p.Expr)
	}
	return regexp.Compile(regexp.QuoteMeta(p.Expr))
}

// String returns a printable form of the pattern.
func (p Pattern) String() string {
	if p.Regex {
		return "/" + p.Expr + "/"
	}
	return fmt.Sprintf("%q", p.Expr)
}

// Placement defines how a rendered fragment is spliced into an artifact.
type Placement string

// Available placements.
const (
	// PlacementInsertAfter inserts the fragment at the end of the anchor span.
	PlacementInsertAfter Placement = "insert_after"

	// PlacementInsertBefore inserts the fragment at the start of the anchor span.
	PlacementInsertBefore Placement = "insert_before"

	// PlacementReplace replaces the anchor span with the fragment.
	PlacementReplace Placement = "replace"

	// PlacementPrepend places the fragment at the start of the artifact.
	PlacementPrepend Placement = "prepend"

	// PlacementAppend places the fragment at the end of the artifact.
	PlacementAppend Placement = "append"
)

// IsValid returns true if the placement is recognised.
func (p Placement) IsValid() bool {
	switch p {
	case PlacementInsertAfter, PlacementInsertBefore, PlacementReplace,
		PlacementPrepend, PlacementAppend:
		return true
	default:
		return false
	}
}

// NeedsAnchor returns true if the placement locates its position with anchors.
func (p Placement) NeedsAnchor() bool {
	return p != PlacementPrepend && p != PlacementAppend
}

// String returns the string representation.
func (p Placement) String() string {
	return string(p)
}

// RenderContext carries the per-artifact parameters a renderer may use.
// It is passed by value; maps must be treated as read-only.
type RenderContext struct {
	// Key is the artifact key.
	Key string

	// Folder is the artifact's parent folder name.
	Folder string

	// Name is the artifact's file name.
	Name string

	// Stem is the file name without extension.
	Stem string

	// URL is the stable identifying URL for the artifact.
	URL string

	// Metadata holds key/value pairs read from the artifact's metadata block.
	Metadata map[string]string

	// Params holds caller-supplied static parameters.
	Params map[string]string
}

// Clone returns a deep copy so renderers cannot alter the caller's maps.
func (c RenderContext) Clone() RenderContext {
	out := c
	out.Metadata = maps.Clone(c.Metadata)
	out.Params = maps.Clone(c.Params)
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if out.Params == nil {
		out.Params = map[string]string{}
	}
	return out
}

// Renderer produces the fragment for a transformation.
// Implementations must be deterministic: the same context always yields
// the same fragment.
type Renderer interface {
	Render(ctx RenderContext) (string, error)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(ctx RenderContext) (string, error)

// Render calls f(ctx).
func (f RenderFunc) Render(ctx RenderContext) (string, error) {
	return f(ctx)
}

// StaticFragment returns a renderer that always yields text.
func StaticFragment(text string) Renderer {
	return RenderFunc(func(RenderContext) (string, error) {
		return text, nil
	})
}

// TransformationSpec is an immutable, named and versioned unit of change.
type TransformationSpec struct {
	// Name is the unique identifier.
	Name string

	// Version distinguishes revisions of the same transformation.
	Version int

	// Tag is the short label embedded in backup names. Defaults to Name.
	Tag string

	// Markers prove the transformation was already applied. Any match counts.
	Markers []Pattern

	// Anchors locate the insertion point or region, tried in order.
	Anchors []Pattern

	// Placement controls how the fragment is spliced.
	Placement Placement

	// Renderer produces the fragment.
	Renderer Renderer
}

// BackupTag returns the tag used in backup file names.
func (s TransformationSpec) BackupTag() string {
	if s.Tag != "" {
		return s.Tag
	}
	return s.Name
}

// Validate checks the spec is usable before a batch starts.
func (s TransformationSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: transformation name is required", ErrInvalidInput)
	}
	if !s.Placement.IsValid() {
		return fmt.Errorf("%w: %s: placement %q", ErrUnsupportedType, s.Name, s.Placement)
	}
	if s.Renderer == nil {
		return fmt.Errorf("%w: %s: renderer is required", ErrInvalidInput, s.Name)
	}
	if len(s.Markers) == 0 && s.Placement != PlacementReplace {
		return fmt.Errorf("%w: %s: at least one marker is required", ErrInvalidInput, s.Name)
	}
	if s.Placement.NeedsAnchor() && len(s.Anchors) == 0 {
		return fmt.Errorf("%w: %s: placement %s requires an anchor", ErrInvalidInput, s.Name, s.Placement)
	}
	for _, p := range append(append([]Pattern{}, s.Markers...), s.Anchors...) {
		if p.Expr == "" {
			return fmt.Errorf("%w: %s: empty pattern", ErrInvalidInput, s.Name)
		}
		if _, err := p.Compile(); err != nil {
			return fmt.Errorf("%w: %s: pattern %s: %w", ErrInvalidInput, s.Name, p, err)
		}
	}
	return nil
}
