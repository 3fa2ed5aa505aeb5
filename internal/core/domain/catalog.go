package domain

// PatternDefinition is the serialisable form of a Pattern.
type PatternDefinition struct {
	Pattern string `toml:"pattern" yaml:"pattern"`
	Regex   bool   `toml:"regex" yaml:"regex"`
}

// TransformationDefinition is the serialisable form of a TransformationSpec,
// as read from a catalog file. The renderer is resolved by name.
type TransformationDefinition struct {
	Name      string              `toml:"name" yaml:"name"`
	Version   int                 `toml:"version" yaml:"version"`
	Tag       string              `toml:"tag" yaml:"tag"`
	Markers   []PatternDefinition `toml:"markers" yaml:"markers"`
	Anchors   []PatternDefinition `toml:"anchors" yaml:"anchors"`
	Placement string              `toml:"placement" yaml:"placement"`

	// Renderer names a registered renderer kind. Empty means "template".
	Renderer string `toml:"renderer" yaml:"renderer"`

	// Template is the renderer input: a text/template body or literal text.
	Template string `toml:"template" yaml:"template"`
}

// Catalog is an ordered list of transformation definitions.
// Order is the pipeline order applied to every artifact.
type Catalog struct {
	Transformations []TransformationDefinition `toml:"transformation" yaml:"transformations"`
}

// Names returns the transformation names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Transformations))
	for _, t := range c.Transformations {
		names = append(names, t.Name)
	}
	return names
}

// Select returns the definitions named, in catalog order.
// An empty names list selects everything. Unknown names are an error.
func (c Catalog) Select(names []string) ([]TransformationDefinition, error) {
	if len(names) == 0 {
		return c.Transformations, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []TransformationDefinition
	for _, t := range c.Transformations {
		if want[t.Name] {
			out = append(out, t)
			delete(want, t.Name)
		}
	}
	for n := range want {
		return nil, &catalogError{name: n}
	}
	return out, nil
}

type catalogError struct {
	name string
}

func (e *catalogError) Error() string {
	return ErrNotFound.Error() + ": transformation " + e.name
}

func (e *catalogError) Unwrap() error {
	return ErrNotFound
}
