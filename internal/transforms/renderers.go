package transforms

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/metadata"
)

// Renderer kinds.
const (
	KindTemplate = "template"
	KindLiteral  = "literal"
	KindMetadata = "metadata"
)

// Options configure the built-in renderers.
type Options struct {
	// MetadataBlock names the block written by the metadata renderer.
	MetadataBlock string
}

// RegisterDefaults registers the built-in renderer kinds.
func RegisterDefaults(r *Registry, opts Options) {
	block := opts.MetadataBlock
	if block == "" {
		block = domain.DefaultMetadataBlock
	}
	r.Register(KindTemplate, buildTemplate)
	r.Register(KindLiteral, buildLiteral)
	r.Register(KindMetadata, func(def domain.TransformationDefinition) (domain.Renderer, error) {
		return buildMetadata(block, def)
	})
}

var funcs = template.FuncMap{
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
	"trimSuffix": func(suffix, s string) string { return strings.TrimSuffix(s, suffix) },
	"replace":    func(old, repl, s string) string { return strings.ReplaceAll(s, old, repl) },
	"quote":      strconv.Quote,
	"title": func(s string) string {
		words := strings.Fields(strings.ReplaceAll(s, "_", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	},
}

// templateRenderer executes a text/template over the render context.
// Missing map keys are errors so a missing URL never renders as "<no value>".
type templateRenderer struct {
	tmpl *template.Template
}

func buildTemplate(def domain.TransformationDefinition) (domain.Renderer, error) {
	if def.Template == "" {
		return nil, fmt.Errorf("%w: %s: template is empty", domain.ErrInvalidInput, def.Name)
	}
	tmpl, err := template.New(def.Name).Funcs(funcs).Option("missingkey=error").Parse(def.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, def.Name, err)
	}
	return &templateRenderer{tmpl: tmpl}, nil
}

func (r *templateRenderer) Render(ctx domain.RenderContext) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildLiteral(def domain.TransformationDefinition) (domain.Renderer, error) {
	return domain.StaticFragment(def.Template), nil
}

// metadataRenderer writes a full metadata block. Each template line is
// "key: value-template"; values are rendered like the template kind.
type metadataRenderer struct {
	block  string
	keys   []string
	values []*template.Template
}

func buildMetadata(block string, def domain.TransformationDefinition) (domain.Renderer, error) {
	r := &metadataRenderer{block: block}
	scanner := bufio.NewScanner(strings.NewReader(def.Template))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s: metadata line %q has no ':'", domain.ErrInvalidInput, def.Name, line)
		}
		key = strings.TrimSpace(key)
		tmpl, err := template.New(key).Funcs(funcs).Option("missingkey=error").Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %w", domain.ErrInvalidInput, def.Name, key, err)
		}
		r.keys = append(r.keys, key)
		r.values = append(r.values, tmpl)
	}
	if len(r.keys) == 0 {
		return nil, fmt.Errorf("%w: %s: metadata renderer needs at least one key", domain.ErrInvalidInput, def.Name)
	}
	return r, nil
}

func (r *metadataRenderer) Render(ctx domain.RenderContext) (string, error) {
	pairs := make([]metadata.Pair, len(r.keys))
	for i, key := range r.keys {
		var buf bytes.Buffer
		if err := r.values[i].Execute(&buf, ctx); err != nil {
			return "", err
		}
		pairs[i] = metadata.Pair{Key: key, Value: buf.String()}
	}
	return metadata.Format(r.block, pairs) + "\n", nil
}
