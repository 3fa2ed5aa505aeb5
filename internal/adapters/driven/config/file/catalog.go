package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogSource = (*CatalogStore)(nil)

// defaultCatalog is written to disk the first time a missing default
// catalog is loaded, so users start from a working example.
const defaultCatalog = `# Transformations applied to every selected artifact, in order.
#
# placement: insert_after | insert_before | replace | prepend | append
# renderer:  template (default) | literal | metadata
#
# Template fields: .Key .Folder .Name .Stem .URL .Metadata .Params

[[transformation]]
name = "chart-metadata"
version = 1
renderer = "metadata"
placement = "insert_after"
markers = [{ pattern = "CHART_METADATA = {" }]
anchors = [{ pattern = "import matplotlib.pyplot as plt" }]
template = """
title: {{ title .Folder }}
url: {{ .URL }}
"""

[[transformation]]
name = "source-url"
version = 1
placement = "insert_before"
markers = [{ pattern = "fig.text(0.95, 0.01" }]
anchors = [{ pattern = '(?m)^[ \t]*plt\.savefig\(', regex = true }]
template = """
fig.text(0.95, 0.01, {{ quote .URL }}, ha='right', va='bottom', fontsize=6, color='gray', url={{ quote .URL }})
"""
`

// CatalogStore loads transformation definitions from a TOML or YAML file.
// The format follows the file extension; .yaml and .yml are YAML,
// everything else is TOML.
//
// A missing file at the default location is created from an embedded
// example on first load. A missing explicit path is an error.
type CatalogStore struct {
	mu       sync.Mutex
	path     string
	explicit bool
	initOnce sync.Once
	initErr  error
}

// NewCatalogStore creates a catalog store for path.
// If path is empty, defaults to ~/.rework/catalog.toml.
//
// The constructor does not perform any I/O.
func NewCatalogStore(path string) (*CatalogStore, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".rework", "catalog.toml")
	}
	return &CatalogStore{path: path, explicit: explicit}, nil
}

// Load reads and parses the catalog.
func (s *CatalogStore) Load(_ context.Context) (domain.Catalog, error) {
	if !s.explicit {
		s.initOnce.Do(s.initialise)
		if s.initErr != nil {
			return domain.Catalog{}, s.initErr
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Catalog{}, fmt.Errorf("%w: catalog %s", domain.ErrNotFound, s.path)
		}
		return domain.Catalog{}, fmt.Errorf("%w: read catalog: %w", domain.ErrIO, err)
	}

	catalog, err := ParseCatalog(s.path, data)
	if err != nil {
		return domain.Catalog{}, err
	}
	return catalog, nil
}

// Path returns the catalog file path.
func (s *CatalogStore) Path() string {
	return s.path
}

// ParseCatalog decodes catalog data, choosing the format from name's
// extension. Unknown fields are rejected so typos surface early.
func ParseCatalog(name string, data []byte) (domain.Catalog, error) {
	var catalog domain.Catalog

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
			return domain.Catalog{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, filepath.Base(name), err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&catalog); err != nil {
			return domain.Catalog{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, filepath.Base(name), err)
		}
	}

	seen := make(map[string]bool, len(catalog.Transformations))
	for i, t := range catalog.Transformations {
		if t.Name == "" {
			return domain.Catalog{}, fmt.Errorf("%w: transformation %d has no name", domain.ErrInvalidInput, i+1)
		}
		if seen[t.Name] {
			return domain.Catalog{}, fmt.Errorf("%w: duplicate transformation %s", domain.ErrInvalidInput, t.Name)
		}
		seen[t.Name] = true
	}
	return catalog, nil
}

// initialise writes the example catalog if none exists yet.
// Called once via sync.Once on first Load().
func (s *CatalogStore) initialise() {
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.initErr = fmt.Errorf("%w: create catalog directory: %w", domain.ErrIO, err)
		return
	}
	if err := os.WriteFile(s.path, []byte(defaultCatalog), 0600); err != nil {
		s.initErr = fmt.Errorf("%w: write default catalog: %w", domain.ErrIO, err)
	}
}
