package services

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/metadata"
)

// Ensure ContextBuilder implements the interface.
var _ driving.ContextBuilder = (*ContextBuilder)(nil)

// ContextBuilder derives render contexts from artifact keys and the
// artifact's own metadata block.
type ContextBuilder struct {
	store    driven.ArtifactStore
	settings domain.ContextSettings
}

// NewContextBuilder creates a new context builder.
func NewContextBuilder(store driven.ArtifactStore, settings domain.ContextSettings) *ContextBuilder {
	return &ContextBuilder{
		store:    store,
		settings: settings,
	}
}

// Build returns the render context for key. The URL comes from the
// metadata block's "url" entry when present, otherwise from the URL base
// joined with the artifact's folder.
func (b *ContextBuilder) Build(ctx context.Context, key string) (domain.RenderContext, error) {
	rctx := KeyContext(key)

	artifact, err := b.store.Read(ctx, key)
	if err != nil {
		return rctx, fmt.Errorf("read %s: %w", key, err)
	}

	rctx.Metadata = metadata.Extract(artifact.Content, b.settings.MetadataBlock)
	rctx.Params = maps.Clone(b.settings.Params)
	if rctx.Params == nil {
		rctx.Params = map[string]string{}
	}

	switch {
	case rctx.Metadata["url"] != "":
		rctx.URL = rctx.Metadata["url"]
	case b.settings.URLBase != "":
		rctx.URL = JoinURL(b.settings.URLBase, rctx.Folder)
	}
	return rctx, nil
}

// KeyContext returns a context holding only fields derived from the key.
func KeyContext(key string) domain.RenderContext {
	return domain.RenderContext{
		Key:      key,
		Folder:   domain.KeyFolder(key),
		Name:     domain.KeyName(key),
		Stem:     domain.KeyStem(key),
		Metadata: map[string]string{},
		Params:   map[string]string{},
	}
}

// JoinURL appends a folder to a base URL, keeping a trailing slash when
// the base had one.
func JoinURL(base, folder string) string {
	if folder == "" {
		return base
	}
	trailing := strings.HasSuffix(base, "/")
	url := strings.TrimSuffix(base, "/") + "/" + folder
	if trailing {
		url += "/"
	}
	return url
}
