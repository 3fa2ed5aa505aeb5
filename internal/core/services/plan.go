package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

// Ensure PlanService implements the interface.
var _ driving.PlanService = (*PlanService)(nil)

// PlanService previews a batch without writing, backing up or recording.
type PlanService struct {
	store  driven.ArtifactStore
	engine *PatchEngine
}

// NewPlanService creates a new plan service.
func NewPlanService(store driven.ArtifactStore, engine *PatchEngine) *PlanService {
	return &PlanService{
		store:  store,
		engine: engine,
	}
}

// Plan previews every (artifact, spec) pair. Specs of one artifact are
// chained: each sees the text the previous ones would have produced.
// Render contexts are built from the artifact as it is on disk.
func (s *PlanService) Plan(ctx context.Context, req driving.PlanRequest) ([]driving.Preview, error) {
	if req.Selector == nil {
		return nil, fmt.Errorf("%w: selector is required", domain.ErrInvalidInput)
	}
	for _, spec := range req.Specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}

	keys, err := s.store.List(ctx, req.Selector)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	var previews []driving.Preview
	for _, key := range keys {
		artifact, err := s.store.Read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		text := artifact.Content

		for _, spec := range req.Specs {
			rctx, err := buildContext(ctx, req.Contexts, key)
			if err != nil {
				return nil, fmt.Errorf("build context for %s: %w", key, err)
			}
			preview, err := s.engine.previewText(key, text, spec, rctx)
			if err != nil {
				return nil, fmt.Errorf("preview %s on %s: %w", spec.Name, key, err)
			}
			previews = append(previews, *preview)
			text = preview.After
		}
	}
	return previews, nil
}
