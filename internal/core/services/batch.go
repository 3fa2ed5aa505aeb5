package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/logger"
)

// Ensure BatchRunner implements the interface.
var _ driving.BatchRunner = (*BatchRunner)(nil)

// BatchRunner drives the patch engine across the corpus.
type BatchRunner struct {
	store  driven.ArtifactStore
	engine *PatchEngine
	regen  driven.RegenerationGateway
	now    func() time.Time
}

// NewBatchRunner creates a new batch runner.
// The regeneration gateway is optional - if nil, runs only patch text.
func NewBatchRunner(store driven.ArtifactStore, engine *PatchEngine, regen driven.RegenerationGateway) *BatchRunner {
	return &BatchRunner{
		store:  store,
		engine: engine,
		regen:  regen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run applies every spec to every selected artifact. Per-artifact problems
// never stop the batch; only enumeration failure or an invalid request
// returns an error.
func (r *BatchRunner) Run(ctx context.Context, req driving.RunRequest) (*domain.BatchReport, error) {
	if req.Selector == nil {
		return nil, fmt.Errorf("%w: selector is required", domain.ErrInvalidInput)
	}
	if len(req.Specs) == 0 {
		return nil, fmt.Errorf("%w: at least one transformation is required", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(req.Specs))
	for _, spec := range req.Specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate transformation %s", domain.ErrInvalidInput, spec.Name)
		}
		seen[spec.Name] = true
	}

	keys, err := r.store.List(ctx, req.Selector)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	runID := uuid.New().String()
	report := domain.NewBatchReport(runID, r.now())
	engine := r.engine.ForRun(runID)

	logger.Section("Batch " + runID)
	logger.Info("Processing %d artifacts with %d transformations", len(keys), len(req.Specs))

	results := make([]domain.ArtifactReport, len(keys))
	process := func(i int) {
		results[i] = r.processArtifact(ctx, engine, keys[i], req)
		if req.OnArtifact != nil {
			req.OnArtifact(results[i])
		}
	}

	if req.Workers < 2 {
		for i := range keys {
			process(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(req.Workers)
		for i := range keys {
			g.Go(func() error {
				process(i)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	}

	for _, a := range results {
		report.Add(a)
	}
	report.FinishedAt = r.now()

	logger.Info("Batch complete: %d applied, %d already applied, %d anchor not found, %d i/o errors",
		report.Count(domain.StatusApplied), report.Count(domain.StatusAlreadyApplied),
		report.Count(domain.StatusAnchorNotFound), report.Count(domain.StatusIOError))
	return report, nil
}

// processArtifact runs the pipeline for a single artifact, then rebuilds
// its output if anything was applied.
func (r *BatchRunner) processArtifact(
	ctx context.Context,
	engine *PatchEngine,
	key string,
	req driving.RunRequest,
) domain.ArtifactReport {
	result := domain.ArtifactReport{Key: key}

	for _, spec := range req.Specs {
		if err := ctx.Err(); err != nil {
			result.Records = append(result.Records, skipped(key, spec, "cancelled", err, r.now()))
			continue
		}

		rctx, err := buildContext(ctx, req.Contexts, key)
		if err != nil {
			result.Records = append(result.Records, skipped(key, spec, "build context", err, r.now()))
			continue
		}

		rec := engine.Apply(ctx, key, spec, rctx)
		logger.Debug("%s: %s -> %s", key, spec.Name, rec.Status)
		result.Records = append(result.Records, rec)
	}

	if req.Regenerate && r.regen != nil && result.Applied() && ctx.Err() == nil {
		logger.Debug("Regenerating %s", key)
		regen := r.regen.Regenerate(ctx, key)
		result.Regeneration = &regen
		if regen.Status != domain.RegenSuccess {
			logger.Info("Regeneration of %s: %s %s", key, regen.Status, regen.Message)
		}
	}

	return result
}

func buildContext(ctx context.Context, builder driving.ContextBuilder, key string) (domain.RenderContext, error) {
	if builder == nil {
		return KeyContext(key), nil
	}
	return builder.Build(ctx, key)
}

func skipped(key string, spec domain.TransformationSpec, step string, err error, at time.Time) domain.ApplicationRecord {
	return domain.ApplicationRecord{
		ArtifactKey:    key,
		Transformation: spec.Name,
		Status:         domain.StatusIOError,
		Reason:         fmt.Sprintf("%s: %v", step, err),
		Timestamp:      at,
	}
}
