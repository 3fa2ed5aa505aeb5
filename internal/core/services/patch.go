package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/logger"
)

// Ensure PatchEngine implements the interface.
var _ driving.PatchEngine = (*PatchEngine)(nil)

// PatchEngine applies one transformation to one artifact:
// check, backup, splice, write.
type PatchEngine struct {
	store   driven.ArtifactStore
	ledger  driven.BackupLedger
	matcher *SignatureMatcher
	now     func() time.Time
	runID   string
}

// NewPatchEngine creates a new patch engine.
func NewPatchEngine(store driven.ArtifactStore, ledger driven.BackupLedger, matcher *SignatureMatcher) *PatchEngine {
	if matcher == nil {
		matcher = NewSignatureMatcher()
	}
	return &PatchEngine{
		store:   store,
		ledger:  ledger,
		matcher: matcher,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ForRun returns a copy of the engine whose ledger entries carry runID.
func (e *PatchEngine) ForRun(runID string) *PatchEngine {
	cp := *e
	cp.runID = runID
	return &cp
}

// SetClock replaces the time source. Used by tests.
func (e *PatchEngine) SetClock(now func() time.Time) {
	e.now = now
}

// Apply runs the full patch sequence for one artifact. The artifact is
// never written unless a backup has been taken and recorded first.
//
//nolint:gocyclo // Sequential pipeline with an early return per outcome
func (e *PatchEngine) Apply(
	ctx context.Context,
	key string,
	spec domain.TransformationSpec,
	rctx domain.RenderContext,
) domain.ApplicationRecord {
	record := domain.ApplicationRecord{
		ArtifactKey:    key,
		Transformation: spec.Name,
		Timestamp:      e.now(),
	}

	// 1. READ
	artifact, err := e.store.Read(ctx, key)
	if err != nil {
		return ioFailure(record, "read", err)
	}

	// 2. CLASSIFY (markers before anything else)
	class := e.matcher.Classify(artifact.Content, spec)
	if class.Kind == domain.MatchAlreadyApplied {
		return alreadyApplied(record, class)
	}
	if !e.matcher.NeedsFragment(class, spec) {
		return anchorNotFound(record, class)
	}

	// 3. RENDER
	fragment, err := render(spec, rctx)
	if err != nil {
		if class.Kind == domain.MatchNotFound {
			return anchorNotFound(record, class)
		}
		return ioFailure(record, "render", err)
	}
	class = e.matcher.Settle(artifact.Content, class, spec, fragment)
	switch class.Kind {
	case domain.MatchAlreadyApplied:
		return alreadyApplied(record, class)
	case domain.MatchNotFound:
		return anchorNotFound(record, class)
	}

	updated := Splice(artifact.Content, class.Span, spec.Placement, fragment)
	if updated == artifact.Content {
		record.Status = domain.StatusAlreadyApplied
		record.Reason = "patch is a no-op"
		return record
	}

	// 4. BACKUP (before any mutation)
	at := e.now()
	location, err := e.store.Backup(ctx, key, spec.BackupTag(), at)
	if err != nil {
		return ioFailure(record, "backup", err)
	}
	entry := domain.BackupEntry{
		ID:             uuid.New().String(),
		ArtifactKey:    key,
		Transformation: spec.Name,
		Version:        spec.Version,
		RunID:          e.runID,
		Timestamp:      at,
		Location:       location,
		ContentHash:    HashContent(artifact.Content),
		Size:           int64(len(artifact.Content)),
	}
	if err := e.ledger.Record(ctx, entry); err != nil {
		return ioFailure(record, "record backup", err)
	}

	// 5. WRITE
	if err := e.store.Write(ctx, key, updated); err != nil {
		record = ioFailure(record, "write", err)
		record.Reason += e.voidEntry(ctx, entry)
		return record
	}

	logger.Debug("Applied %s to %s (backup %s)", spec.Name, key, location)
	record.Status = domain.StatusApplied
	record.BackupRef = &domain.BackupRef{EntryID: entry.ID, Location: location}
	return record
}

// voidEntry appends a ledger entry marking entry as never applied and
// returns a note for the failure reason.
func (e *PatchEngine) voidEntry(ctx context.Context, entry domain.BackupEntry) string {
	void := entry
	void.ID = uuid.New().String()
	void.Timestamp = e.now()
	void.Voids = entry.ID
	if err := e.ledger.Record(context.WithoutCancel(ctx), void); err != nil {
		logger.Warn("Backup entry %s for %s is unapplied but could not be voided: %v", entry.ID, entry.ArtifactKey, err)
		return fmt.Sprintf(" (backup entry %s left unvoided)", entry.ID)
	}
	return fmt.Sprintf(" (backup entry %s voided)", entry.ID)
}

// Preview computes what Apply would do, without side effects.
func (e *PatchEngine) Preview(
	ctx context.Context,
	key string,
	spec domain.TransformationSpec,
	rctx domain.RenderContext,
) (*driving.Preview, error) {
	artifact, err := e.store.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return e.previewText(key, artifact.Content, spec, rctx)
}

func (e *PatchEngine) previewText(
	key string,
	text string,
	spec domain.TransformationSpec,
	rctx domain.RenderContext,
) (*driving.Preview, error) {
	preview := &driving.Preview{
		ArtifactKey:    key,
		Transformation: spec.Name,
		Before:         text,
		After:          text,
	}

	class := e.matcher.Classify(text, spec)
	preview.Classification = class
	if class.Kind == domain.MatchAlreadyApplied || !e.matcher.NeedsFragment(class, spec) {
		return preview, nil
	}

	fragment, err := render(spec, rctx)
	if err != nil {
		if class.Kind == domain.MatchNotFound {
			return preview, nil
		}
		return nil, fmt.Errorf("render %s: %w", spec.Name, err)
	}
	class = e.matcher.Settle(text, class, spec, fragment)
	preview.Classification = class
	if class.Kind != domain.MatchAnchored {
		return preview, nil
	}

	preview.After = Splice(text, class.Span, spec.Placement, fragment)
	preview.Patch = TextPatch(preview.Before, preview.After)
	return preview, nil
}

// HashContent returns the hex sha256 of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// TextPatch returns a textual patch turning before into after.
func TextPatch(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	patches := dmp.PatchMake(before, diffs)
	return dmp.PatchToText(patches)
}

func render(spec domain.TransformationSpec, rctx domain.RenderContext) (fragment string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panicked: %v", r)
		}
	}()
	return spec.Renderer.Render(rctx.Clone())
}

func alreadyApplied(record domain.ApplicationRecord, class domain.Classification) domain.ApplicationRecord {
	record.Status = domain.StatusAlreadyApplied
	record.Reason = class.Reason
	if record.Reason == "" {
		record.Reason = fmt.Sprintf("marker %s present", class.Pattern)
	}
	return record
}

func anchorNotFound(record domain.ApplicationRecord, class domain.Classification) domain.ApplicationRecord {
	record.Status = domain.StatusAnchorNotFound
	record.Reason = class.Reason
	return record
}

func ioFailure(record domain.ApplicationRecord, step string, err error) domain.ApplicationRecord {
	logger.Debug("%s %s on %s failed: %v", record.Transformation, step, record.ArtifactKey, err)
	record.Status = domain.StatusIOError
	record.Reason = fmt.Sprintf("%s: %v", step, err)
	record.BackupRef = nil
	return record
}
