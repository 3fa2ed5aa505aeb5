package services

import (
	"time"

	"github.com/custodia-labs/rework/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rework/internal/core/domain"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// markerSpec inserts "\nMARKER" after the literal anchor X.
func markerSpec() domain.TransformationSpec {
	return domain.TransformationSpec{
		Name:      "add-marker",
		Version:   1,
		Markers:   []domain.Pattern{domain.Literal("MARKER")},
		Anchors:   []domain.Pattern{domain.Literal("X")},
		Placement: domain.PlacementInsertAfter,
		Renderer:  domain.StaticFragment("\nMARKER"),
	}
}

func newTestEngine() (*PatchEngine, *memory.ArtifactStore, *memory.BackupLedger) {
	store := memory.NewArtifactStore()
	ledger := memory.NewBackupLedger()
	engine := NewPatchEngine(store, ledger, NewSignatureMatcher())
	engine.SetClock(func() time.Time { return fixedTime })
	return engine, store, ledger
}
