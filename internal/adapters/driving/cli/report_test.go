package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/core/services"
)

func TestRenderReport(t *testing.T) {
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	r := domain.NewBatchReport("run-1", start)
	r.Add(domain.ArtifactReport{
		Key: "01_intro/chart.py",
		Records: []domain.ApplicationRecord{
			{ArtifactKey: "01_intro/chart.py", Transformation: "logo", Status: domain.StatusApplied},
		},
		Regeneration: &domain.RegenerationResult{Status: domain.RegenWarning, Message: "Warning: font"},
	})
	r.Add(domain.ArtifactReport{
		Key: "02_results/chart.py",
		Records: []domain.ApplicationRecord{
			{ArtifactKey: "02_results/chart.py", Transformation: "logo", Status: domain.StatusIOError, Reason: "write: disk full"},
		},
	})
	r.FinishedAt = start.Add(1500 * time.Millisecond)

	var buf bytes.Buffer
	renderReport(&buf, styles.Plain(), r)
	out := buf.String()

	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "2 artifacts in 1.5s")
	assert.Regexp(t, `(?m)^applied\s+1\s*$`, out)
	assert.Regexp(t, `(?m)^io_error\s+1\s*$`, out)
	assert.Regexp(t, `(?m)^regen warning\s+1\s*$`, out)
	assert.Regexp(t, `(?m)^  applied\s+01_intro/chart.py \(regen warning\)$`, out)
	assert.Regexp(t, `(?m)^  io_error\s+02_results/chart.py$`, out)
	assert.Contains(t, out, "io_error 02_results/chart.py [logo]: write: disk full")
	assert.Contains(t, out, "regeneration_warning 01_intro/chart.py: Warning: font")
}

func TestRenderArtifact(t *testing.T) {
	var buf bytes.Buffer
	renderArtifact(&buf, styles.Plain(), domain.ArtifactReport{
		Key:          "01_intro/chart.py",
		Records:      []domain.ApplicationRecord{{Status: domain.StatusApplied}},
		Regeneration: &domain.RegenerationResult{Status: domain.RegenSuccess},
	})

	assert.Regexp(t, `^applied\s+01_intro/chart.py \(regen success\)\n$`, buf.String())
}

func TestPatchLines(t *testing.T) {
	patch := services.TextPatch("a\nX\nb\n", "a\nX\nMARKER 100%\nsecond\nb\n")

	lines := patchLines(patch)

	assert.Contains(t, lines, "+MARKER 100%")
	assert.Contains(t, lines, "+second")
	assert.Contains(t, lines, " X")
}

func TestRenderPreviews_Summary(t *testing.T) {
	previews := []driving.Preview{
		{ArtifactKey: "a", Transformation: "t", Classification: domain.Classification{Kind: domain.MatchAlreadyApplied}},
		{ArtifactKey: "b", Transformation: "t", Classification: domain.NotFound("anchor not found: X")},
	}

	var buf bytes.Buffer
	renderPreviews(&buf, styles.Plain(), previews, true)

	assert.Contains(t, buf.String(), "b [t]: anchor not found: X")
	assert.Contains(t, buf.String(), "0 would apply, 1 already applied, 1 anchor not found")
}
