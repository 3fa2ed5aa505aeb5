package domain

import "time"

// RegenerationStatus classifies a rebuild of an artifact's derived output.
type RegenerationStatus string

// Regeneration outcomes.
const (
	// RegenSuccess means the build exited cleanly and produced its output.
	RegenSuccess RegenerationStatus = "success"

	// RegenWarning means the output exists but diagnostics were printed.
	RegenWarning RegenerationStatus = "warning"

	// RegenFailure covers non-zero exit, timeout and missing output.
	RegenFailure RegenerationStatus = "failure"

	// RegenSkipped means no rebuild was attempted.
	RegenSkipped RegenerationStatus = "skipped"
)

// String returns the string representation.
func (s RegenerationStatus) String() string {
	return string(s)
}

// RegenerationResult describes one external build invocation.
type RegenerationResult struct {
	Status  RegenerationStatus
	Message string

	// OutputPath is the expected derived output, if one was configured.
	OutputPath string

	Duration time.Duration

	// ExitCode is -1 when the process never exited on its own.
	ExitCode int
	TimedOut bool
}

// FailureKind names the taxonomy bucket of a reported failure.
type FailureKind string

// Failure kinds surfaced in reports.
const (
	FailureAnchorNotFound      FailureKind = "anchor_not_found"
	FailureIO                  FailureKind = "io_error"
	FailureRegenerationWarning FailureKind = "regeneration_warning"
	FailureRegenerationFailure FailureKind = "regeneration_failure"
)

// Failure is one problem surfaced at the end of a run.
type Failure struct {
	ArtifactKey string

	// Transformation is empty for regeneration problems.
	Transformation string

	Kind   FailureKind
	Reason string
}

// ArtifactReport is the final state of one artifact after a run.
type ArtifactReport struct {
	Key     string
	Records []ApplicationRecord

	// Regeneration is nil when no rebuild was attempted.
	Regeneration *RegenerationResult
}

// Applied returns true if at least one record has StatusApplied.
func (a ArtifactReport) Applied() bool {
	for _, r := range a.Records {
		if r.Status == StatusApplied {
			return true
		}
	}
	return false
}

// FinalStatus summarises the artifact with the most significant outcome.
// Failures outrank applied, which outranks already_applied.
func (a ArtifactReport) FinalStatus() ApplicationStatus {
	final := StatusAlreadyApplied
	rank := map[ApplicationStatus]int{
		StatusAlreadyApplied: 0,
		StatusApplied:        1,
		StatusAnchorNotFound: 2,
		StatusIOError:        3,
	}
	for _, r := range a.Records {
		if rank[r.Status] > rank[final] {
			final = r.Status
		}
	}
	return final
}

// BatchReport aggregates every record of one run.
type BatchReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Artifacts are kept in enumeration order.
	Artifacts []ArtifactReport

	Counts      map[ApplicationStatus]int
	RegenCounts map[RegenerationStatus]int
	Failures    []Failure
}

// NewBatchReport creates an empty report for a run.
func NewBatchReport(runID string, started time.Time) *BatchReport {
	return &BatchReport{
		RunID:       runID,
		StartedAt:   started,
		Counts:      make(map[ApplicationStatus]int),
		RegenCounts: make(map[RegenerationStatus]int),
	}
}

// Add appends an artifact report and folds its outcomes into the totals.
func (r *BatchReport) Add(a ArtifactReport) {
	r.Artifacts = append(r.Artifacts, a)
	for _, rec := range a.Records {
		r.Counts[rec.Status]++
		switch rec.Status {
		case StatusAnchorNotFound:
			r.Failures = append(r.Failures, Failure{
				ArtifactKey: rec.ArtifactKey, Transformation: rec.Transformation,
				Kind: FailureAnchorNotFound, Reason: rec.Reason,
			})
		case StatusIOError:
			r.Failures = append(r.Failures, Failure{
				ArtifactKey: rec.ArtifactKey, Transformation: rec.Transformation,
				Kind: FailureIO, Reason: rec.Reason,
			})
		}
	}
	if a.Regeneration == nil {
		return
	}
	r.RegenCounts[a.Regeneration.Status]++
	switch a.Regeneration.Status {
	case RegenWarning:
		r.Failures = append(r.Failures, Failure{
			ArtifactKey: a.Key, Kind: FailureRegenerationWarning, Reason: a.Regeneration.Message,
		})
	case RegenFailure:
		r.Failures = append(r.Failures, Failure{
			ArtifactKey: a.Key, Kind: FailureRegenerationFailure, Reason: a.Regeneration.Message,
		})
	}
}

// Count returns the number of records with the given status.
func (r *BatchReport) Count(status ApplicationStatus) int {
	return r.Counts[status]
}

// HasFailures reports problems that should fail a run.
// Anchor misses count only when strict is set; regeneration warnings
// count only when warningsFatal is set.
func (r *BatchReport) HasFailures(strict, warningsFatal bool) bool {
	for _, f := range r.Failures {
		switch f.Kind {
		case FailureIO, FailureRegenerationFailure:
			return true
		case FailureAnchorNotFound:
			if strict {
				return true
			}
		case FailureRegenerationWarning:
			if warningsFatal {
				return true
			}
		}
	}
	return false
}

// Artifact returns the report for a key.
func (r *BatchReport) Artifact(key string) (ArtifactReport, bool) {
	for _, a := range r.Artifacts {
		if a.Key == key {
			return a, true
		}
	}
	return ArtifactReport{}, false
}
