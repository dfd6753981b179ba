package metrics

import "time"

// OutcomeLabel enumerates version import outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeSkipped  OutcomeLabel = "skipped"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// CloneResultLabel enumerates what a repository sync did.
type CloneResultLabel string

const (
	CloneCloned    CloneResultLabel = "cloned"
	CloneUpdated   CloneResultLabel = "updated"
	CloneUnchanged CloneResultLabel = "unchanged"
	CloneDirty     CloneResultLabel = "dirty"
	CloneFailed    CloneResultLabel = "failed"
)

// Recorder defines observability hooks for imports. Implementations must be
// safe for concurrent use; versions are imported in parallel.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveImportDuration(version string, d time.Duration)
	IncImportOutcome(version string, outcome OutcomeLabel)
	AddDocuments(version string, n int)
	AddPlaceholders(version string, n int)
	ObserveCloneDuration(version string, d time.Duration, result CloneResultLabel)
	SetConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration) {}
func (NoopRecorder) ObserveImportDuration(string, time.Duration) {}
func (NoopRecorder) IncImportOutcome(string, OutcomeLabel) {}
func (NoopRecorder) AddDocuments(string, int) {}
func (NoopRecorder) AddPlaceholders(string, int) {}
func (NoopRecorder) ObserveCloneDuration(string, time.Duration, CloneResultLabel) {}
func (NoopRecorder) SetConcurrency(int) {}
