// Package metrics collects counters for one documentation run.
package metrics

import "time"

// SkipReason enumerates why a recipe folder produced no records
type SkipReason string

const (
	SkipNoMetadata SkipReason = "no_metadata"
	SkipParseError SkipReason = "parse_error"
	SkipNoEntries  SkipReason = "no_entries"
)

// Recorder defines observability hooks for a generation run. Implementations
// must be safe for concurrent use by the worker pool.
type Recorder interface {
	IncFolder()
	IncSkipped(reason SkipReason)
	AddRecords(n int)
	IncPage(kind string, written bool)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncFolder()                       {}
func (NoopRecorder) IncSkipped(SkipReason)            {}
func (NoopRecorder) AddRecords(int)                   {}
func (NoopRecorder) IncPage(string, bool)             {}
func (NoopRecorder) ObserveRunDuration(time.Duration) {}
