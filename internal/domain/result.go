package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunResult represents the outcome of one download attempt
type RunResult struct {
	URL        string
	Status     LinkStatus
	Title      string
	OutputPath string // empty on failure
	Reason     string // short text for the annotation (skip or failure reason)
	Err        error
	Duration   time.Duration
}

// NewSkippedResult creates a result for an entry that was not attempted
func NewSkippedResult(url, reason string) *RunResult {
	return &RunResult{URL: url, Status: StatusSkipped, Reason: reason}
}

// NewFailedResult creates a result for a failed attempt
func NewFailedResult(url string, err error) *RunResult {
	return &RunResult{URL: url, Status: StatusFailed, Reason: FailureReason(err), Err: err}
}

// Annotation returns the note written after the URL in the link file
func (r *RunResult) Annotation() string {
	switch r.Status {
	case StatusDone:
		title := r.Title
		if title == "" && r.OutputPath != "" {
			base := filepath.Base(r.OutputPath)
			title = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if title == "" {
			return NoteDownloaded
		}
		return sanitizeNote(NoteDownloaded + ": " + title)
	case StatusSkipped:
		return sanitizeNote(NoteSkipped + ": " + r.Reason)
	case StatusFailed:
		return sanitizeNote(NoteFailed + ": " + r.Reason)
	default:
		return ""
	}
}

// Failure records a failed URL for the end-of-run report
type Failure struct {
	URL    string
	Reason string
}

// RunSummary aggregates the results of one run
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Processed   int // entries considered (attempted or skipped)
	Attempted   int // external tool invocations
	Succeeded   int
	Skipped     int
	Failed      int
	Invalid     int // lines without a URL
	Interrupted bool
	Failures    []Failure
}

// NewRunSummary creates a summary for a run starting now
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Add folds a result into the counters
func (s *RunSummary) Add(result *RunResult) {
	s.Processed++
	switch result.Status {
	case StatusDone:
		s.Attempted++
		s.Succeeded++
	case StatusFailed:
		s.Attempted++
		s.Failed++
		s.Failures = append(s.Failures, Failure{URL: result.URL, Reason: result.Reason})
	case StatusSkipped:
		s.Skipped++
	}
}

// Finish stamps the end of the run
func (s *RunSummary) Finish() {
	s.FinishedAt = time.Now()
}

// Elapsed returns the run duration
func (s *RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// HasFailures reports whether any entry failed
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0
}
