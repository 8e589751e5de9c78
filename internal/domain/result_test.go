package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_Add(t *testing.T) {
	summary := NewRunSummary()

	assert.NotEmpty(t, summary.RunID)
	assert.False(t, summary.StartedAt.IsZero())

	summary.Add(&RunResult{URL: "https://a/1", Status: StatusDone, Title: "One"})
	summary.Add(NewSkippedResult("https://a/2", "exists"))
	summary.Add(NewFailedResult("https://a/3", &DownloadError{Reason: "not found (404)"}))
	summary.Add(NewFailedResult("https://a/4", errors.New("boom")))

	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, []Failure{
		{URL: "https://a/3", Reason: "not found (404)"},
		{URL: "https://a/4", Reason: "boom"},
	}, summary.Failures)
}

func TestRunSummary_Finish(t *testing.T) {
	summary := NewRunSummary()
	assert.False(t, summary.HasFailures())

	summary.Finish()
	assert.False(t, summary.FinishedAt.IsZero())
	assert.GreaterOrEqual(t, summary.Elapsed().Nanoseconds(), int64(0))
}

func TestNewDownloadRequest(t *testing.T) {
	config := DefaultConfig()
	config.Audio.Codec = "wav"
	config.Behavior.QuietDownload = true

	req := NewDownloadRequest("https://a/1", config)

	assert.Equal(t, "https://a/1", req.URL)
	assert.Equal(t, "wav", req.Codec)
	assert.Equal(t, "320", req.Quality)
	assert.Equal(t, "48000", req.SampleRate)
	assert.Equal(t, "./audiodownloads", req.OutputDir)
	assert.True(t, req.Quiet)
}
