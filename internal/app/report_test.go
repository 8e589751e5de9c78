package app

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

func sampleSummary() *domain.RunSummary {
	summary := domain.NewRunSummary()
	summary.Add(&domain.RunResult{URL: "https://a/1", Status: domain.StatusDone, Title: "One"})
	summary.Add(domain.NewSkippedResult("https://a/2", "duplicate"))
	summary.Add(domain.NewFailedResult("https://a/3", &domain.DownloadError{Reason: "not found (404)"}))
	summary.Invalid = 1
	summary.Finish()
	return summary
}

func TestLogSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	LogSummary(zap.New(core), sampleSummary())

	finished := logs.FilterMessage("Run finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, int64(1), fields["downloaded"])
	assert.Equal(t, int64(1), fields["skipped"])
	assert.Equal(t, int64(1), fields["failed"])
	assert.Equal(t, int64(1), fields["invalid"])
	assert.Equal(t, false, fields["interrupted"])

	failed := logs.FilterMessage("Failed URL").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "https://a/3", failed[0].ContextMap()["url"])
	assert.Equal(t, "not found (404)", failed[0].ContextMap()["reason"])
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleSummary())

	out := buf.String()
	assert.Contains(t, out, "Run complete")
	assert.Contains(t, out, "Downloaded:")
	assert.Contains(t, out, "No URL:")
	assert.Contains(t, out, "https://a/3")
	assert.Contains(t, out, "not found (404)")
}

func TestFormatSummary_Interrupted(t *testing.T) {
	summary := domain.NewRunSummary()
	summary.Interrupted = true
	summary.Add(domain.NewFailedResult("https://a/1", errors.New("boom")))

	out := FormatSummary(summary)
	assert.Contains(t, out, "Run interrupted")
	assert.NotContains(t, out, "No URL:")
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, FormatHistory(nil), "No history recorded")

	out := FormatHistory([]*domain.HistoryRecord{
		{URL: "https://a/1", Status: domain.StatusDone, Title: "One", CreatedAt: time.Now()},
		{URL: "https://a/2", Status: domain.StatusFailed, Reason: "forbidden (403)", CreatedAt: time.Now()},
	})
	assert.Contains(t, out, "One")
	assert.Contains(t, out, "forbidden (403)")
	assert.Contains(t, out, "https://a/2")
}

func TestFormatStats(t *testing.T) {
	out := FormatStats(&domain.HistoryStats{Total: 7, Done: 4, Skipped: 2, Failed: 1, Runs: 3})
	assert.Contains(t, out, "Downloaded")
	assert.Contains(t, out, "7")
}
