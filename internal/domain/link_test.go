package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantEntry bool
		url       string
		status    LinkStatus
		note      string
	}{
		{name: "blank", raw: "", wantEntry: false},
		{name: "whitespace only", raw: "   \t", wantEntry: false},
		{name: "plain comment", raw: "# my favourite tracks", wantEntry: false},
		{name: "commented out url", raw: "# https://a/1", wantEntry: false},
		{name: "comment mentioning url later", raw: "# see https://a/1 # later", wantEntry: false},
		{name: "plain url", raw: "https://a/1", wantEntry: true, url: "https://a/1", status: StatusPending},
		{name: "indented url", raw: "   https://a/1  ", wantEntry: true, url: "https://a/1", status: StatusPending},
		{name: "url with text", raw: "great set https://a/1 live", wantEntry: true, url: "https://a/1", status: StatusPending},
		{name: "line without url", raw: "not a link", wantEntry: true, url: "", status: StatusPending},
		{
			name: "downloaded", raw: "# https://a/1 # downloaded: Song",
			wantEntry: true, url: "https://a/1", status: StatusDone, note: "downloaded: Song",
		},
		{
			name: "skipped", raw: "# https://a/1 # skipped: exists (Song.mp3)",
			wantEntry: true, url: "https://a/1", status: StatusSkipped, note: "skipped: exists (Song.mp3)",
		},
		{
			name: "failed", raw: "# https://a/1 # failed: not found (404)",
			wantEntry: true, url: "https://a/1", status: StatusFailed, note: "failed: not found (404)",
		},
		{
			name: "legacy title", raw: "# https://a/1 # Some Title",
			wantEntry: true, url: "https://a/1", status: StatusDone, note: "Some Title",
		},
		{
			name: "legacy error", raw: "# https://a/1 # ERROR: DOWNLOAD ERROR",
			wantEntry: true, url: "https://a/1", status: StatusFailed, note: "ERROR: DOWNLOAD ERROR",
		},
		{
			name: "legacy skipped", raw: "# https://a/1 # SKIPPED (exists: Song.mp3)",
			wantEntry: true, url: "https://a/1", status: StatusSkipped, note: "SKIPPED (exists: Song.mp3)",
		},
		{
			name: "url with fragment", raw: "# https://a/1#t=30 # downloaded: Song",
			wantEntry: true, url: "https://a/1#t=30", status: StatusDone, note: "downloaded: Song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ParseLine(7, tt.raw)
			if !tt.wantEntry {
				assert.Nil(t, entry)
				return
			}
			require.NotNil(t, entry)
			assert.Equal(t, 7, entry.Line)
			assert.Equal(t, tt.raw, entry.Raw)
			assert.Equal(t, tt.url, entry.URL)
			assert.Equal(t, tt.status, entry.Status)
			assert.Equal(t, tt.note, entry.Note)
		})
	}
}

func TestLinkEntry_RenderUnchangedKeepsRaw(t *testing.T) {
	raws := []string{
		"https://a/1",
		"  https://a/2 # inline remark",
		"#   https://a/3   #   downloaded: Song",
	}
	for _, raw := range raws {
		entry := ParseLine(1, raw)
		require.NotNil(t, entry)
		assert.Equal(t, raw, entry.Render())
	}
}

func TestLinkEntry_ApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result *RunResult
		status LinkStatus
	}{
		{"done", &RunResult{URL: "https://a/1", Status: StatusDone, Title: "Song"}, StatusDone},
		{"skipped", NewSkippedResult("https://a/1", "exists (Song.mp3)"), StatusSkipped},
		{"failed", NewFailedResult("https://a/1", &DownloadError{URL: "https://a/1", Reason: "forbidden (403)"}), StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ParseLine(1, "https://a/1")
			require.NotNil(t, entry)

			entry.Apply(tt.result)
			rendered := entry.Render()

			reparsed := ParseLine(1, rendered)
			require.NotNil(t, reparsed, "rendered line %q must parse back", rendered)
			assert.Equal(t, "https://a/1", reparsed.URL)
			assert.Equal(t, tt.status, reparsed.Status)
			assert.Equal(t, entry.Note, reparsed.Note)
		})
	}
}

func TestLinkEntry_EligibilityAndProcessed(t *testing.T) {
	pending := ParseLine(1, "https://a/1")
	assert.True(t, pending.IsEligible())
	assert.False(t, pending.IsProcessed())

	done := ParseLine(1, "# https://a/1 # downloaded: Song")
	assert.False(t, done.IsEligible())
	assert.True(t, done.IsProcessed())

	skipped := ParseLine(1, "# https://a/1 # skipped: exists")
	assert.False(t, skipped.IsEligible())

	failed := ParseLine(1, "# https://a/1 # failed: forbidden (403)")
	assert.True(t, failed.IsEligible(), "failed entries are retried on the next run")

	noURL := ParseLine(1, "just words")
	assert.False(t, noURL.IsEligible())
}

func TestAnnotation_SingleLine(t *testing.T) {
	result := NewFailedResult("https://a/1", errors.New("boom\nsecond line\r\nthird"))
	note := result.Annotation()

	assert.Equal(t, "failed: boom second line third", note)
	assert.NotContains(t, note, "\n")
}

func TestAnnotation_TitleFromOutputPath(t *testing.T) {
	result := &RunResult{URL: "https://a/1", Status: StatusDone, OutputPath: "/music/My Song.mp3"}
	assert.Equal(t, "downloaded: My Song", result.Annotation())

	bare := &RunResult{URL: "https://a/1", Status: StatusDone}
	assert.Equal(t, "downloaded", bare.Annotation())
}

func TestExtractURL(t *testing.T) {
	assert.Equal(t, "https://a/1", ExtractURL("https://a/1"))
	assert.Equal(t, "http://a/1", ExtractURL("listen http://a/1 now"))
	assert.Equal(t, "", ExtractURL("ftp://a/1"))
	assert.Equal(t, "", ExtractURL("https://"))
	assert.Equal(t, "", ExtractURL(""))
}
