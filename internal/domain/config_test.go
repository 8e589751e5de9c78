package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "mp3", config.Audio.Codec)
	assert.Equal(t, "320", config.Audio.Quality)
	assert.Equal(t, "48000", config.Audio.SampleRate)
	assert.Equal(t, "links.txt", config.Paths.LinksFile)
	assert.Equal(t, "./audiodownloads", config.Paths.OutputDir)
	assert.Equal(t, "audiodownloader.log", config.Paths.LogFile)
	assert.Empty(t, config.Paths.HistoryDB)
	assert.True(t, config.Behavior.SkipExisting)
	assert.False(t, config.Behavior.QuietDownload)
	assert.Equal(t, 1.0, config.Behavior.ProgressUpdateInterval)
	assert.Equal(t, 30*time.Minute, config.Behavior.DownloadTimeout)
	assert.Equal(t, "yt-dlp", config.Tools.YTDLPBinary)
	assert.False(t, config.Notification.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "info", config.Logging.ConsoleLevel)
}

func TestApplyOverrides(t *testing.T) {
	config := DefaultConfig()
	skip := false

	config.ApplyOverrides(Overrides{
		LinksFile:    "other.txt",
		OutputDir:    "/music",
		SkipExisting: &skip,
	})

	assert.Equal(t, "other.txt", config.Paths.LinksFile)
	assert.Equal(t, "/music", config.Paths.OutputDir)
	assert.False(t, config.Behavior.SkipExisting)
}

func TestApplyOverrides_EmptyKeepsValues(t *testing.T) {
	config := DefaultConfig()
	config.Paths.LinksFile = "from-file.txt"

	config.ApplyOverrides(Overrides{})

	assert.Equal(t, "from-file.txt", config.Paths.LinksFile)
	assert.Equal(t, "./audiodownloads", config.Paths.OutputDir)
	assert.True(t, config.Behavior.SkipExisting)
}

func TestIsSupportedCodec(t *testing.T) {
	assert.True(t, IsSupportedCodec("mp3"))
	assert.True(t, IsSupportedCodec("wav"))
	assert.True(t, IsSupportedCodec("flac"))
	assert.False(t, IsSupportedCodec("mp4"))
	assert.False(t, IsSupportedCodec(""))
}
