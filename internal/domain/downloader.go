package domain

import "context"

// Downloader defines the boundary to the external download/transcode tool
type Downloader interface {
	// Check verifies the external tools are available
	Check(ctx context.Context) error

	// Probe fetches metadata for a URL without downloading
	Probe(ctx context.Context, url string) (*MediaInfo, error)

	// Download fetches and transcodes the audio of a single URL
	Download(ctx context.Context, req *DownloadRequest) (*DownloadOutcome, error)
}

// DownloadRequest is the parameter set for one invocation
type DownloadRequest struct {
	URL        string
	OutputDir  string
	Codec      string
	Quality    string
	SampleRate string
	Quiet      bool
	Progress   ProgressCallback
}

// NewDownloadRequest builds a request for url from the configuration
func NewDownloadRequest(url string, config *Config) *DownloadRequest {
	return &DownloadRequest{
		URL:        url,
		OutputDir:  config.Paths.OutputDir,
		Codec:      config.Audio.Codec,
		Quality:    config.Audio.Quality,
		SampleRate: config.Audio.SampleRate,
		Quiet:      config.Behavior.QuietDownload,
	}
}

// DownloadOutcome describes a successful invocation
type DownloadOutcome struct {
	FilePath string
	Title    string
}

// MediaInfo is the subset of extractor metadata the run needs
type MediaInfo struct {
	ID    string
	Title string
}

// ProgressCallback receives download progress in percent (0-100)
type ProgressCallback func(percent float64)
