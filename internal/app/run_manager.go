package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
)

const (
	reasonAlreadyProcessed = "already processed"
	reasonDuplicate        = "duplicate"
)

// LinkStore is the persistent link list a run works through
type LinkStore interface {
	Path() string
	Entries() []*domain.LinkEntry
	Mark(entry *domain.LinkEntry, result *domain.RunResult)
	Save(path string) error
}

// RunManager drives one sequential pass over the link list
type RunManager struct {
	downloader domain.Downloader
	history    domain.HistoryRepository // nil when history is disabled
	notifier   *infrastructure.NotificationService
	library    *infrastructure.AudioLibrary
	config     *domain.Config
	logger     *zap.Logger
}

// NewRunManager creates a new run manager
func NewRunManager(
	downloader domain.Downloader,
	history domain.HistoryRepository,
	notifier *infrastructure.NotificationService,
	config *domain.Config,
	logger *zap.Logger,
) *RunManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunManager{
		downloader: downloader,
		history:    history,
		notifier:   notifier,
		library:    infrastructure.NewAudioLibrary(config.Paths.OutputDir, config.Audio.Codec),
		config:     config,
		logger:     logger,
	}
}

// Prepare creates the output directory and verifies the external tools.
// Any error is a ConfigurationError and no download has been attempted.
func (m *RunManager) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(m.config.Paths.OutputDir, 0755); err != nil {
		return domain.NewConfigurationError("output directory", err)
	}
	return m.downloader.Check(ctx)
}

// Run processes every entry of store in file order. Each result is saved
// before the next entry starts. Only a LinkFileError or a failed Prepare
// is returned as an error; per-URL failures are recorded in the summary.
func (m *RunManager) Run(ctx context.Context, store LinkStore) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary()
	m.logBanner(summary.RunID, store.Path())

	if err := m.Prepare(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, entry := range store.Entries() {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		if entry.URL == "" {
			m.logger.Warn("No URL found on line, leaving it untouched",
				zap.Int("line", entry.Line),
				zap.String("text", entry.Raw))
			summary.Invalid++
			continue
		}

		if entry.IsProcessed() {
			m.logger.Debug("Already processed", zap.String("url", entry.URL), zap.String("status", string(entry.Status)))
			seen[entry.URL] = true
			summary.Add(domain.NewSkippedResult(entry.URL, reasonAlreadyProcessed))
			continue
		}

		var result *domain.RunResult
		if seen[entry.URL] {
			m.logger.Info("Duplicate URL in this run, skipping", zap.String("url", entry.URL), zap.Int("line", entry.Line))
			result = domain.NewSkippedResult(entry.URL, reasonDuplicate)
		} else {
			seen[entry.URL] = true
			result = m.process(ctx, entry.URL)
			if result == nil {
				summary.Interrupted = true
				break
			}
		}

		store.Mark(entry, result)
		if err := store.Save(store.Path()); err != nil {
			m.logger.Error("Failed to save link file", zap.String("path", store.Path()), zap.Error(err))
			summary.Add(result)
			m.recordHistory(summary.RunID, result)
			summary.Finish()
			m.complete(summary)
			return summary, err
		}
		summary.Add(result)
		m.recordHistory(summary.RunID, result)
	}

	summary.Finish()
	m.complete(summary)
	return summary, nil
}

// RunSingle processes one URL without touching the link file
func (m *RunManager) RunSingle(ctx context.Context, url string) (*domain.RunResult, *domain.RunSummary, error) {
	summary := domain.NewRunSummary()
	m.logBanner(summary.RunID, "")

	if err := m.Prepare(ctx); err != nil {
		return nil, nil, err
	}

	var result *domain.RunResult
	if !domain.IsHTTPURL(url) {
		m.logger.Warn("Not an http(s) URL", zap.String("url", url))
		result = domain.NewFailedResult(url, &domain.DownloadError{URL: url, Reason: "invalid URL"})
	} else {
		result = m.process(ctx, url)
	}

	if result == nil {
		summary.Interrupted = true
		summary.Finish()
		m.complete(summary)
		return nil, summary, ctx.Err()
	}

	summary.Add(result)
	m.recordHistory(summary.RunID, result)
	summary.Finish()
	m.complete(summary)
	return result, summary, nil
}

// process runs skip checks and the download for one URL.
// It returns nil when the attempt was cut short by ctx.
func (m *RunManager) process(ctx context.Context, url string) *domain.RunResult {
	start := time.Now()

	if m.config.Behavior.SkipExisting {
		if existing, ok := m.findExisting(ctx, url); ok {
			m.logger.Info("File already exists, skipping", zap.String("url", url), zap.String("file", existing))
			result := domain.NewSkippedResult(url, fmt.Sprintf("exists (%s)", filepath.Base(existing)))
			result.OutputPath = existing
			result.Duration = time.Since(start)
			return result
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	m.logger.Info("Downloading", zap.String("url", url))
	req := domain.NewDownloadRequest(url, m.config)
	req.Progress = m.progressLogger(url)

	outcome, err := m.downloader.Download(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			m.logger.Warn("Download interrupted", zap.String("url", url))
			return nil
		}
		result := domain.NewFailedResult(url, err)
		result.Duration = time.Since(start)
		m.logger.Error("Download failed",
			zap.String("url", url),
			zap.String("reason", result.Reason),
			zap.Error(err))
		return result
	}

	result := &domain.RunResult{
		URL:        url,
		Status:     domain.StatusDone,
		Title:      outcome.Title,
		OutputPath: outcome.FilePath,
		Duration:   time.Since(start),
	}
	m.logger.Info("Downloaded",
		zap.String("url", url),
		zap.String("title", result.Title),
		zap.String("file", result.OutputPath),
		zap.Duration("duration", result.Duration))
	return result
}

// findExisting matches the URL itself first and only probes the tool for
// a title when that fails
func (m *RunManager) findExisting(ctx context.Context, url string) (string, bool) {
	if existing, ok := m.library.FindExisting(url, nil); ok {
		return existing, true
	}

	info, err := m.downloader.Probe(ctx, url)
	if err != nil {
		m.logger.Debug("Metadata probe failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	return m.library.FindExisting(url, info)
}

// progressLogger logs download progress at most every
// progress_update_interval percent points
func (m *RunManager) progressLogger(url string) domain.ProgressCallback {
	interval := m.config.Behavior.ProgressUpdateInterval
	last := -1.0
	return func(percent float64) {
		if percent == last {
			return
		}
		if last >= 0 && percent < 100 && percent-last < interval {
			return
		}
		last = percent
		m.logger.Info(fmt.Sprintf("Downloading: %.1f%%", percent), zap.String("url", url))
	}
}

func (m *RunManager) recordHistory(runID string, result *domain.RunResult) {
	if m.history == nil {
		return
	}
	if err := m.history.Record(runID, result); err != nil {
		m.logger.Warn("Failed to record history", zap.String("url", result.URL), zap.Error(err))
	}
}

func (m *RunManager) logBanner(runID, linksFile string) {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.String("output_dir", m.config.Paths.OutputDir),
		zap.String("codec", m.config.Audio.Codec),
		zap.String("quality", m.config.Audio.Quality),
		zap.String("sample_rate", m.config.Audio.SampleRate),
		zap.Bool("skip_existing", m.config.Behavior.SkipExisting),
	}
	if linksFile != "" {
		fields = append(fields, zap.String("links_file", linksFile))
	}
	m.logger.Info("Starting audio download run", fields...)
}

func (m *RunManager) complete(summary *domain.RunSummary) {
	LogSummary(m.logger, summary)
	if m.notifier != nil {
		m.notifier.NotifyRunCompleted(summary)
	}
}
