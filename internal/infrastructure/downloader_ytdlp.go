package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

const (
	formatSelector = "bestaudio/best"
	outputTemplate = "%(title)s.%(ext)s"
	outputTailSize = 20
	maxReasonLen   = 120

	// waitDelay bounds how long Wait blocks on output pipes held open by
	// children of a killed or exited yt-dlp (ffmpeg, for one)
	waitDelay = 5 * time.Second
)

var (
	progressPattern    = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)
	destinationPattern = regexp.MustCompile(`^\[ExtractAudio\] Destination: (.+)$`)
	notConvertPattern  = regexp.MustCompile(`^\[ExtractAudio\] Not converting audio (.+?); file is already in target format`)
	extractorPrefix    = regexp.MustCompile(`^\[[^\]]+\] [^:]+: `)
)

// YTDLPDownloader implements Downloader by running yt-dlp as a subprocess
type YTDLPDownloader struct {
	config     *domain.ToolsConfig
	timeout    time.Duration
	waitDelay  time.Duration
	processLog string // raw tool output is appended here when set
	logger     *zap.Logger
}

// NewYTDLPDownloader creates a new yt-dlp downloader
func NewYTDLPDownloader(config *domain.ToolsConfig, timeout time.Duration, processLog string, logger *zap.Logger) *YTDLPDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPDownloader{
		config:     config,
		timeout:    timeout,
		waitDelay:  waitDelay,
		processLog: processLog,
		logger:     logger,
	}
}

// Check verifies yt-dlp and ffmpeg are available
func (d *YTDLPDownloader) Check(ctx context.Context) error {
	binary, err := exec.LookPath(d.config.YTDLPBinary)
	if err != nil {
		return domain.NewConfigurationError(d.config.YTDLPBinary, err)
	}

	out, err := d.command(ctx, binary, "--version").Output()
	if err != nil {
		return domain.NewConfigurationError(d.config.YTDLPBinary, fmt.Errorf("version check failed: %w", err))
	}
	d.logger.Info("yt-dlp available",
		zap.String("binary", binary),
		zap.String("version", strings.TrimSpace(string(out))))

	if d.config.FFmpegLocation != "" {
		if _, err := os.Stat(d.config.FFmpegLocation); err != nil {
			return domain.NewConfigurationError("ffmpeg", err)
		}
		return nil
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return domain.NewConfigurationError("ffmpeg", err)
	}
	return nil
}

// command builds an exec.Cmd that is killed with ctx and does not wait
// forever on output pipes after the process is gone
func (d *YTDLPDownloader) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = d.waitDelay
	return cmd
}

// Probe fetches metadata for url without downloading it
func (d *YTDLPDownloader) Probe(ctx context.Context, url string) (*domain.MediaInfo, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	args := []string{"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings"}
	args = append(args, d.config.ExtraArgs...)
	args = append(args, url)

	var stdout, stderr bytes.Buffer
	cmd := d.command(ctx, d.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyFailure(url, exitCode(err), splitLines(stderr.String()), err)
	}

	data := stdout.Bytes()
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid metadata JSON for %s", url)
	}
	result := gjson.ParseBytes(data)

	return &domain.MediaInfo{
		ID:    result.Get("id").String(),
		Title: result.Get("title").String(),
	}, nil
}

// Download fetches and transcodes the audio for one URL
func (d *YTDLPDownloader) Download(ctx context.Context, req *domain.DownloadRequest) (*domain.DownloadOutcome, error) {
	if !domain.IsHTTPURL(req.URL) {
		return nil, &domain.DownloadError{URL: req.URL, Reason: "invalid URL"}
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	args := d.BuildArgs(req)
	cmdLine := ShellEscapeCommand(d.config.YTDLPBinary, args...)
	d.logger.Debug("Running yt-dlp", zap.String("url", req.URL), zap.String("command", cmdLine))

	out := newOutputCollector(req.Progress, req.Quiet)

	if d.processLog != "" {
		logFile, err := d.openProcessLog()
		if err != nil {
			d.logger.Warn("Failed to open process log", zap.String("path", d.processLog), zap.Error(err))
		} else {
			defer logFile.Close()
			writeLogHeader(logFile, req.URL, cmdLine)
			out.mirror = logFile
		}
	}

	cmd := d.command(ctx, d.config.YTDLPBinary, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	out.Flush()
	if errors.Is(err, exec.ErrWaitDelay) {
		d.logger.Debug("yt-dlp exited with its output still open", zap.String("url", req.URL))
		err = nil
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", d.timeout, ctx.Err())
		}
		failure := classifyFailure(req.URL, exitCode(err), out.Tail(), err)
		if out.mirror != nil {
			writeLogFooter(out.mirror, false, failure.Error())
		}
		return nil, failure
	}

	outcome := &domain.DownloadOutcome{FilePath: out.filePath}
	if outcome.FilePath != "" {
		base := filepath.Base(outcome.FilePath)
		outcome.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if out.mirror != nil {
		writeLogFooter(out.mirror, true, fmt.Sprintf("Downloaded: %s", outcome.FilePath))
	}
	return outcome, nil
}

// BuildArgs returns the yt-dlp arguments for req
func (d *YTDLPDownloader) BuildArgs(req *domain.DownloadRequest) []string {
	// exec.Command passes args directly to the process, no shell quoting needed
	args := []string{
		"-f", formatSelector,
		"-o", filepath.Join(req.OutputDir, outputTemplate),
		"--no-playlist",
		"-x",
		"--audio-format", req.Codec,
		"--audio-quality", req.Quality,
	}

	if req.SampleRate != "" {
		args = append(args, "--postprocessor-args", "ExtractAudio:-ar "+req.SampleRate)
	}
	if d.config.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", d.config.FFmpegLocation)
	}

	if req.Quiet {
		args = append(args, "--quiet", "--no-warnings", "--print", "after_move:filepath")
	} else {
		args = append(args, "--newline", "--progress")
	}

	args = append(args, d.config.ExtraArgs...)
	args = append(args, req.URL)
	return args
}

func (d *YTDLPDownloader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// openProcessLog opens the raw output log in append mode
func (d *YTDLPDownloader) openProcessLog() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(d.processLog), 0755); err != nil {
		return nil, fmt.Errorf("failed to create process log directory: %w", err)
	}
	return os.OpenFile(d.processLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// writeLogHeader writes the download start marker
func writeLogHeader(w io.Writer, url, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Download: %s ===\n", timestamp, url)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

// writeLogFooter writes the download end marker
func writeLogFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(w, "=== END ===\n\n")
}

// outputCollector receives combined stdout/stderr of yt-dlp line by line.
// exec serializes writes when Stdout and Stderr are the same writer.
type outputCollector struct {
	partial  []byte
	tail     []string
	filePath string
	quiet    bool
	progress domain.ProgressCallback
	mirror   io.Writer
}

func newOutputCollector(progress domain.ProgressCallback, quiet bool) *outputCollector {
	return &outputCollector{progress: progress, quiet: quiet}
}

func (c *outputCollector) Write(p []byte) (int, error) {
	if c.mirror != nil {
		c.mirror.Write(p)
	}
	c.partial = append(c.partial, p...)
	for {
		i := bytes.IndexAny(c.partial, "\r\n")
		if i < 0 {
			break
		}
		c.handleLine(string(c.partial[:i]))
		c.partial = c.partial[i+1:]
	}
	return len(p), nil
}

// Flush handles a trailing line without newline
func (c *outputCollector) Flush() {
	if len(c.partial) > 0 {
		c.handleLine(string(c.partial))
		c.partial = nil
	}
}

// Tail returns the last lines of output
func (c *outputCollector) Tail() []string {
	return c.tail
}

func (c *outputCollector) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if m := progressPattern.FindStringSubmatch(line); m != nil {
		if c.progress != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				c.progress(pct)
			}
		}
		return
	}

	c.tail = append(c.tail, line)
	if len(c.tail) > outputTailSize {
		c.tail = c.tail[len(c.tail)-outputTailSize:]
	}

	switch {
	case destinationPattern.MatchString(line):
		c.filePath = destinationPattern.FindStringSubmatch(line)[1]
	case notConvertPattern.MatchString(line):
		c.filePath = notConvertPattern.FindStringSubmatch(line)[1]
	case c.quiet && !strings.HasPrefix(line, "[") &&
		!strings.HasPrefix(line, "ERROR:") && !strings.HasPrefix(line, "WARNING:"):
		// --print after_move:filepath
		c.filePath = line
	}
}

// classifyFailure turns a failed invocation into a DownloadError or ConversionError
func classifyFailure(url string, code int, lines []string, runErr error) error {
	output := strings.Join(lines, "\n")

	var errorLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, "ERROR:") {
			errorLines = append(errorLines, line)
		}
	}

	for _, line := range errorLines {
		if isConversionFailure(line) {
			return &domain.ConversionError{
				URL:      url,
				Reason:   shortReason(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")), "Postprocessing: ")),
				ExitCode: code,
				Output:   output,
				Err:      runErr,
			}
		}
	}

	return &domain.DownloadError{
		URL:      url,
		Reason:   downloadReason(errorLines, code, runErr),
		ExitCode: code,
		Output:   output,
		Err:      runErr,
	}
}

func isConversionFailure(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "postprocessing") ||
		strings.Contains(lower, "ffmpeg not found") ||
		strings.Contains(lower, "ffprobe not found") ||
		strings.Contains(lower, "ffprobe and ffmpeg not found") ||
		strings.Contains(lower, "audio conversion failed")
}

func downloadReason(errorLines []string, code int, runErr error) string {
	joined := strings.Join(errorLines, "\n")
	switch {
	case strings.Contains(joined, "HTTP Error 404"):
		return "not found (404)"
	case strings.Contains(joined, "HTTP Error 403"):
		return "forbidden (403)"
	case strings.Contains(joined, "Unsupported URL"):
		return "unsupported URL"
	}

	if len(errorLines) > 0 {
		msg := strings.TrimSpace(strings.TrimPrefix(errorLines[0], "ERROR:"))
		return shortReason(extractorPrefix.ReplaceAllString(msg, ""))
	}
	if errors.Is(runErr, context.DeadlineExceeded) {
		return shortReason(runErr.Error())
	}
	if errors.Is(runErr, exec.ErrNotFound) {
		return "yt-dlp not found"
	}
	if code > 0 {
		return fmt.Sprintf("yt-dlp exited with status %d", code)
	}
	if runErr != nil {
		return shortReason(runErr.Error())
	}
	return "unknown error"
}

func shortReason(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > maxReasonLen {
		return string(runes[:maxReasonLen-3]) + "..."
	}
	return s
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
