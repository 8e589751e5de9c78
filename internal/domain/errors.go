package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDownload      = errors.New("download error")
	ErrConversion    = errors.New("conversion error")
	ErrLinkFile      = errors.New("link file error")
)

// ConfigurationError is fatal: the run is aborted before any download
type ConfigurationError struct {
	Source string // config file, links file, tool name, setting
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NewConfigurationError wraps err as a ConfigurationError
func NewConfigurationError(source string, err error) *ConfigurationError {
	return &ConfigurationError{Source: source, Err: err}
}

// DownloadError means the external tool failed to fetch or extract a URL
type DownloadError struct {
	URL      string
	Reason   string
	ExitCode int
	Output   string // tail of the captured tool output
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: %s", e.URL, e.Reason)
}

func (e *DownloadError) Unwrap() error { return e.Err }

func (e *DownloadError) Is(target error) bool { return target == ErrDownload }

// ConversionError means the transcoding step failed
type ConversionError struct {
	URL      string
	Reason   string
	ExitCode int
	Output   string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed for %s: %s", e.URL, e.Reason)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// LinkFileError means the link file could not be rewritten.
// The previous file content is left in place.
type LinkFileError struct {
	Path string
	Op   string
	Err  error
}

func (e *LinkFileError) Error() string {
	return fmt.Sprintf("link file %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *LinkFileError) Unwrap() error { return e.Err }

func (e *LinkFileError) Is(target error) bool { return target == ErrLinkFile }

// FailureReason returns the short reason used in annotations and reports
func FailureReason(err error) string {
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.Reason
	}
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return "conversion: " + convErr.Reason
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// IsFatal reports whether err must abort the whole run
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrLinkFile)
}
