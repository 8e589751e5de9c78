package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultDateFormat is used when Config.DateFormat is empty
const DefaultDateFormat = "2006-01-02 15:04:05"

// Config represents logger configuration
type Config struct {
	Level        string    // file level: debug, info, warn, error
	ConsoleLevel string    // console level: debug, info, warn, error
	Format       string    // file encoding: json, anything else is console
	DateFormat   string    // Go time layout for file timestamps
	OutputPath   string    // log file, empty disables the file core
	Console      io.Writer // defaults to stderr; nil-safe
}

// New creates a logger that tees a timestamped file core with a
// message-only console core. Each core has its own level.
func New(config Config) (*zap.Logger, error) {
	var cores []zapcore.Core

	if config.OutputPath != "" {
		fileCore, err := newFileCore(config)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCore)
	}

	console := config.Console
	if console == nil {
		console = os.Stderr
	}
	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
	})
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(console), parseLevel(config.ConsoleLevel)))

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func newFileCore(config Config) (zapcore.Core, error) {
	if dir := filepath.Dir(config.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(config.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	dateFormat := config.DateFormat
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(dateFormat)
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.CallerKey = ""
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(dateFormat)
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.ConsoleSeparator = " - "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(file), parseLevel(config.Level)), nil
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

