package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

const (
	// DefaultConfigFile is read when no --config flag is given
	DefaultConfigFile = "config.json"
	envPrefix         = "AUDIODL"
)

// LoadConfig loads configuration from file and environment and returns the
// file actually read. A missing file is only an error when explicit is true;
// otherwise usedFile is empty and defaults plus environment apply.
func LoadConfig(configPath string, explicit bool) (config *domain.Config, usedFile string, err error) {
	config = domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, config)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = DefaultConfigFile
	}
	configPath = expandPath(configPath)
	v.SetConfigFile(configPath)

	usedFile = configPath
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, "", domain.NewConfigurationError(configPath, fmt.Errorf("failed to read config file: %w", err))
		}
		usedFile = ""
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, "", domain.NewConfigurationError(configPath, fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if err := finalizeConfig(config); err != nil {
		return nil, "", domain.NewConfigurationError(configPath, fmt.Errorf("invalid configuration: %w", err))
	}

	return config, usedFile, nil
}

// finalizeConfig expands paths and validates; it is rerun after CLI overrides
func finalizeConfig(config *domain.Config) error {
	expandPaths(config)
	config.Logging.DateFormat = GoTimeLayout(config.Logging.DateFormat)
	return validateConfig(config)
}

// ApplyOverrides merges CLI values into config and revalidates it
func ApplyOverrides(config *domain.Config, o domain.Overrides) error {
	config.ApplyOverrides(o)
	if err := finalizeConfig(config); err != nil {
		return domain.NewConfigurationError("command line", err)
	}
	return nil
}

// setDefaults registers every key so environment variables are picked up
// by Unmarshal even when the file does not mention them
func setDefaults(v *viper.Viper, c *domain.Config) {
	v.SetDefault("audio.codec", c.Audio.Codec)
	v.SetDefault("audio.quality", c.Audio.Quality)
	v.SetDefault("audio.sample_rate", c.Audio.SampleRate)

	v.SetDefault("paths.links_file", c.Paths.LinksFile)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("paths.log_file", c.Paths.LogFile)
	v.SetDefault("paths.process_log", c.Paths.ProcessLog)
	v.SetDefault("paths.history_db", c.Paths.HistoryDB)

	v.SetDefault("behavior.skip_existing", c.Behavior.SkipExisting)
	v.SetDefault("behavior.quiet_download", c.Behavior.QuietDownload)
	v.SetDefault("behavior.progress_update_interval", c.Behavior.ProgressUpdateInterval)
	v.SetDefault("behavior.download_timeout", c.Behavior.DownloadTimeout)

	v.SetDefault("tools.ytdlp_binary", c.Tools.YTDLPBinary)
	v.SetDefault("tools.ffmpeg_location", c.Tools.FFmpegLocation)
	v.SetDefault("tools.extra_args", c.Tools.ExtraArgs)

	v.SetDefault("notification.enabled", c.Notification.Enabled)
	v.SetDefault("notification.method", c.Notification.Method)

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.console_level", c.Logging.ConsoleLevel)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.date_format", c.Logging.DateFormat)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) {
	config.Paths.LinksFile = expandPath(config.Paths.LinksFile)
	config.Paths.OutputDir = expandPath(config.Paths.OutputDir)
	config.Paths.LogFile = expandPath(config.Paths.LogFile)
	config.Paths.ProcessLog = expandPath(config.Paths.ProcessLog)
	config.Paths.HistoryDB = expandPath(config.Paths.HistoryDB)
	config.Tools.FFmpegLocation = expandPath(config.Tools.FFmpegLocation)
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	config.Audio.Codec = strings.ToLower(strings.TrimSpace(config.Audio.Codec))
	if !domain.IsSupportedCodec(config.Audio.Codec) {
		return fmt.Errorf("unsupported audio codec %q (supported: %s)",
			config.Audio.Codec, strings.Join(domain.SupportedCodecs, ", "))
	}

	if err := validateQuality(config.Audio.Quality); err != nil {
		return err
	}

	if config.Audio.SampleRate != "" {
		rate, err := strconv.Atoi(config.Audio.SampleRate)
		if err != nil || rate <= 0 {
			return fmt.Errorf("invalid sample rate %q", config.Audio.SampleRate)
		}
	}

	if config.Paths.LinksFile == "" {
		return fmt.Errorf("links file not configured")
	}
	if config.Paths.OutputDir == "" {
		return fmt.Errorf("output directory not configured")
	}

	if config.Tools.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Behavior.ProgressUpdateInterval < 0 {
		return fmt.Errorf("progress update interval cannot be negative")
	}
	if config.Behavior.DownloadTimeout < 0 {
		return fmt.Errorf("download timeout cannot be negative")
	}

	if IsKnownFormat(config.Logging.Format) {
		config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	}

	for _, level := range []*string{&config.Logging.Level, &config.Logging.ConsoleLevel} {
		*level = normalizeLevel(*level)
		if _, err := zapcore.ParseLevel(*level); err != nil {
			return fmt.Errorf("invalid log level %q", *level)
		}
	}

	return nil
}

// normalizeLevel maps level names such as WARNING and CRITICAL onto the
// names zap understands
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "warning":
		return "warn"
	case "critical":
		return "fatal"
	}
	return level
}

// IsKnownFormat reports whether format names an encoder. Anything else,
// such as a printf style pattern, is logged with the console encoder.
func IsKnownFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "json":
		return true
	}
	return false
}

// validateQuality accepts a VBR level 0-10 or a bitrate such as 320 or 320K
func validateQuality(quality string) error {
	q := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(quality)), "K")
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid audio quality %q", quality)
	}
	return nil
}

var strftimeDirectives = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%I", "03",
	"%M", "04",
	"%S", "05",
	"%p", "PM",
	"%b", "Jan",
	"%B", "January",
	"%a", "Mon",
	"%A", "Monday",
	"%z", "-0700",
	"%Z", "MST",
	"%f", "000000",
	"%%", "%",
)

// GoTimeLayout converts a strftime-style date format into a Go time layout.
// Strings without a % directive are returned unchanged.
func GoTimeLayout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return strftimeDirectives.Replace(format)
}
