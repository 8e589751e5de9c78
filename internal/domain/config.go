package domain

import "time"

// Config represents the application configuration
type Config struct {
	Audio        AudioConfig        `mapstructure:"audio"`
	Paths        PathsConfig        `mapstructure:"paths"`
	Behavior     BehaviorConfig     `mapstructure:"behavior"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// AudioConfig contains the target audio format
type AudioConfig struct {
	Codec      string `mapstructure:"codec"`       // mp3, wav, flac, m4a, opus, vorbis, aac, alac
	Quality    string `mapstructure:"quality"`     // bitrate in kbps (e.g. 320) or VBR level 0-10
	SampleRate string `mapstructure:"sample_rate"` // Hz, passed to ffmpeg as -ar
}

// PathsConfig contains file system locations
type PathsConfig struct {
	LinksFile  string `mapstructure:"links_file"`
	OutputDir  string `mapstructure:"output_dir"`
	LogFile    string `mapstructure:"log_file"`
	ProcessLog string `mapstructure:"process_log"` // raw yt-dlp output, empty disables
	HistoryDB  string `mapstructure:"history_db"`  // sqlite run history, empty disables
}

// BehaviorConfig contains run behavior switches
type BehaviorConfig struct {
	SkipExisting           bool          `mapstructure:"skip_existing"`
	QuietDownload          bool          `mapstructure:"quiet_download"`
	ProgressUpdateInterval float64       `mapstructure:"progress_update_interval"` // percent points
	DownloadTimeout        time.Duration `mapstructure:"download_timeout"`
}

// ToolsConfig contains external tool locations
type ToolsConfig struct {
	YTDLPBinary    string   `mapstructure:"ytdlp_binary"`
	FFmpegLocation string   `mapstructure:"ffmpeg_location"`
	ExtraArgs      []string `mapstructure:"extra_args"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level        string `mapstructure:"level"`         // debug, info, warn, error
	ConsoleLevel string `mapstructure:"console_level"` // debug, info, warn, error
	Format       string `mapstructure:"format"`        // json, console
	DateFormat   string `mapstructure:"date_format"`   // Go layout or strftime directives
}

// Overrides holds values given explicitly on the command line.
// Empty strings and nil pointers mean "not given".
type Overrides struct {
	LinksFile    string
	OutputDir    string
	SkipExisting *bool
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Codec:      "mp3",
			Quality:    "320",
			SampleRate: "48000",
		},
		Paths: PathsConfig{
			LinksFile:  "links.txt",
			OutputDir:  "./audiodownloads",
			LogFile:    "audiodownloader.log",
			ProcessLog: "",
			HistoryDB:  "",
		},
		Behavior: BehaviorConfig{
			SkipExisting:           true,
			QuietDownload:          false,
			ProgressUpdateInterval: 1.0,
			DownloadTimeout:        30 * time.Minute,
		},
		Tools: ToolsConfig{
			YTDLPBinary:    "yt-dlp",
			FFmpegLocation: "",
			ExtraArgs:      []string{},
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleLevel: "info",
			Format:       "console",
			DateFormat:   "2006-01-02 15:04:05",
		},
	}
}

// ApplyOverrides merges command-line values into the configuration.
// An override always wins over the file and environment value.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LinksFile != "" {
		c.Paths.LinksFile = o.LinksFile
	}
	if o.OutputDir != "" {
		c.Paths.OutputDir = o.OutputDir
	}
	if o.SkipExisting != nil {
		c.Behavior.SkipExisting = *o.SkipExisting
	}
}

// SupportedCodecs lists the audio formats yt-dlp can extract to
var SupportedCodecs = []string{"mp3", "wav", "flac", "m4a", "opus", "vorbis", "aac", "alac", "best"}

// IsSupportedCodec checks if codec is one of SupportedCodecs
func IsSupportedCodec(codec string) bool {
	for _, c := range SupportedCodecs {
		if c == codec {
			return true
		}
	}
	return false
}
