package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
	"github.com/yourusername/audio-extract-go/pkg/logger"
)

const (
	exitOK       = 0
	exitFatal    = 1
	exitFailures = 2
	exitSignal   = 130
)

var (
	// errEntriesFailed marks a completed run in which some URLs failed
	errEntriesFailed = errors.New("some downloads failed")
	errInterrupted   = errors.New("interrupted")
)

var (
	configPath   string
	linksFile    string
	outputDir    string
	singleURL    string
	skipExisting bool
	printSummary bool

	rootCmd = &cobra.Command{
		Use:   "audiodownloader",
		Short: "Download audio from a list of media URLs",
		Long: `Reads media URLs from a links file (or a single --url), extracts their audio
with yt-dlp and ffmpeg, and annotates each processed line so it is never
downloaded twice.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDownloads,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", app.DefaultConfigFile, "Path to JSON config file")
	rootCmd.Flags().StringVarP(&linksFile, "links", "l", "", "Links file (overrides paths.links_file)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	rootCmd.Flags().StringVarP(&singleURL, "url", "u", "", "Download a single URL and leave the links file alone")
	rootCmd.Flags().BoolVarP(&skipExisting, "skip-existing", "s", false, "Skip URLs whose audio file already exists")
	rootCmd.Flags().BoolVar(&printSummary, "summary", false, "Print a summary table when the run ends")

	rootCmd.AddCommand(historyCmd)
}

func main() {
	os.Exit(execute())
}

func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	code := exitCode(err)
	if code == exitFatal {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case domain.IsFatal(err):
		return exitFatal
	case errors.Is(err, errEntriesFailed):
		return exitFailures
	case errors.Is(err, errInterrupted):
		return exitSignal
	default:
		return exitFatal
	}
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*domain.Config, string, error) {
	explicit := cmd.Flags().Changed("config")
	config, usedFile, err := app.LoadConfig(configPath, explicit)
	if err != nil {
		return nil, "", err
	}

	overrides := domain.Overrides{LinksFile: linksFile, OutputDir: outputDir}
	if cmd.Flags().Changed("skip-existing") {
		overrides.SkipExisting = &skipExisting
	}
	if err := app.ApplyOverrides(config, overrides); err != nil {
		return nil, "", err
	}
	return config, usedFile, nil
}

func newLogger(config *domain.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:        config.Logging.Level,
		ConsoleLevel: config.Logging.ConsoleLevel,
		Format:       config.Logging.Format,
		DateFormat:   config.Logging.DateFormat,
		OutputPath:   config.Paths.LogFile,
	})
}

func runDownloads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	config, usedFile, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if usedFile == "" {
		log.Warn("Config file not found, using defaults", zap.String("path", configPath))
	} else {
		log.Debug("Loaded config", zap.String("path", usedFile))
	}
	if !app.IsKnownFormat(config.Logging.Format) {
		log.Warn("Unknown log format, using console encoding", zap.String("format", config.Logging.Format))
	}

	var history domain.HistoryRepository
	if config.Paths.HistoryDB != "" {
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.Paths.HistoryDB)
		if err != nil {
			log.Warn("Run history disabled", zap.String("path", config.Paths.HistoryDB), zap.Error(err))
		} else {
			defer repo.Close()
			history = repo
		}
	}

	downloader := infrastructure.NewYTDLPDownloader(&config.Tools, config.Behavior.DownloadTimeout, config.Paths.ProcessLog, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	manager := app.NewRunManager(downloader, history, notifier, config, log)

	var summary *domain.RunSummary
	if singleURL != "" {
		_, summary, err = manager.RunSingle(ctx, singleURL)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		store, loadErr := infrastructure.LoadLinkFile(config.Paths.LinksFile)
		if loadErr != nil {
			log.Error("Cannot read links file", zap.String("path", config.Paths.LinksFile), zap.Error(loadErr))
			return loadErr
		}
		summary, err = manager.Run(ctx, store)
	}

	if summary != nil && printSummary {
		app.PrintSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		log.Error("Run aborted", zap.Error(err))
		return err
	}
	if summary.Interrupted {
		log.Warn("Run interrupted")
		return errInterrupted
	}
	if summary.HasFailures() {
		return errEntriesFailed
	}
	return nil
}
