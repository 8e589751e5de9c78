package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded download history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if config.Paths.HistoryDB == "" {
			return domain.NewConfigurationError("paths.history_db", errors.New("run history is disabled"))
		}

		repo, err := infrastructure.NewSQLiteHistoryRepository(config.Paths.HistoryDB)
		if err != nil {
			return err
		}
		defer repo.Close()

		out := cmd.OutOrStdout()
		stats, _ := cmd.Flags().GetBool("stats")
		url, _ := cmd.Flags().GetString("url")
		limit, _ := cmd.Flags().GetInt("limit")

		switch {
		case stats:
			s, err := repo.GetStats()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, app.FormatStats(s))
		case url != "":
			records, err := repo.FindByURL(url)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, app.FormatHistory(records))
		default:
			records, err := repo.Recent(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, app.FormatHistory(records))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of records to show")
	historyCmd.Flags().String("url", "", "Show every record for this URL")
	historyCmd.Flags().Bool("stats", false, "Show totals instead of records")
}
