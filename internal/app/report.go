package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // blue
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
)

// LogSummary writes the end-of-run summary to the log
func LogSummary(logger *zap.Logger, summary *domain.RunSummary) {
	logger.Info("Run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("processed", summary.Processed),
		zap.Int("downloaded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("invalid", summary.Invalid),
		zap.Bool("interrupted", summary.Interrupted),
		zap.Duration("elapsed", summary.Elapsed().Round(time.Millisecond)))

	for _, f := range summary.Failures {
		logger.Warn("Failed URL", zap.String("url", f.URL), zap.String("reason", f.Reason))
	}
}

// FormatSummary renders the summary for the terminal
func FormatSummary(summary *domain.RunSummary) string {
	var b strings.Builder

	title := "Run complete"
	if summary.Interrupted {
		title = "Run interrupted"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString(detailStyle.Render(fmt.Sprintf(" (%s)", summary.Elapsed().Round(time.Second))))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s %d\n", successStyle.Render("Downloaded:"), summary.Succeeded)
	fmt.Fprintf(&b, "  %s %d\n", skippedStyle.Render("Skipped:   "), summary.Skipped)
	fmt.Fprintf(&b, "  %s %d\n", errorStyle.Render("Failed:    "), summary.Failed)
	if summary.Invalid > 0 {
		fmt.Fprintf(&b, "  %s %d\n", warningStyle.Render("No URL:    "), summary.Invalid)
	}

	if len(summary.Failures) > 0 {
		t := newTable("URL", "Reason")
		for _, f := range summary.Failures {
			t.Row(f.URL, f.Reason)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return b.String()
}

// PrintSummary writes FormatSummary to w
func PrintSummary(w io.Writer, summary *domain.RunSummary) {
	fmt.Fprint(w, FormatSummary(summary))
}

// FormatHistory renders history records as a table
func FormatHistory(records []*domain.HistoryRecord) string {
	if len(records) == 0 {
		return detailStyle.Render("No history recorded")
	}
	t := newTable("When", "Status", "URL", "Detail")
	for _, r := range records {
		detail := r.Title
		if r.Status != domain.StatusDone {
			detail = r.Reason
		}
		t.Row(r.CreatedAt.Local().Format("2006-01-02 15:04"), string(r.Status), r.URL, detail)
	}
	return t.String()
}

// FormatStats renders history statistics
func FormatStats(stats *domain.HistoryStats) string {
	t := newTable("Runs", "Total", "Downloaded", "Skipped", "Failed")
	t.Row(
		strconv.FormatInt(stats.Runs, 10),
		strconv.FormatInt(stats.Total, 10),
		strconv.FormatInt(stats.Done, 10),
		strconv.FormatInt(stats.Skipped, 10),
		strconv.FormatInt(stats.Failed, 10),
	)
	return t.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
