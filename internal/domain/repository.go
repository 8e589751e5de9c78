package domain

import "time"

// HistoryRecord is one persisted RunResult
type HistoryRecord struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	RunID      string     `json:"run_id" gorm:"not null;index"`
	URL        string     `json:"url" gorm:"not null;index"`
	Status     LinkStatus `json:"status" gorm:"not null;index"`
	Title      string     `json:"title,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (HistoryRecord) TableName() string {
	return "run_history"
}

// HistoryStats represents history statistics
type HistoryStats struct {
	Total   int64 `json:"total"`
	Done    int64 `json:"done"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
	Runs    int64 `json:"runs"`
}

// HistoryRepository defines the interface for run history persistence.
// History is an audit trail only; skip decisions never consult it.
type HistoryRepository interface {
	// Record stores the result of one entry for a run
	Record(runID string, result *RunResult) error

	// FindByURL returns the records for a URL, newest first
	FindByURL(url string) ([]*HistoryRecord, error)

	// Recent returns the newest records up to limit
	Recent(limit int) ([]*HistoryRecord, error)

	// GetStats returns history statistics
	GetStats() (*HistoryStats, error)
}
