package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (or creates) the history database at dbPath
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record stores one result under runID
func (r *SQLiteHistoryRepository) Record(runID string, result *domain.RunResult) error {
	record := &domain.HistoryRecord{
		ID:         uuid.New().String(),
		RunID:      runID,
		URL:        result.URL,
		Status:     result.Status,
		Title:      result.Title,
		OutputPath: result.OutputPath,
		Reason:     result.Reason,
		DurationMS: result.Duration.Milliseconds(),
	}
	return r.db.Create(record).Error
}

// FindByURL returns every record for url, newest first
func (r *SQLiteHistoryRepository) FindByURL(url string) ([]*domain.HistoryRecord, error) {
	var records []*domain.HistoryRecord
	err := r.db.Where("url = ?", url).
		Order("created_at DESC, rowid DESC").
		Find(&records).Error
	return records, err
}

// Recent returns the newest records, at most limit
func (r *SQLiteHistoryRepository) Recent(limit int) ([]*domain.HistoryRecord, error) {
	var records []*domain.HistoryRecord
	query := r.db.Order("created_at DESC, rowid DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// GetStats returns history statistics
func (r *SQLiteHistoryRepository) GetStats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	if err := r.db.Model(&domain.HistoryRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.LinkStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.HistoryRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusDone:
			stats.Done = sc.Count
		case domain.StatusSkipped:
			stats.Skipped = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	if err := r.db.Model(&domain.HistoryRecord{}).
		Distinct("run_id").
		Count(&stats.Runs).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
