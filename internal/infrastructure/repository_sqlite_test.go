package infrastructure

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history", "test.db")
	repo, err := NewSQLiteHistoryRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRecord_FindByURL(t *testing.T) {
	repo := setupTestRepo(t)

	result := &domain.RunResult{
		URL:        "https://a/1",
		Status:     domain.StatusDone,
		Title:      "One",
		OutputPath: "/music/One.mp3",
		Duration:   1500 * time.Millisecond,
	}
	require.NoError(t, repo.Record("run-1", result))

	records, err := repo.FindByURL("https://a/1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, domain.StatusDone, records[0].Status)
	assert.Equal(t, "One", records[0].Title)
	assert.Equal(t, "/music/One.mp3", records[0].OutputPath)
	assert.Equal(t, int64(1500), records[0].DurationMS)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestFindByURL_ReturnsEmptyWhenNoMatch(t *testing.T) {
	repo := setupTestRepo(t)

	records, err := repo.FindByURL("https://a/none")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindByURL_NewestFirst(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Record("run-1", domain.NewFailedResult("https://a/1", &domain.DownloadError{Reason: "forbidden (403)"})))
	require.NoError(t, repo.Record("run-2", &domain.RunResult{URL: "https://a/1", Status: domain.StatusDone, Title: "One"}))

	records, err := repo.FindByURL("https://a/1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, "run-1", records[1].RunID)
	assert.Equal(t, "forbidden (403)", records[1].Reason)
}

func TestRecent_Limit(t *testing.T) {
	repo := setupTestRepo(t)

	for _, url := range []string{"https://a/1", "https://a/2", "https://a/3"} {
		require.NoError(t, repo.Record("run-1", domain.NewSkippedResult(url, "duplicate")))
	}

	records, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://a/3", records[0].URL)

	all, err := repo.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetStats(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Record("run-1", &domain.RunResult{URL: "https://a/1", Status: domain.StatusDone}))
	require.NoError(t, repo.Record("run-1", domain.NewFailedResult("https://a/2", errors.New("boom"))))
	require.NoError(t, repo.Record("run-2", domain.NewSkippedResult("https://a/1", "already processed")))
	require.NoError(t, repo.Record("run-2", &domain.RunResult{URL: "https://a/2", Status: domain.StatusDone}))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Done)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.Runs)
}
