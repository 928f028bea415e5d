package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.User{}, &db.ActionEvent{}, &db.Match{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestInsertAndCountSince(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionEventRepository(dbase)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base))
	require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base.Add(time.Minute)))
	// different action and different user must not count
	require.NoError(t, repo.Insert(ctx, 1, "send-message", base))
	require.NoError(t, repo.Insert(ctx, 2, "send-whisper", base))

	count, err := repo.CountSince(ctx, 1, "send-whisper", base)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// window start is inclusive
	count, err = repo.CountSince(ctx, 1, "send-whisper", base.Add(time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOldestSince(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionEventRepository(dbase)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest, err := repo.OldestSince(ctx, 1, "send-whisper", base)
	assert.NoError(t, err)
	assert.Nil(t, oldest)

	require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base.Add(2*time.Minute)))
	require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base.Add(time.Minute)))

	oldest, err = repo.OldestSince(ctx, 1, "send-whisper", base)
	assert.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, base.Add(time.Minute).UnixMilli(), oldest.Timestamp.UnixMilli())
}

func TestDeleteOlderThanBatched(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionEventRepository(dbase)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, repo.Insert(ctx, 1, "send-whisper", base.Add(time.Hour)))

	// batch smaller than the expired set: only 2 go
	deleted, err := repo.DeleteOlderThan(ctx, base.Add(10*time.Minute), 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = repo.DeleteOlderThan(ctx, base.Add(10*time.Minute), 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// the young record survives
	count, err := repo.CountSince(ctx, 1, "send-whisper", base)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
