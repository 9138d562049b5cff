package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLockLifecycle(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AcquireLock("ledger", "run-a", time.Hour))
	// re-entrant for the same owner
	require.NoError(t, db.AcquireLock("ledger", "run-a", time.Hour))

	err := db.AcquireLock("ledger", "run-b", time.Hour)
	assert.ErrorIs(t, err, ErrLocked)

	// a stranger cannot release someone else's lock
	require.NoError(t, db.ReleaseLock("ledger", "run-b"))
	assert.ErrorIs(t, db.AcquireLock("ledger", "run-b", time.Hour), ErrLocked)

	require.NoError(t, db.ReleaseLock("ledger", "run-a"))
	require.NoError(t, db.AcquireLock("ledger", "run-b", time.Hour))
}

func TestLockExpires(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }
	require.NoError(t, db.AcquireLock("ledger", "crashed", 30*time.Minute))

	db.now = func() time.Time { return base.Add(10 * time.Minute) }
	assert.ErrorIs(t, db.AcquireLock("ledger", "next", 30*time.Minute), ErrLocked)

	db.now = func() time.Time { return base.Add(31 * time.Minute) }
	assert.NoError(t, db.AcquireLock("ledger", "next", 30*time.Minute))
}

func TestRunJournal(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertRun(RunRecord{RunID: "r1", StartedAt: started, DurationMs: 1200, Status: "ok", Counts: map[string]int{"appended": 3}}))
	require.NoError(t, db.InsertRun(RunRecord{RunID: "r2", StartedAt: started.Add(time.Hour), DryRun: true, Status: "failed", Error: "boom"}))

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, 3, runs[1].Counts["appended"])
	assert.True(t, runs[1].StartedAt.Equal(started))
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetadata("sync.last_success")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.SetMetadata("sync.last_success", "2024-05-01T10:00:00Z"))
	require.NoError(t, db.SetMetadata("sync.last_success", "2024-05-02T10:00:00Z"))
	v, err = db.GetMetadata("sync.last_success")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "2024-05-02T10:00:00Z", *v)
}
