package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrLocked = errors.New("run lock is held")

// DB is the local run journal. It never stores orders, only run bookkeeping.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

type RunRecord struct {
	ID         int
	RunID      string
	StartedAt  time.Time
	DurationMs int64
	DryRun     bool
	Status     string
	Error      string
	Counts     map[string]int
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL UNIQUE,
  startedAt TEXT NOT NULL,
  durationMs INTEGER NOT NULL,
  dryRun INTEGER NOT NULL,
  status TEXT NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locks (
  name TEXT PRIMARY KEY,
  owner TEXT NOT NULL,
  acquiredAt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// AcquireLock takes the named lock for owner. A lock older than ttl is considered
// abandoned and is taken over.
func (d *DB) AcquireLock(name, owner string, ttl time.Duration) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := d.now().UTC()
	var holder, acquiredAt string
	err = tx.QueryRow(`SELECT owner, acquiredAt FROM locks WHERE name = ?`, name).Scan(&holder, &acquiredAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		since, perr := time.Parse(time.RFC3339Nano, acquiredAt)
		if holder != owner && (perr != nil || now.Sub(since) < ttl) {
			return fmt.Errorf("%w: %s by %s since %s", ErrLocked, name, holder, acquiredAt)
		}
	}

	if _, err := tx.Exec(`
INSERT INTO locks (name, owner, acquiredAt) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET owner = excluded.owner, acquiredAt = excluded.acquiredAt
`, name, owner, now.Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// ReleaseLock drops the lock if owner still holds it.
func (d *DB) ReleaseLock(name, owner string) error {
	_, err := d.conn.Exec(`DELETE FROM locks WHERE name = ? AND owner = ?`, name, owner)
	return err
}

func (d *DB) InsertRun(r RunRecord) error {
	countsJSON, _ := json.Marshal(r.Counts)
	dry := 0
	if r.DryRun {
		dry = 1
	}
	_, err := d.conn.Exec(`
INSERT INTO runs (runId, startedAt, durationMs, dryRun, status, error, countsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.DurationMs, dry, r.Status, r.Error, string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, runId, startedAt, durationMs, dryRun, status, error, countsJson
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt, countsJSON string
		var dry int
		if err := rows.Scan(&r.ID, &r.RunID, &startedAt, &r.DurationMs, &dry, &r.Status, &r.Error, &countsJSON); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.DryRun = dry == 1
		_ = json.Unmarshal([]byte(countsJSON), &r.Counts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
