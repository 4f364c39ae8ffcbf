// Package history keeps a SQLite journal of push and pull runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/roadmap/internal/sqlutil"
)

// Directory and file name of the journal, next to the store file.
const (
	DirName  = ".roadmap"
	FileName = "history.db"
)

// CurrentVersion is the journal schema version.
const CurrentVersion = 1

// Direction of a sync run.
const (
	DirectionPush = "push"
	DirectionPull = "pull"
)

// Run is one recorded push or pull.
type Run struct {
	ID        int64         `json:"id"`
	Direction string        `json:"direction"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Store     string        `json:"store"`
	Board     string        `json:"board"`
	DryRun    bool          `json:"dry_run,omitempty"`

	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Imported  int `json:"imported"`
	Failed    int `json:"failed"`
	Warnings  int `json:"warnings"`

	Items []RunItem `json:"items,omitempty"`
}

// RunItem is the outcome for one item within a run.
type RunItem struct {
	Label    string `json:"label"`
	Action   string `json:"action"`
	RemoteID string `json:"remote_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// Journal is the SQLite database handle.
type Journal struct {
	db *sql.DB
}

// PathFor returns the journal path for a store file.
func PathFor(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), DirName, FileName)
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(true); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// OpenInMemory opens a private in-memory journal (for testing).
func OpenInMemory() (*Journal, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.initialize(false); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initialize(wal bool) error {
	if wal {
		if _, err := j.db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
			return fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	schema := `
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			direction TEXT NOT NULL,     -- 'push' or 'pull'
			started_at INTEGER NOT NULL, -- Unix milliseconds
			duration_ms INTEGER NOT NULL,
			store TEXT NOT NULL,
			board TEXT NOT NULL,
			dry_run INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			unchanged INTEGER NOT NULL DEFAULT 0,
			imported INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			warnings INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS run_items (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			action TEXT NOT NULL,
			remote_id TEXT,
			detail TEXT,
			failed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
		CREATE INDEX IF NOT EXISTS idx_run_items_label ON run_items(label);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}

	_, err := j.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentVersion))
	if err != nil {
		return fmt.Errorf("failed to set history version: %w", err)
	}
	return nil
}

// Record stores a run and its items in one transaction and returns the
// new run id.
func (j *Journal) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (direction, started_at, duration_ms, store, board, dry_run,
			created, updated, unchanged, imported, failed, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Direction, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.Store, run.Board,
		boolInt(run.DryRun), run.Created, run.Updated, run.Unchanged, run.Imported, run.Failed, run.Warnings)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, item := range run.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_items (run_id, position, label, action, remote_id, detail, failed)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, item.Label, item.Action, nullable(item.RemoteID), nullable(item.Detail), boolInt(item.Failed))
		if err != nil {
			return 0, fmt.Errorf("insert run item %q: %w", item.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, each with its items.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, direction, started_at, duration_ms, store, board, dry_run,
			created, updated, unchanged, imported, failed, warnings
		FROM runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var r Run
		var started, durationMS int64
		var dryRun int
		if err := rows.Scan(&r.ID, &r.Direction, &started, &durationMS, &r.Store, &r.Board, &dryRun,
			&r.Created, &r.Updated, &r.Unchanged, &r.Imported, &r.Failed, &r.Warnings); err != nil {
			rows.Close()
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.DryRun = dryRun != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Items are loaded after the run cursor is closed; the in-memory
	// journal has a single connection.
	for i := range runs {
		items, err := j.items(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Items = items
	}
	return runs, nil
}

func (j *Journal) items(ctx context.Context, runID int64) ([]RunItem, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT label, action, COALESCE(remote_id, ''), COALESCE(detail, ''), failed
		FROM run_items
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (RunItem, error) {
		var it RunItem
		var failed int
		err := rows.Scan(&it.Label, &it.Action, &it.RemoteID, &it.Detail, &failed)
		it.Failed = failed != 0
		return it, err
	})
}

// LastTouched returns the most recent remote id recorded for each label,
// limited to labels in the given set (all labels when empty).
func (j *Journal) LastTouched(ctx context.Context, labels ...string) (map[string]string, error) {
	query := `
		SELECT ri.label, ri.remote_id
		FROM run_items ri
		JOIN runs r ON r.id = ri.run_id
		WHERE ri.remote_id IS NOT NULL AND r.dry_run = 0`
	var args []any
	if len(labels) > 0 {
		var placeholders string
		placeholders, args = sqlutil.InClauseArgs(labels)
		query += ` AND ri.label IN (` + placeholders + `)`
	}
	query += ` ORDER BY r.id ASC, ri.position ASC`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query remote ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var label, id string
		if err := rows.Scan(&label, &id); err != nil {
			return nil, err
		}
		out[label] = id
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
