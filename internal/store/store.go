// Package store persists pipeline audit records and the published-project
// registry in SQLite. One store serves a workspace; the database lives at
// <workspace>/.pagewright/pagewright.db.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"pagewright/internal/logging"
	"pagewright/internal/types"
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// DefaultPath returns the database location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".pagewright", "pagewright.db")
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single connection: modernc sqlite serializes anyway, and this keeps
	// WAL checkpointing predictable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("store ready at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS build_results (
		build_id      TEXT PRIMARY KEY,
		created_at    TIMESTAMP NOT NULL,
		request_text  TEXT NOT NULL,
		slug          TEXT,
		content_type  TEXT,
		pattern       TEXT,
		final_outcome TEXT NOT NULL,
		score         INTEGER,
		persisted     INTEGER NOT NULL DEFAULT 0,
		persist_error TEXT,
		error          TEXT,
		documentation  TEXT,
		stage_statuses TEXT
	);

	CREATE TABLE IF NOT EXISTS build_attempts (
		build_id       TEXT NOT NULL,
		attempt_number INTEGER NOT NULL,
		score          INTEGER NOT NULL,
		issues         TEXT NOT NULL,
		warnings       TEXT NOT NULL,
		PRIMARY KEY (build_id, attempt_number),
		FOREIGN KEY (build_id) REFERENCES build_results(build_id)
	);

	CREATE TABLE IF NOT EXISTS projects (
		slug         TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		icon         TEXT,
		description  TEXT,
		collection   TEXT,
		score        INTEGER,
		published_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_build_results_created ON build_results(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult records a completed pipeline run and its attempts.
func (s *Store) SaveResult(r *types.BuildResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var slug, contentType, pattern string
	if r.Plan != nil {
		slug = r.Plan.Slug
		contentType = string(r.Plan.ContentType)
		pattern = string(r.Plan.InteractionPattern)
	}

	var score sql.NullInt64
	if a := r.FinalAttempt(); a != nil {
		score = sql.NullInt64{Int64: int64(a.Score), Valid: true}
	}

	var docJSON []byte
	if r.Documentation != nil {
		docJSON, err = json.Marshal(r.Documentation)
		if err != nil {
			return fmt.Errorf("failed to marshal documentation: %w", err)
		}
	}

	stagesJSON, err := json.Marshal(r.StageStatuses)
	if err != nil {
		return fmt.Errorf("failed to marshal stage statuses: %w", err)
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO build_results
		(build_id, created_at, request_text, slug, content_type, pattern,
		 final_outcome, score, persisted, persist_error, error, documentation,
		 stage_statuses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.Timestamp.UTC(), r.RequestText, slug, contentType, pattern,
		string(r.FinalOutcome), score, boolToInt(r.Persisted), r.PersistError,
		r.Error, string(docJSON), string(stagesJSON))
	if err != nil {
		return fmt.Errorf("failed to insert build result: %w", err)
	}

	for _, a := range r.Attempts {
		issues, err := json.Marshal(a.Issues)
		if err != nil {
			return fmt.Errorf("failed to marshal issues: %w", err)
		}
		warnings, err := json.Marshal(a.Warnings)
		if err != nil {
			return fmt.Errorf("failed to marshal warnings: %w", err)
		}
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO build_attempts
			(build_id, attempt_number, score, issues, warnings)
			VALUES (?, ?, ?, ?, ?)`,
			r.BuildID, a.AttemptNumber, a.Score, string(issues), string(warnings))
		if err != nil {
			return fmt.Errorf("failed to insert attempt %d: %w", a.AttemptNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build result: %w", err)
	}

	logging.Store("saved build %s outcome=%s attempts=%d", r.BuildID, r.FinalOutcome, len(r.Attempts))
	return nil
}

// HistoryEntry is one row of `pagewright history`.
type HistoryEntry struct {
	BuildID     string
	CreatedAt   time.Time
	RequestText string
	Slug        string
	Outcome     types.Outcome
	Score       int
	Attempts    int
	Persisted   bool
	// Warnings carries the final attempt's surviving warnings so degraded
	// results can explain what is still wrong.
	Warnings []types.Issue
	// StageStatuses is how each stage ended (success, failed or skipped).
	StageStatuses map[types.Stage]types.StageStatus
}

// History returns the most recent build results, newest first.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT r.build_id, r.created_at, r.request_text, COALESCE(r.slug, ''),
		       r.final_outcome, COALESCE(r.score, 0), r.persisted,
		       (SELECT COUNT(*) FROM build_attempts a WHERE a.build_id = r.build_id),
		       COALESCE((SELECT a.warnings FROM build_attempts a
		                 WHERE a.build_id = r.build_id
		                 ORDER BY a.attempt_number DESC LIMIT 1), '[]'),
		       COALESCE(r.stage_statuses, '{}')
		FROM build_results r
		ORDER BY r.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var outcome, warningsJSON, stagesJSON string
		var persisted int
		if err := rows.Scan(&e.BuildID, &e.CreatedAt, &e.RequestText, &e.Slug,
			&outcome, &e.Score, &persisted, &e.Attempts, &warningsJSON, &stagesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Outcome = types.Outcome(outcome)
		e.Persisted = persisted != 0
		if err := json.Unmarshal([]byte(warningsJSON), &e.Warnings); err != nil {
			e.Warnings = nil
		}
		if err := json.Unmarshal([]byte(stagesJSON), &e.StageStatuses); err != nil {
			e.StageStatuses = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentIssueCounts aggregates issue codes across the last n builds'
// attempts. The run manager feeds this into the Architect prompt so
// chronic defects bias future plans away from their causes.
func (s *Store) RecentIssueCounts(lastBuilds int) (map[types.IssueCode]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if lastBuilds <= 0 {
		lastBuilds = 20
	}

	rows, err := s.db.Query(`
		SELECT a.issues, a.warnings
		FROM build_attempts a
		JOIN (SELECT build_id FROM build_results ORDER BY created_at DESC LIMIT ?) r
		  ON a.build_id = r.build_id`, lastBuilds)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent issues: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.IssueCode]int)
	for rows.Next() {
		var issuesJSON, warningsJSON string
		if err := rows.Scan(&issuesJSON, &warningsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		for _, blob := range []string{issuesJSON, warningsJSON} {
			var issues []types.Issue
			if err := json.Unmarshal([]byte(blob), &issues); err != nil {
				continue
			}
			for _, i := range issues {
				counts[i.Code]++
			}
		}
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
