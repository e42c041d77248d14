package persist

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/newsgraph/querycore/pkg/querycore/spell/querylog"
)

// HistoryStore persists the raw-query/result-count observations consumed
// by the query-log spell corrector, backed by a pure-Go SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if necessary) a SQLite-backed history store
// at path, with WAL mode enabled for concurrent readers.
func OpenHistory(ctx context.Context, path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open history db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: enable WAL: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS query_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_query TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	observed_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: init schema: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database connection.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Record appends one observation to the history.
func (h *HistoryStore) Record(ctx context.Context, rawQuery string, resultCount int) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO query_log (raw_query, result_count) VALUES (?, ?)`,
		rawQuery, resultCount)
	if err != nil {
		return fmt.Errorf("persist: record query log entry: %w", err)
	}
	return nil
}

// Recent returns the most recent limit observations, oldest first, in the
// shape the query-log corrector expects.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]querylog.LoggedQuery, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT raw_query, result_count FROM query_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("persist: query history: %w", err)
	}
	defer rows.Close()

	var reversed []querylog.LoggedQuery
	for rows.Next() {
		var entry querylog.LoggedQuery
		if err := rows.Scan(&entry.RawQuery, &entry.ResultCount); err != nil {
			return nil, fmt.Errorf("persist: scan history row: %w", err)
		}
		reversed = append(reversed, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: iterate history: %w", err)
	}

	out := make([]querylog.LoggedQuery, len(reversed))
	for i, entry := range reversed {
		out[len(out)-1-i] = entry
	}
	return out, nil
}
