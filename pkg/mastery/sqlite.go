package mastery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ritzau/roadmap-graph/pkg/roadmap"

	_ "modernc.org/sqlite"
)

// schemaSQL holds one row per tracked entity; a reset is stored as an
// explicit available row so it also overrides a mastered status authored in
// the definition file.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS mastery (
    roadmap TEXT NOT NULL,
    entity TEXT NOT NULL,
    status TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (roadmap, entity)
);
`

// SQLiteTracker persists mastery state in a SQLite database
type SQLiteTracker struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens or creates the tracker database at path
func OpenSQLite(path string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mastery db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteTracker{db: db, dbPath: path}, nil
}

// Path returns the database file path
func (s *SQLiteTracker) Path() string {
	return s.dbPath
}

func (s *SQLiteTracker) States(ctx context.Context, slug string) (map[string]roadmap.Status, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT entity, status FROM mastery WHERE roadmap = ?", slug)
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	defer rows.Close()

	states := make(map[string]roadmap.Status)
	for rows.Next() {
		var entity, status string
		if err := rows.Scan(&entity, &status); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		states[entity] = roadmap.Status(status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery: %w", err)
	}
	return states, nil
}

func (s *SQLiteTracker) Master(ctx context.Context, slug, entityID string) error {
	return s.upsert(ctx, slug, entityID, roadmap.StatusMastered)
}

func (s *SQLiteTracker) Reset(ctx context.Context, slug, entityID string) error {
	return s.upsert(ctx, slug, entityID, roadmap.StatusAvailable)
}

func (s *SQLiteTracker) upsert(ctx context.Context, slug, entityID string, st roadmap.Status) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO mastery (roadmap, entity, status, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (roadmap, entity) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		slug, entityID, string(st), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store %s for %s/%s: %w", st, slug, entityID, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteTracker) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
