// Package manifest records conversion runs and the pages they wrote in SQLite.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS builds (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	source_dir  TEXT NOT NULL DEFAULT '',
	book_dir    TEXT NOT NULL DEFAULT '',
	templated   INTEGER NOT NULL DEFAULT 0,
	page_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pages (
	build_id INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
	source   TEXT NOT NULL,
	output   TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT '',
	checksum TEXT NOT NULL DEFAULT '',
	bytes    INTEGER NOT NULL DEFAULT 0,
	UNIQUE(build_id, output)
);

CREATE INDEX IF NOT EXISTS idx_pages_build ON pages(build_id);
`

// DB wraps a sql.DB with manifest operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("manifest: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("manifest: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("manifest: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// BeginBuild inserts a build row and returns its id.
func (db *DB) BeginBuild(b models.Build) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO builds (started_at, source_dir, book_dir, templated)
		VALUES (?, ?, ?, ?)
	`, b.StartedAt.UTC(), b.SourceDir, b.BookDir, b.Templated)
	if err != nil {
		return 0, fmt.Errorf("manifest: begin build: %w", err)
	}
	return res.LastInsertId()
}

// RecordPage stores one written page for a build. Re-recording the same
// output replaces the earlier row.
func (db *DB) RecordPage(buildID int64, p models.Page) error {
	_, err := db.conn.Exec(`
		INSERT INTO pages (build_id, source, output, title, checksum, bytes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(build_id, output) DO UPDATE SET
			source   = excluded.source,
			title    = excluded.title,
			checksum = excluded.checksum,
			bytes    = excluded.bytes
	`, buildID, p.Source, p.Output, p.Title, p.Checksum, p.Bytes)
	if err != nil {
		return fmt.Errorf("manifest: record page: %w", err)
	}
	return nil
}

// FinishBuild stamps the finish time and page count.
func (db *DB) FinishBuild(buildID int64, finishedAt time.Time, pages int) error {
	res, err := db.conn.Exec(`
		UPDATE builds SET finished_at = ?, page_count = ? WHERE id = ?
	`, finishedAt.UTC(), pages, buildID)
	if err != nil {
		return fmt.Errorf("manifest: finish build: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("manifest: build %d: %w", buildID, apperr.ErrNotFound)
	}
	return nil
}

// LastBuild returns the most recent build. Builds that never finished are
// included so an aborted run is visible.
func (db *DB) LastBuild() (*models.Build, error) {
	var (
		b        models.Build
		finished sql.NullTime
	)
	err := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, source_dir, book_dir, templated, page_count
		FROM builds ORDER BY id DESC LIMIT 1
	`).Scan(&b.ID, &b.StartedAt, &finished, &b.SourceDir, &b.BookDir, &b.Templated, &b.PageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("manifest: last build: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: last build: %w", err)
	}
	if finished.Valid {
		b.FinishedAt = finished.Time
	}
	return &b, nil
}

// Pages returns the pages recorded for a build, ordered by output name.
func (db *DB) Pages(buildID int64) ([]models.Page, error) {
	rows, err := db.conn.Query(`
		SELECT source, output, title, checksum, bytes
		FROM pages WHERE build_id = ? ORDER BY output
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("manifest: pages: %w", err)
	}
	defer rows.Close()

	var out []models.Page
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.Source, &p.Output, &p.Title, &p.Checksum, &p.Bytes); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep builds and deletes the rest with their pages.
func (db *DB) Prune(keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := db.conn.Exec(`
		DELETE FROM builds WHERE id NOT IN (
			SELECT id FROM builds ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("manifest: prune: %w", err)
	}
	return res.RowsAffected()
}
