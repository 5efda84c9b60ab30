// Package storage provides the SQLite ledger of ingested predications and
// their source files. The ledger is the system of record for what has been
// fed to the triple index, used for status reporting and incremental
// re-ingest of changed files.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vsalab/predvec/internal/models"
)

// SQLiteStorage persists predication rows and the source-file ledger.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS predications (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_predications_source ON predications(source);

	CREATE TABLE IF NOT EXISTS sources (
		path TEXT PRIMARY KEY,
		mtime INTEGER NOT NULL,
		size INTEGER NOT NULL,
		triples INTEGER NOT NULL,
		ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// BatchInsertPredications inserts all rows in one transaction.
func (s *SQLiteStorage) BatchInsertPredications(ctx context.Context, rows []*models.PredicationRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO predications (id, subject, predicate, object, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, row := range rows {
		row.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, row.ID, row.Subject, row.Predicate, row.Object, row.Source, row.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPredicationsBySource returns all rows ingested from one source path.
func (s *SQLiteStorage) GetPredicationsBySource(ctx context.Context, source string) ([]*models.PredicationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, predicate, object, source, created_at
		 FROM predications WHERE source = ? ORDER BY created_at`,
		source,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PredicationRow
	for rows.Next() {
		var row models.PredicationRow
		if err := rows.Scan(&row.ID, &row.Subject, &row.Predicate, &row.Object, &row.Source, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

// DeletePredicationsBySource removes all rows for one source path and
// returns their IDs so the caller can delete the matching index documents.
func (s *SQLiteStorage) DeletePredicationsBySource(ctx context.Context, source string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM predications WHERE source = ?`, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM predications WHERE source = ?`, source); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetSource returns the ledger entry for one source path.
func (s *SQLiteStorage) GetSource(ctx context.Context, path string) (*models.SourceFile, error) {
	var src models.SourceFile
	err := s.db.QueryRowContext(ctx,
		`SELECT path, mtime, size, triples, ingested_at FROM sources WHERE path = ?`, path,
	).Scan(&src.Path, &src.Mtime, &src.Size, &src.Triples, &src.IngestedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// UpsertSource records or refreshes a source-file ledger entry.
func (s *SQLiteStorage) UpsertSource(ctx context.Context, src *models.SourceFile) error {
	src.IngestedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (path, mtime, size, triples, ingested_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			triples = excluded.triples,
			ingested_at = excluded.ingested_at`,
		src.Path, src.Mtime, src.Size, src.Triples, src.IngestedAt,
	)
	return err
}

// DeleteSource removes a source-file ledger entry.
func (s *SQLiteStorage) DeleteSource(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE path = ?`, path)
	return err
}

// ListSources returns all ledger entries ordered by path.
func (s *SQLiteStorage) ListSources(ctx context.Context) ([]*models.SourceFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, mtime, size, triples, ingested_at FROM sources ORDER BY path`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SourceFile
	for rows.Next() {
		var src models.SourceFile
		if err := rows.Scan(&src.Path, &src.Mtime, &src.Size, &src.Triples, &src.IngestedAt); err != nil {
			return nil, err
		}
		out = append(out, &src)
	}
	return out, rows.Err()
}

// CountPredications returns the total number of stored predication rows.
func (s *SQLiteStorage) CountPredications(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predications`).Scan(&count)
	return count, err
}

// CountSources returns the number of ingested source files.
func (s *SQLiteStorage) CountSources(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
