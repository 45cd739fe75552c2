// Package sqlite implements store.Store on SQLite (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/imyousuf/codegauge/internal/store"
)

// DBFileName is the database file created inside the storage directory.
const DBFileName = "codegauge.db"

const recordColumns = `id, file_name, code, loc, lloc, sloc, comments, comment_percentage,
	code_to_comment_ratio, cyclomatic_complexity, maintainability_index,
	status, error_details, language, created_at, updated_at`

// Store implements store.Store with one analyses table.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens or creates the database inside dbDir.
func NewStore(dbDir string) (*Store, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbPath := filepath.Join(dbDir, DBFileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL,
		loc INTEGER NOT NULL DEFAULT 0,
		lloc INTEGER NOT NULL DEFAULT 0,
		sloc INTEGER NOT NULL DEFAULT 0,
		comments INTEGER NOT NULL DEFAULT 0,
		comment_percentage TEXT NOT NULL DEFAULT '',
		code_to_comment_ratio TEXT NOT NULL DEFAULT '',
		cyclomatic_complexity INTEGER NOT NULL DEFAULT 0,
		maintainability_index TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'analyzed',
		error_details TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'JavaScript',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

func (s *Store) Create(ctx context.Context, rec *store.Record) error {
	query := `INSERT INTO analyses (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.FileName, rec.Code,
		rec.LOC, rec.LLOC, rec.SLOC, rec.Comments,
		rec.CommentPercentage, rec.CodeToCommentRatio,
		rec.CyclomaticComplexity, rec.MaintainabilityIndex,
		string(rec.Status), rec.ErrorDetails, rec.Language,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", rec.FileName, translateErr(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM analyses WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) GetByFileName(ctx context.Context, fileName string) (*store.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM analyses WHERE file_name = ?`, fileName)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", fileName, err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM analyses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var recs []*store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// created_at is stored as text; re-sort on the parsed times.
	store.SortRecords(recs)
	return recs, nil
}

func (s *Store) Update(ctx context.Context, rec *store.Record) error {
	query := `
	UPDATE analyses SET
		file_name = ?, code = ?, loc = ?, lloc = ?, sloc = ?, comments = ?,
		comment_percentage = ?, code_to_comment_ratio = ?, cyclomatic_complexity = ?,
		maintainability_index = ?, status = ?, error_details = ?, language = ?,
		created_at = ?, updated_at = ?
	WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query,
		rec.FileName, rec.Code,
		rec.LOC, rec.LLOC, rec.SLOC, rec.Comments,
		rec.CommentPercentage, rec.CodeToCommentRatio,
		rec.CyclomaticComplexity, rec.MaintainabilityIndex,
		string(rec.Status), rec.ErrorDetails, rec.Language,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", rec.ID, translateErr(err))
	}
	return requireAffected(res, rec.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func (s *Store) Stats(ctx context.Context) (*store.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM analyses GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := &store.Stats{ByStatus: make(map[store.Status]int64)}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[store.Status(status)] = n
		stats.Total += n
	}
	return stats, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*store.Record, error) {
	var rec store.Record
	var status, created, updated string
	err := row.Scan(
		&rec.ID, &rec.FileName, &rec.Code,
		&rec.LOC, &rec.LLOC, &rec.SLOC, &rec.Comments,
		&rec.CommentPercentage, &rec.CodeToCommentRatio,
		&rec.CyclomaticComplexity, &rec.MaintainabilityIndex,
		&status, &rec.ErrorDetails, &rec.Language,
		&created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}
	rec.Status = store.Status(status)
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &rec, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return nil
}

// translateErr maps driver constraint failures to store sentinels.
func translateErr(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: analyses.file_name") {
		return store.ErrDuplicateFileName
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
