// Package history records completed and failed fetches in a small SQLite
// database so past runs can be listed and searched.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"imgfetch/internal/config"
)

type DB struct {
	SQL  *sql.DB
	Path string
}

func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if cfg.General.DataRoot == "" {
		return nil, errors.New("general.data_root required")
	}
	if err := os.MkdirAll(cfg.General.DataRoot, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.General.DataRoot, "history.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=journal_mode(WAL)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return &DB{SQL: sqldb, Path: path}, nil
}

// OpenMemory opens an in-memory database, used by tests.
func OpenMemory() (*DB, error) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return &DB{SQL: sqldb}, nil
}

func (db *DB) Close() error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			dest TEXT,
			media_type TEXT,
			size INTEGER,
			status TEXT NOT NULL,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_status ON fetches(status);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

type Row struct {
	ID        int64
	URL       string
	Dest      string
	MediaType string
	Size      int64
	Status    string
	LastError string
	CreatedAt int64
}

const (
	StatusComplete = "complete"
	StatusError    = "error"
)

// Record inserts one fetch outcome. Nil receiver is a no-op so callers can
// run with history disabled.
func (db *DB) Record(row Row) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	if row.CreatedAt == 0 {
		row.CreatedAt = time.Now().Unix()
	}
	_, err := db.SQL.Exec(
		`INSERT INTO fetches(url, dest, media_type, size, status, last_error, created_at) VALUES(?,?,?,?,?,?,?)`,
		row.URL, row.Dest, row.MediaType, row.Size, row.Status, row.LastError, row.CreatedAt,
	)
	return err
}

// List returns the most recent fetches, newest first.
func (db *DB) List(limit int) ([]Row, error) {
	if db == nil || db.SQL == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.SQL.Query(
		`SELECT id, url, dest, media_type, size, status, last_error, created_at
		 FROM fetches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var r Row
		var dest, mt, lastErr sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&r.ID, &r.URL, &dest, &mt, &size, &r.Status, &lastErr, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Dest = dest.String
		r.MediaType = mt.String
		r.Size = size.Int64
		r.LastError = lastErr.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Search fuzzy-matches the term against URL and destination of recent rows.
func (db *DB) Search(term string, limit int) ([]Row, error) {
	all, err := db.List(limit * 10)
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		if len(all) > limit {
			all = all[:limit]
		}
		return all, nil
	}
	var out []Row
	for _, r := range all {
		if fuzzy.MatchFold(term, r.URL) || fuzzy.MatchFold(term, r.Dest) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
