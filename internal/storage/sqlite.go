package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig holds the local archive settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SQLiteArchive is the default local archive.
type SQLiteArchive struct {
	db *sql.DB
}

// sqlitePragmas are applied by the driver to every pooled connection.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// OpenSQLite opens or creates the archive database at cfg.Path.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", sqliteDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite takes one writer at a time; queue them in the pool instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

func sqliteDSN(path string) string {
	return "file:" + path + "?" + sqlitePragmas
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		message_type TEXT NOT NULL,
		valid INTEGER NOT NULL,
		outputs TEXT NOT NULL,
		imported_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_imports_message_type ON imports(message_type);
	CREATE INDEX IF NOT EXISTS idx_imports_imported_at ON imports(imported_at);

	CREATE TABLE IF NOT EXISTS validation_errors (
		import_id INTEGER NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		summary TEXT NOT NULL,
		value TEXT,
		hint TEXT,
		PRIMARY KEY (import_id, seq)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save stores imp and its issues in one transaction.
func (a *SQLiteArchive) Save(ctx context.Context, imp Import) (int64, error) {
	outputs, err := json.Marshal(imp.Outputs)
	if err != nil {
		return 0, fmt.Errorf("marshal outputs: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO imports (path, message_type, valid, outputs, imported_at)
		VALUES (?, ?, ?, ?, ?)
	`, imp.Path, imp.MessageType, imp.Valid, string(outputs), imp.ImportedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}

	for i, is := range imp.Issues {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO validation_errors (import_id, seq, summary, value, hint)
			VALUES (?, ?, ?, ?, ?)
		`, id, i, is.Summary, is.Value, is.Hint); err != nil {
			return 0, fmt.Errorf("insert validation error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Query retrieves imports matching the given parameters.
func (a *SQLiteArchive) Query(ctx context.Context, p QueryParams) ([]Import, error) {
	var conditions []string
	var args []any

	if p.MessageType != "" {
		conditions = append(conditions, "message_type = ?")
		args = append(args, p.MessageType)
	}
	if p.Path != "" {
		conditions = append(conditions, "path LIKE ?")
		args = append(args, "%"+p.Path+"%")
	}
	if p.InvalidOnly {
		conditions = append(conditions, "valid = 0")
	}

	query := `SELECT id, path, message_type, valid, outputs, imported_at FROM imports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY imported_at DESC, id DESC LIMIT ?"
	args = append(args, p.limit())

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		var outputs, importedAt string
		if err := rows.Scan(&imp.ID, &imp.Path, &imp.MessageType, &imp.Valid, &outputs, &importedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &imp.Outputs); err != nil {
			return nil, fmt.Errorf("unmarshal outputs: %w", err)
		}
		if imp.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt); err != nil {
			return nil, fmt.Errorf("parse imported_at: %w", err)
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Issues, err = a.issues(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *SQLiteArchive) issues(ctx context.Context, id int64) ([]Issue, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT summary, COALESCE(value, ''), COALESCE(hint, '')
		FROM validation_errors WHERE import_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query validation errors: %w", err)
	}
	defer rows.Close()

	var out []Issue
	for rows.Next() {
		var is Issue
		if err := rows.Scan(&is.Summary, &is.Value, &is.Hint); err != nil {
			return nil, fmt.Errorf("scan validation error: %w", err)
		}
		out = append(out, is)
	}
	return out, rows.Err()
}

// CountByType returns the number of imports per message type.
func (a *SQLiteArchive) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT message_type, COUNT(*) FROM imports GROUP BY message_type`)
	if err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

// TopIssues returns the most frequent validation error summaries.
func (a *SQLiteArchive) TopIssues(ctx context.Context, limit int) (map[string]uint64, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT summary, COUNT(*) AS n FROM validation_errors
		GROUP BY summary ORDER BY n DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top issues: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var summary string
		var n int64
		if err := rows.Scan(&summary, &n); err != nil {
			return nil, err
		}
		out[summary] = uint64(n)
	}
	return out, rows.Err()
}
