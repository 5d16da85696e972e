package storage

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ClickHouseArchive keeps imports and their validation errors for
// analytics across many conversions.
type ClickHouseArchive struct {
	conn driver.Conn

	// lastID seeds IDs, which ClickHouse does not generate.
	lastID atomic.Int64
}

// OpenClickHouse opens a connection to ClickHouse and creates the schema.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseArchive, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	a := &ClickHouseArchive{conn: conn}
	if err := a.createSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	var maxID uint64
	if err := conn.QueryRow(ctx, `SELECT max(id) FROM imports`).Scan(&maxID); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("get max id: %w", err)
	}
	a.lastID.Store(int64(maxID))
	return a, nil
}

// Close closes the ClickHouse connection.
func (a *ClickHouseArchive) Close() error {
	return a.conn.Close()
}

func (a *ClickHouseArchive) createSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id              UInt64,
			path            String,
			message_type    LowCardinality(String),
			valid           Bool,
			outputs         Array(String),
			imported_at     DateTime64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(imported_at)
		ORDER BY (message_type, imported_at, id)`,

		`CREATE TABLE IF NOT EXISTS validation_errors (
			import_id       UInt64,
			seq             UInt32,
			message_type    LowCardinality(String),
			summary         String,
			value           String,
			hint            String,
			imported_at     DateTime64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(imported_at)
		ORDER BY (message_type, summary, imported_at, import_id)`,
	}

	for _, q := range queries {
		if err := a.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Save stores imp and batch-inserts its validation errors.
func (a *ClickHouseArchive) Save(ctx context.Context, imp Import) (int64, error) {
	id := a.lastID.Add(1)

	err := a.conn.Exec(ctx, `
		INSERT INTO imports (id, path, message_type, valid, outputs, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uint64(id), imp.Path, imp.MessageType, imp.Valid, nonNil(imp.Outputs), imp.ImportedAt)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}

	if len(imp.Issues) == 0 {
		return id, nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO validation_errors (import_id, seq, message_type, summary, value, hint, imported_at)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch: %w", err)
	}
	for i, is := range imp.Issues {
		if err := batch.Append(uint64(id), uint32(i), imp.MessageType, is.Summary, is.Value, is.Hint, imp.ImportedAt); err != nil {
			return 0, fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	return id, nil
}

// Query retrieves imports matching the given parameters.
func (a *ClickHouseArchive) Query(ctx context.Context, p QueryParams) ([]Import, error) {
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
		conditions = append(conditions, "NOT valid")
	}

	query := `SELECT id, path, message_type, valid, outputs, imported_at FROM imports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY imported_at DESC, id DESC LIMIT %d", p.limit())

	rows, err := a.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		var id uint64
		if err := rows.Scan(&id, &imp.Path, &imp.MessageType, &imp.Valid, &imp.Outputs, &imp.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.ID = int64(id)
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

func (a *ClickHouseArchive) issues(ctx context.Context, id int64) ([]Issue, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT summary, value, hint FROM validation_errors
		WHERE import_id = ? ORDER BY seq
	`, uint64(id))
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
func (a *ClickHouseArchive) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := a.conn.Query(ctx, `SELECT message_type, count() FROM imports GROUP BY message_type`)
	if err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n uint64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = int(n)
	}
	return counts, rows.Err()
}

// TopIssues returns the most frequent validation error summaries across
// all imports.
func (a *ClickHouseArchive) TopIssues(ctx context.Context, limit int) (map[string]uint64, error) {
	rows, err := a.conn.Query(ctx, fmt.Sprintf(`
		SELECT summary, count() AS n FROM validation_errors
		GROUP BY summary ORDER BY n DESC LIMIT %d
	`, limit))
	if err != nil {
		return nil, fmt.Errorf("top issues: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var summary string
		var n uint64
		if err := rows.Scan(&summary, &n); err != nil {
			return nil, err
		}
		out[summary] = n
	}
	return out, rows.Err()
}
