package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PostgresArchive is the shared archive for team deployments.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool and creates the schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresArchive, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	a := &PostgresArchive{pool: pool}
	if err := a.createSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the connection pool.
func (a *PostgresArchive) Close() error {
	a.pool.Close()
	return nil
}

func (a *PostgresArchive) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS imports (
		id              BIGSERIAL PRIMARY KEY,
		path            TEXT NOT NULL,
		message_type    TEXT NOT NULL,
		valid           BOOLEAN NOT NULL,
		outputs         TEXT[] NOT NULL DEFAULT '{}',
		imported_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_imports_message_type ON imports(message_type);
	CREATE INDEX IF NOT EXISTS idx_imports_imported_at ON imports(imported_at);

	CREATE TABLE IF NOT EXISTS validation_errors (
		import_id       BIGINT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		summary         TEXT NOT NULL,
		value           TEXT NOT NULL DEFAULT '',
		hint            TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (import_id, seq)
	);
	`
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save stores imp and sends its issues as one batch inside a transaction.
func (a *PostgresArchive) Save(ctx context.Context, imp Import) (int64, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO imports (path, message_type, valid, outputs, imported_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, imp.Path, imp.MessageType, imp.Valid, nonNil(imp.Outputs), imp.ImportedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}

	if len(imp.Issues) > 0 {
		batch := &pgx.Batch{}
		for i, is := range imp.Issues {
			batch.Queue(`
				INSERT INTO validation_errors (import_id, seq, summary, value, hint)
				VALUES ($1, $2, $3, $4, $5)
			`, id, i, is.Summary, is.Value, is.Hint)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert validation errors: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Query retrieves imports matching the given parameters.
func (a *PostgresArchive) Query(ctx context.Context, p QueryParams) ([]Import, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.MessageType != "" {
		conditions = append(conditions, "message_type = "+arg(p.MessageType))
	}
	if p.Path != "" {
		conditions = append(conditions, "path LIKE "+arg("%"+p.Path+"%"))
	}
	if p.InvalidOnly {
		conditions = append(conditions, "NOT valid")
	}

	query := `SELECT id, path, message_type, valid, outputs, imported_at FROM imports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY imported_at DESC, id DESC LIMIT " + arg(p.limit())

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Import, error) {
		var imp Import
		err := row.Scan(&imp.ID, &imp.Path, &imp.MessageType, &imp.Valid, &imp.Outputs, &imp.ImportedAt)
		return imp, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan imports: %w", err)
	}

	for i := range out {
		rows, err := a.pool.Query(ctx, `
			SELECT summary, value, hint FROM validation_errors
			WHERE import_id = $1 ORDER BY seq
		`, out[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query validation errors: %w", err)
		}
		out[i].Issues, err = pgx.CollectRows(rows, pgx.RowToStructByPos[Issue])
		if err != nil {
			return nil, fmt.Errorf("scan validation errors: %w", err)
		}
	}
	return out, nil
}

// CountByType returns the number of imports per message type.
func (a *PostgresArchive) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := a.pool.Query(ctx, `SELECT message_type, COUNT(*) FROM imports GROUP BY message_type`)
	if err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = int(n)
	}
	return counts, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// TopIssues returns the most frequent validation error summaries.
func (a *PostgresArchive) TopIssues(ctx context.Context, limit int) (map[string]uint64, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT summary, COUNT(*) AS n FROM validation_errors
		GROUP BY summary ORDER BY n DESC LIMIT $1
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
