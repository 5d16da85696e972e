// Package storage archives a summary of every import: which file was read,
// what message it held, where the output went and what failed validation.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend names accepted in Config.Backends.
const (
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Issue is one archived validation error.
type Issue struct {
	Summary string `json:"summary"`
	Value   string `json:"value"`
	Hint    string `json:"hint"`
}

// Import is the archived summary of one converted file.
type Import struct {
	ID          int64     `json:"id"`
	Path        string    `json:"path"`
	MessageType string    `json:"message_type"`
	Valid       bool      `json:"valid"`
	Outputs     []string  `json:"outputs"`
	Issues      []Issue   `json:"issues,omitempty"`
	ImportedAt  time.Time `json:"imported_at"`
}

// QueryParams filters archived imports. Zero values match everything.
type QueryParams struct {
	MessageType string
	Path        string // LIKE match.
	InvalidOnly bool
	Limit       int // Max results (default 20).
}

func (p QueryParams) limit() int {
	if p.Limit <= 0 {
		return 20
	}
	return p.Limit
}

// Archive stores import summaries. Implementations are safe for concurrent
// use.
type Archive interface {
	// Save stores imp and returns its ID in this archive.
	Save(ctx context.Context, imp Import) (int64, error)
	// Query returns matching imports, newest first, with their issues.
	Query(ctx context.Context, p QueryParams) ([]Import, error)
	// CountByType returns the number of imports per message type.
	CountByType(ctx context.Context) (map[string]int, error)
	// TopIssues returns the most frequent validation error summaries.
	TopIssues(ctx context.Context, limit int) (map[string]uint64, error)
	Close() error
}

// Config selects and configures the archive backends.
type Config struct {
	Backends   []string         `yaml:"backends"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// DefaultConfig returns a configuration with default local development settings.
func DefaultConfig() Config {
	return Config{
		Backends: []string{BackendSQLite},
		SQLite:   SQLiteConfig{Path: "usmtf_importer.db"},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "usmtf",
			User:     "usmtf",
			Password: "usmtf",
		},
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "usmtf",
			User:     "default",
			Password: "",
		},
	}
}

// Validate checks the backend names and that each selected backend has a
// location to connect to.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backends,
			validation.Required,
			validation.Each(validation.In(BackendSQLite, BackendPostgres, BackendClickHouse)),
		),
		validation.Field(&c.SQLite, validation.When(c.uses(BackendSQLite), validation.By(func(any) error {
			return validation.Validate(c.SQLite.Path, validation.Required.Error("sqlite path is required"))
		}))),
		validation.Field(&c.Postgres, validation.When(c.uses(BackendPostgres), validation.By(func(any) error {
			return validation.Validate(c.Postgres.Host, validation.Required.Error("postgres host is required"))
		}))),
		validation.Field(&c.ClickHouse, validation.When(c.uses(BackendClickHouse), validation.By(func(any) error {
			return validation.Validate(c.ClickHouse.Host, validation.Required.Error("clickhouse host is required"))
		}))),
	)
}

func (c Config) uses(backend string) bool {
	for _, b := range c.Backends {
		if b == backend {
			return true
		}
	}
	return false
}

// Open opens every configured backend. A single backend is returned as
// is; several are combined into a Multi.
func Open(ctx context.Context, cfg Config) (Archive, error) {
	if len(cfg.Backends) == 0 {
		return nil, errors.New("no archive backend configured")
	}

	var archives []Archive
	for _, name := range cfg.Backends {
		a, err := openBackend(ctx, name, cfg)
		if err != nil {
			_ = NewMulti(archives...).Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		archives = append(archives, a)
	}
	if len(archives) == 1 {
		return archives[0], nil
	}
	return NewMulti(archives...), nil
}

func openBackend(ctx context.Context, name string, cfg Config) (Archive, error) {
	switch name {
	case BackendSQLite:
		return OpenSQLite(cfg.SQLite)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.Postgres)
	case BackendClickHouse:
		return OpenClickHouse(ctx, cfg.ClickHouse)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", name)
	}
}

// Multi writes every import to all of its archives and reads from the
// first.
type Multi struct {
	archives []Archive
}

func NewMulti(archives ...Archive) *Multi {
	return &Multi{archives: archives}
}

// Save stores imp everywhere and returns the ID assigned by the first
// archive. Every archive is attempted even when one fails.
func (m *Multi) Save(ctx context.Context, imp Import) (int64, error) {
	var id int64
	var errs []error
	for i, a := range m.archives {
		got, err := a.Save(ctx, imp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			id = got
		}
	}
	return id, errors.Join(errs...)
}

func (m *Multi) Query(ctx context.Context, p QueryParams) ([]Import, error) {
	if len(m.archives) == 0 {
		return nil, nil
	}
	return m.archives[0].Query(ctx, p)
}

func (m *Multi) CountByType(ctx context.Context) (map[string]int, error) {
	if len(m.archives) == 0 {
		return map[string]int{}, nil
	}
	return m.archives[0].CountByType(ctx)
}

func (m *Multi) TopIssues(ctx context.Context, limit int) (map[string]uint64, error) {
	if len(m.archives) == 0 {
		return map[string]uint64{}, nil
	}
	return m.archives[0].TopIssues(ctx, limit)
}

// Close closes every archive and returns the errors joined.
func (m *Multi) Close() error {
	var errs []error
	for _, a := range m.archives {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
