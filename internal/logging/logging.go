// Package logging builds the process logger: text on stderr for
// interactive use, or JSON into a rotating file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure New. A File sends JSON output to a rotating log file.
type Options struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func DefaultOptions() Options {
	return Options{Level: "info", MaxSizeMB: 32, MaxBackups: 3}
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Level, validation.By(func(any) error {
			_, err := ParseLevel(o.Level)
			return err
		})),
		validation.Field(&o.MaxSizeMB, validation.Min(0)),
		validation.Field(&o.MaxBackups, validation.Min(0)),
		validation.Field(&o.MaxAgeDays, validation.Min(0)),
	)
}

// Logger is a slog.Logger plus the file it writes to, if any.
type Logger struct {
	*slog.Logger
	LogFile string

	closer io.Closer
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

// New builds a logger from opts. Without a file, text goes to stderr.
func New(opts Options, stderr io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	if opts.File == "" {
		return &Logger{Logger: slog.New(slog.NewTextHandler(stderr, hopts))}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB, // MB
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	return &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, hopts)),
		LogFile: w.Filename,
		closer:  w,
	}, nil
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
