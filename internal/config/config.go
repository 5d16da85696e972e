// Package config loads the importer configuration from YAML. Values may
// reference environment variables as $VAR or ${VAR}.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"usmtf_importer/internal/api"
	"usmtf_importer/internal/logging"
	"usmtf_importer/internal/notify"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/storage"
)

// Validator is implemented by configuration types that check themselves
// after loading.
type Validator interface {
	Validate() error
}

// Config is the full importer configuration.
type Config struct {
	Log     logging.Options `yaml:"log"`
	Output  OutputConfig    `yaml:"output"`
	Records RecordsConfig   `yaml:"records"`
	Archive storage.Config  `yaml:"archive"`
	NATS    notify.Config   `yaml:"nats"`
	Watch   WatchConfig     `yaml:"watch"`
	API     api.Config      `yaml:"api"`
}

type OutputConfig struct {
	Dir  string `yaml:"dir"`
	Jobs int    `yaml:"jobs"`
}

// RecordsConfig lists the record tags to register. Empty means all.
type RecordsConfig struct {
	Tags []string `yaml:"tags"`
}

type WatchConfig struct {
	Dir      string        `yaml:"dir"`
	Pattern  string        `yaml:"pattern"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     logging.DefaultOptions(),
		Output:  OutputConfig{Dir: "out", Jobs: 4},
		Archive: storage.DefaultConfig(),
		NATS:    notify.DefaultConfig(),
		Watch:   WatchConfig{Dir: "inbox", Pattern: "*.txt", Debounce: 500 * time.Millisecond},
		API:     api.DefaultConfig(),
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.Output),
		validation.Field(&c.Records),
		validation.Field(&c.Archive),
		validation.Field(&c.NATS),
		validation.Field(&c.Watch, validation.By(c.watchApartFromOutput)),
		validation.Field(&c.API),
	)
}

// A watched directory that also receives the exports would convert its own
// output again.
func (c *Config) watchApartFromOutput(any) error {
	if SameDir(c.Watch.Dir, c.Output.Dir) {
		return fmt.Errorf("watch dir %s is also the output dir", c.Watch.Dir)
	}
	return nil
}

// SameDir reports whether a and b name the same directory, after cleaning
// and following symlinks where the directories exist.
func SameDir(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Dir, validation.Required),
		validation.Field(&o.Jobs, validation.Min(1)),
	)
}

func (r RecordsConfig) Validate() error {
	known := make([]any, 0)
	for _, tag := range sets.Known() {
		known = append(known, tag)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tags, validation.Each(validation.In(known...))),
	)
}

func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Pattern, validation.Required),
		validation.Field(&w.Debounce, validation.Min(time.Duration(0))),
	)
}

// Load reads filename into target, expanding environment variables first.
// Fields missing from the file keep the values already in target.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// LoadFile returns Default overlaid with the file at path. An empty path
// returns the validated defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}
	if err := Load(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
