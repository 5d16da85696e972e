// Package notify publishes an event on NATS every time a message has been
// exported, so downstream tooling can pick up the new scenario files.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix events are published under. The
// lower-cased message type is appended, e.g. "usmtf.export.ato".
const DefaultSubject = "usmtf.export"

// ExportEvent describes one finished export.
type ExportEvent struct {
	Path        string    `json:"path"`
	MessageType string    `json:"message_type"`
	Outputs     []string  `json:"outputs"`
	Valid       bool      `json:"valid"`
	ErrorCount  int       `json:"error_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

func (e ExportEvent) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Path, validation.Required),
		validation.Field(&e.MessageType, validation.Required),
		validation.Field(&e.Outputs, validation.Required),
		validation.Field(&e.ErrorCount, validation.Min(0)),
		validation.Field(&e.ExportedAt, validation.Required),
	)
}

// Subject returns the concrete subject for e under prefix.
func (e ExportEvent) Subject(prefix string) string {
	return prefix + "." + strings.ToLower(e.MessageType)
}

// Publisher sends export events.
type Publisher interface {
	Publish(ctx context.Context, e ExportEvent) error
	Close() error
}

// Config holds the NATS settings. An empty URL disables publishing.
type Config struct {
	URL     string        `yaml:"url"`
	Subject string        `yaml:"subject"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate requires a subject whenever publishing is enabled.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Subject, validation.When(c.URL != "", validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func DefaultConfig() Config {
	return Config{Subject: DefaultSubject, Timeout: 5 * time.Second}
}

// New returns a NATS publisher, or a no-op publisher when cfg.URL is empty.
func New(cfg Config) (Publisher, error) {
	if cfg.URL == "" {
		return Nop{}, nil
	}
	return Connect(cfg)
}

// NATSPublisher publishes events as JSON on a NATS connection.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server at cfg.URL.
func Connect(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("usmtf_importer"),
		nats.MaxReconnects(-1),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

// Publish validates e, publishes it and waits for the server to
// acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, e ExportEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid export event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal export event: %w", err)
	}
	if err := p.nc.Publish(e.Subject(p.subject), data); err != nil {
		return fmt.Errorf("publish export event: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

// Close drains the connection so in-flight events are delivered.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ExportEvent) error { return nil }
func (Nop) Close() error                               { return nil }
