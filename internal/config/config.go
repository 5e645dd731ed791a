// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and RISK_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/partyrisk/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds how many parties are scored concurrently.
	WorkerCount int `koanf:"worker_count"`

	// BatchTimeoutMS is the coarse deadline for one batch run.
	BatchTimeoutMS int `koanf:"batch_timeout_ms"`

	// ModelDir holds the model artifact files loaded at startup.
	ModelDir string `koanf:"model_dir"`

	// MaxBatchRows caps the number of rows accepted in one batch (0 = unlimited).
	MaxBatchRows int `koanf:"max_batch_rows"`

	// MaxBodyBytes caps HTTP request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// DedupeInvoices rejects repeated (party, InvoiceNo) rows within a batch.
	DedupeInvoices bool `koanf:"dedupe_invoices"`

	// DedupeSize bounds the per-batch invoice deduper.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		WorkerCount:    runtime.NumCPU(),
		BatchTimeoutMS: 30_000,
		ModelDir:       "models",
		MaxBatchRows:   500_000,
		MaxBodyBytes:   32 << 20,
		DedupeInvoices: false,
		DedupeSize:     500_000,
	}
}

// BatchTimeout returns BatchTimeoutMS as a duration.
func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutMS) * time.Millisecond
}

// Validate checks the values that the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.BatchTimeoutMS < 1:
		return fmt.Errorf("%w: batch_timeout_ms must be positive", ErrInvalidConfig)
	case c.ModelDir == "":
		return fmt.Errorf("%w: model_dir must not be empty", ErrInvalidConfig)
	case c.MaxBatchRows < 0:
		return fmt.Errorf("%w: max_batch_rows must not be negative", ErrInvalidConfig)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
