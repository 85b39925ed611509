package config

import (
	"time"

	"github.com/arthur-debert/busy/pkg/errors"
)

// Config is the effective busy configuration
type Config struct {
	Output  Output  `koanf:"output"`
	Spinner Spinner `koanf:"spinner"`
	Run     Run     `koanf:"run"`
	Metrics Metrics `koanf:"metrics"`
	Log     Log     `koanf:"log"`
}

// Output controls how loader state is rendered
type Output struct {
	Format string `koanf:"format"`
}

// Spinner configures the terminal indicator
type Spinner struct {
	Text    string        `koanf:"text"`
	Refresh time.Duration `koanf:"refresh"`
}

// Run configures job execution
type Run struct {
	MaxParallel int  `koanf:"max_parallel"`
	FailFast    bool `koanf:"fail_fast"`
}

// Metrics configures the prometheus endpoint
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Log configures logging
type Log struct {
	Verbosity int `koanf:"verbosity"`
}

var validFormats = map[string]bool{
	"auto": true, "term": true, "terminal": true,
	"text": true, "plain": true, "json": true,
}

// Validate checks value ranges that koanf cannot express
func (c *Config) Validate() error {
	if !validFormats[c.Output.Format] {
		return errors.Newf(errors.ErrConfigValid, "output.format: unknown format %q", c.Output.Format).
			WithDetail("key", "output.format")
	}
	if c.Spinner.Refresh < 0 {
		return errors.Newf(errors.ErrConfigValid, "spinner.refresh must not be negative, got %s", c.Spinner.Refresh).
			WithDetail("key", "spinner.refresh")
	}
	if c.Run.MaxParallel < 0 {
		return errors.Newf(errors.ErrConfigValid, "run.max_parallel must be >= 0, got %d", c.Run.MaxParallel).
			WithDetail("key", "run.max_parallel")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New(errors.ErrConfigValid, "metrics.addr is required when metrics are enabled").
			WithDetail("key", "metrics.addr")
	}
	if c.Log.Verbosity < 0 {
		return errors.Newf(errors.ErrConfigValid, "log.verbosity must be >= 0, got %d", c.Log.Verbosity).
			WithDetail("key", "log.verbosity")
	}
	return nil
}
