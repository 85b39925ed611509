package config

import (
	"bytes"

	"github.com/arthur-debert/busy/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config in the on-disk layout, durations as strings
type fileConfig struct {
	Output struct {
		Format string `toml:"format" yaml:"format"`
	} `toml:"output" yaml:"output"`
	Spinner struct {
		Text    string `toml:"text" yaml:"text"`
		Refresh string `toml:"refresh" yaml:"refresh"`
	} `toml:"spinner" yaml:"spinner"`
	Run struct {
		MaxParallel int  `toml:"max_parallel" yaml:"max_parallel"`
		FailFast    bool `toml:"fail_fast" yaml:"fail_fast"`
	} `toml:"run" yaml:"run"`
	Metrics struct {
		Enabled bool   `toml:"enabled" yaml:"enabled"`
		Addr    string `toml:"addr" yaml:"addr"`
	} `toml:"metrics" yaml:"metrics"`
	Log struct {
		Verbosity int `toml:"verbosity" yaml:"verbosity"`
	} `toml:"log" yaml:"log"`
}

func toFile(c *Config) fileConfig {
	var f fileConfig
	f.Output.Format = c.Output.Format
	f.Spinner.Text = c.Spinner.Text
	f.Spinner.Refresh = c.Spinner.Refresh.String()
	f.Run.MaxParallel = c.Run.MaxParallel
	f.Run.FailFast = c.Run.FailFast
	f.Metrics.Enabled = c.Metrics.Enabled
	f.Metrics.Addr = c.Metrics.Addr
	f.Log.Verbosity = c.Log.Verbosity
	return f
}

// Encode renders cfg as "toml" or "yaml" in a form Load can read back
func Encode(c *Config, format string) ([]byte, error) {
	f := toFile(c)

	switch format {
	case "toml", "":
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigEncode, "failed to encode toml")
		}
		return buf.Bytes(), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigEncode, "failed to encode yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigEncode, "failed to encode yaml")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigEncode, "unknown config format %q", format)
	}
}
