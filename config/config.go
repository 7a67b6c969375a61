// ABOUTME: TOML settings for the failure diagnostics CLI: escalation behavior and output styling.
// ABOUTME: A missing file yields defaults; FAILDIAG_* environment variables overlay file values.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables read by ApplyEnv.
const (
	EnvModel   = "FAILDIAG_MODEL"
	EnvBaseURL = "FAILDIAG_BASE_URL"
)

// Color modes for Output.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Duration is a time.Duration that unmarshals from TOML strings like "2s" or "1500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the top-level settings file.
type Config struct {
	Escalation Escalation `toml:"escalation"`
	Output     Output     `toml:"output"`
}

// Escalation controls the call to the external analyzer.
type Escalation struct {
	Enabled bool     `toml:"enabled"`
	Timeout Duration `toml:"timeout"`
	// Model and BaseURL are empty to use the provider's defaults.
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Output controls terminal rendering.
type Output struct {
	Color string `toml:"color"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Escalation: Escalation{
			Enabled: true,
			Timeout: Duration{2 * time.Second},
		},
		Output: Output{Color: ColorAuto},
	}
}

// Load reads a TOML configuration file. Keys absent from the file keep their
// defaults, and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty environment values onto cfg.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvModel); v != "" {
		c.Escalation.Model = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.Escalation.BaseURL = v
	}
}

// ValidColor reports whether mode is a recognized color mode.
func ValidColor(mode string) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	}
	return false
}

func validate(cfg *Config) error {
	if cfg.Escalation.Timeout.Duration <= 0 {
		return fmt.Errorf("escalation.timeout must be positive, got %s", cfg.Escalation.Timeout.Duration)
	}
	if !ValidColor(cfg.Output.Color) {
		return fmt.Errorf("output.color must be one of auto, always, never; got %q", cfg.Output.Color)
	}
	return nil
}
