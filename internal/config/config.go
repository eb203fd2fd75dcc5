// Package config provides configuration types and defaults for zappifest.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/transport"
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

// Config holds all configuration options for zappifest.
type Config struct {
	// AccessToken authenticates every registry call. It is usually taken
	// from ZAPP_TOKEN rather than written to a file.
	AccessToken string         `mapstructure:"access_token"`
	Manifest    string         `mapstructure:"manifest"`
	Registry    RegistryConfig `mapstructure:"registry"`
	Log         LogConfig      `mapstructure:"log"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	UI          UIConfig       `mapstructure:"ui"`
}

// RegistryConfig holds the registry endpoints.
type RegistryConfig struct {
	AdminURL    string        `mapstructure:"admin_url"`
	AccountsURL string        `mapstructure:"accounts_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}

// UIConfig holds terminal output options.
type UIConfig struct {
	NoColor bool `mapstructure:"no_color"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/zappifest/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultLogFile is the debug log written when logging is enabled.
const DefaultLogFile = "zappifest.log"

// DefaultTracesFilePath returns the default trace file under the user config
// directory, or "" when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "zappifest", "traces", "traces.jsonl")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Manifest: manifest.DefaultPath,
		Registry: RegistryConfig{
			AdminURL:    zapp.DefaultAdminURL,
			AccountsURL: zapp.DefaultAccountsURL,
			Timeout:     transport.DefaultTimeout,
		},
		Log: LogConfig{
			File: DefaultLogFile,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateRegistry(c.Registry); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateRegistry checks the endpoints and the request timeout.
func ValidateRegistry(r RegistryConfig) error {
	for _, f := range []struct{ key, value string }{
		{"registry.admin_url", r.AdminURL},
		{"registry.accounts_url", r.AccountsURL},
	} {
		if f.value == "" {
			continue
		}
		u, err := url.Parse(f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s must be an http or https URL, got %q", f.key, f.value)
		}
		if u.Host == "" {
			return fmt.Errorf("%s has no host: %q", f.key, f.value)
		}
	}
	if r.Timeout < 0 {
		return fmt.Errorf("registry.timeout must not be negative, got %s", r.Timeout)
	}
	return nil
}

// ValidateTracing checks the tracing section.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Path requirements only matter when tracing is on.
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Zappifest Configuration

# Manifest to publish (default: plugin-manifest.json in the current directory)
manifest: plugin-manifest.json

# The access token is read from ZAPP_TOKEN or --access-token.
# Avoid storing it here.
# access_token: ""

# Registry endpoints
registry:
  admin_url: https://zapp.applicaster.com/api/v1/admin
  accounts_url: https://accounts.applicaster.com/api/v1
  timeout: 20s   # Per-request timeout

# Debug log (also enabled by --debug or ZAPPIFEST_DEBUG=1)
log:
  debug: false
  file: zappifest.log

# Terminal output
ui:
  no_color: false

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/zappifest/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
