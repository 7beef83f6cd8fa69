// Package config provides configuration management for nightly-status.
// It handles the optional YAML file and its validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dperique/nightly-status/internal/releasecontroller"
	"github.com/dperique/nightly-status/internal/version"
)

// DefaultPath is the configuration file read when none is given explicitly.
const DefaultPath = "nightly-status.yaml"

// DefaultDatabasePath is where run history is kept when recording is enabled.
const DefaultDatabasePath = "nightly-status.db"

// Sentinel errors for configuration validation
var (
	ErrNoVersions          = errors.New("at least one version must be configured")
	ErrInvalidStream       = errors.New("stream must be one of nightly, ci")
	ErrNegativeConcurrency = errors.New("concurrency must not be negative")
	ErrNegativeRate        = errors.New("requests_per_second must not be negative")
	ErrInvalidTimeout      = errors.New("release_controller.timeout must be a positive duration")
	ErrBaseURLRequired     = errors.New("release_controller.base_url is required")
)

// Streams lists the accepted release stream kinds.
var Streams = []string{"nightly", "ci"}

// Config represents the top-level configuration structure.
type Config struct {
	Versions          []string                `yaml:"versions"`
	Stream            string                  `yaml:"stream"`
	ReleaseController ReleaseControllerConfig `yaml:"release_controller"`
	Concurrency       int                     `yaml:"concurrency"`
	Storage           StorageConfig           `yaml:"storage"`
}

// ReleaseControllerConfig configures the release-controller client.
type ReleaseControllerConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Timeout           string  `yaml:"timeout"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// StorageConfig represents storage configuration for run history.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// GetTimeout parses and returns the request timeout duration
func (r *ReleaseControllerConfig) GetTimeout() time.Duration {
	if r.Timeout == "" {
		return releasecontroller.DefaultTimeout
	}
	timeout, err := time.ParseDuration(r.Timeout)
	if err != nil || timeout <= 0 {
		return releasecontroller.DefaultTimeout
	}
	return timeout
}

// ClientConfig converts the section into a release-controller client configuration.
func (r *ReleaseControllerConfig) ClientConfig() releasecontroller.Config {
	return releasecontroller.Config{
		BaseURL:           r.BaseURL,
		UserAgent:         r.UserAgent,
		Timeout:           r.GetTimeout(),
		RequestsPerSecond: r.RequestsPerSecond,
	}
}

// LoadConfig loads and parses the configuration from a YAML file.
// Fields absent from the file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadOrDefault loads filePath when it exists. A missing file yields the
// defaults unless required is set.
func LoadOrDefault(filePath string, required bool) (*Config, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) && !required {
		return DefaultConfig(), nil
	}
	return LoadConfig(filePath)
}

// Validate validates the configuration structure and required fields.
func (c *Config) Validate() error {
	if len(c.Versions) == 0 {
		return ErrNoVersions
	}
	if err := version.ValidateAll(c.Versions); err != nil {
		return fmt.Errorf("versions: %w", err)
	}
	if !validStream(c.Stream) {
		return fmt.Errorf("%w: got %q", ErrInvalidStream, c.Stream)
	}
	if c.Concurrency < 0 {
		return ErrNegativeConcurrency
	}
	if err := c.ReleaseController.Validate(); err != nil {
		return fmt.Errorf("release_controller: %w", err)
	}
	return nil
}

// Validate validates the release-controller section.
func (r *ReleaseControllerConfig) Validate() error {
	if r.BaseURL == "" {
		return ErrBaseURLRequired
	}
	if r.RequestsPerSecond < 0 {
		return ErrNegativeRate
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: got %q", ErrInvalidTimeout, r.Timeout)
		}
	}
	return nil
}

func validStream(stream string) bool {
	for _, s := range Streams {
		if s == stream {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Versions: version.DefaultVersions(),
		Stream:   releasecontroller.DefaultStream,
		ReleaseController: ReleaseControllerConfig{
			BaseURL:   releasecontroller.DefaultBaseURL,
			Timeout:   releasecontroller.DefaultTimeout.String(),
			UserAgent: releasecontroller.DefaultUserAgent,
		},
		Storage: StorageConfig{
			DatabasePath: DefaultDatabasePath,
		},
	}
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filePath, err)
	}
	return nil
}
