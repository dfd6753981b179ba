package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// DefaultPath is the igdocs configuration file looked up when -c is not given.
const DefaultPath = "igdocs.yaml"

// Config is the igdocs tool configuration.
type Config struct {
	SiteConfig   string `yaml:"site_config"`
	SiteDir      string `yaml:"site_dir"`
	WorkspaceDir string `yaml:"workspace_dir"`
	MaxVersions  int    `yaml:"max_versions"`
	Concurrency  int    `yaml:"concurrency"`

	Git     GitConfig     `yaml:"git"`
	State   StateConfig   `yaml:"state"`
	Events  EventsConfig  `yaml:"events"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Logging LoggingConfig `yaml:"logging"`
}

// GitConfig controls cloning and updating of external docs repositories.
type GitConfig struct {
	ShallowDepth      int           `yaml:"shallow_depth"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      string        `yaml:"retry_backoff"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
	Auth              *AuthConfig   `yaml:"auth,omitempty"`
}

// StateConfig locates the import history database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig controls publishing of import events to NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// DaemonConfig controls scheduled imports and the admin HTTP server.
type DaemonConfig struct {
	Schedule string `yaml:"schedule"`
	Listen   string `yaml:"listen"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.SiteConfig == "" {
		c.SiteConfig = "config.yaml"
	}
	if c.SiteDir == "" {
		c.SiteDir = "."
	}
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = "external-docs"
	}
	if c.MaxVersions == 0 {
		c.MaxVersions = DefaultMaxVersions
	}
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
	if c.Git.ShallowDepth == 0 {
		c.Git.ShallowDepth = 1
	}
	if c.Git.MaxRetries == 0 {
		c.Git.MaxRetries = 2
	}
	if c.Git.RetryBackoff == "" {
		c.Git.RetryBackoff = "linear"
	}
	if c.Git.RetryInitialDelay == 0 {
		c.Git.RetryInitialDelay = time.Second
	}
	if c.Git.RetryMaxDelay == 0 {
		c.Git.RetryMaxDelay = 30 * time.Second
	}
	if c.State.Path == "" {
		c.State.Path = ".igdocs/state.db"
	}
	if c.Events.NATSURL == "" {
		c.Events.NATSURL = "nats://127.0.0.1:4222"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "igdocs.imports"
	}
	if c.Daemon.Schedule == "" {
		c.Daemon.Schedule = "0 */6 * * *"
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":9090"
	}
	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
}

// Load reads the igdocs configuration at path. Environment files are loaded
// first and ${VAR} references are expanded before decoding.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").WithContext("path", path).Build()
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// LoadOrDefault behaves like Load but returns Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		loadEnvFiles()
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes, defaults and validates an igdocs configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.AlreadyExistsError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).Build()
	}

	example := Default()
	example.Git.Auth = &AuthConfig{Type: AuthTypeToken, Token: "${GITHUB_TOKEN}"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	header := []byte("# igdocs configuration. ${VAR} references are expanded from the environment and .env files.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").WithContext("path", path).Build()
	}
	return nil
}
