// Package config holds the scandeck configuration. A single Config is built
// at startup and passed by pointer to the components that need it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

const (
	configDirPerm  = 0750
	configFilePerm = 0600

	// DefaultPollInterval matches how often a running scan is checked.
	DefaultPollInterval = 2 * time.Second
)

// Config represents the complete scandeck configuration.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner" json:"scanner"`
	Profiles ProfilesConfig `yaml:"profiles" json:"profiles"`
	Archive  archive.Config `yaml:"archive" json:"archive"`
	API      APIConfig      `yaml:"api" json:"api"`
	Logging  logging.Config `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// ScannerConfig describes how the nmap process is located and polled.
type ScannerConfig struct {
	// Executable name or absolute path.
	NmapPath string `yaml:"nmap_path" json:"nmap_path" validate:"required"`

	// Directories searched after PATH.
	ExtraSearchPaths []string `yaml:"extra_search_paths" json:"extra_search_paths"`

	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval" validate:"min=100ms"`

	// Where XML and captured output files are written while a scan runs.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// ProfilesConfig points at the user's profile file.
type ProfilesConfig struct {
	File string `yaml:"file" json:"file"`
}

// APIConfig holds HTTP adapter settings.
type APIConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Host            string        `yaml:"host" json:"host" validate:"required_if=Enabled true"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size" validate:"min=0"`

	// Browser origins allowed to call the API. Empty means local origins
	// only; "*" has to be listed explicitly.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// Load and save requests may only name files under this directory.
	ResultsDir string `yaml:"results_dir" json:"results_dir" validate:"required_if=Enabled true"`

	Auth AuthConfig `yaml:"auth" json:"auth"`
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// bcrypt hashes produced by "scandeck apikey generate".
	KeyHashes []string `yaml:"api_key_hashes" json:"-"`
}

// MetricsConfig controls the prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true"`
	// Optional textfile-collector output written when a CLI run ends.
	TextFile string `yaml:"text_file" json:"text_file"`
}

// UserDir returns the per-user scandeck directory, ~/.scandeck.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scandeck"
	}
	return filepath.Join(home, ".scandeck")
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	userDir := UserDir()
	return &Config{
		Scanner: ScannerConfig{
			NmapPath:     "nmap",
			PollInterval: DefaultPollInterval,
			OutputDir:    os.TempDir(),
		},
		Profiles: ProfilesConfig{
			File: filepath.Join(userDir, "profiles.yaml"),
		},
		Archive: archive.DefaultConfig(),
		API: APIConfig{
			Enabled:         false,
			Host:            "127.0.0.1",
			Port:            8470,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1 << 20,
			ResultsDir:      filepath.Join(userDir, "results"),
			Auth: AuthConfig{
				Enabled: true,
			},
		},
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "scandeck",
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so one decoder covers both extensions.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse %s", filepath.Base(path)), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks struct tags first, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewConfigFieldError(errors.CodeValidation,
				fmt.Sprintf("failed %q validation", fe.Tag()), fieldPath(fe.Namespace()), fe.Value())
		}
		return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
	}

	switch c.Logging.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return errors.NewConfigFieldError(errors.CodeValidation, "invalid log level", "logging.level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.NewConfigFieldError(errors.CodeValidation, "invalid log format", "logging.format", c.Logging.Format)
	}

	for _, dir := range c.Scanner.ExtraSearchPaths {
		if !filepath.IsAbs(dir) {
			return errors.NewConfigFieldError(errors.CodeValidation,
				"extra search paths must be absolute", "scanner.extra_search_paths", dir)
		}
	}

	for _, origin := range c.API.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return errors.NewConfigFieldError(errors.CodeValidation,
				"allowed origins must not be blank", "api.allowed_origins", origin)
		}
	}
	for _, hash := range c.API.Auth.KeyHashes {
		if !strings.HasPrefix(hash, "$2") {
			return errors.NewConfigFieldError(errors.CodeValidation,
				"api key hashes must be bcrypt hashes", "api.auth.api_key_hashes", "<redacted>")
		}
	}
	return nil
}

// APIAddress returns host:port for the HTTP listener.
func (c *Config) APIAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// fieldPath turns "Config.Scanner.NmapPath" into "scanner.nmappath".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
