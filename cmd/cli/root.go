// Package cli provides the command-line interface of scandeck.
// This package implements the Cobra-based CLI structure with commands for
// scanning, viewing saved results, managing profiles and the archive, and
// serving the HTTP API.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apihandlers "github.com/anstrom/scandeck/internal/api/handlers"
	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
)

const envPrefix = "SCANDECK"

var (
	cfgFile string
	verbose bool

	// appConfig is filled by loadAppConfig before any subcommand runs.
	appConfig *config.Config
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scandeck",
	Short: "Tabbed nmap front end",
	Long: `scandeck drives nmap scans, parses their XML output into browsable host
and service views, keeps per-host comments, and archives finished scans.

Every command reads ~/.scandeck/config.yaml (or --config) and SCANDECK_*
environment variables such as SCANDECK_SCANNER_NMAP_PATH or SCANDECK_API_PORT.`,
	Version:           getVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: loadAppConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.scandeck/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("nmap", "", "nmap executable name or path")

	// Bind flags to viper
	bindFlag("logging.level", flags.Lookup("log-level"))
	bindFlag("scanner.nmap_path", flags.Lookup("nmap"))
}

// bindFlag lets a command-line flag override a configuration key.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag.Name, err)
	}
}

// initConfig wires environment variables into viper. SCANDECK_API_PORT
// maps onto api.port and so on.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// getConfigFilePath returns --config, then SCANDECK_CONFIG, then the
// per-user default.
func getConfigFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := viper.GetString("config"); path != "" {
		return path
	}
	return filepath.Join(config.UserDir(), "config.yaml")
}

// overrides maps configuration keys that viper may set, from a flag or the
// environment, onto the Config field they replace.
var overrides = map[string]func(cfg *config.Config, v *viper.Viper, key string){
	"scanner.nmap_path":     func(c *config.Config, v *viper.Viper, k string) { c.Scanner.NmapPath = v.GetString(k) },
	"scanner.output_dir":    func(c *config.Config, v *viper.Viper, k string) { c.Scanner.OutputDir = v.GetString(k) },
	"scanner.poll_interval": func(c *config.Config, v *viper.Viper, k string) { c.Scanner.PollInterval = v.GetDuration(k) },
	"profiles.file":         func(c *config.Config, v *viper.Viper, k string) { c.Profiles.File = v.GetString(k) },
	"archive.enabled":       func(c *config.Config, v *viper.Viper, k string) { c.Archive.Enabled = v.GetBool(k) },
	"archive.host":          func(c *config.Config, v *viper.Viper, k string) { c.Archive.Host = v.GetString(k) },
	"archive.port":          func(c *config.Config, v *viper.Viper, k string) { c.Archive.Port = v.GetInt(k) },
	"archive.database":      func(c *config.Config, v *viper.Viper, k string) { c.Archive.Database = v.GetString(k) },
	"archive.username":      func(c *config.Config, v *viper.Viper, k string) { c.Archive.Username = v.GetString(k) },
	"archive.password":      func(c *config.Config, v *viper.Viper, k string) { c.Archive.Password = v.GetString(k) },
	"archive.ssl_mode":      func(c *config.Config, v *viper.Viper, k string) { c.Archive.SSLMode = v.GetString(k) },
	"api.host":              func(c *config.Config, v *viper.Viper, k string) { c.API.Host = v.GetString(k) },
	"api.port":              func(c *config.Config, v *viper.Viper, k string) { c.API.Port = v.GetInt(k) },
	"api.results_dir":       func(c *config.Config, v *viper.Viper, k string) { c.API.ResultsDir = v.GetString(k) },
	"api.auth.enabled":      func(c *config.Config, v *viper.Viper, k string) { c.API.Auth.Enabled = v.GetBool(k) },
	"logging.level":         func(c *config.Config, v *viper.Viper, k string) { c.Logging.Level = logging.LogLevel(v.GetString(k)) },
	"logging.format":        func(c *config.Config, v *viper.Viper, k string) { c.Logging.Format = logging.LogFormat(v.GetString(k)) },
	"logging.output":        func(c *config.Config, v *viper.Viper, k string) { c.Logging.Output = v.GetString(k) },
	"metrics.enabled":       func(c *config.Config, v *viper.Viper, k string) { c.Metrics.Enabled = v.GetBool(k) },
	"metrics.namespace":     func(c *config.Config, v *viper.Viper, k string) { c.Metrics.Namespace = v.GetString(k) },
	"metrics.text_file":     func(c *config.Config, v *viper.Viper, k string) { c.Metrics.TextFile = v.GetString(k) },
}

// applyOverrides copies every key viper knows a non-empty value for onto cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	for key, apply := range overrides {
		if v.IsSet(key) && v.GetString(key) != "" {
			apply(cfg, v, key)
		}
	}
}

// buildConfig loads the config file and layers viper on top.
func buildConfig(v *viper.Viper) (*config.Config, error) {
	path := getConfigFilePath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	applyOverrides(cfg, v)
	if verbose {
		cfg.Logging.Level = logging.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAppConfig runs before every subcommand.
func loadAppConfig(_ *cobra.Command, _ []string) error {
	cfg, err := buildConfig(viper.GetViper())
	if err != nil {
		return err
	}
	initLogging(cfg)
	if cfg.Metrics.Enabled {
		metrics.InitGlobal(cfg.Metrics.Namespace)
	}
	appConfig = cfg
	return nil
}

// initLogging initializes structured logging based on configuration.
func initLogging(cfg *config.Config) {
	logConfig := cfg.Logging
	logConfig.AddSource = logConfig.AddSource || logConfig.Level == logging.LevelDebug

	logger, err := logging.New(logConfig)
	if err != nil {
		// Fall back to default if creation fails
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	if verbose {
		logging.Debug("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format)
	}
}

// recorder returns the process metrics, or a no-op when metrics are off.
func recorder() metrics.Recorder {
	if appConfig == nil || !appConfig.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.Global()
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
	apihandlers.SetBuildInfo(v, c, bt)
}
