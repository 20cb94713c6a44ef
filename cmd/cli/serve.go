package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/api"
	apihandlers "github.com/anstrom/scandeck/internal/api/handlers"
	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
	"github.com/anstrom/scandeck/internal/profiles"
	"github.com/anstrom/scandeck/internal/tab"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// Serve command flags.
var (
	serveHost    string
	servePort    int
	servePIDFile string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tab notebook over HTTP",
	Long: `Run the HTTP API in the foreground. Tabs, scans, profiles and the archive
are available under /api/v1, tab events stream over /api/v1/ws and the
OpenAPI document is served under /swagger. Requests need an API key (see
"scandeck apikey") and results are loaded from and saved to
api.results_dir. Interrupt to stop; running scans are killed on the way out.`,
	Example: `  scandeck serve
  scandeck serve --host 0.0.0.0 --port 8080
  SCANDECK_ARCHIVE_ENABLED=true scandeck serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "override api.host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override api.port")
	serveCmd.Flags().StringVar(&servePIDFile, "pid-file", "", "write the process ID to this file while serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := *appConfig
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort != 0 {
		cfg.API.Port = servePort
	}
	cfg.API.Enabled = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildServeDeps(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if deps.Keys, err = serveKeys(&cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	srv, err := api.New(&cfg, deps)
	if err != nil {
		return err
	}

	if servePIDFile != "" {
		if err := writePIDFile(servePIDFile, os.Getpid()); err != nil {
			return err
		}
		defer removePIDFile(servePIDFile)
	}

	go func() {
		if err := deps.Profiles.Watch(ctx, profiles.DefaultReloadDelay); err != nil {
			logging.Warn("profile file will not be reloaded", "error", err)
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go deps.Loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-deps.Loop.Done()
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Address())
	return srv.Start(ctx)
}

// buildServeDeps wires the notebook, the event hub and, when enabled, the
// archive and metrics. cleanup closes the archive connection.
func buildServeDeps(ctx context.Context, cfg *config.Config) (api.Deps, func(), error) {
	cleanup := func() {}

	store, err := loadProfiles(cfg)
	if err != nil {
		return api.Deps{}, cleanup, err
	}

	hub := apihandlers.NewEventHub(cfg.API.AllowedOrigins)
	opts := tab.Options{
		Launcher: newLauncher(cfg),
		Profiles: store,
		Surface:  hub,
		Metrics:  recorder(),
	}
	deps := api.Deps{
		Loop:     tab.NewLoop(tab.NewNotebook(opts), cfg.Scanner.PollInterval),
		Profiles: store,
		Events:   hub,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Global()
	}

	if cfg.Archive.Enabled {
		repo, database, err := openArchive(ctx, cfg)
		if err != nil {
			return api.Deps{}, cleanup, err
		}
		deps.Archive = repo
		deps.ArchiveDB = database
		cleanup = func() { closeArchive(database) }
	}
	return deps, cleanup, nil
}

func closeArchive(database *archive.DB) {
	if err := database.Close(); err != nil {
		logging.Warn("failed to close archive connection", "error", err)
	}
}

// writePIDFile writes the process ID to a file.
func writePIDFile(pidFile string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(pidFile), dirPermissions); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), filePermissions)
}

// removePIDFile removes the PID file.
func removePIDFile(pidFile string) {
	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove PID file", "path", pidFile, "error", err)
	}
}
