package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/process"
	"github.com/anstrom/scandeck/internal/profiles"
)

const archiveConnectTimeout = 10 * time.Second

// ArchiveOperation represents a function that operates on the archive.
type ArchiveOperation func(ctx context.Context, repo *archive.Repository) error

// withArchive connects to the archive, runs operation and closes the
// connection. It fails when the archive is not enabled.
func withArchive(ctx context.Context, cfg *config.Config, operation ArchiveOperation) error {
	repo, database, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close archive connection: %v\n", closeErr)
		}
	}()
	return operation(ctx, repo)
}

// openArchive connects to the archive database and makes sure its table
// exists. The caller closes the returned DB.
func openArchive(ctx context.Context, cfg *config.Config) (*archive.Repository, *archive.DB, error) {
	if !cfg.Archive.Enabled {
		return nil, nil, fmt.Errorf("the archive is disabled; set archive.enabled or SCANDECK_ARCHIVE_ENABLED=true")
	}

	connectCtx, cancel := context.WithTimeout(ctx, archiveConnectTimeout)
	defer cancel()
	database, err := archive.Connect(connectCtx, &cfg.Archive)
	if err != nil {
		return nil, nil, err
	}

	repo := archive.NewRepository(database).WithRecorder(recorder())
	if err := repo.EnsureSchema(connectCtx); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return repo, database, nil
}

// loadProfiles opens the user's profile file on top of the built-ins.
func loadProfiles(cfg *config.Config) (*profiles.Store, error) {
	store := profiles.NewStore(cfg.Profiles.File)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// newLauncher builds the process launcher from the scanner settings.
func newLauncher(cfg *config.Config) *process.ExecLauncher {
	return process.NewExecLauncher(cfg.Scanner.NmapPath, cfg.Scanner.ExtraSearchPaths, cfg.Scanner.OutputDir)
}

// newTable returns a table writing to w with the given header.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)
	return table
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
