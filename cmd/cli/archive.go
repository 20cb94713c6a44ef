package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/tab"
)

const (
	defaultArchiveLimit    = 50
	maxTitleDisplayLen     = 30
	maxHostnamesDisplayLen = 40
	archiveTimeFormat      = "2006-01-02 15:04"
)

var (
	archiveLimit  int
	archiveExport string
	archiveJSON   bool
)

// archiveCmd represents the archive command.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived scans",
	Long: `List, search, open and delete scans stored in the archive database.
The archive must be enabled in the configuration.`,
	Example: `  scandeck archive list --limit 10
  scandeck archive search web01
  scandeck archive show 2f1c... --export web.xml
  scandeck archive delete 2f1c...`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent archived scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withArchive(cmd.Context(), appConfig, func(ctx context.Context, repo *archive.Repository) error {
			entries, err := repo.List(ctx, archiveLimit)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries)
		})
	},
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search archived scans by title, target, command or host name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd.Context(), appConfig, func(ctx context.Context, repo *archive.Repository) error {
			entries, err := repo.Search(ctx, args[0], archiveLimit)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries)
		})
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Open an archived scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid archive id %q: %w", args[0], err)
		}
		return withArchive(cmd.Context(), appConfig, func(ctx context.Context, repo *archive.Repository) error {
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveDeleteCmd)

	archiveCmd.PersistentFlags().IntVarP(&archiveLimit, "limit", "l", defaultArchiveLimit, "maximum number of entries")
	archiveShowCmd.Flags().StringVarP(&archiveExport, "export", "o", "", "also write the XML result to this file")
	archiveShowCmd.Flags().BoolVar(&archiveJSON, "json", false, "print the result as JSON")
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid archive id %q: %w", args[0], err)
	}

	var entry *archive.Entry
	err = withArchive(cmd.Context(), appConfig, func(ctx context.Context, repo *archive.Repository) error {
		entry, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	c := tab.NewController(entry.Title, tab.Options{Metrics: recorder()})
	if err := c.LoadArchived(entry); err != nil {
		return fmt.Errorf("failed to open archived scan: %w", err)
	}
	if archiveExport != "" {
		if err := c.Save(archiveExport); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", archiveExport)
	}
	return renderView(cmd.OutOrStdout(), c, nil, nil, archiveJSON)
}

// printEntries lists archive entries, newest first as the repository
// returns them.
func printEntries(w io.Writer, entries []*archive.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No archived scans found")
		return nil
	}
	table := newTable(w, "ID", "Title", "Target", "Profile", "Up", "Down", "Hosts", "Started")
	for _, e := range entries {
		started := ""
		if !e.StartedAt.IsZero() {
			started = e.StartedAt.Format(archiveTimeFormat)
		}
		_ = table.Append([]string{
			e.ID.String(),
			truncate(e.Title, maxTitleDisplayLen),
			e.Target,
			e.ProfileName,
			strconv.Itoa(e.HostsUp),
			strconv.Itoa(e.HostsDown),
			truncate(strings.Join(e.Hostnames, ", "), maxHostnamesDisplayLen),
			started,
		})
	}
	return table.Render()
}
