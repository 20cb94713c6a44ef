package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/metrics"
	"github.com/anstrom/scandeck/internal/tab"
)

const defaultScanProfile = "Intense scan"

var (
	scanProfile string
	scanCommand string
	scanSave    string
	scanArchive bool
	scanFollow  bool
	scanJSON    bool
	scanTimeout time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Run an nmap scan and print the result",
	Long: `Run one nmap scan, wait for it to finish and print the hosts and services
it found. The command comes from --command or is built from a profile
template; without either the "Intense scan" profile is used.

Commands that read their targets with -iL or -iR need no target argument.`,
	Example: `  scandeck scan 192.168.1.0/24
  scandeck scan scanme.nmap.org --profile "Quick scan" --follow
  scandeck scan --command "nmap -sn -iL hosts.txt"
  scandeck scan 10.0.0.1 --save lab.xml --archive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanProfile, "profile", "p", "", "scan profile to build the command from")
	scanCmd.Flags().StringVarP(&scanCommand, "command", "c", "", "full nmap command line (overrides --profile)")
	scanCmd.Flags().StringVarP(&scanSave, "save", "o", "", "write the XML result (and comment sidecar) to this file")
	scanCmd.Flags().BoolVar(&scanArchive, "archive", false, "store the result in the archive database")
	scanCmd.Flags().BoolVarP(&scanFollow, "follow", "f", false, "stream nmap output while the scan runs")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the result as JSON")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "kill the scan after this long (0 waits forever)")
}

func runScan(cmd *cobra.Command, args []string) error {
	req := tab.Request{Profile: scanProfile, Command: scanCommand}
	if len(args) == 1 {
		req.Target = args[0]
	}
	if req.Profile == "" && req.Command == "" {
		req.Profile = defaultScanProfile
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scanTimeout)
		defer cancel()
	}

	store, err := loadProfiles(appConfig)
	if err != nil {
		return err
	}
	opts := tab.Options{
		Launcher: newLauncher(appConfig),
		Profiles: store,
		Surface:  newTerminalSurface(cmd.ErrOrStderr(), scanFollow),
		Metrics:  recorder(),
	}

	report, err := executeScan(ctx, appConfig, opts, req)
	if err != nil {
		return err
	}
	writeMetricsTextfile(appConfig)

	out := cmd.OutOrStdout()
	if scanJSON {
		return writeJSON(out, report.resultReport)
	}
	printReport(out, report.resultReport, report.services)
	if report.unknown > 0 {
		fmt.Fprintf(out, "\n%d host(s) returned fingerprints nmap could not recognise.\n", report.unknown)
	}
	if report.savedTo != "" {
		fmt.Fprintf(out, "\nSaved to %s\n", report.savedTo)
	}
	if report.archiveID != uuid.Nil {
		fmt.Fprintf(out, "\nArchived as %s\n", report.archiveID)
	}
	return nil
}

// scanReport is what a finished scan leaves behind.
type scanReport struct {
	resultReport
	services  []string
	unknown   int
	savedTo   string
	archiveID uuid.UUID
}

// executeScan runs req in a single tab on its own loop and waits for the
// result. Canceling ctx kills the scan.
func executeScan(ctx context.Context, cfg *config.Config, opts tab.Options, req tab.Request) (*scanReport, error) {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loop := tab.NewLoop(tab.NewNotebook(opts), cfg.Scanner.PollInterval)
	go loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	var id uuid.UUID
	err := loop.Do(ctx, func(nb *tab.Notebook) error {
		id = nb.Open("").ID()
		return nb.StartScan(id, req, tab.Confirm(false))
	})
	if err != nil {
		return nil, err
	}

	state, err := waitForScan(ctx, loop, id, cfg.Scanner.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	if state == tab.StateScanFailed {
		return nil, fmt.Errorf("scan failed")
	}

	report := &scanReport{}
	err = loop.Do(ctx, func(nb *tab.Notebook) error {
		c, err := nb.Get(id)
		if err != nil {
			return err
		}
		report.resultReport = buildReport(c)
		report.services = c.ServiceList()
		report.unknown = c.Fingerprints().Len()
		if scanSave != "" {
			if err := c.Save(scanSave); err != nil {
				return err
			}
			report.savedTo = scanSave
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if scanArchive {
		err := withArchive(ctx, cfg, func(ctx context.Context, repo *archive.Repository) error {
			return loop.Do(ctx, func(nb *tab.Notebook) error {
				entry, err := nb.Archive(ctx, id, repo)
				if err != nil {
					return err
				}
				report.archiveID = entry.ID
				return nil
			})
		})
		if err != nil {
			return nil, fmt.Errorf("failed to archive scan: %w", err)
		}
	}
	return report, nil
}

// waitForScan polls the tab until it leaves the scanning and parsing states.
func waitForScan(ctx context.Context, loop *tab.Loop, id uuid.UUID, interval time.Duration) (tab.State, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var state tab.State
		err := loop.Do(ctx, func(nb *tab.Notebook) error {
			c, err := nb.Get(id)
			if err != nil {
				return err
			}
			state = c.State()
			return nil
		})
		if err != nil {
			return "", err
		}
		if state != tab.StateScanning && state != tab.StateParsingResult {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// writeMetricsTextfile dumps the metrics for a node-exporter textfile
// collector when one is configured.
func writeMetricsTextfile(cfg *config.Config) {
	if !cfg.Metrics.Enabled || cfg.Metrics.TextFile == "" {
		return
	}
	if err := metrics.Global().WriteToTextfile(cfg.Metrics.TextFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write metrics to %s: %v\n", cfg.Metrics.TextFile, err)
	}
}
