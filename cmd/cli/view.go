package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/tab"
)

var (
	viewHosts    []string
	viewServices []string
	viewComments []string
	viewJSON     bool
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Browse a saved scan result",
	Long: `Open an nmap XML file and print its hosts and services. Comments stored
next to the file are shown with their hosts. --comment edits a host comment
and writes the file back.`,
	Example: `  scandeck view lab.xml
  scandeck view lab.xml --host web01 --host 10.0.0.2
  scandeck view lab.xml --service http
  scandeck view lab.xml --comment "web01=patched on monday"`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringArrayVar(&viewHosts, "host", nil, "show the ports of these hosts")
	viewCmd.Flags().StringArrayVar(&viewServices, "service", nil, "show the hosts offering these services")
	viewCmd.Flags().StringArrayVar(&viewComments, "comment", nil, "set a host comment as host=text")
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "print the result as JSON")
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]
	c := tab.NewController(path, tab.Options{Metrics: recorder()})
	if err := c.LoadFile(path); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if len(viewComments) > 0 {
		if err := applyComments(c, viewComments); err != nil {
			return err
		}
		if err := c.Save(path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}

	return renderView(cmd.OutOrStdout(), c, viewHosts, viewServices, viewJSON)
}

// applyComments sets every host=text pair on c.
func applyComments(c *tab.Controller, pairs []string) error {
	for _, pair := range pairs {
		host, text, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(host) == "" {
			return fmt.Errorf("invalid comment %q: expected host=text", pair)
		}
		if err := c.SetComment(strings.TrimSpace(host), text); err != nil {
			return err
		}
	}
	return nil
}

// renderView prints the selection asked for, or the whole report when no
// selection is given.
func renderView(w io.Writer, c *tab.Controller, hosts, services []string, asJSON bool) error {
	switch {
	case len(hosts) > 0:
		view := c.SelectHosts(hosts)
		if asJSON {
			return writeJSON(w, view)
		}
		printHostView(w, view)
	case len(services) > 0:
		view := c.SelectServices(services)
		if asJSON {
			return writeJSON(w, view)
		}
		printServiceView(w, view)
	default:
		report := buildReport(c)
		if asJSON {
			return writeJSON(w, report)
		}
		printReport(w, report, c.ServiceList())
	}
	return nil
}
