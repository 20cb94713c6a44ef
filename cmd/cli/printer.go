package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/anstrom/scandeck/internal/results"
	"github.com/anstrom/scandeck/internal/tab"
	"github.com/anstrom/scandeck/internal/views"
)

const (
	maxOSDisplayLen      = 30
	maxCommentDisplayLen = 40
	maxProductDisplayLen = 30
)

// resultReport is the JSON form of a browsable result.
type resultReport struct {
	Session  results.Session               `json:"session"`
	Hosts    []views.HostDetails           `json:"hosts"`
	Services map[string][]views.ServiceRow `json:"services"`
}

// buildReport collects every host page and service listing of a tab.
func buildReport(c *tab.Controller) resultReport {
	report := resultReport{
		Session:  c.RunDetails(),
		Hosts:    []views.HostDetails{},
		Services: make(map[string][]views.ServiceRow),
	}
	for _, row := range c.HostList() {
		if d, err := c.Details(row.Host); err == nil {
			report.Hosts = append(report.Hosts, d)
		}
	}
	for _, name := range c.ServiceList() {
		report.Services[name] = c.SelectServices([]string{name}).Rows
	}
	return report
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders the run summary, the host table and the service table.
func printReport(w io.Writer, report resultReport, serviceOrder []string) {
	printSession(w, report.Session)

	fmt.Fprintln(w)
	printHosts(w, report.Hosts)

	if len(serviceOrder) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := newTable(w, "Service", "Hosts", "Ports")
	for _, name := range serviceOrder {
		rows := report.Services[name]
		hosts := make([]string, 0, len(rows))
		ports := make([]string, 0, len(rows))
		seenHost := make(map[string]bool)
		seenPort := make(map[string]bool)
		for _, r := range rows {
			if !seenHost[r.Host] {
				seenHost[r.Host] = true
				hosts = append(hosts, r.Host)
			}
			p := fmt.Sprintf("%d/%s", r.Port, r.Protocol)
			if !seenPort[p] {
				seenPort[p] = true
				ports = append(ports, p)
			}
		}
		_ = table.Append([]string{name, strings.Join(hosts, ", "), strings.Join(ports, ", ")})
	}
	_ = table.Render()
}

// printSession prints the run details block.
func printSession(w io.Writer, s results.Session) {
	fmt.Fprintf(w, "Command:  %s\n", s.Command)
	if s.Target != "" {
		fmt.Fprintf(w, "Target:   %s\n", s.Target)
	}
	if s.ProfileName != "" {
		fmt.Fprintf(w, "Profile:  %s\n", s.ProfileName)
	}
	if s.Version != "" {
		fmt.Fprintf(w, "Scanner:  %s %s\n", s.Scanner, s.Version)
	}
	if s.StartStr != "" {
		fmt.Fprintf(w, "Started:  %s\n", s.StartStr)
	}
	if s.FinishStr != "" {
		fmt.Fprintf(w, "Finished: %s\n", s.FinishStr)
	}
	fmt.Fprintf(w, "Hosts:    %d up, %d down, %d scanned\n", s.HostsUp, s.HostsDown, s.HostsScanned)
	fmt.Fprintf(w, "Ports:    %d open, %d filtered, %d closed\n", s.OpenPorts, s.FilteredPorts, s.ClosedPorts)
}

// printHosts prints one line per host page.
func printHosts(w io.Writer, hosts []views.HostDetails) {
	table := newTable(w, "Host", "Address", "State", "Open", "Filtered", "Closed", "OS", "Comment")
	for _, d := range hosts {
		h := d.Host
		osName := ""
		if m, ok := h.BestOSMatch(); ok {
			osName = m.Name
		}
		_ = table.Append([]string{
			h.Key,
			h.Address(),
			h.State,
			strconv.Itoa(d.OpenPorts),
			strconv.Itoa(d.FilteredPorts),
			strconv.Itoa(d.ClosedPorts),
			truncate(osName, maxOSDisplayLen),
			truncate(h.Comment, maxCommentDisplayLen),
		})
	}
	_ = table.Render()
}

// printHostView prints the port listing of a host selection.
func printHostView(w io.Writer, view views.HostView) {
	switch view.Mode {
	case views.ModeEmpty:
		fmt.Fprintln(w, "No matching hosts.")
	case views.ModeSingle:
		fmt.Fprintf(w, "%s\n", view.Pages[0])
		printPorts(w, view.Rows)
	default:
		for i, g := range view.Groups {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", g.Host)
			printPorts(w, g.Rows)
		}
	}
}

func printPorts(w io.Writer, rows []views.PortRow) {
	table := newTable(w, "Port", "Protocol", "State", "Service", "Product")
	for _, r := range rows {
		_ = table.Append([]string{
			strconv.Itoa(int(r.Port)),
			r.Protocol,
			r.State,
			r.Service,
			truncate(r.Product, maxProductDisplayLen),
		})
	}
	_ = table.Render()
}

// printServiceView prints the host listing of a service selection.
func printServiceView(w io.Writer, view views.ServiceView) {
	switch view.Mode {
	case views.ModeEmpty:
		fmt.Fprintln(w, "No matching services.")
	case views.ModeSingle:
		printServiceRows(w, view.Rows)
	default:
		for i, g := range view.Groups {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", g.Service)
			printServiceRows(w, g.Rows)
		}
	}
}

func printServiceRows(w io.Writer, rows []views.ServiceRow) {
	table := newTable(w, "Host", "Port", "Protocol", "State", "Product", "Version")
	for _, r := range rows {
		_ = table.Append([]string{
			r.Host,
			strconv.Itoa(int(r.Port)),
			r.Protocol,
			r.State,
			truncate(r.Product, maxProductDisplayLen),
			r.Version,
		})
	}
	_ = table.Render()
}
