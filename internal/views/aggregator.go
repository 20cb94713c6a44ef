// Package views turns a results.Store plus a selection into the row lists a
// presentation layer renders. Every function here is read-only.
package views

import (
	"github.com/anstrom/scandeck/internal/results"
)

const unknownService = "Unknown"

// Mode tells the renderer which shape a view has.
type Mode string

const (
	ModeEmpty  Mode = "empty"
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// PortRow is one port line in a host view.
type PortRow struct {
	Icon     string `json:"icon"`
	Port     uint16 `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service"`
	Product  string `json:"product"`
}

// HostGroup is a tree parent holding one host's ports.
type HostGroup struct {
	Host string    `json:"host"`
	Rows []PortRow `json:"rows"`
}

// HostView is the port listing for a host selection. Single mode fills Rows,
// multi mode fills Groups. Pages names the host detail pages to show.
type HostView struct {
	Mode   Mode        `json:"mode"`
	Rows   []PortRow   `json:"rows,omitempty"`
	Groups []HostGroup `json:"groups,omitempty"`
	Pages  []string    `json:"pages"`
}

// ServiceRow is one host offering a service.
type ServiceRow struct {
	Icon     string `json:"icon"`
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Product  string `json:"product"`
	Version  string `json:"version"`
}

// ServiceGroup is a tree parent holding the hosts of one service.
type ServiceGroup struct {
	Service string       `json:"service"`
	Rows    []ServiceRow `json:"rows"`
}

// ServiceView is the host listing for a service selection.
type ServiceView struct {
	Mode   Mode           `json:"mode"`
	Rows   []ServiceRow   `json:"rows,omitempty"`
	Groups []ServiceGroup `json:"groups,omitempty"`
	Pages  []string       `json:"pages"`
}

// HostListRow is one entry of the host list.
type HostListRow struct {
	Icon string `json:"icon"`
	Host string `json:"host"`
}

// HostDetails backs a host detail page.
type HostDetails struct {
	Host              *results.Host `json:"host"`
	OSLogo            string        `json:"os_logo"`
	VulnerabilityIcon string        `json:"vulnerability_icon"`
	OpenPorts         int           `json:"open_ports"`
	FilteredPorts     int           `json:"filtered_ports"`
	ClosedPorts       int           `json:"closed_ports"`
	ScannedPorts      int           `json:"scanned_ports"`
}

// Aggregator builds views over one store.
type Aggregator struct {
	store *results.Store
}

// NewAggregator creates an aggregator reading from store.
func NewAggregator(store *results.Store) *Aggregator {
	return &Aggregator{store: store}
}

// HostList returns one row per distinct host key, in parse order.
func (a *Aggregator) HostList() []HostListRow {
	hosts := a.selectHosts(nil)
	rows := make([]HostListRow, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, HostListRow{Icon: hostIcon(h), Host: h.Key})
	}
	return rows
}

// ServiceList returns service names in first-seen order. Ports without a
// service name are listed as "Unknown".
func (a *Aggregator) ServiceList() []string {
	names := a.store.ServiceNames()
	for i, name := range names {
		names[i] = serviceName(name)
	}
	return names
}

// ViewForHosts builds the port view for the selected host keys. Output
// follows store order; unknown and repeated keys are ignored.
func (a *Aggregator) ViewForHosts(selected []string) HostView {
	hosts := a.selectHosts(toSet(selected))

	view := HostView{Mode: ModeEmpty, Pages: []string{}}
	switch len(hosts) {
	case 0:
		return view
	case 1:
		view.Mode = ModeSingle
		view.Rows = portRows(hosts[0])
	default:
		view.Mode = ModeMulti
		for _, h := range hosts {
			view.Groups = append(view.Groups, HostGroup{Host: h.Key, Rows: portRows(h)})
		}
	}
	for _, h := range hosts {
		view.Pages = append(view.Pages, h.Key)
	}
	return view
}

// ViewForServices builds the host view for the selected service names, as
// ServiceList spells them. Within a group a host port appears once, while a
// host offering the service on several ports gets a row per port. Pages is
// deduplicated across groups.
func (a *Aggregator) ViewForServices(selected []string) ServiceView {
	want := toSet(selected)
	var names []string
	for _, name := range a.store.ServiceNames() {
		if want[serviceName(name)] {
			names = append(names, name)
		}
	}

	view := ServiceView{Mode: ModeEmpty, Pages: []string{}}
	pageSeen := make(map[string]bool)
	addPage := func(key string) {
		if !pageSeen[key] {
			pageSeen[key] = true
			view.Pages = append(view.Pages, key)
		}
	}

	switch len(names) {
	case 0:
		return view
	case 1:
		view.Mode = ModeSingle
		for _, e := range a.store.Service(names[0]) {
			view.Rows = append(view.Rows, serviceRow(e))
			addPage(e.HostKey)
		}
	default:
		view.Mode = ModeMulti
		for _, name := range names {
			group := ServiceGroup{Service: serviceName(name)}
			inGroup := make(map[groupRow]bool)
			for _, e := range a.store.Service(name) {
				row := groupRow{host: e.HostKey, port: e.ID, protocol: e.Protocol}
				if inGroup[row] {
					continue
				}
				inGroup[row] = true
				group.Rows = append(group.Rows, serviceRow(e))
				addPage(e.HostKey)
			}
			view.Groups = append(view.Groups, group)
		}
	}
	return view
}

// Details returns the detail page data for one host.
func (a *Aggregator) Details(key string) (HostDetails, bool) {
	h, ok := a.store.Host(key)
	if !ok {
		return HostDetails{}, false
	}
	var logo string
	if m, ok := h.BestOSMatch(); ok {
		logo = OSLogo(m.Name)
	} else {
		logo = OSLogo("")
	}
	return HostDetails{
		Host:              h,
		OSLogo:            logo,
		VulnerabilityIcon: VulnerabilityIcon(h.OpenPorts()),
		OpenPorts:         h.OpenPorts(),
		FilteredPorts:     h.FilteredPorts(),
		ClosedPorts:       h.ClosedPorts(),
		ScannedPorts:      h.ScannedPorts(),
	}, true
}

// RunDetails returns the session summary.
func (a *Aggregator) RunDetails() results.Session {
	return a.store.Session()
}

// selectHosts walks the store in parse order and keeps one host per key,
// the one Store.Host resolves to. A nil set keeps every key.
func (a *Aggregator) selectHosts(want map[string]bool) []*results.Host {
	var out []*results.Host
	seen := make(map[string]bool)
	for _, h := range a.store.Hosts() {
		if seen[h.Key] || (want != nil && !want[h.Key]) {
			continue
		}
		seen[h.Key] = true
		if resolved, ok := a.store.Host(h.Key); ok {
			out = append(out, resolved)
		}
	}
	return out
}

func hostIcon(h *results.Host) string {
	if m, ok := h.BestOSMatch(); ok {
		return OSIcon(m.Name)
	}
	return OSIcon("")
}

func portRows(h *results.Host) []PortRow {
	rows := make([]PortRow, 0, len(h.Ports))
	for _, p := range h.Ports {
		rows = append(rows, PortRow{
			Icon:     ServiceIcon,
			Port:     p.ID,
			Protocol: p.Protocol,
			State:    p.State,
			Service:  serviceName(p.Service),
			Product:  p.Product,
		})
	}
	return rows
}

type groupRow struct {
	host     string
	port     uint16
	protocol string
}

func serviceRow(e results.ServiceEntry) ServiceRow {
	return ServiceRow{
		Icon:     ServiceIcon,
		Host:     e.HostKey,
		Port:     e.ID,
		Protocol: e.Protocol,
		State:    e.State,
		Product:  e.Product,
		Version:  e.Version,
	}
}

func serviceName(name string) string {
	if name == "" {
		return unknownService
	}
	return name
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
