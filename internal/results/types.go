package results

import "time"

// Port states the services index cares about.
const (
	StateOpen         = "open"
	StateFiltered     = "filtered"
	StateOpenFiltered = "open|filtered"
	StateClosed       = "closed"
)

// Port is one scanned port of a host.
type Port struct {
	ID        uint16 `json:"port"`
	Protocol  string `json:"protocol"`
	State     string `json:"state"`
	Service   string `json:"service"`
	Product   string `json:"product,omitempty"`
	Version   string `json:"version,omitempty"`
	ExtraInfo string `json:"extra_info,omitempty"`
}

// OSClass is one classification line inside an OS match.
type OSClass struct {
	Type       string `json:"type"`
	Vendor     string `json:"vendor"`
	Family     string `json:"family"`
	Generation string `json:"generation,omitempty"`
	Accuracy   int    `json:"accuracy"`
}

// OSMatch is a candidate operating system with its accuracy.
type OSMatch struct {
	Name     string    `json:"name"`
	Accuracy int       `json:"accuracy"`
	Classes  []OSClass `json:"classes,omitempty"`
}

// Uptime as guessed from TCP timestamps.
type Uptime struct {
	Seconds  int    `json:"seconds"`
	LastBoot string `json:"last_boot,omitempty"`
}

// Sequence is a TCP, IP ID or TCP timestamp sequence classification.
type Sequence struct {
	Class      string `json:"class"`
	Index      int    `json:"index,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Values     string `json:"values,omitempty"`
}

// Host is one scanned host. Key is its display identity.
type Host struct {
	Key       string    `json:"key"`
	IPv4      string    `json:"ipv4,omitempty"`
	IPv6      string    `json:"ipv6,omitempty"`
	MAC       string    `json:"mac,omitempty"`
	Vendor    string    `json:"vendor,omitempty"`
	Hostnames []string  `json:"hostnames,omitempty"`
	State     string    `json:"state"`
	Ports     []Port    `json:"ports"`
	OSMatches []OSMatch `json:"os_matches,omitempty"`
	Uptime    Uptime    `json:"uptime"`
	TCPSeq    Sequence  `json:"tcp_sequence"`
	IPIDSeq   Sequence  `json:"ip_id_sequence"`
	TCPTSSeq  Sequence  `json:"tcp_ts_sequence"`
	Comment   string    `json:"comment,omitempty"`

	extraOpen, extraFiltered, extraClosed int
}

// BestOSMatch returns the first (most accurate) OS match, if any.
func (h *Host) BestOSMatch() (OSMatch, bool) {
	if len(h.OSMatches) == 0 {
		return OSMatch{}, false
	}
	return h.OSMatches[0], true
}

// Address returns the best single address, preferring IPv4.
func (h *Host) Address() string {
	switch {
	case h.IPv4 != "":
		return h.IPv4
	case h.IPv6 != "":
		return h.IPv6
	default:
		return h.MAC
	}
}

// OpenPorts counts open ports including those folded into extraports.
func (h *Host) OpenPorts() int {
	return h.countState(StateOpen) + h.extraOpen
}

// FilteredPorts counts filtered ports including extraports.
func (h *Host) FilteredPorts() int {
	return h.countState(StateFiltered) + h.extraFiltered
}

// ClosedPorts counts closed ports including extraports.
func (h *Host) ClosedPorts() int {
	return h.countState(StateClosed) + h.extraClosed
}

// ScannedPorts is the total over every state.
func (h *Host) ScannedPorts() int {
	return len(h.Ports) + h.extraOpen + h.extraFiltered + h.extraClosed
}

func (h *Host) countState(state string) int {
	n := 0
	for _, p := range h.Ports {
		if p.State == state {
			n++
		}
	}
	return n
}

// ScanInfo describes one scan type that nmap ran.
type ScanInfo struct {
	Type        string `json:"type"`
	Protocol    string `json:"protocol"`
	NumServices int    `json:"num_services"`
	Services    string `json:"services"`
}

// Session is the run-level summary of a parsed scan.
type Session struct {
	Target        string     `json:"target,omitempty"`
	ProfileName   string     `json:"profile_name,omitempty"`
	Command       string     `json:"command"`
	Scanner       string     `json:"scanner"`
	Version       string     `json:"version"`
	Verbose       int        `json:"verbose"`
	Debug         int        `json:"debug"`
	Start         time.Time  `json:"start"`
	StartStr      string     `json:"start_str"`
	FinishStr     string     `json:"finish_str"`
	HostsUp       int        `json:"hosts_up"`
	HostsDown     int        `json:"hosts_down"`
	HostsScanned  int        `json:"hosts_scanned"`
	OpenPorts     int        `json:"open_ports"`
	FilteredPorts int        `json:"filtered_ports"`
	ClosedPorts   int        `json:"closed_ports"`
	ScanInfos     []ScanInfo `json:"scan_infos,omitempty"`
}

// ServiceEntry places one port of one host under a service name.
type ServiceEntry struct {
	HostKey string `json:"host"`
	Port
}

// Profile is the scan profile a result was produced with. It travels with
// saved results so they can restore it where it is unknown.
type Profile struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Hint        string            `yaml:"hint,omitempty" json:"hint,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Annotation  string            `yaml:"annotation,omitempty" json:"annotation,omitempty"`
	Options     map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Scan is the full result of one parse.
type Scan struct {
	Session   Session
	Hosts     []*Host
	RawXML    []byte
	RawOutput string
	Profile   *Profile

	// overridden holds host keys whose comment came from outside the XML.
	overridden map[string]bool
}
