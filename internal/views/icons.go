package views

import "strings"

// ServiceIcon is shown next to every port and service row.
const ServiceIcon = "stock-yes"

type osPattern struct {
	needle string
	name   string
}

// Checked in order: distribution names before the kernel family.
var osPatterns = []osPattern{
	{"ubuntu", "ubuntu"},
	{"red hat", "redhat"},
	{"linux", "linux"},
	{"windows", "win"},
	{"openbsd", "openbsd"},
	{"freebsd", "freebsd"},
	{"netbsd", "default"},
	{"solaris", "solaris"},
	{"irix", "irix"},
	{"mac os", "macosx"},
}

func osName(match string) string {
	lower := strings.ToLower(strings.TrimSpace(match))
	if lower == "" {
		return "unknown"
	}
	for _, p := range osPatterns {
		if strings.Contains(lower, p.needle) {
			return p.name
		}
	}
	return "default"
}

// OSIcon returns the small host-list icon for an OS match name. An empty
// name gives the unknown icon.
func OSIcon(match string) string {
	return osName(match) + "_icon"
}

// OSLogo returns the large host-details logo for an OS match name.
func OSLogo(match string) string {
	return osName(match) + "_75"
}

// VulnerabilityIcon grades a host by its number of open ports.
func VulnerabilityIcon(openPorts int) string {
	switch {
	case openPorts < 3:
		return "vl_1_75"
	case openPorts < 5:
		return "vl_2_75"
	case openPorts < 7:
		return "vl_3_75"
	case openPorts < 9:
		return "vl_4_75"
	default:
		return "vl_5_75"
	}
}
