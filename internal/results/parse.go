package results

import (
	"bytes"
	stderrors "errors"
	"time"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/scandeck/internal/errors"
)

var errEmptyResult = stderrors.New("scan produced no XML output")

// Parse decodes nmap XML into a Scan. errorOutput is whatever the scanner
// wrote to stderr; it decides how a failure is classified.
func Parse(data []byte, rawOutput, errorOutput string) (*Scan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParseError(errorOutput, errEmptyResult)
	}

	run := &nmap.Run{}
	if err := nmap.Parse(data, run); err != nil {
		return nil, errors.NewParseError(errorOutput, err)
	}

	scan := &Scan{
		Session:   convertSession(run),
		Hosts:     make([]*Host, 0, len(run.Hosts)),
		RawXML:    data,
		RawOutput: rawOutput,
	}
	for i := range run.Hosts {
		h := convertHost(&run.Hosts[i])
		scan.Session.OpenPorts += h.OpenPorts()
		scan.Session.FilteredPorts += h.FilteredPorts()
		scan.Session.ClosedPorts += h.ClosedPorts()
		scan.Hosts = append(scan.Hosts, h)
	}
	return scan, nil
}

func convertSession(run *nmap.Run) Session {
	s := Session{
		Command:      run.Args,
		ProfileName:  run.ProfileName,
		Scanner:      run.Scanner,
		Version:      run.Version,
		Verbose:      run.Verbose.Level,
		Debug:        run.Debugging.Level,
		StartStr:     run.StartStr,
		FinishStr:    run.Stats.Finished.TimeStr,
		HostsUp:      run.Stats.Hosts.Up,
		HostsDown:    run.Stats.Hosts.Down,
		HostsScanned: run.Stats.Hosts.Total,
	}
	if start := time.Time(run.Start); !start.IsZero() && start.Unix() > 0 {
		s.Start = start
	}
	if run.ScanInfo.Type != "" {
		s.ScanInfos = append(s.ScanInfos, ScanInfo{
			Type:        run.ScanInfo.Type,
			Protocol:    run.ScanInfo.Protocol,
			NumServices: run.ScanInfo.NumServices,
			Services:    run.ScanInfo.Services,
		})
	}
	return s
}

func convertHost(nh *nmap.Host) *Host {
	h := &Host{
		State:   nh.Status.State,
		Comment: nh.Comment,
		Uptime:  Uptime{Seconds: nh.Uptime.Seconds, LastBoot: nh.Uptime.Lastboot},
		TCPSeq: Sequence{
			Index:      nh.TCPSequence.Index,
			Difficulty: nh.TCPSequence.Difficulty,
			Values:     nh.TCPSequence.Values,
		},
		IPIDSeq:  Sequence{Class: nh.IPIDSequence.Class, Values: nh.IPIDSequence.Values},
		TCPTSSeq: Sequence{Class: nh.TCPTSSequence.Class, Values: nh.TCPTSSequence.Values},
	}

	for _, a := range nh.Addresses {
		switch a.AddrType {
		case "ipv4":
			h.IPv4 = a.Addr
		case "ipv6":
			h.IPv6 = a.Addr
		case "mac":
			h.MAC = a.Addr
			h.Vendor = a.Vendor
		}
	}
	for _, hn := range nh.Hostnames {
		if hn.Name != "" {
			h.Hostnames = append(h.Hostnames, hn.Name)
		}
	}

	h.Ports = make([]Port, 0, len(nh.Ports))
	for _, p := range nh.Ports {
		h.Ports = append(h.Ports, Port{
			ID:        p.ID,
			Protocol:  p.Protocol,
			State:     p.State.State,
			Service:   p.Service.Name,
			Product:   p.Service.Product,
			Version:   p.Service.Version,
			ExtraInfo: p.Service.ExtraInfo,
		})
	}
	for _, ep := range nh.ExtraPorts {
		switch ep.State {
		case StateOpen:
			h.extraOpen += ep.Count
		case StateFiltered:
			h.extraFiltered += ep.Count
		case StateClosed:
			h.extraClosed += ep.Count
		}
	}

	for _, m := range nh.OS.Matches {
		match := OSMatch{Name: m.Name, Accuracy: m.Accuracy}
		for _, c := range m.Classes {
			match.Classes = append(match.Classes, OSClass{
				Type:       c.Type,
				Vendor:     c.Vendor,
				Family:     c.Family,
				Generation: c.OSGeneration,
				Accuracy:   c.Accuracy,
			})
		}
		h.OSMatches = append(h.OSMatches, match)
	}

	h.Key = displayKey(h)
	return h
}

// displayKey picks the identity shown for a host: its first hostname, then
// IPv4, IPv6 and MAC in that order.
func displayKey(h *Host) string {
	if len(h.Hostnames) > 0 {
		return h.Hostnames[0]
	}
	return h.Address()
}
