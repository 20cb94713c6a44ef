// Package fingerprint finds the unrecognised OS and service fingerprints nmap
// prints in its normal output, so the user can be asked to submit them.
package fingerprint

import (
	"fmt"
	"regexp"
	"strings"
)

// SubmitURL is where fingerprints are contributed.
const SubmitURL = "https://nmap.org/submit/"

// PromptTitle heads the contribution question.
const PromptTitle = "Unrecognized Services/OS Fingerprints Found!"

var (
	hostPattern    = regexp.MustCompile(`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`)
	osPattern      = regexp.MustCompile(`(?s)(SInfo.*\);)`)
	servicePattern = regexp.MustCompile(`(?s)(SF-Port.*\);)`)
	blankLines     = regexp.MustCompile(`\n[ \t]*\n`)
)

// Record holds the fingerprints seen for one host.
type Record struct {
	Host               string `json:"host"`
	OSFingerprint      string `json:"os_fingerprint,omitempty"`
	ServiceFingerprint string `json:"service_fingerprint,omitempty"`
}

// Result is the set of hosts with fingerprints, in first-seen order.
type Result struct {
	Records []Record `json:"records"`
}

// Len returns the number of hosts.
func (r Result) Len() int {
	return len(r.Records)
}

// Hosts returns the host addresses in first-seen order.
func (r Result) Hosts() []string {
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Host
	}
	return out
}

// Get returns the record for host.
func (r Result) Get(host string) (Record, bool) {
	for _, rec := range r.Records {
		if rec.Host == host {
			return rec, true
		}
	}
	return Record{}, false
}

// Scan walks raw output block by block. An IPv4 address moves the current
// host; fingerprint blocks attach to it. Fingerprints seen before any host
// are dropped.
func Scan(raw string) Result {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var (
		res     Result
		index   = make(map[string]int)
		current string
	)
	record := func(host string) *Record {
		i, ok := index[host]
		if !ok {
			i = len(res.Records)
			index[host] = i
			res.Records = append(res.Records, Record{Host: host})
		}
		return &res.Records[i]
	}

	for _, block := range blankLines.Split(raw, -1) {
		if m := hostPattern.FindStringSubmatch(block); m != nil {
			current = m[1]
		}
		if current == "" {
			continue
		}
		if m := osPattern.FindStringSubmatch(block); m != nil {
			record(current).OSFingerprint = m[1]
		}
		if m := servicePattern.FindStringSubmatch(block); m != nil {
			record(current).ServiceFingerprint = m[1]
		}
	}
	return res
}

const promptBody = "%s. The submission and registration of fingerprints are very important " +
	"for you and the Nmap project! If you would like to contribute to see your favorite " +
	"network mapper recognizing those fingerprints in the future, open " + SubmitURL +
	" for instructions about how to proceed on this registration."

// ContributePrompt returns the question to show after a scan, or "" when
// there is nothing to submit.
func ContributePrompt(res Result) string {
	switch res.Len() {
	case 0:
		return ""
	case 1:
		msg := "Your network scan discovered an unknown fingerprint sent by the host " + res.Records[0].Host
		return fmt.Sprintf(promptBody, msg)
	default:
		msg := "Your network scan discovered several unknown fingerprints sent by the following hosts: " +
			strings.Join(res.Hosts(), ", ")
		return fmt.Sprintf(promptBody, msg)
	}
}
