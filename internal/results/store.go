// Package results holds the parsed contents of one scan: its hosts, their
// ports, the services index and the run-level session summary.
package results

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

const (
	resultFilePerm = 0644
	commentsSuffix = ".comments.yaml"
)

// sidecar is what Save writes next to the XML.
type sidecar struct {
	Profile  *Profile          `yaml:"profile,omitempty"`
	Comments map[string]string `yaml:"comments,omitempty"`
}

// Store holds the current scan of a tab. Load replaces everything at once;
// after that only comments change.
type Store struct {
	mu sync.RWMutex

	scan     *Scan
	hosts    []*Host
	byKey    map[string]*Host
	services map[string][]ServiceEntry
	order    []string
	edited   map[string]bool

	logger *logging.Logger
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byKey:    make(map[string]*Host),
		services: make(map[string][]ServiceEntry),
		edited:   make(map[string]bool),
		logger:   logging.Default().WithComponent("results"),
	}
}

// Load replaces the store's contents with scan.
func (s *Store) Load(scan *Scan) {
	byKey := make(map[string]*Host, len(scan.Hosts))
	services := make(map[string][]ServiceEntry)
	var order []string
	edited := make(map[string]bool, len(scan.overridden))
	for key := range scan.overridden {
		edited[key] = true
	}

	for _, h := range scan.Hosts {
		if prev, ok := byKey[h.Key]; ok && prev != h {
			s.logger.Warn("duplicate host key, later host shadows earlier one in lookups",
				"key", h.Key, "first", prev.Address(), "second", h.Address())
		}
		byKey[h.Key] = h

		for _, p := range h.Ports {
			switch p.State {
			case StateOpen, StateFiltered, StateOpenFiltered:
			default:
				continue
			}
			if _, seen := services[p.Service]; !seen {
				order = append(order, p.Service)
			}
			services[p.Service] = append(services[p.Service], ServiceEntry{HostKey: h.Key, Port: p})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scan = scan
	s.hosts = scan.Hosts
	s.byKey = byKey
	s.services = services
	s.order = order
	s.edited = edited
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scan = nil
	s.hosts = nil
	s.byKey = make(map[string]*Host)
	s.services = make(map[string][]ServiceEntry)
	s.order = nil
	s.edited = make(map[string]bool)
}

// Empty reports whether nothing has been loaded.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan == nil
}

// Scan returns the loaded scan, or nil.
func (s *Store) Scan() *Scan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan
}

// Session returns the run summary of the loaded scan.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return Session{}
	}
	return s.scan.Session
}

// Hosts returns hosts in parse order.
func (s *Store) Hosts() []*Host {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Host, len(s.hosts))
	copy(out, s.hosts)
	return out
}

// Host looks a host up by key.
func (s *Store) Host(key string) (*Host, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byKey[key]
	return h, ok
}

// ServiceNames returns service names in first-seen order.
func (s *Store) ServiceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Service returns the index entries for one service name.
func (s *Store) Service(name string) []ServiceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.services[name]
	out := make([]ServiceEntry, len(entries))
	copy(out, entries)
	return out
}

// SetComment replaces the comment of the host with key.
func (s *Store) SetComment(key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.byKey[key]
	if !ok {
		return errors.ErrNotFound("host", key)
	}
	h.Comment = text
	s.edited[key] = true
	return nil
}

// Comments returns host comments by key: every non-empty one, plus edited
// ones even when cleared, so they override the comment stored in the XML.
func (s *Store) Comments() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for _, h := range s.hosts {
		if h.Comment != "" || s.edited[h.Key] {
			out[h.Key] = h.Comment
		}
	}
	return out
}

// Save writes the original XML unchanged to path, and the comments and scan
// profile next to it in path + ".comments.yaml". A stale sidecar is removed
// when there is nothing to record.
func (s *Store) Save(path string) error {
	scan := s.Scan()
	if scan == nil {
		return errors.ErrInvalidState("save", "empty")
	}
	if err := os.WriteFile(path, scan.RawXML, resultFilePerm); err != nil {
		return fmt.Errorf("failed to write scan result: %w", err)
	}

	extra := sidecar{Profile: scan.Profile, Comments: s.Comments()}
	extraPath := path + commentsSuffix
	if len(extra.Comments) == 0 && extra.Profile == nil {
		if err := os.Remove(extraPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale comments: %w", err)
		}
		return nil
	}

	data, err := yaml.Marshal(&extra)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	if err := os.WriteFile(extraPath, data, resultFilePerm); err != nil {
		return fmt.Errorf("failed to write comments: %w", err)
	}
	return nil
}

// ParseFile reads a saved result and its comment sidecar, if any.
func ParseFile(path string) (*Scan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound("result file", path)
		}
		return nil, fmt.Errorf("failed to read scan result: %w", err)
	}

	scan, err := Parse(data, "", "")
	if err != nil {
		return nil, err
	}

	data, err = os.ReadFile(path + commentsSuffix)
	switch {
	case os.IsNotExist(err):
		return scan, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	var extra sidecar
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}
	ApplyComments(scan, extra.Comments)
	if extra.Profile != nil && extra.Profile.Name != "" {
		scan.Profile = extra.Profile
		if scan.Session.ProfileName == "" {
			scan.Session.ProfileName = extra.Profile.Name
		}
	}
	return scan, nil
}

// ApplyComments sets host comments from a key to text map. An empty text
// clears the comment nmap wrote into the XML.
func ApplyComments(scan *Scan, comments map[string]string) {
	for _, h := range scan.Hosts {
		c, ok := comments[h.Key]
		if !ok {
			continue
		}
		h.Comment = c
		if scan.overridden == nil {
			scan.overridden = make(map[string]bool)
		}
		scan.overridden[h.Key] = true
	}
}
