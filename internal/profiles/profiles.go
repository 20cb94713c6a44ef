// Package profiles manages named scan profiles: command templates that turn
// a target into a full nmap command line. Profiles live in a YAML file and
// fall back to a built-in set.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

// TargetPlaceholder stands in for the target when none was given.
const TargetPlaceholder = "<target>"

const profileFilePerm = 0o600

// Profile is one named scan template. Command holds a single %s where the
// target goes.
type Profile struct {
	Name        string            `yaml:"name" json:"name" validate:"required,max=100"`
	Command     string            `yaml:"command" json:"command" validate:"required"`
	Hint        string            `yaml:"hint,omitempty" json:"hint,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Annotation  string            `yaml:"annotation,omitempty" json:"annotation,omitempty"`
	Options     map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Build fills the template with target.
func (p Profile) Build(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		target = TargetPlaceholder
	}
	if !strings.Contains(p.Command, "%s") {
		return strings.TrimSpace(p.Command + " " + target)
	}
	return strings.TrimSpace(strings.Replace(p.Command, "%s", target, 1))
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Store keeps profiles by name. It is safe for concurrent use.
type Store struct {
	path     string
	validate *validator.Validate

	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewStore creates a store bound to path, seeded with DefaultProfiles.
// An empty path keeps the store in memory.
func NewStore(path string) *Store {
	s := &Store{
		path:     path,
		validate: validator.New(),
		profiles: make(map[string]Profile),
	}
	for _, p := range DefaultProfiles() {
		s.profiles[p.Name] = p
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. A missing file keeps the defaults. Profiles in
// the file replace defaults of the same name.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logging.Debug("profile file not found, using defaults", "path", s.path)
		return nil
	}
	if err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to read profiles", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to parse profiles", err)
	}
	for i := range file.Profiles {
		if err := s.check(&file.Profiles[i]); err != nil {
			return fmt.Errorf("profile %d in %s: %w", i+1, s.path, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range file.Profiles {
		s.profiles[p.Name] = p
	}
	logging.Info("profiles loaded", "path", s.path, "count", len(file.Profiles))
	return nil
}

// Save writes every profile to the backing file, sorted by name.
func (s *Store) Save() error {
	if s.path == "" {
		return errors.NewConfigFieldError(errors.CodeConfiguration, "no profile file configured", "profiles.file", "")
	}
	file := profileFile{Profiles: s.List()}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, profileFilePerm); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// Names returns the profile names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every profile sorted by name.
func (s *Store) List() []Profile {
	names := s.Names()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		if p, ok := s.profiles[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the named profile.
func (s *Store) Get(name string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, errors.ErrNotFound("profile", name)
	}
	return p, nil
}

// Add validates p and stores it, replacing a profile with the same name.
func (s *Store) Add(p Profile) error {
	if err := s.check(&p); err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[p.Name] = p
	s.mu.Unlock()
	return nil
}

// Remove deletes the named profile.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		return errors.ErrNotFound("profile", name)
	}
	delete(s.profiles, name)
	return nil
}

// BuildCommand fills the named profile's template with target.
func (s *Store) BuildCommand(name, target string) (string, error) {
	p, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return p.Build(target), nil
}

func (s *Store) check(p *Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Command = strings.TrimSpace(p.Command)
	if err := s.validate.Struct(p); err != nil {
		return errors.WrapConfigError(errors.CodeValidation, "invalid profile", err)
	}
	if strings.Count(p.Command, "%s") > 1 {
		return errors.NewConfigFieldError(errors.CodeValidation,
			"command may hold at most one target placeholder", "command", p.Command)
	}
	return nil
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:        "Intense scan",
			Command:     "nmap -T4 -A -v %s",
			Hint:        "Fast, with OS and version detection, script scanning and traceroute",
			Description: "An intense, comprehensive scan.",
		},
		{
			Name:        "Intense scan plus UDP",
			Command:     "nmap -sS -sU -T4 -A -v %s",
			Description: "Does OS detection, version detection, script scanning, and traceroute in addition to scanning TCP and UDP ports.",
		},
		{
			Name:        "Intense scan, all TCP ports",
			Command:     "nmap -p 1-65535 -T4 -A -v %s",
			Description: "Scans all TCP ports, then does OS detection, version detection, script scanning, and traceroute.",
		},
		{
			Name:        "Intense scan, no ping",
			Command:     "nmap -T4 -A -v -Pn %s",
			Description: "Does an intense scan without checking first whether targets are up.",
		},
		{
			Name:        "Ping scan",
			Command:     "nmap -sn %s",
			Description: "Only finds which targets are online, without port scanning them.",
		},
		{
			Name:        "Quick scan",
			Command:     "nmap -T4 -F %s",
			Description: "Faster than a normal scan; scans fewer ports than the default.",
		},
		{
			Name:        "Quick scan plus",
			Command:     "nmap -sV -T4 -O -F --version-light %s",
			Description: "A quick scan plus OS and version detection.",
		},
		{
			Name:        "Quick traceroute",
			Command:     "nmap -sn --traceroute %s",
			Description: "Traces the paths to targets without doing a full port scan.",
		},
		{
			Name:        "Regular scan",
			Command:     "nmap %s",
			Description: "A basic port scan with no extra options.",
		},
		{
			Name: "Slow comprehensive scan",
			Command: "nmap -sS -sU -T4 -A -v -PE -PP -PS80,443 -PA3389 -PU40125 -PY " +
				"-g 53 --script \"default or (discovery and safe)\" %s",
			Description: "A comprehensive, slow scan. Every TCP and UDP probe type is tried.",
		},
	}
}
