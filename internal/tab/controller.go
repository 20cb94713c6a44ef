package tab

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/fingerprint"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
	"github.com/anstrom/scandeck/internal/process"
	"github.com/anstrom/scandeck/internal/profiles"
	"github.com/anstrom/scandeck/internal/results"
	"github.com/anstrom/scandeck/internal/views"
)

// Prompt titles.
const (
	titleSpawnFailed  = "Error executing command"
	titlePollFailed   = "Error running scan"
	titleParseFailed  = "Parse error"
	titleRootRequired = "Scan requires root privileges"
)

// Options are the collaborators shared by every tab.
type Options struct {
	Launcher process.Launcher
	Profiles *profiles.Store
	Surface  Surface
	Metrics  metrics.Recorder
	// Clock is used for scan durations; time.Now when nil.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Surface == nil {
		o.Surface = nopSurface{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// ArchiveSaver stores finished scans.
type ArchiveSaver interface {
	Save(ctx context.Context, entry *archive.Entry) error
}

// Controller is one tab. It is not safe for concurrent use: drive it from a
// single goroutine, normally through Loop.Do.
type Controller struct {
	id    uuid.UUID
	title string
	state State
	opts  Options

	store      *results.Store
	aggregator *views.Aggregator
	logger     *logging.Logger

	request   Request
	command   string
	handle    process.Handle
	startedAt time.Time
	output    string

	fingerprints fingerprint.Result
	savedPath    string
	archiveID    uuid.UUID
	closed       bool
}

// NewController creates an empty tab.
func NewController(title string, opts Options) *Controller {
	id := uuid.New()
	store := results.NewStore()
	return &Controller{
		id:         id,
		title:      title,
		state:      StateEmpty,
		opts:       opts.withDefaults(),
		store:      store,
		aggregator: views.NewAggregator(store),
		logger:     logging.Default().WithTab(id.String(), title),
	}
}

// ID returns the tab identifier.
func (c *Controller) ID() uuid.UUID { return c.id }

// Title returns the tab title.
func (c *Controller) Title() string { return c.title }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Request returns the request of the last started scan.
func (c *Controller) Request() Request { return c.request }

// Command returns the command line of the last started scan.
func (c *Controller) Command() string { return c.command }

// Output returns the scanner output shown in the tab.
func (c *Controller) Output() string { return c.output }

// Fingerprints returns the unknown fingerprints found after the last scan.
func (c *Controller) Fingerprints() fingerprint.Result { return c.fingerprints }

// SavedPath is where the result was last loaded from or saved to.
func (c *Controller) SavedPath() string { return c.savedPath }

// ArchiveID is the archive entry the result came from or was stored as.
func (c *Controller) ArchiveID() uuid.UUID { return c.archiveID }

// Enabled reports whether result widgets accept interaction.
func (c *Controller) Enabled() bool { return !c.closed && c.state.HasResults() }

// Closed reports whether Close was called.
func (c *Controller) Closed() bool { return c.closed }

func (c *Controller) setTitle(title string) {
	c.title = title
	c.logger = logging.Default().WithTab(c.id.String(), title)
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("tab state changed", "from", c.state, "to", s)
	c.state = s
	c.opts.Surface.StatusChanged(c.id, s)
}

func (c *Controller) setOutput(out string) {
	if out == c.output {
		return
	}
	c.output = out
	c.opts.Surface.OutputChanged(c.id, out)
}

func (c *Controller) prompt(kind PromptKind, title, text string) {
	c.opts.Surface.Prompt(c.id, Prompt{Kind: kind, Title: title, Text: text})
}

// StartScan validates req and launches it. A scan that is still running is
// only replaced when confirm agrees; otherwise ErrScanAborted is returned and
// the running scan is left alone.
func (c *Controller) StartScan(req Request, confirm ConfirmFunc) error {
	if c.closed {
		return errors.ErrInvalidState("start a scan", "closed")
	}
	command, err := BuildCommand(req, c.opts.Profiles)
	if err != nil {
		return err
	}

	if c.handle != nil {
		alive, pollErr := c.handle.Alive()
		if pollErr == nil && alive {
			if confirm == nil || !confirm() {
				return errors.ErrScanAborted()
			}
			c.logger.Info("killing running scan for a new one", "command", c.command)
		}
		c.stopProcess()
	}

	c.store.Clear()
	c.fingerprints = fingerprint.Result{}
	c.savedPath = ""
	c.archiveID = uuid.Nil
	c.request = req
	c.command = command
	c.setOutput("")
	c.publishResults()

	handle, err := c.opts.Launcher.Launch(command)
	if err != nil {
		c.logger.ErrorScan("failed to start scan", req.Target, err, "command", command)
		text := err.Error()
		var perr *errors.ProcessError
		if stderrors.As(err, &perr) && perr.Code == errors.CodeProcessSpawn {
			text = process.DescribeSpawnError(perr)
		}
		c.setOutput(text)
		c.setState(StateScanFailed)
		c.prompt(PromptError, titleSpawnFailed, text)
		return err
	}

	c.handle = handle
	c.startedAt = c.opts.Clock()
	c.opts.Metrics.ScanStarted(req.Profile)
	c.logger.InfoScan("scan started", req.Target, "command", command)
	c.setState(StateScanning)
	return nil
}

// Tick polls a running scan. It is a no-op in every other state.
func (c *Controller) Tick() {
	if c.state != StateScanning || c.handle == nil {
		return
	}

	alive, err := c.handle.Alive()
	if err != nil {
		c.logger.ErrorScan("lost the scan process", c.request.Target, err)
		c.finishScan(metrics.StatusFailed)
		c.setOutput(err.Error())
		c.setState(StateScanFailed)
		c.prompt(PromptError, titlePollFailed, err.Error())
		return
	}
	if alive {
		c.setOutput(c.handle.Output())
		return
	}

	c.setOutput(c.handle.Output())
	c.setState(StateParsingResult)

	data, readErr := os.ReadFile(c.handle.XMLOutputFile())
	if readErr != nil {
		c.logger.Warn("scan left no XML output", "file", c.handle.XMLOutputFile(), "error", readErr)
	}
	parseStart := c.opts.Clock()
	scan, err := results.Parse(data, c.output, c.handle.ErrorOutput())
	if err != nil {
		c.finishScan(metrics.StatusParseFailed)
		c.failParse(err)
		return
	}
	c.opts.Metrics.ParseCompleted(c.opts.Clock().Sub(parseStart), len(scan.Hosts))
	c.finishScan(metrics.StatusCompleted)

	scan.Session.Target = c.request.Target
	scan.Session.ProfileName = c.request.Profile
	if scan.Session.Command == "" {
		scan.Session.Command = c.command
	}
	scan.Profile = c.usedProfile()
	c.load(scan)
	c.setState(StateUnsavedUnchanged)

	c.fingerprints = fingerprint.Scan(c.output)
	if n := c.fingerprints.Len(); n > 0 {
		c.opts.Metrics.FingerprintsFound(n)
		c.prompt(PromptQuestion, fingerprint.PromptTitle, fingerprint.ContributePrompt(c.fingerprints))
	}
}

// finishScan records the end of the running scan and releases its process.
func (c *Controller) finishScan(status string) {
	c.opts.Metrics.ScanFinished(status, c.opts.Clock().Sub(c.startedAt))
	if c.handle != nil {
		c.handle.Cleanup()
		c.handle = nil
	}
}

// stopProcess kills and releases the current process, if any.
func (c *Controller) stopProcess() {
	if c.handle == nil {
		return
	}
	if err := c.handle.Kill(); err != nil {
		c.logger.Warn("failed to kill scan process", "error", err)
	}
	if c.state == StateScanning {
		c.opts.Metrics.ScanFinished(metrics.StatusKilled, c.opts.Clock().Sub(c.startedAt))
	}
	c.handle.Cleanup()
	c.handle = nil
}

func (c *Controller) failParse(err error) {
	c.store.Clear()
	c.publishResults()

	title, text := titleParseFailed, err.Error()
	var perr *errors.ParseError
	if stderrors.As(err, &perr) {
		if perr.Kind == errors.ParseRootRequired {
			title = titleRootRequired
			text = "You requested a scan type which requires root privileges."
		} else {
			text = "There was an error while parsing the XML file generated from the scan:\n\n" + perr.Error()
		}
		if perr.Output != "" {
			text += "\n\n" + perr.Output
		}
	}
	c.logger.Error("failed to parse scan result", "error", err)
	c.setState(StateScanFailed)
	c.prompt(PromptError, title, text)
}

// usedProfile snapshots the profile the current request named, if it exists.
func (c *Controller) usedProfile() *results.Profile {
	if c.request.Profile == "" || c.opts.Profiles == nil {
		return nil
	}
	p, err := c.opts.Profiles.Get(c.request.Profile)
	if err != nil {
		return nil
	}
	return &results.Profile{
		Name:        p.Name,
		Command:     p.Command,
		Hint:        p.Hint,
		Description: p.Description,
		Annotation:  p.Annotation,
		Options:     p.Options,
	}
}

// adoptProfile adds the profile a loaded result was made with to the profile
// store when the store does not know it yet.
func (c *Controller) adoptProfile(p *results.Profile) {
	store := c.opts.Profiles
	if p == nil || p.Name == "" || store == nil {
		return
	}
	if _, err := store.Get(p.Name); err == nil {
		return
	}
	err := store.Add(profiles.Profile{
		Name:        p.Name,
		Command:     p.Command,
		Hint:        p.Hint,
		Description: p.Description,
		Annotation:  p.Annotation,
		Options:     p.Options,
	})
	if err != nil {
		c.logger.Warn("ignoring profile stored with the result", "profile", p.Name, "error", err)
		return
	}
	if store.Path() != "" {
		if err := store.Save(); err != nil {
			c.logger.Warn("failed to persist profile from result", "profile", p.Name, "error", err)
		}
	}
	c.logger.Info("profile restored from result", "profile", p.Name)
}

func (c *Controller) load(scan *results.Scan) {
	c.store.Load(scan)
	if scan.RawOutput != "" {
		c.setOutput(scan.RawOutput)
	}
	c.publishResults()
}

func (c *Controller) publishResults() {
	c.opts.Surface.HostsChanged(c.id, c.aggregator.HostList())
	c.opts.Surface.ServicesChanged(c.id, c.aggregator.ServiceList())
}

// checkIdle refuses loads while a scan is running or after Close.
func (c *Controller) checkIdle(op string) error {
	if c.closed {
		return errors.ErrInvalidState(op, "closed")
	}
	if c.state == StateScanning {
		return errors.ErrInvalidState(op, string(c.state))
	}
	return nil
}

// LoadFile opens a saved scan result.
func (c *Controller) LoadFile(path string) error {
	if err := c.checkIdle("load a file"); err != nil {
		return err
	}
	c.setState(StateParsingResult)
	scan, err := results.ParseFile(path)
	if err != nil {
		c.failParse(err)
		return err
	}
	c.request = Request{Target: scan.Session.Target, Profile: scan.Session.ProfileName}
	c.command = scan.Session.Command
	c.fingerprints = fingerprint.Result{}
	c.savedPath = path
	c.archiveID = uuid.Nil
	c.load(scan)
	c.adoptProfile(scan.Profile)
	c.setState(StateLoadedUnchanged)
	c.logger.Info("scan result loaded", "path", path, "hosts", len(scan.Hosts))
	return nil
}

// LoadScan shows a scan that was parsed elsewhere and has not been saved.
func (c *Controller) LoadScan(scan *results.Scan) error {
	if err := c.checkIdle("load a scan"); err != nil {
		return err
	}
	c.setState(StateParsingResult)
	c.request = Request{Target: scan.Session.Target, Profile: scan.Session.ProfileName}
	c.command = scan.Session.Command
	c.fingerprints = fingerprint.Scan(scan.RawOutput)
	c.savedPath = ""
	c.archiveID = uuid.Nil
	c.load(scan)
	c.setState(StateUnsavedUnchanged)
	return nil
}

// LoadArchived reopens an archive entry.
func (c *Controller) LoadArchived(entry *archive.Entry) error {
	if err := c.checkIdle("load an archived scan"); err != nil {
		return err
	}
	c.setState(StateParsingResult)
	scan, err := results.Parse(entry.ScanXML, entry.RawOutput, "")
	if err != nil {
		c.failParse(err)
		return err
	}
	results.ApplyComments(scan, entry.Comments)
	scan.Session.Target = entry.Target
	scan.Session.ProfileName = entry.ProfileName
	if entry.Command != "" {
		scan.Session.Command = entry.Command
	}
	if entry.Profile.Name != "" {
		scan.Profile = &results.Profile{
			Name:        entry.Profile.Name,
			Command:     entry.Profile.Command,
			Hint:        entry.Profile.Hint,
			Description: entry.Profile.Description,
			Annotation:  entry.Profile.Annotation,
			Options:     entry.Profile.Options,
		}
	}

	c.request = Request{Target: entry.Target, Profile: entry.ProfileName}
	c.command = scan.Session.Command
	c.fingerprints = fingerprint.Result{}
	c.savedPath = ""
	c.archiveID = entry.ID
	c.load(scan)
	c.adoptProfile(scan.Profile)
	c.setState(StateSearchLoaded)
	return nil
}

// SetComment edits a host comment and marks the result changed.
func (c *Controller) SetComment(hostKey, text string) error {
	if !c.Enabled() {
		return errors.ErrInvalidState("edit a comment", string(c.state))
	}
	if err := c.store.SetComment(hostKey, text); err != nil {
		return err
	}
	c.setState(c.state.afterComment())
	return nil
}

// Save writes the result to path and clears the changed flag.
func (c *Controller) Save(path string) error {
	if !c.Enabled() {
		return errors.ErrInvalidState("save", string(c.state))
	}
	if err := c.store.Save(path); err != nil {
		return err
	}
	c.savedPath = path
	c.setState(StateSaved)
	c.logger.Info("scan result saved", "path", path)
	return nil
}

// Archive stores the result through saver. It counts as a save.
func (c *Controller) Archive(ctx context.Context, saver ArchiveSaver) (*archive.Entry, error) {
	if !c.Enabled() {
		return nil, errors.ErrInvalidState("archive", string(c.state))
	}
	entry := c.ArchiveEntry()
	if err := saver.Save(ctx, entry); err != nil {
		return nil, err
	}
	c.archiveID = entry.ID
	c.setState(StateSaved)
	return entry, nil
}

// ArchiveEntry builds an archive record of the current result.
func (c *Controller) ArchiveEntry() *archive.Entry {
	scan := c.store.Scan()
	entry := &archive.Entry{
		ID:          c.archiveID,
		Title:       c.title,
		Target:      c.request.Target,
		ProfileName: c.request.Profile,
		Command:     c.command,
		Hostnames:   pq.StringArray{},
		Comments:    archive.Comments(c.store.Comments()),
	}
	if scan == nil {
		return entry
	}
	for _, h := range scan.Hosts {
		entry.Hostnames = append(entry.Hostnames, h.Key)
	}
	entry.HostsUp = scan.Session.HostsUp
	entry.HostsDown = scan.Session.HostsDown
	entry.ScanXML = scan.RawXML
	entry.RawOutput = scan.RawOutput
	entry.StartedAt = scan.Session.Start
	if p := scan.Profile; p != nil {
		entry.Profile = archive.Profile{
			Name:        p.Name,
			Command:     p.Command,
			Hint:        p.Hint,
			Description: p.Description,
			Annotation:  p.Annotation,
			Options:     p.Options,
		}
	}
	return entry
}

// Kill stops any running scan and empties the tab.
func (c *Controller) Kill() {
	if c.handle != nil {
		c.logger.InfoScan("scan killed", c.request.Target)
	}
	c.stopProcess()
	c.store.Clear()
	c.fingerprints = fingerprint.Result{}
	c.setOutput("")
	c.publishResults()
	c.setState(StateEmpty)
}

// Close kills the tab's scan and releases it. Further calls fail.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.Kill()
	c.closed = true
}

// HostList returns the host list rows.
func (c *Controller) HostList() []views.HostListRow { return c.aggregator.HostList() }

// ServiceList returns the service names.
func (c *Controller) ServiceList() []string { return c.aggregator.ServiceList() }

// SelectHosts returns the port view for the selected hosts.
func (c *Controller) SelectHosts(keys []string) views.HostView {
	return c.aggregator.ViewForHosts(keys)
}

// SelectServices returns the host view for the selected services.
func (c *Controller) SelectServices(names []string) views.ServiceView {
	return c.aggregator.ViewForServices(names)
}

// Details returns the detail page for one host.
func (c *Controller) Details(key string) (views.HostDetails, error) {
	d, ok := c.aggregator.Details(key)
	if !ok {
		return views.HostDetails{}, errors.ErrNotFound("host", key)
	}
	return d, nil
}

// RunDetails returns the scan session summary.
func (c *Controller) RunDetails() results.Session { return c.aggregator.RunDetails() }

// String implements fmt.Stringer for logs.
func (c *Controller) String() string {
	return fmt.Sprintf("%s (%s, %s)", c.title, c.id, c.state)
}
