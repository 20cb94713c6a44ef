// Package process runs the nmap executable for a tab and exposes a
// non-blocking handle the tab polls.
package process

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

//go:generate mockgen -destination=mocks/mock_handle.go -package=mocks github.com/anstrom/scandeck/internal/process Handle,Launcher

// Handle is a running (or finished) scanner process.
type Handle interface {
	// Alive reports whether the process is still running. It never blocks.
	Alive() (bool, error)
	// Kill terminates the process without negotiation.
	Kill() error
	// Output returns what the process has written to stdout so far.
	Output() string
	// ErrorOutput returns what the process has written to stderr so far.
	ErrorOutput() string
	// XMLOutputFile is where the process writes its XML result.
	XMLOutputFile() string
	// ExitCode is -1 while the process runs.
	ExitCode() int
	// Cleanup removes temporary files.
	Cleanup()
}

// Launcher starts scanner processes from a command line.
type Launcher interface {
	Launch(command string) (Handle, error)
}

// ExecLauncher starts processes with os/exec.
type ExecLauncher struct {
	// Replaces a leading "nmap" in commands when set. It is also the only
	// executable besides "nmap" that Launch agrees to run.
	NmapPath string
	// Directories searched after PATH when the executable has no slash.
	ExtraPaths []string
	// Directory for temporary output files; os.TempDir when empty.
	OutputDir string

	logger *logging.Logger
}

// NewExecLauncher creates a launcher.
func NewExecLauncher(nmapPath string, extraPaths []string, outputDir string) *ExecLauncher {
	return &ExecLauncher{
		NmapPath:   nmapPath,
		ExtraPaths: extraPaths,
		OutputDir:  outputDir,
		logger:     logging.Default().WithComponent("process"),
	}
}

// Launch splits command, resolves its executable and starts it with XML
// output redirected to a temporary file. Commands that do not run nmap are
// rejected.
func (l *ExecLauncher) Launch(command string) (Handle, error) {
	args, err := SplitCommand(command)
	if err != nil {
		return nil, errors.NewScanError(errors.CodeValidation, err.Error())
	}
	if len(args) == 0 {
		return nil, errors.ErrEmptyCommand()
	}

	if !l.Allowed(args[0]) {
		return nil, errors.NewScanError(errors.CodeValidation,
			fmt.Sprintf("%s is not nmap; only nmap commands can be run", args[0]))
	}
	if args[0] == "nmap" && l.NmapPath != "" {
		args[0] = l.NmapPath
	}
	path, err := l.resolve(args[0])
	if err != nil {
		return nil, err
	}

	cmd, err := newNmapCommand(path, args[1:], l.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := cmd.start(); err != nil {
		cmd.Cleanup()
		return nil, errors.NewSpawnError(args[0], l.searchPaths(), err)
	}
	l.logger.Info("scanner started", "executable", path, "pid", cmd.cmd.Process.Pid, "xml", cmd.xmlFile)
	return cmd, nil
}

// Allowed reports whether executable names nmap or the configured nmap path.
func (l *ExecLauncher) Allowed(executable string) bool {
	if l.NmapPath != "" && filepath.Clean(executable) == filepath.Clean(l.NmapPath) {
		return true
	}
	base := filepath.Base(executable)
	return base == "nmap" || base == "nmap.exe"
}

// searchPaths lists PATH entries followed by the extra directories that
// PATH does not already contain.
func (l *ExecLauncher) searchPaths() []string {
	pathEntries := filepath.SplitList(os.Getenv("PATH"))
	return append(pathEntries, ExtraDirsNotInPath(pathEntries, l.ExtraPaths)...)
}

// ExtraDirsNotInPath filters extra down to directories absent from pathEntries.
func ExtraDirsNotInPath(pathEntries, extra []string) []string {
	inPath := make(map[string]bool, len(pathEntries))
	for _, p := range pathEntries {
		inPath[filepath.Clean(p)] = true
	}
	var out []string
	for _, d := range extra {
		if !inPath[filepath.Clean(d)] {
			out = append(out, d)
		}
	}
	return out
}

func (l *ExecLauncher) resolve(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if isExecutable(name) {
			return name, nil
		}
		return "", errors.NewSpawnError(name, []string{filepath.Dir(name)}, os.ErrNotExist)
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	pathEntries := filepath.SplitList(os.Getenv("PATH"))
	for _, dir := range ExtraDirsNotInPath(pathEntries, l.ExtraPaths) {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", errors.NewSpawnError(name, l.searchPaths(), exec.ErrNotFound)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
}

// NmapCommand is a Handle backed by os/exec.
type NmapCommand struct {
	cmd     *exec.Cmd
	xmlFile string
	stdout  *os.File
	stderr  *os.File

	done chan struct{}

	mu       sync.Mutex
	waitErr  error
	exitCode int
	killed   bool
}

func newNmapCommand(path string, args []string, dir string) (*NmapCommand, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	xml, err := os.CreateTemp(dir, "scandeck-*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to create XML output file: %w", err)
	}
	_ = xml.Close()

	stdout, err := os.CreateTemp(dir, "scandeck-*.out")
	if err != nil {
		_ = os.Remove(xml.Name())
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	stderr, err := os.CreateTemp(dir, "scandeck-*.err")
	if err != nil {
		_ = os.Remove(xml.Name())
		_ = stdout.Close()
		_ = os.Remove(stdout.Name())
		return nil, fmt.Errorf("failed to create error file: %w", err)
	}

	full := append(append([]string{}, args...), "-oX", xml.Name())
	cmd := exec.Command(path, full...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return &NmapCommand{
		cmd:      cmd,
		xmlFile:  xml.Name(),
		stdout:   stdout,
		stderr:   stderr,
		done:     make(chan struct{}),
		exitCode: -1,
	}, nil
}

// start launches the process and reaps it in the background so Alive can
// check completion without blocking.
func (c *NmapCommand) start() error {
	if err := c.cmd.Start(); err != nil {
		return err
	}
	go func() {
		err := c.cmd.Wait()
		c.mu.Lock()
		c.waitErr = err
		if c.cmd.ProcessState != nil {
			c.exitCode = c.cmd.ProcessState.ExitCode()
		}
		c.mu.Unlock()
		close(c.done)
	}()
	return nil
}

// Alive implements Handle.
func (c *NmapCommand) Alive() (bool, error) {
	if c.cmd.Process == nil {
		return false, errors.NewPollError("process was never started", nil)
	}
	select {
	case <-c.done:
	default:
		return true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waitErr != nil && !c.killed {
		var exitErr *exec.ExitError
		if !stderrors.As(c.waitErr, &exitErr) {
			return false, errors.NewPollError("lost track of scanner process", c.waitErr)
		}
	}
	return false, nil
}

// Kill implements Handle.
func (c *NmapCommand) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	select {
	case <-c.done:
		return nil
	default:
	}
	c.mu.Lock()
	c.killed = true
	c.mu.Unlock()
	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if err := c.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("failed to kill scanner: %w", err)
		}
	}
	return nil
}

// Output implements Handle.
func (c *NmapCommand) Output() string {
	return readAll(c.stdout.Name())
}

// ErrorOutput implements Handle.
func (c *NmapCommand) ErrorOutput() string {
	return readAll(c.stderr.Name())
}

// XMLOutputFile implements Handle.
func (c *NmapCommand) XMLOutputFile() string {
	return c.xmlFile
}

// ExitCode implements Handle.
func (c *NmapCommand) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// Cleanup implements Handle.
func (c *NmapCommand) Cleanup() {
	_ = c.stdout.Close()
	_ = c.stderr.Close()
	for _, name := range []string{c.xmlFile, c.stdout.Name(), c.stderr.Name()} {
		_ = os.Remove(name)
	}
}

func readAll(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// DescribeSpawnError renders the explanation shown when the scanner could not
// be started. Search paths that are not in the current PATH are listed as
// extra directories.
func DescribeSpawnError(perr *errors.ProcessError) string {
	pathEntries := filepath.SplitList(os.Getenv("PATH"))
	return perr.Describe(pathEntries, ExtraDirsNotInPath(pathEntries, perr.SearchPaths))
}
