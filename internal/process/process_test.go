package process

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/errors"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "empty", line: "", want: nil},
		{name: "blank", line: "   \t ", want: nil},
		{name: "plain", line: "nmap -T4 -F 10.0.0.1", want: []string{"nmap", "-T4", "-F", "10.0.0.1"}},
		{name: "extra spaces", line: "  nmap   -sn  host ", want: []string{"nmap", "-sn", "host"}},
		{name: "double quotes", line: `nmap --script "http-title and not brute" host`,
			want: []string{"nmap", "--script", "http-title and not brute", "host"}},
		{name: "single quotes keep backslash", line: `nmap '-p\1'`, want: []string{"nmap", `-p\1`}},
		{name: "escaped space", line: `nmap -iL my\ targets.txt`, want: []string{"nmap", "-iL", "my targets.txt"}},
		{name: "empty quoted argument", line: `nmap ""`, want: []string{"nmap", ""}},
		{name: "unterminated quote", line: `nmap "oops`, wantErr: true},
		{name: "dangling backslash", line: `nmap host\`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtraDirsNotInPath(t *testing.T) {
	path := []string{"/usr/bin", "/usr/local/bin/"}
	extra := []string{"/usr/local/bin", "/opt/nmap/bin", "/sw/bin"}

	assert.Equal(t, []string{"/opt/nmap/bin", "/sw/bin"}, ExtraDirsNotInPath(path, extra))
	assert.Empty(t, ExtraDirsNotInPath(path, nil))
}

func TestLaunchErrors(t *testing.T) {
	l := NewExecLauncher("", []string{"/nonexistent/extra"}, t.TempDir())

	_, err := l.Launch("   ")
	assert.True(t, errors.IsCode(err, errors.CodeEmptyCommand))

	_, err = l.Launch(`nmap "unterminated`)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	t.Setenv("PATH", t.TempDir())
	_, err = l.Launch("nmap -sn host")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeProcessSpawn))
	var perr *errors.ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "nmap", perr.Executable)
	assert.Contains(t, perr.SearchPaths, "/nonexistent/extra")

	_, err = l.Launch("/nonexistent/dir/nmap -sn host")
	assert.True(t, errors.IsCode(err, errors.CodeProcessSpawn))
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func waitDone(t *testing.T, h Handle) {
	t.Helper()
	require.Eventually(t, func() bool {
		alive, err := h.Alive()
		require.NoError(t, err)
		return !alive
	}, 10*time.Second, 20*time.Millisecond)
}

func TestLaunchRunsToCompletion(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "nmap", "echo scanning \"$1\"\necho warn >&2\nexit 3\n")

	l := NewExecLauncher("", nil, dir)
	h, err := l.Launch(script + " target.example")
	require.NoError(t, err)
	defer h.Cleanup()

	waitDone(t, h)
	assert.Equal(t, 3, h.ExitCode())
	assert.Equal(t, "scanning target.example\n", h.Output())
	assert.Equal(t, "warn\n", h.ErrorOutput())
	assert.FileExists(t, h.XMLOutputFile())
	assert.NoError(t, h.Kill(), "killing a finished process is a no-op")

	h.Cleanup()
	assert.NoFileExists(t, h.XMLOutputFile())
}

func TestLaunchUsesExtraPathsAndNmapPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(bin, 0o755))
	writeScript(t, bin, "nmap", "echo extra\n")
	t.Setenv("PATH", t.TempDir())

	l := NewExecLauncher("", []string{bin}, dir)
	h, err := l.Launch("nmap")
	require.NoError(t, err)
	defer h.Cleanup()
	waitDone(t, h)
	assert.Equal(t, "extra\n", h.Output())

	replacement := writeScript(t, dir, "replacement", "echo replaced\n")
	l = NewExecLauncher(replacement, nil, dir)
	h2, err := l.Launch("nmap -sn host")
	require.NoError(t, err)
	defer h2.Cleanup()
	waitDone(t, h2)
	assert.Equal(t, "replaced\n", h2.Output())
}

func TestLaunchRejectsOtherExecutables(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "created")
	l := NewExecLauncher("/opt/scanner/bin/nmap-7.94", nil, dir)

	for _, command := range []string{
		"sh -c 'touch " + marker + "'",
		"/bin/sh -c 'touch " + marker + "'",
		"touch " + marker,
		"nmapx -sn host",
		"/usr/bin/nmap.sh -sn host",
	} {
		_, err := l.Launch(command)
		assert.True(t, errors.IsCode(err, errors.CodeValidation), command)
	}
	assert.NoFileExists(t, marker)

	assert.True(t, l.Allowed("nmap"))
	assert.True(t, l.Allowed("/usr/local/bin/nmap"))
	assert.True(t, l.Allowed("/opt/scanner/bin/nmap-7.94"))
	assert.False(t, l.Allowed("/opt/scanner/bin/other"))
}

func TestKillRunningProcess(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "nmap", "exec sleep 30\n")

	h, err := NewExecLauncher("", nil, dir).Launch(script)
	require.NoError(t, err)
	defer h.Cleanup()

	alive, err := h.Alive()
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, -1, h.ExitCode())

	require.NoError(t, h.Kill())
	waitDone(t, h)
}

func TestDescribeSpawnError(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/bin")

	perr := errors.NewSpawnError("nmap", []string{"/usr/bin", "/bin", "/opt/nmap"}, nil)
	assert.Equal(t, "nmap was not found. The PATH environment variable is\n  /usr/bin:/bin\n"+
		"plus the extra directory\n  /opt/nmap", DescribeSpawnError(perr))

	perr = errors.NewSpawnError("nmap", []string{"/usr/bin", "/bin"}, nil)
	assert.Equal(t, "nmap was not found. The PATH environment variable is\n  /usr/bin:/bin", DescribeSpawnError(perr))
}
