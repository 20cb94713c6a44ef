package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/errors"
)

func TestResolveResultPath(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	outside := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "office"), 0o750))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "x.xml"), filepath.Join(root, "x.xml")))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain name", raw: "scan.xml", want: filepath.Join(root, "scan.xml")},
		{name: "subdirectory", raw: "office/scan.xml", want: filepath.Join(root, "office", "scan.xml")},
		{name: "dot segments that stay inside", raw: "office/../scan.xml", want: filepath.Join(root, "scan.xml")},
		{name: "absolute inside", raw: filepath.Join(root, "scan.xml"), want: filepath.Join(root, "scan.xml")},
		{name: "parent escape", raw: "../scan.xml"},
		{name: "absolute outside", raw: filepath.Join(outside, "scan.xml")},
		{name: "the directory itself", raw: "."},
		{name: "symlinked directory", raw: "escape/scan.xml"},
		{name: "symlinked file", raw: "x.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveResultPath(root, tt.raw)
			if tt.want == "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeFilePermission))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveResultPathWithoutDirectory(t *testing.T) {
	_, err := resolveResultPath("", "scan.xml")
	assert.True(t, errors.IsCode(err, errors.CodeFilePermission))
}

func TestResolveResultPathCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "results")
	_, err := resolveResultPath(root, "scan.xml")
	require.NoError(t, err)
	assert.DirExists(t, root)
}
