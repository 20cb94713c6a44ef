package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/anstrom/scandeck/internal/errors"
)

const resultsDirPerm = 0750

// resolveResultPath maps a client supplied path onto a file inside dir.
// Relative paths are taken relative to dir; absolute paths must already
// point inside it. Paths that leave dir, directly or through a symlinked
// parent, are refused.
func resolveResultPath(dir, raw string) (string, error) {
	if dir == "" {
		return "", errors.NewScanError(errors.CodeFilePermission, "no results directory is configured")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", &errors.ScanError{Code: errors.CodeFilePermission, Message: "invalid results directory", Cause: err}
	}
	if err := os.MkdirAll(root, resultsDirPerm); err != nil {
		return "", &errors.ScanError{Code: errors.CodeFilePermission, Message: "cannot create results directory", Cause: err}
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	target := raw
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if !within(root, target) {
		return "", outsideResults(raw)
	}

	// The file may not exist yet on save, so only its directory is resolved.
	parent, err := filepath.EvalSymlinks(filepath.Dir(target))
	if err == nil {
		target = filepath.Join(parent, filepath.Base(target))
		if !within(root, target) {
			return "", outsideResults(raw)
		}
	}
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil || !within(root, resolved) {
			return "", outsideResults(raw)
		}
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func outsideResults(raw string) error {
	return errors.NewScanError(errors.CodeFilePermission, raw+" is outside the results directory")
}
