package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace scopes every tool call to one base directory and enforces the
// path-safety invariants from spec.md §4.3: no absolute paths, no
// parent-directory traversal, no symlink escape. Grounded on
// dev/read_file.go's validateFilePath, extended with a symlink-escape check
// (sidekick validates at the API boundary only; a local-model-facing tool
// surface needs it here too since there is no separate sandboxing layer).
type Workspace struct {
	BaseDir string
}

// NewWorkspace returns a Workspace rooted at baseDir, resolved to an
// absolute path.
func NewWorkspace(baseDir string) (*Workspace, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("tool: resolve workspace base dir: %w", err)
	}
	return &Workspace{BaseDir: abs}, nil
}

// Resolve validates rel and returns its absolute path inside the workspace.
func (w *Workspace) Resolve(rel string) (string, error) {
	if err := validateRelPath(rel); err != nil {
		return "", err
	}
	full := filepath.Join(w.BaseDir, rel)
	if err := w.checkSymlinkEscape(full); err != nil {
		return "", err
	}
	return full, nil
}

func validateRelPath(rel string) error {
	if rel == "" {
		return fmt.Errorf("tool: empty path")
	}
	if filepath.IsAbs(rel) {
		return fmt.Errorf("tool: path must be relative, got %q", rel)
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if segment == ".." {
			return fmt.Errorf("tool: path must not contain parent directory references: %q", rel)
		}
	}
	return nil
}

// checkSymlinkEscape walks up from full itself (or, if it does not exist
// yet, its deepest existing ancestor) and rejects any symlink whose
// resolved target falls outside BaseDir.
func (w *Workspace) checkSymlinkEscape(full string) error {
	dir := full
	for {
		info, err := os.Lstat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				parent := filepath.Dir(dir)
				if parent == dir {
					return nil
				}
				dir = parent
				continue
			}
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(dir)
			if err != nil {
				return fmt.Errorf("tool: resolve symlink %q: %w", dir, err)
			}
			if !withinBase(target, w.BaseDir) {
				return fmt.Errorf("tool: path escapes workspace via symlink: %q", dir)
			}
		}
		if dir == w.BaseDir {
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func withinBase(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
