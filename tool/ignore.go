package tool

import (
	"github.com/denormal/go-gitignore"
)

// workspaceIgnore wraps a .gitignore rooted at the workspace base directory.
// Grounded on common/walk_directory.go's IgnoreManager, simplified to a
// single root-level ignore file rather than the teacher's full
// directory-chain precedence (this tool surface has no per-subdirectory
// .sideignore/.ignore concept).
type workspaceIgnore struct {
	gi gitignore.GitIgnore
}

// Match reports whether relPath (workspace-root-relative, slash-separated)
// is ignored.
func (w *workspaceIgnore) Match(relPath string, isDir bool) bool {
	if w == nil || w.gi == nil {
		return false
	}
	match := w.gi.Absolute(relPath, isDir)
	return match != nil && match.Ignore()
}

// loadIgnore loads the workspace's root .gitignore, if any. A missing or
// unparsable file yields a nil-safe workspaceIgnore that matches nothing.
func (d *Dispatcher) loadIgnore() *workspaceIgnore {
	gi, err := gitignore.NewRepositoryWithFile(d.Workspace.BaseDir, ".gitignore")
	if err != nil {
		return nil
	}
	return &workspaceIgnore{gi: gi}
}
