package tool

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"vex/chat"
)

const maxEditSnippetBytes = 64 * 1024

// readFile returns a path's raw content unchanged. Snapshot comparison
// happens exactly once, at the engine layer (summarizeReadFile), which is
// the only caller that knows whether this is the text the model will see
// verbatim or content about to be wrapped in a summary — observing here
// too would record a second, different string under the same path and
// make every read look changed.
func (d *Dispatcher) readFile(args chat.Value) (string, error) {
	path, err := require(ReadFile, args, argPath)
	if err != nil {
		return "", err
	}
	full, err := d.Workspace.Resolve(path)
	if err != nil {
		return "", execErr(ReadFile, err)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return "", execErr(ReadFile, fmt.Errorf("read %s: %w", path, err))
	}
	return string(raw), nil
}

func (d *Dispatcher) writeFile(args chat.Value) (string, error) {
	path, err := require(WriteFile, args, argPath)
	if err != nil {
		return "", err
	}
	content, err := require(WriteFile, args, argContent)
	if err != nil {
		return "", err
	}
	full, err := d.Workspace.Resolve(path)
	if err != nil {
		return "", execErr(WriteFile, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", execErr(WriteFile, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", execErr(WriteFile, err)
	}
	return fmt.Sprintf("Wrote %s (%d chars).", path, len(content)), nil
}

func (d *Dispatcher) editFile(args chat.Value) (string, error) {
	path, err := require(EditFile, args, argPath)
	if err != nil {
		return "", err
	}
	oldStr, err := require(EditFile, args, argOldStr)
	if err != nil {
		return "", err
	}
	newStr, err := require(EditFile, args, argNewStr)
	if err != nil {
		return "", err
	}
	if len(oldStr) > maxEditSnippetBytes || len(newStr) > maxEditSnippetBytes {
		return "", execErr(EditFile, fmt.Errorf("edit snippet too large (max %d bytes)", maxEditSnippetBytes))
	}

	full, err := d.Workspace.Resolve(path)
	if err != nil {
		return "", execErr(EditFile, err)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return "", execErr(EditFile, fmt.Errorf("read %s: %w", path, err))
	}
	before := string(raw)

	count := strings.Count(before, oldStr)
	if count == 0 {
		return "", execErr(EditFile, fmt.Errorf("old_str not found in %s", path))
	}
	if count > 1 {
		return "", execErr(EditFile, fmt.Errorf("old_str is ambiguous in %s (%d occurrences)", path, count))
	}
	if oldStr == before {
		return "", execErr(EditFile, fmt.Errorf("old_str matches the whole file; edit_file does not replace entire files"))
	}

	after := strings.Replace(before, oldStr, newStr, 1)
	if err := os.WriteFile(full, []byte(after), 0o644); err != nil {
		return "", execErr(EditFile, err)
	}

	return fmt.Sprintf("Updated snippet in %s (%d chars/%d lines -> %d chars/%d lines).",
		path, len(before), countLines(before), len(after), countLines(after)), nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func (d *Dispatcher) renameFile(args chat.Value) (string, error) {
	oldPath, err := require(RenameFile, args, argOldPath)
	if err != nil {
		return "", err
	}
	newPath, err := require(RenameFile, args, argNewPath)
	if err != nil {
		return "", err
	}
	oldFull, err := d.Workspace.Resolve(oldPath)
	if err != nil {
		return "", execErr(RenameFile, err)
	}
	newFull, err := d.Workspace.Resolve(newPath)
	if err != nil {
		return "", execErr(RenameFile, err)
	}
	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return "", execErr(RenameFile, err)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return "", execErr(RenameFile, err)
	}
	return fmt.Sprintf("Renamed %s to %s.", oldPath, newPath), nil
}

func (d *Dispatcher) listFiles(args chat.Value) (string, error) {
	rel := optionalString(args, argPath, ".")
	maxEntries := optionalInt(args, argMaxEntries, 200)

	full, err := d.Workspace.Resolve(rel)
	if err != nil {
		return "", execErr(ListFiles, err)
	}

	ignore := d.loadIgnore()
	var entries []string
	err = filepath.WalkDir(full, func(p string, de os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == full {
			return nil
		}
		relToBase, _ := filepath.Rel(d.Workspace.BaseDir, p)
		if ignore != nil && ignore.Match(relToBase, de.IsDir()) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() && de.Name() == ".git" {
			return filepath.SkipDir
		}
		entries = append(entries, filepath.ToSlash(relToBase))
		if len(entries) >= maxEntries {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", execErr(ListFiles, err)
	}
	sort.Strings(entries)
	if len(entries) == 0 {
		return fmt.Sprintf("No files found under %s.", rel), nil
	}
	return strings.Join(entries, "\n"), nil
}

func (d *Dispatcher) searchFiles(args chat.Value) (string, error) {
	query, err := require(SearchFiles, args, argQuery)
	if err != nil {
		return "", err
	}
	rel := optionalString(args, argPath, ".")
	maxResults := optionalInt(args, argMaxResults, 100)
	glob := optionalString(args, argGlob, "**")

	full, err := d.Workspace.Resolve(rel)
	if err != nil {
		return "", execErr(SearchFiles, err)
	}

	ignore := d.loadIgnore()
	var matches []string
	err = filepath.WalkDir(full, func(p string, de os.DirEntry, err error) error {
		if err != nil || len(matches) >= maxResults {
			return nil
		}
		relToBase, _ := filepath.Rel(d.Workspace.BaseDir, p)
		if ignore != nil && ignore.Match(relToBase, de.IsDir()) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() {
			if de.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if matched, err := matchesGlob(glob, filepath.ToSlash(relToBase)); err != nil || !matched {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if strings.Contains(scanner.Text(), query) {
				matches = append(matches, fmt.Sprintf("%s:%d: %s", filepath.ToSlash(relToBase), lineNo, strings.TrimSpace(scanner.Text())))
				if len(matches) >= maxResults {
					return filepath.SkipAll
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", execErr(SearchFiles, err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No matches for %q under %s.", query, rel), nil
	}
	return strings.Join(matches, "\n"), nil
}

// matchesGlob matches relPath against pattern, trying the full path first
// and falling back to the basename (grounded on dev/search_repository.go's
// filterFilesByGlob, which does the same two-stage match).
func matchesGlob(pattern, relPath string) (bool, error) {
	matched, err := doublestar.Match(pattern, relPath)
	if err != nil {
		return false, err
	}
	if matched {
		return true, nil
	}
	return doublestar.Match(pattern, filepath.Base(relPath))
}
