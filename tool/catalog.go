// Package tool implements the Tool Dispatcher (C3): the fixed catalog of
// workspace tools the model may call, argument alias resolution, path
// safety, and per-call execution with a timeout.
//
// Grounded on sidedotdev-sidekick/dev/read_file.go (path validation,
// jsonschema.Reflector usage for parameter schemas) and
// common/walk_directory.go (gitignore-aware directory walking).
package tool

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/invopop/jsonschema"

	"vex/chat"
)

var nameDistanceMetric = metrics.NewLevenshtein()

var reflector = &jsonschema.Reflector{DoNotReference: true}

type readFileParams struct {
	Path string `json:"path" jsonschema:"description=Path to the file, relative to the workspace root."`
}

type writeFileParams struct {
	Path    string `json:"path" jsonschema:"description=Path to write, relative to the workspace root."`
	Content string `json:"content" jsonschema:"description=Full file content to write."`
}

type editFileParams struct {
	Path   string `json:"path" jsonschema:"description=Path to edit, relative to the workspace root."`
	OldStr string `json:"old_str" jsonschema:"description=Exact text to find; must be unique in the file."`
	NewStr string `json:"new_str" jsonschema:"description=Text to replace it with."`
}

type renameFileParams struct {
	OldPath string `json:"old_path" jsonschema:"description=Current path, relative to the workspace root."`
	NewPath string `json:"new_path" jsonschema:"description=New path, relative to the workspace root."`
}

type listFilesParams struct {
	Path       string `json:"path,omitempty" jsonschema:"description=Directory to list; defaults to the workspace root."`
	MaxEntries int    `json:"max_entries,omitempty" jsonschema:"description=Maximum entries to return."`
}

type searchFilesParams struct {
	Query      string `json:"query" jsonschema:"description=Literal text to search for; not a regex."`
	Path       string `json:"path,omitempty" jsonschema:"description=Directory to search under; defaults to the workspace root."`
	Glob       string `json:"glob,omitempty" jsonschema:"description=Glob restricting which files are searched; defaults to all files."`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum matches to return."`
}

type gitDiffParams struct {
	Path string `json:"path,omitempty" jsonschema:"description=Restrict the diff to this path."`
}

type gitLogParams struct {
	Path  string `json:"path,omitempty" jsonschema:"description=Restrict the log to this path."`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum commits to show."`
}

type gitShowParams struct {
	Ref  string `json:"ref,omitempty" jsonschema:"description=Commit-ish to show; defaults to HEAD."`
	Stat bool   `json:"stat,omitempty" jsonschema:"description=Show a diffstat summary instead of the full patch."`
}

type gitAddParams struct {
	Path string `json:"path" jsonschema:"description=Path to stage, relative to the workspace root."`
}

type gitCommitParams struct {
	Message string `json:"message" jsonschema:"description=Commit message."`
}

// Names of the fixed 14-tool catalog (spec.md §4.3 dispatch table).
const (
	ReadFile     = "read_file"
	WriteFile    = "write_file"
	EditFile     = "edit_file"
	RenameFile   = "rename_file"
	ListFiles    = "list_files"
	ListDir      = "list_directory"
	SearchFiles  = "search_files"
	Search       = "search"
	GitStatus    = "git_status"
	GitDiff      = "git_diff"
	GitLog       = "git_log"
	GitShow      = "git_show"
	GitAdd       = "git_add"
	GitCommit    = "git_commit"
)

func reflect(v any) *jsonschema.Schema { return reflector.Reflect(v) }

// Catalog returns the fixed tool definitions sent to the model, aliasing
// list_directory to the same schema as list_files and search to search_files
// (spec.md §4.3: "list_files / list_directory", "search_files / search" are
// the same operation under two names).
func Catalog() []chat.Tool {
	return []chat.Tool{
		{ReadFile, "Read a file's contents.", reflect(&readFileParams{})},
		{WriteFile, "Write (overwrite) a file's contents.", reflect(&writeFileParams{})},
		{EditFile, "Replace a unique occurrence of old_str with new_str in a file.", reflect(&editFileParams{})},
		{RenameFile, "Rename or move a file.", reflect(&renameFileParams{})},
		{ListFiles, "List files under a directory.", reflect(&listFilesParams{})},
		{ListDir, "List files under a directory.", reflect(&listFilesParams{})},
		{SearchFiles, "Search for literal text across files.", reflect(&searchFilesParams{})},
		{Search, "Search for literal text across files.", reflect(&searchFilesParams{})},
		{GitStatus, "Show the working tree status.", reflect(&struct{}{})},
		{GitDiff, "Show uncommitted changes.", reflect(&gitDiffParams{})},
		{GitLog, "Show commit history.", reflect(&gitLogParams{})},
		{GitShow, "Show a commit's details.", reflect(&gitShowParams{})},
		{GitAdd, "Stage a path for commit.", reflect(&gitAddParams{})},
		{GitCommit, "Create a commit from staged changes.", reflect(&gitCommitParams{})},
	}
}

// mutatingTools is the closed set of tool names that change workspace or
// repository state (spec.md §4.4.4: write_file/edit_file/rename_file/
// git_add/git_commit); every other catalog tool is read-only.
var mutatingTools = map[string]bool{
	WriteFile:  true,
	EditFile:   true,
	RenameFile: true,
	GitAdd:     true,
	GitCommit:  true,
}

// IsMutating reports whether name (after alias resolution) changes
// workspace or repository state.
func IsMutating(name string) bool {
	return mutatingTools[CanonicalName(name)]
}

// CanonicalName maps an accepted alias tool name to its canonical form.
func CanonicalName(name string) string {
	switch name {
	case ListDir:
		return ListFiles
	case Search:
		return SearchFiles
	default:
		return name
	}
}

// catalogNames is the fixed set of names Dispatch will recognize, used to
// build a suggestion when the model calls something close but not quite
// right (e.g. "readfile" instead of "read_file").
var catalogNames = []string{
	ReadFile, WriteFile, EditFile, RenameFile,
	ListFiles, ListDir, SearchFiles, Search,
	GitStatus, GitDiff, GitLog, GitShow, GitAdd, GitCommit,
}

// SuggestToolName returns the catalog name most similar to name by
// Levenshtein similarity, for use in an "unknown tool" error message. It
// always returns some name; callers decide whether the similarity is close
// enough to be worth surfacing.
func SuggestToolName(name string) string {
	best := catalogNames[0]
	bestScore := -1.0
	for _, candidate := range catalogNames {
		score := strutil.Similarity(name, candidate, nameDistanceMetric)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}
