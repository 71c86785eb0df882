package tool

import "vex/chat"

// argSpec names one argument's canonical key and the aliases a model may
// use instead (spec.md §4.3 "Alias handling").
type argSpec struct {
	canonical string
	aliases   []string
}

var (
	argPath        = argSpec{"path", []string{"file_path", "file", "filename"}}
	argOldPath     = argSpec{"old_path", []string{"from", "source", "src"}}
	argNewPath     = argSpec{"new_path", []string{"to", "destination", "dest", "dst"}}
	argContent     = argSpec{"content", []string{"text", "body", "data"}}
	argOldStr      = argSpec{"old_str", []string{"old_text", "old_string", "find", "search"}}
	argNewStr      = argSpec{"new_str", []string{"new_text", "new_string", "replace", "replacement"}}
	argQuery       = argSpec{"query", []string{"pattern", "term", "q"}}
	argMaxEntries  = argSpec{"max_entries", []string{"limit", "max"}}
	argMaxResults  = argSpec{"max_results", []string{"limit", "max"}}
	argMessage     = argSpec{"message", []string{"msg", "commit_message"}}
	argGlob        = argSpec{"glob", []string{"path_glob", "pattern_glob"}}
	argStat        = argSpec{"stat", []string{"show_stat"}}
)

// lookup returns the string at spec.canonical, falling back to its aliases
// in order, from an Object-kind Value's fields.
func lookup(args chat.Value, spec argSpec) (string, bool) {
	if args.Kind != chat.KindObject {
		return "", false
	}
	keys := append([]string{spec.canonical}, spec.aliases...)
	for _, k := range keys {
		if v, ok := args.Object[k]; ok {
			if s, ok := v.AsString(); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// require fetches spec's value or returns a typed MissingArgument error
// naming the canonical key (spec.md §4.3).
func require(toolName string, args chat.Value, spec argSpec) (string, error) {
	v, ok := lookup(args, spec)
	if !ok {
		return "", missingArg(toolName, spec.canonical)
	}
	return v, nil
}

// optionalInt fetches spec's value as an int, or def if absent/non-numeric.
func optionalInt(args chat.Value, spec argSpec, def int) int {
	if args.Kind != chat.KindObject {
		return def
	}
	keys := append([]string{spec.canonical}, spec.aliases...)
	for _, k := range keys {
		if v, ok := args.Object[k]; ok && v.Kind == chat.KindNumber {
			return int(v.Number)
		}
	}
	return def
}

// optionalBool fetches spec's value as a bool, or def if absent/non-boolean.
func optionalBool(args chat.Value, spec argSpec, def bool) bool {
	if args.Kind != chat.KindObject {
		return def
	}
	keys := append([]string{spec.canonical}, spec.aliases...)
	for _, k := range keys {
		if v, ok := args.Object[k]; ok && v.Kind == chat.KindBool {
			return v.Bool
		}
	}
	return def
}

func optionalString(args chat.Value, spec argSpec, def string) string {
	if v, ok := lookup(args, spec); ok {
		return v
	}
	return def
}

// locationArgs names the canonical path-shaped arguments a mutating tool
// needs before it can run, keyed by canonical tool name. Used by the turn
// engine's missing-location guard (spec.md §4.4.4 step 1) to synthesize a
// clarifying error without dispatching the call.
var locationArgs = map[string][]argSpec{
	WriteFile:  {argPath},
	EditFile:   {argPath},
	RenameFile: {argOldPath, argNewPath},
}

// MissingLocationArgs reports which canonical location argument names are
// missing or empty on args for canonicalTool, in declared order. Returns nil
// for tools with no location arguments (including tools not in the table).
func MissingLocationArgs(canonicalTool string, args chat.Value) []string {
	specs, ok := locationArgs[canonicalTool]
	if !ok {
		return nil
	}
	var missing []string
	for _, spec := range specs {
		if _, ok := lookup(args, spec); !ok {
			missing = append(missing, spec.canonical)
		}
	}
	return missing
}

// Lookup is the exported, alias-aware string lookup used outside this
// package (the turn engine's read_file history summaries need the canonical
// "path" value without going through a Dispatcher call).
func Lookup(args chat.Value, canonical string) (string, bool) {
	spec, ok := argSpecByCanonical[canonical]
	if !ok {
		return "", false
	}
	return lookup(args, spec)
}

var argSpecByCanonical = map[string]argSpec{
	argPath.canonical:       argPath,
	argOldPath.canonical:    argOldPath,
	argNewPath.canonical:    argNewPath,
	argContent.canonical:    argContent,
	argOldStr.canonical:     argOldStr,
	argNewStr.canonical:     argNewStr,
	argQuery.canonical:      argQuery,
	argMaxEntries.canonical: argMaxEntries,
	argMaxResults.canonical: argMaxResults,
	argMessage.canonical:    argMessage,
	argGlob.canonical:       argGlob,
}
