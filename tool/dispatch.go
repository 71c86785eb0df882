package tool

import (
	"context"
	"fmt"

	"vex/chat"
)

// Dispatcher executes tool calls against one Workspace (spec.md §4.3). It
// also carries an optional SnapshotCache that the turn engine uses to track
// read_file history; Dispatch itself never consults it.
type Dispatcher struct {
	Workspace *Workspace
	Snapshots *chat.SnapshotCache
}

// NewDispatcher returns a Dispatcher rooted at ws, with its own snapshot
// cache.
func NewDispatcher(ws *Workspace) *Dispatcher {
	return &Dispatcher{Workspace: ws, Snapshots: chat.NewSnapshotCache()}
}

// Dispatch runs name with args, racing it against a per-call timeout
// (spec.md §4.3 "Execution contract"). The call runs on its own goroutine
// so a hung tool (e.g. a stuck git subprocess) can be abandoned without
// blocking the caller; the goroutine itself is not forcibly killed, matching
// the teacher's activity-timeout model where the workflow moves on but the
// underlying activity may still be running.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args chat.Value) (string, error) {
	canonical := CanonicalName(name)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := d.execute(ctx, canonical, args)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return "", &Error{Kind: ErrTimeout, Tool: name, Err: ctx.Err()}
	}
}

func (d *Dispatcher) execute(ctx context.Context, canonical string, args chat.Value) (string, error) {
	switch canonical {
	case ReadFile:
		return d.readFile(args)
	case WriteFile:
		return d.writeFile(args)
	case EditFile:
		return d.editFile(args)
	case RenameFile:
		return d.renameFile(args)
	case ListFiles:
		return d.listFiles(args)
	case SearchFiles:
		return d.searchFiles(args)
	case GitStatus:
		return d.gitStatus(ctx)
	case GitDiff:
		return d.gitDiff(ctx, args)
	case GitLog:
		return d.gitLog(ctx, args)
	case GitShow:
		return d.gitShow(ctx, args)
	case GitAdd:
		return d.gitAdd(ctx, args)
	case GitCommit:
		return d.gitCommit(ctx, args)
	default:
		return "", &Error{Kind: ErrExecution, Tool: canonical, Err: fmt.Errorf("unknown tool; did you mean %q?", SuggestToolName(canonical))}
	}
}

// ApprovalDenied builds the typed error for a tool the user declined to
// approve (spec.md §4.4.4).
func ApprovalDenied(toolName string) error {
	return &Error{Kind: ErrApprovalDenied, Tool: toolName}
}
