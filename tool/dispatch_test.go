package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"

	"vex/chat"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	ws, err := NewWorkspace(t.TempDir())
	trequire.NoError(t, err)
	return NewDispatcher(ws)
}

func TestDispatchReadFileRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("package a\n"), 0o644))

	out, err := d.Dispatch(context.Background(), ReadFile, objArgs(map[string]string{"path": "a.go"}))
	trequire.NoError(t, err)
	assert.Contains(t, out, "package a")
}

// Snapshot comparison happens once, at the engine layer, not inside the
// Dispatcher: two Dispatch(ReadFile) calls for the same unchanged file
// both return the raw content verbatim.
func TestDispatchReadFileReturnsRawContentOnEveryCall(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("package a\n"), 0o644))

	first, err := d.Dispatch(context.Background(), ReadFile, objArgs(map[string]string{"path": "a.go"}))
	trequire.NoError(t, err)
	assert.Equal(t, "package a\n", first)

	second, err := d.Dispatch(context.Background(), ReadFile, objArgs(map[string]string{"path": "a.go"}))
	trequire.NoError(t, err)
	assert.Equal(t, "package a\n", second)
}

func TestDispatchReadFileMissingArgReturnsTypedError(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Dispatch(context.Background(), ReadFile, objArgs(map[string]string{}))
	trequire.Error(t, err)
	var toolErr *Error
	trequire.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ErrArgument, toolErr.Kind)
	assert.Equal(t, "path", toolErr.Key)
}

func TestDispatchWriteFileCreatesParentDirs(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Dispatch(context.Background(), WriteFile, objArgs(map[string]string{"path": "nested/dir/a.go", "content": "hi"}))
	trequire.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(d.Workspace.BaseDir, "nested", "dir", "a.go"))
	trequire.NoError(t, err)
	assert.Equal(t, "hi", string(raw))
}

func TestDispatchEditFileReplacesUniqueOccurrence(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("package a\n\nfunc old() {}\n"), 0o644))

	_, err := d.Dispatch(context.Background(), EditFile, objArgs(map[string]string{"path": "a.go", "old_str": "old", "new_str": "new"}))
	trequire.NoError(t, err)

	raw, err := os.ReadFile(full)
	trequire.NoError(t, err)
	assert.Contains(t, string(raw), "func new() {}")
}

func TestDispatchEditFileAmbiguousMatchFails(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("x\nx\n"), 0o644))

	_, err := d.Dispatch(context.Background(), EditFile, objArgs(map[string]string{"path": "a.go", "old_str": "x", "new_str": "y"}))
	assert.Error(t, err)
}

func TestDispatchEditFileNotFoundFails(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("hello\n"), 0o644))

	_, err := d.Dispatch(context.Background(), EditFile, objArgs(map[string]string{"path": "a.go", "old_str": "missing", "new_str": "y"}))
	assert.Error(t, err)
}

func TestDispatchRenameFile(t *testing.T) {
	d := newTestDispatcher(t)
	full := filepath.Join(d.Workspace.BaseDir, "a.go")
	trequire.NoError(t, os.WriteFile(full, []byte("hi"), 0o644))

	_, err := d.Dispatch(context.Background(), RenameFile, objArgs(map[string]string{"old_path": "a.go", "new_path": "b.go"}))
	trequire.NoError(t, err)

	_, err = os.Stat(filepath.Join(d.Workspace.BaseDir, "b.go"))
	assert.NoError(t, err)
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}

func TestDispatchListFiles(t *testing.T) {
	d := newTestDispatcher(t)
	trequire.NoError(t, os.WriteFile(filepath.Join(d.Workspace.BaseDir, "a.go"), []byte("x"), 0o644))
	trequire.NoError(t, os.MkdirAll(filepath.Join(d.Workspace.BaseDir, "sub"), 0o755))
	trequire.NoError(t, os.WriteFile(filepath.Join(d.Workspace.BaseDir, "sub", "b.go"), []byte("x"), 0o644))

	out, err := d.Dispatch(context.Background(), ListFiles, chat.EmptyObject())
	trequire.NoError(t, err)
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "sub/b.go")
}

func TestDispatchSearchFiles(t *testing.T) {
	d := newTestDispatcher(t)
	trequire.NoError(t, os.WriteFile(filepath.Join(d.Workspace.BaseDir, "a.go"), []byte("package a\nfunc needle() {}\n"), 0o644))
	trequire.NoError(t, os.WriteFile(filepath.Join(d.Workspace.BaseDir, "b.go"), []byte("package b\n"), 0o644))

	out, err := d.Dispatch(context.Background(), SearchFiles, objArgs(map[string]string{"query": "needle"}))
	trequire.NoError(t, err)
	assert.Contains(t, out, "a.go")
	assert.NotContains(t, out, "b.go:")
}

func TestDispatchUnknownToolReturnsExecutionError(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Dispatch(context.Background(), "not_a_tool", chat.EmptyObject())
	trequire.Error(t, err)
	var toolErr *Error
	trequire.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ErrExecution, toolErr.Kind)
}

func TestDispatchListDirAliasUsesListFilesSchema(t *testing.T) {
	d := newTestDispatcher(t)
	trequire.NoError(t, os.WriteFile(filepath.Join(d.Workspace.BaseDir, "a.go"), []byte("x"), 0o644))

	out, err := d.Dispatch(context.Background(), ListDir, chat.EmptyObject())
	trequire.NoError(t, err)
	assert.Contains(t, out, "a.go")
}

func TestDispatchTimesOutOnExpiredContext(t *testing.T) {
	d := newTestDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := d.Dispatch(ctx, ReadFile, objArgs(map[string]string{"path": "a.go"}))
	trequire.Error(t, err)
	var toolErr *Error
	trequire.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ErrTimeout, toolErr.Kind)
}

func TestApprovalDeniedError(t *testing.T) {
	err := ApprovalDenied(WriteFile)
	var toolErr *Error
	trequire.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ErrApprovalDenied, toolErr.Kind)
	assert.Equal(t, WriteFile, toolErr.Tool)
}
