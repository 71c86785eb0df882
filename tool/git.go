package tool

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"vex/chat"
)

// BuiltinGitTools is the fixed six-tool git surface (spec.md §4.4.2: the
// git-tool capability query enumerates exactly these).
var BuiltinGitTools = []string{GitStatus, GitDiff, GitLog, GitShow, GitAdd, GitCommit}

func (d *Dispatcher) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.Workspace.BaseDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (d *Dispatcher) gitStatus(ctx context.Context) (string, error) {
	out, err := d.runGit(ctx, "status", "--short", "--branch")
	if err != nil {
		return "", execErr(GitStatus, err)
	}
	if out == "" {
		return "Working tree clean.", nil
	}
	return out, nil
}

func (d *Dispatcher) gitDiff(ctx context.Context, args chat.Value) (string, error) {
	gitArgs := []string{"diff"}
	if path, ok := lookup(args, argPath); ok {
		gitArgs = append(gitArgs, "--", path)
	}
	out, err := d.runGit(ctx, gitArgs...)
	if err != nil {
		return "", execErr(GitDiff, err)
	}
	if out == "" {
		return "No uncommitted changes.", nil
	}
	return out, nil
}

func (d *Dispatcher) gitLog(ctx context.Context, args chat.Value) (string, error) {
	limit := optionalInt(args, argMaxEntries, 20)
	gitArgs := []string{"log", "--oneline", "-n", strconv.Itoa(limit)}
	if path, ok := lookup(args, argPath); ok {
		gitArgs = append(gitArgs, "--", path)
	}
	out, err := d.runGit(ctx, gitArgs...)
	if err != nil {
		return "", execErr(GitLog, err)
	}
	if out == "" {
		return "No commits yet.", nil
	}
	return out, nil
}

func (d *Dispatcher) gitShow(ctx context.Context, args chat.Value) (string, error) {
	ref := "HEAD"
	if r, ok := lookup(args, argSpec{"ref", []string{"commit", "sha"}}); ok {
		ref = r
	}
	gitArgs := []string{"show", ref}
	if optionalBool(args, argStat, false) {
		gitArgs = append(gitArgs, "--stat")
	}
	out, err := d.runGit(ctx, gitArgs...)
	if err != nil {
		return "", execErr(GitShow, err)
	}
	return out, nil
}

func (d *Dispatcher) gitAdd(ctx context.Context, args chat.Value) (string, error) {
	path, err := require(GitAdd, args, argPath)
	if err != nil {
		return "", err
	}
	if _, err := d.runGit(ctx, "add", "--", path); err != nil {
		return "", execErr(GitAdd, err)
	}
	return fmt.Sprintf("Staged %s.", path), nil
}

func (d *Dispatcher) gitCommit(ctx context.Context, args chat.Value) (string, error) {
	message, err := require(GitCommit, args, argMessage)
	if err != nil {
		return "", err
	}
	// --no-gpg-sign: spec.md §4.3 "git_commit signs disabled".
	out, err := d.runGit(ctx, "commit", "--no-gpg-sign", "-m", message)
	if err != nil {
		return "", execErr(GitCommit, err)
	}
	return out, nil
}
