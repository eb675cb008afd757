// Package gitops wraps the git command-line tool. Every operation is a
// sequential, context-aware invocation of the binary; output is
// interpreted as text and no libgit bindings are involved.
package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"milepost/internal/milestone"
	"milepost/pkg/cmdutil"
)

// Repo runs git operations against one working tree.
type Repo struct {
	dir    string
	runner Runner
	logger *slog.Logger
}

// NewRepo creates a Repo backed by the real git binary.
func NewRepo(dir string, logger *slog.Logger) *Repo {
	return NewRepoWithRunner(dir, NewRunner(dir), logger)
}

// NewRepoWithRunner creates a Repo with a custom runner, used by tests.
func NewRepoWithRunner(dir string, runner Runner, logger *slog.Logger) *Repo {
	return &Repo{dir: dir, runner: runner, logger: logger}
}

// Dir returns the working tree path.
func (r *Repo) Dir() string {
	return r.dir
}

// wrapGitError attaches the failing subcommand and the tool's own
// diagnostic output to the error.
func wrapGitError(args []string, result *cmdutil.Result, err error) error {
	op := "git"
	if len(args) > 0 {
		op = "git " + args[0]
	}
	stderr := ""
	if result != nil {
		stderr = strings.TrimSpace(string(result.Stderr))
	}
	if stderr != "" {
		return fmt.Errorf("%s: %w: %s", op, err, stderr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRepository reports whether the directory is inside a git work tree.
func (r *Repo) IsRepository(ctx context.Context) bool {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the checked-out branch name. Detached HEAD
// yields an empty name and no error, matching git's own output.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Upstream returns the remote tracking ref of the current branch, or
// ok=false when none is configured.
func (r *Repo) Upstream(ctx context.Context) (string, bool) {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout,
		"rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		return "", false
	}
	upstream := strings.TrimSpace(out)
	return upstream, upstream != ""
}

// StageAll stages every change in the working tree.
func (r *Repo) StageAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, DefaultCommandTimeout, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// StagedFiles lists the paths currently in the index.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// UnstageMatching removes staged paths matching the pattern from the
// index and returns how many were removed. A nil pattern is a no-op.
func (r *Repo) UnstageMatching(ctx context.Context, pattern *regexp.Regexp) (int, error) {
	if pattern == nil {
		return 0, nil
	}

	files, err := r.StagedFiles(ctx)
	if err != nil {
		return 0, err
	}

	var matched []string
	for _, f := range files {
		if pattern.MatchString(f) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	args := append([]string{"reset", "--"}, matched...)
	if _, err := r.runner.Run(ctx, DefaultCommandTimeout, args...); err != nil {
		return 0, fmt.Errorf("failed to unstage ignored files: %w", err)
	}
	return len(matched), nil
}

// Commit creates a commit with the given subject. Empty changesets are
// allowed so a milestone can mark a point in time even with a clean
// tree.
func (r *Repo) Commit(ctx context.Context, subject string) (string, error) {
	if _, err := r.runner.Run(ctx, DefaultCommandTimeout,
		"commit", "--allow-empty", "-m", subject); err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve new commit: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Push publishes the branch. When the first attempt fails (typically no
// upstream yet) one fallback retry sets the upstream explicitly before
// the failure is reported.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	if err := ValidateBranchName(branch); err != nil {
		return err
	}

	_, err := r.runner.Run(ctx, PushTimeout, "push")
	if err == nil {
		return nil
	}
	r.logger.Warn("push failed, retrying with upstream set",
		"remote", remote, "branch", branch, "error", err)

	if _, retryErr := r.runner.Run(ctx, PushTimeout,
		"push", "--set-upstream", remote, branch); retryErr != nil {
		return fmt.Errorf("push failed after upstream fallback: %w", retryErr)
	}
	return nil
}

// ForcePush overwrites the remote branch with the local one. Used after
// a revert moved the branch pointer backwards.
func (r *Repo) ForcePush(ctx context.Context, remote, branch string) error {
	if err := ValidateBranchName(branch); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, PushTimeout, "push", "--force", remote, branch); err != nil {
		return fmt.Errorf("force push failed: %w", err)
	}
	return nil
}

// CommitExists reports whether the hash resolves to a commit object.
func (r *Repo) CommitExists(ctx context.Context, hash string) bool {
	if err := ValidateCommitHash(hash); err != nil {
		return false
	}
	_, err := r.runner.Run(ctx, DefaultCommandTimeout, "cat-file", "-e", hash+"^{commit}")
	return err == nil
}

// ResetHard moves the branch pointer and working tree to the hash.
func (r *Repo) ResetHard(ctx context.Context, hash string) error {
	if err := ValidateCommitHash(hash); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, DefaultCommandTimeout, "reset", "--hard", hash); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", hash, err)
	}
	return nil
}

// CleanUntracked removes untracked files and directories so the tree
// matches the milestone exactly.
func (r *Repo) CleanUntracked(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, DefaultCommandTimeout, "clean", "-fd"); err != nil {
		return fmt.Errorf("failed to remove untracked files: %w", err)
	}
	return nil
}

// MilestoneLog queries commit history for milestone subjects and
// returns the raw delimiter-separated lines, newest first.
//
// Scope: when the branch has an upstream, only commits ahead of it
// (branch-local, unpushed history) are considered; without an upstream
// the most recent limit matching commits across the whole history are
// returned instead.
func (r *Repo) MilestoneLog(ctx context.Context, limit int) (string, error) {
	grep := "^" + regexp.QuoteMeta(milestone.SubjectPrefix)
	args := []string{"log", "--pretty=format:" + milestone.LogFormat,
		"--date=format:%Y-%m-%d %H:%M:%S", "--grep=" + grep}

	if upstream, ok := r.Upstream(ctx); ok {
		args = append(args, upstream+"..HEAD")
	} else if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}

	out, err := r.runner.Run(ctx, DefaultCommandTimeout, args...)
	if err != nil {
		return "", fmt.Errorf("failed to query milestone history: %w", err)
	}
	return out, nil
}

// Head returns the commit hash of the current HEAD.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the fetch URL of a remote, or an empty string when
// the remote does not exist.
func (r *Repo) RemoteURL(ctx context.Context, remote string) string {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// HeadPath returns the file whose modification time changes on every
// branch switch, used by the watcher to detect out-of-band checkouts.
func (r *Repo) HeadPath(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, DefaultCommandTimeout, "rev-parse", "--git-path", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to locate HEAD file: %w", err)
	}
	path := strings.TrimSpace(out)
	// git reports the path relative to the working tree.
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	return path, nil
}
