// Package gitcmd wraps the git binary for change detection and branch
// operations. Every invocation is bounded by a timeout and failures are
// returned as structured errors distinguishing a missing tool, a
// non-repository path and a timed-out call.
package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 30 * time.Second

var (
	// ErrGitNotFound indicates the git binary is not installed.
	ErrGitNotFound = errors.New("git binary not found")

	// ErrNotRepository indicates the path is not inside a git work tree.
	ErrNotRepository = errors.New("not a git repository")

	// ErrTimeout indicates the invocation exceeded its time budget.
	ErrTimeout = errors.New("git invocation timed out")
)

// Changes lists repo-relative paths grouped by change status.
type Changes struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Deleted  []string `json:"deleted"`
}

// Empty reports whether no paths changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// All returns the union of all changed paths.
func (c Changes) All() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified)+len(c.Deleted))
	out = append(out, c.Added...)
	out = append(out, c.Modified...)
	out = append(out, c.Deleted...)
	return out
}

// Branch is one local git branch.
type Branch struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// Runner executes git commands in a repository.
type Runner struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewRunner creates a Runner. A non-positive timeout falls back to
// DefaultTimeout; a nil logger falls back to slog.Default.
func NewRunner(timeout time.Duration, log *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{timeout: timeout, log: log}
}

// ChangedFiles returns the working tree's changed paths relative to the last
// commit. When the HEAD diff is unavailable (e.g. no commits yet) it falls
// back to a porcelain status scan. Untracked files are reported as added in
// both paths. A rename surfaces as a delete of the old path plus an add of
// the new one. Git failures are non-fatal: they yield an empty change set
// and a logged warning.
func (r *Runner) ChangedFiles(ctx context.Context, repoPath string) Changes {
	out, err := r.run(ctx, repoPath, "diff", "--name-status", "HEAD")
	if err != nil {
		if errors.Is(err, ErrGitNotFound) || errors.Is(err, ErrTimeout) {
			r.log.Warn("git diff failed", "path", repoPath, "error", err)
			return Changes{}
		}
		// No HEAD yet or similar: fall back to a status scan.
		return r.statusChanges(ctx, repoPath)
	}

	changes := ParseNameStatus(out)

	untracked, err := r.run(ctx, repoPath, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		r.log.Warn("git ls-files failed", "path", repoPath, "error", err)
		return changes
	}
	seen := make(map[string]bool, len(changes.Added))
	for _, p := range changes.Added {
		seen[p] = true
	}
	for _, line := range splitLines(untracked) {
		if !seen[line] {
			changes.Added = append(changes.Added, line)
			seen[line] = true
		}
	}
	return changes
}

// statusChanges classifies `git status --porcelain` entries by status
// marker.
func (r *Runner) statusChanges(ctx context.Context, repoPath string) Changes {
	out, err := r.run(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		r.log.Warn("git status failed", "path", repoPath, "error", err)
		return Changes{}
	}
	return ParsePorcelain(out)
}

// Branches lists local branches, marking the current one.
func (r *Runner) Branches(ctx context.Context, repoPath string) ([]Branch, error) {
	out, err := r.run(ctx, repoPath, "branch", "--format=%(refname:short) %(HEAD)")
	if err != nil {
		return nil, err
	}

	var branches []Branch
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		branches = append(branches, Branch{
			Name:    fields[0],
			Current: len(fields) > 1 && fields[1] == "*",
		})
	}
	return branches, nil
}

// Checkout switches the repository to the named branch.
func (r *Runner) Checkout(ctx context.Context, repoPath, branch string) error {
	_, err := r.run(ctx, repoPath, "checkout", branch)
	return err
}

// DiffBranches returns the name-status diff between two branches
// (three-dot notation, i.e. changes on b since its merge base with a).
func (r *Runner) DiffBranches(ctx context.Context, repoPath, branchA, branchB string) (Changes, error) {
	out, err := r.run(ctx, repoPath, "diff", "--name-status", branchA+"..."+branchB)
	if err != nil {
		return Changes{}, err
	}
	return ParseNameStatus(out), nil
}

// IsRepository reports whether repoPath is inside a git work tree.
func (r *Runner) IsRepository(ctx context.Context, repoPath string) bool {
	_, err := r.run(ctx, repoPath, "rev-parse", "--git-dir")
	return err == nil
}

// run executes one git command under the configured timeout and classifies
// failures.
func (r *Runner) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return "", ErrGitNotFound
	case ctx.Err() != nil:
		return "", fmt.Errorf("%w: git %s", ErrTimeout, args[0])
	case strings.Contains(stderr.String(), "not a git repository"):
		return "", ErrNotRepository
	default:
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
}

// ParseNameStatus parses `git diff --name-status` output. Renames are
// represented as a delete of the old path plus an add of the new path.
func ParseNameStatus(out string) Changes {
	var c Changes
	for _, line := range splitLines(out) {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status, p := parts[0], parts[1]
		switch {
		case strings.HasPrefix(status, "A"):
			c.Added = append(c.Added, p)
		case strings.HasPrefix(status, "M"):
			c.Modified = append(c.Modified, p)
		case strings.HasPrefix(status, "D"):
			c.Deleted = append(c.Deleted, p)
		case strings.HasPrefix(status, "R"):
			c.Deleted = append(c.Deleted, p)
			if len(parts) > 2 {
				c.Added = append(c.Added, parts[2])
			}
		}
	}
	return c
}

// ParsePorcelain parses `git status --porcelain` output. Lines keep their
// two-column status prefix, so they are sliced rather than trimmed.
func ParsePorcelain(out string) Changes {
	var c Changes
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		status := strings.TrimSpace(line[:2])
		p := strings.TrimSpace(line[2:])
		switch status {
		case "?", "??", "A":
			c.Added = append(c.Added, p)
		case "M":
			c.Modified = append(c.Modified, p)
		case "D":
			c.Deleted = append(c.Deleted, p)
		}
	}
	return c
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
