// Package git provides the Git operations used by the gitscribe commands.
// Every failing invocation is reported as a subprocess error.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/syntax"
)

// Staged selects the index instead of a base revision.
const Staged = "staged"

// Repo represents a Git repository.
type Repo struct {
	dir string
}

// Open opens the Git repository at the given directory.
func Open(dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	if _, err := r.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, scribeerr.Subprocess(errors.Newf("not a git repository: %s", dir))
	}
	return r, nil
}

// OpenCurrent opens the Git repository for the current working directory.
func OpenCurrent() (*Repo, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return nil, scribeerr.Subprocess(errors.New("not in a git repository"))
	}
	return Open(strings.TrimSpace(string(out)))
}

// Dir returns the repository root.
func (r *Repo) Dir() string {
	return r.dir
}

// diffArgs returns the `git diff` arguments comparing against base. A base
// that git would parse as an option is rejected.
func diffArgs(base string) ([]string, error) {
	if base == Staged {
		return []string{"diff", "--cached"}, nil
	}
	if base == "" || strings.HasPrefix(base, "-") {
		return nil, scribeerr.Configuration(
			errors.Newf("invalid base revision %q", base),
			"pass a branch, tag or commit as the base")
	}
	return []string{"diff", base}, nil
}

// ChangedFiles lists the paths that differ from base, in git's order.
func (r *Repo) ChangedFiles(ctx context.Context, base string) ([]string, error) {
	args, err := diffArgs(base)
	if err != nil {
		return nil, err
	}
	out, err := r.run(ctx, append(args, "--name-only", "-z")...)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// FileDiff returns the diff of a single path against base.
func (r *Repo) FileDiff(ctx context.Context, base, path string) (string, error) {
	args, err := diffArgs(base)
	if err != nil {
		return "", err
	}
	return r.run(ctx, append(args, "--", path)...)
}

// AddAll stages every change in the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", ".")
	return err
}

// Commit commits all tracked modified files with the given message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, commitArgs(message)...)
	return err
}

func commitArgs(message string) []string {
	return []string{"commit", "-a", "-m", message}
}

// CommitCommandLine renders the commit invocation as a shell command line
// with the message quoted for bash.
func CommitCommandLine(message string) (string, error) {
	args := commitArgs(message)
	quoted, err := syntax.Quote(message, syntax.LangBash)
	if err != nil {
		return "", errors.Wrap(err, "quote commit message")
	}
	return "git " + strings.Join(args[:len(args)-1], " ") + " " + quoted, nil
}

// CurrentBranch returns the current branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", scribeerr.Subprocess(
			fmt.Errorf("git %s: %s %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err))
	}
	return stdout.String(), nil
}
