package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepo initializes a repository with one commit on main.
func newRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q", "-b", "main"},
		{"config", "user.email", "dev@example.com"},
		{"config", "user.name", "Dev"},
		{"config", "commit.gpgsign", "false"},
	} {
		gitCmd(t, dir, args...)
	}
	writeFile(t, dir, "README.md", "# demo\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "init")

	r, err := Open(dir)
	require.NoError(t, err)
	return r
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpen_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrSubprocess))
}

func TestStagedFlow(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	files, err := r.ChangedFiles(ctx, Staged)
	require.NoError(t, err)
	assert.Empty(t, files)

	writeFile(t, r.Dir(), "src/a.js", "console.log(1)\n")
	writeFile(t, r.Dir(), "README.md", "# demo\n\nmore\n")
	require.NoError(t, r.AddAll(ctx))

	files, err = r.ChangedFiles(ctx, Staged)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "src/a.js"}, files)

	diff, err := r.FileDiff(ctx, Staged, "src/a.js")
	require.NoError(t, err)
	assert.Contains(t, diff, "+console.log(1)")
	assert.NotContains(t, diff, "README.md")

	require.NoError(t, r.Commit(ctx, "feat: add a.js\n\n- src/a.js"))
	files, err = r.ChangedFiles(ctx, Staged)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBranchDiff(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	gitCmd(t, r.Dir(), "checkout", "-q", "-b", "feature")
	writeFile(t, r.Dir(), "docs/guide.md", "hello\n")
	gitCmd(t, r.Dir(), "add", ".")
	gitCmd(t, r.Dir(), "commit", "-q", "-m", "docs")

	branch, err := r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	files, err := r.ChangedFiles(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide.md"}, files)

	_, err = r.ChangedFiles(ctx, "no-such-branch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrSubprocess))
}

func TestDiff_RejectsOptionLikeBase(t *testing.T) {
	r := &Repo{dir: t.TempDir()}
	ctx := context.Background()

	for _, base := range []string{"--output=/tmp/x", "-p", ""} {
		_, err := r.ChangedFiles(ctx, base)
		require.Error(t, err, base)
		assert.True(t, errors.Is(err, scribeerr.ErrConfiguration), base)

		_, err = r.FileDiff(ctx, base, "a.go")
		require.Error(t, err, base)
		assert.True(t, errors.Is(err, scribeerr.ErrConfiguration), base)
	}
}

func TestCommit_NothingToCommit(t *testing.T) {
	r := newRepo(t)
	err := r.Commit(context.Background(), "chore: nothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrSubprocess))
}

func TestCommitCommandLine(t *testing.T) {
	line, err := CommitCommandLine("fix: it's done")
	require.NoError(t, err)
	assert.Equal(t, `git commit -a -m "fix: it's done"`, line)

	line, err = CommitCommandLine("feat: a\n\n- b")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "git commit -a -m $'"), line)
	assert.Contains(t, line, `feat: a\n\n- b`)
	assert.NotContains(t, line, "\n\n-")
}
