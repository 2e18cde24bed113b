package action

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	messages []string
	err      error
}

func (f *fakeRunner) Commit(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func TestCommitter_Commit(t *testing.T) {
	r := &fakeRunner{}
	c := &Committer{Runner: r}
	require.NoError(t, c.Commit(context.Background(), "feat: x"))
	assert.Equal(t, []string{"feat: x"}, r.messages)
}

func TestCommitter_Failure(t *testing.T) {
	r := &fakeRunner{err: scribeerr.Subprocess(errors.New("hook rejected"))}
	c := &Committer{Runner: r}
	err := c.Commit(context.Background(), "feat: x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrSubprocess))
	assert.Len(t, r.messages, 1, "no retry")
}

func TestCommitter_DryRun(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	c := &Committer{Runner: r, DryRun: true, Out: &out}
	require.NoError(t, c.Commit(context.Background(), "fix: quote 'this'"))
	assert.Empty(t, r.messages)
	assert.True(t, strings.HasPrefix(out.String(), "git commit -a -m "))
	assert.Contains(t, out.String(), "fix: quote 'this'")
}

func TestPublisher_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "PR_DESCRIPTION.md")
	p := &Publisher{Path: path}

	require.NoError(t, p.Publish("first version that is long"))
	require.NoError(t, p.Publish("## Summary\n\nsecond"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n\nsecond", string(data))
}

func TestPublisher_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file makes the write fail.
	path := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := (&Publisher{Path: path}).Publish("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrIO))
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" y \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tt.input), &out)
		ok, err := p.Confirm("Do you want to commit these changes? (y/n) ")
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "input %q", tt.input)
		assert.Equal(t, "Do you want to commit these changes? (y/n) ", out.String())
	}
}

func TestNoteReaders(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("fix login bug\nsecond line\n"), &out)
	note, err := AskNote{Prompter: p}.Note()
	require.NoError(t, err)
	assert.Equal(t, "fix login bug", note)
	assert.Contains(t, out.String(), "short description")

	note, err = FixedNote("").Note()
	require.NoError(t, err)
	assert.Empty(t, note)

	ok, err := NoConfirm{}.Confirm("?")
	require.NoError(t, err)
	assert.True(t, ok)
}
