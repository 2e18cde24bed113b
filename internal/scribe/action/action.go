// Package action performs the side effects at the end of a gitscribe run:
// committing with a generated message or publishing generated text.
package action

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/git"
	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
)

// CommitRunner creates a commit. *git.Repo implements it.
type CommitRunner interface {
	Commit(ctx context.Context, message string) error
}

var _ CommitRunner = (*git.Repo)(nil)

// Committer commits all tracked modified files with a message.
type Committer struct {
	Runner CommitRunner
	// DryRun prints the command line to Out instead of committing.
	DryRun bool
	Out    io.Writer
}

// Commit runs the commit, or prints it in dry-run mode.
func (c *Committer) Commit(ctx context.Context, message string) error {
	if c.DryRun {
		line, err := git.CommitCommandLine(message)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out(), line)
		return nil
	}
	if err := c.Runner.Commit(ctx, message); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (c *Committer) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Publisher writes generated text to a file.
type Publisher struct {
	Path string
}

// Publish writes text verbatim to p.Path, replacing any existing content.
func (p *Publisher) Publish(text string) error {
	if dir := filepath.Dir(p.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return scribeerr.IO(errors.Wrapf(err, "create %s", dir), "")
		}
	}
	if err := os.WriteFile(p.Path, []byte(text), 0o644); err != nil {
		return scribeerr.IO(errors.Wrapf(err, "write %s", p.Path), "check that the output path is writable")
	}
	return nil
}

// Confirmer decides whether a generated message gets committed.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// NoConfirm confirms everything. It stands in for the prompt under --no-verify.
type NoConfirm struct{}

func (NoConfirm) Confirm(string) (bool, error) { return true, nil }

// Prompter asks questions on a terminal-like pair of streams.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the answer line without surrounding space.
// EOF yields an empty answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", scribeerr.IO(errors.Wrap(err, "read answer"), "")
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks question and accepts "y" or "yes" in any case.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// NoteReader supplies the optional free-text note about a change.
type NoteReader interface {
	Note() (string, error)
}

// AskNote reads the note from a Prompter.
type AskNote struct {
	Prompter *Prompter
}

// Note asks for a short description of the change.
func (a AskNote) Note() (string, error) {
	return a.Prompter.Ask("Please write a short description of the changes you have made: ")
}

// FixedNote returns a preset note. The empty FixedNote skips the question.
type FixedNote string

func (n FixedNote) Note() (string, error) { return string(n), nil }
