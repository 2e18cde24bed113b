package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/action"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/collector"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/prompt"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/tui"
	"github.com/RobinCoderZhao/gitscribe/pkg/llm"
)

// Stager stages the working tree before the diff is collected.
type Stager interface {
	AddAll(ctx context.Context) error
}

// Committer creates the commit. *action.Committer implements it.
type Committer interface {
	Commit(ctx context.Context, message string) error
}

var _ Committer = (*action.Committer)(nil)

// CommitFlow drafts a conventional commit message for the staged diff and
// commits with it.
//
//	Idle → DiffCollected → PromptBuilt → TextGenerated →
//	    {AwaitingConfirmation → Committed | Aborted}
type CommitFlow struct {
	// Stager is optional; nil commits only what is already staged.
	Stager    Stager
	Source    collector.Source
	Client    llm.Client
	Notes     action.NoteReader
	Confirmer action.Confirmer
	Committer Committer
	Collect   collector.Options
	Readme    string
	Out       io.Writer
	Progress  Progress
	// Timeout bounds each git or model step separately. The note question
	// and the confirmation wait as long as the user needs.
	Timeout time.Duration

	track tracker
}

// States returns the states the last Run passed through.
func (f *CommitFlow) States() []State {
	return append([]State(nil), f.track.states...)
}

// Run executes the flow and returns its final state. Aborted and NothingToDo
// are successful outcomes.
func (f *CommitFlow) Run(ctx context.Context) (State, error) {
	f.track = tracker{}
	f.track.enter(Idle)
	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	progress := f.Progress
	if progress == nil {
		progress = noProgress{}
	}

	res, err := collect(ctx, f.Timeout, f.Stager, f.Source, f.Collect)
	if err != nil {
		return f.track.current(), err
	}
	if res.Empty() {
		fmt.Fprintln(out, "No changes detected.")
		f.track.enter(NothingToDo)
		return NothingToDo, nil
	}
	f.track.enter(DiffCollected)
	printFiles(out, res)

	note, err := f.Notes.Note()
	if err != nil {
		return f.track.current(), err
	}

	text, err := prompt.Build(prompt.Commit, prompt.Context{
		Diff:     res.Text(),
		UserNote: note,
		Readme:   ReadReadme(f.Readme),
	})
	if err != nil {
		return f.track.current(), err
	}
	f.track.enter(PromptBuilt)

	resp, err := generate(ctx, f.Timeout, f.Client, progress, "Generating commit message...", text)
	if err != nil {
		return f.track.current(), err
	}
	message := resp.Content
	f.track.enter(TextGenerated)

	if words := prompt.HedgingWords(message); len(words) > 0 {
		slog.Warn("generated commit message hedges", "words", words)
	}

	printSection(out, "Commit message output:", message)
	printUsage(out, resp)

	if _, auto := f.Confirmer.(action.NoConfirm); !auto {
		f.track.enter(AwaitingConfirmation)
	}
	ok, err := f.Confirmer.Confirm("Do you want to commit these changes? (y/n) ")
	if err != nil {
		return f.track.current(), err
	}
	if !ok {
		fmt.Fprintln(out, "Commit aborted.")
		f.track.enter(Aborted)
		return Aborted, nil
	}

	commitCtx, cancel := bounded(ctx, f.Timeout)
	defer cancel()
	if err := f.Committer.Commit(commitCtx, message); err != nil {
		return f.track.current(), err
	}
	if c, ok := f.Committer.(*action.Committer); ok && c.DryRun {
		fmt.Fprintln(out, tui.Muted.Render("Dry run, nothing committed."))
	} else {
		fmt.Fprintln(out, tui.Success.Render("Changes committed successfully."))
	}
	f.track.enter(Committed)
	return Committed, nil
}
